package keys

import (
	"sort"
	"sync"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// Mapping связывает естественный ключ с суррогатным
type Mapping struct {
	NaturalKey models.NaturalKey `json:"natural_key"`
	Key        int               `json:"key"`
}

// dimensionKeys хранит ключи одного измерения; все изменения идут под его мьютексом
type dimensionKeys struct {
	mu        sync.Mutex
	byNatural map[string]int
	mappings  []Mapping
	next      int
	// settled - наибольший ключ, порядок которого уже закреплен
	settled int
}

func newDimensionKeys() *dimensionKeys {
	return &dimensionKeys{
		byNatural: make(map[string]int),
		next:      1,
	}
}

// Resolver - единственный источник суррогатных ключей всех измерений.
// Закрепленный ключ никогда не меняется и не удаляется.
// В упорядоченном режиме новые ключи после Settle идут в порядке естественных ключей.
type Resolver struct {
	mu      sync.Mutex
	dims    map[string]*dimensionKeys
	ordered bool
}

// NewResolver создает пустой Resolver
func NewResolver() *Resolver {
	return &Resolver{dims: make(map[string]*dimensionKeys)}
}

func (r *Resolver) dimension(name string) *dimensionKeys {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.dims[name]
	if !ok {
		d = newDimensionKeys()
		r.dims[name] = d
	}
	return d
}

func (r *Resolver) existing(name string) (*dimensionKeys, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.dims[name]
	return d, ok
}

// Resolve возвращает суррогатный ключ для естественного ключа, выделяя следующий номер при первой встрече.
// created равно true, если ключ выделен этим вызовом.
func (r *Resolver) Resolve(dimension string, natural models.NaturalKey) (key int, created bool) {
	d := r.dimension(dimension)
	id := natural.ID()

	d.mu.Lock()
	defer d.mu.Unlock()

	if key, ok := d.byNatural[id]; ok {
		return key, false
	}

	key = d.next
	d.next++
	d.byNatural[id] = key
	d.mappings = append(d.mappings, Mapping{
		NaturalKey: append(models.NaturalKey(nil), natural...),
		Key:        key,
	})
	return key, true
}

// Lookup возвращает ранее выданный ключ, не выделяя новый
func (r *Resolver) Lookup(dimension string, natural models.NaturalKey) (int, bool) {
	d, ok := r.existing(dimension)
	if !ok {
		return 0, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key, ok := d.byNatural[natural.ID()]
	return key, ok
}

// AllKeys возвращает все сопоставления измерения в порядке возрастания суррогатного ключа
func (r *Resolver) AllKeys(dimension string) []Mapping {
	d, ok := r.existing(dimension)
	if !ok {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Mapping, len(d.mappings))
	copy(out, d.mappings)
	return out
}

// Settle закрепляет ключи, выделенные с прошлого вызова.
// В упорядоченном режиме они перенумеровываются после ранее закрепленных в порядке естественных ключей;
// результат - замены старый ключ -> новый по измерениям (только изменившиеся).
// Вызывается, когда выделение ключей завершено.
func (r *Resolver) Settle() map[string]map[int]int {
	remap := make(map[string]map[int]int)
	for _, name := range r.Dimensions() {
		d, _ := r.existing(name)
		if changes := d.settle(r.ordered); len(changes) > 0 {
			remap[name] = changes
		}
	}
	return remap
}

func (d *dimensionKeys) settle(ordered bool) map[int]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	defer func() { d.settled = d.next - 1 }()
	if !ordered {
		return nil
	}

	// mappings упорядочены по ключу, новые ключи идут в хвосте
	first := sort.Search(len(d.mappings), func(i int) bool { return d.mappings[i].Key > d.settled })
	pending := d.mappings[first:]
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].NaturalKey.Compare(pending[j].NaturalKey) < 0
	})

	changes := make(map[int]int)
	for i := range pending {
		key := d.settled + 1 + i
		if pending[i].Key != key {
			changes[pending[i].Key] = key
			pending[i].Key = key
		}
		d.byNatural[pending[i].NaturalKey.ID()] = key
	}
	return changes
}

// Dimensions возвращает имена измерений, известных Resolver, в алфавитном порядке
func (r *Resolver) Dimensions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.dims))
	for name := range r.dims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

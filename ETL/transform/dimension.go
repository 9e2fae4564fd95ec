package transform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// Зарезервированный член измерения для отсутствующих необязательных кодов
const (
	unknownCode = "UNKNOWN"
	unknownName = "Unknown"
)

// Member - нормализованный член измерения: естественный ключ и полный набор атрибутов
type Member struct {
	NaturalKey models.NaturalKey
	Attributes map[string]string
}

// DimensionBuilder нормализует сырые атрибуты в член измерения и фиксирует его в таблице
type DimensionBuilder interface {
	Name() string
	Normalize(raw models.RawRecord) (Member, error)
	Commit(m Member) int
}

// Ingest нормализует запись и возвращает суррогатный ключ ее члена измерения
func Ingest(b DimensionBuilder, raw models.RawRecord) (int, error) {
	m, err := b.Normalize(raw)
	if err != nil {
		return 0, err
	}
	return b.Commit(m), nil
}

// DimensionTable хранит строки одного измерения.
// Первая запись для ключа побеждает; расхождения атрибутов попадают в журнал предупреждений.
type DimensionTable struct {
	name       string
	attributes []string
	resolver   *keys.Resolver
	log        *BuildLog

	mu   sync.Mutex
	rows map[int]*models.DimensionRow
}

// NewDimensionTable создает таблицу измерения с заданным порядком атрибутов
func NewDimensionTable(name string, attributes []string, resolver *keys.Resolver, log *BuildLog) *DimensionTable {
	return &DimensionTable{
		name:       name,
		attributes: attributes,
		resolver:   resolver,
		log:        log,
		rows:       make(map[int]*models.DimensionRow),
	}
}

// Name возвращает имя измерения
func (t *DimensionTable) Name() string {
	return t.name
}

// Commit получает суррогатный ключ члена и создает строку при первой встрече
func (t *DimensionTable) Commit(m Member) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key, _ := t.resolver.Resolve(t.name, m.NaturalKey)
	t.log.Ingested(t.name)

	row, exists := t.rows[key]
	if !exists {
		attrs := make(map[string]string, len(t.attributes))
		for _, name := range t.attributes {
			attrs[name] = m.Attributes[name]
		}
		t.rows[key] = &models.DimensionRow{
			Key:        key,
			NaturalKey: append(models.NaturalKey(nil), m.NaturalKey...),
			Attributes: attrs,
		}
		return key
	}

	for _, name := range t.attributes {
		stored, incoming := row.Attributes[name], m.Attributes[name]
		if stored != incoming {
			t.log.Warn(t.name, m.NaturalKey.String(),
				fmt.Sprintf("атрибут %s: сохранено %q, получено %q", name, stored, incoming))
		}
	}
	return key
}

// Rows возвращает строки измерения в порядке суррогатного ключа
func (t *DimensionTable) Rows() []models.DimensionRow {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.DimensionRow, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len возвращает число строк измерения
func (t *DimensionTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

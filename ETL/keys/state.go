package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/snappy"
)

// stateVersion - версия формата файла состояния
const stateVersion = 1

// State - снимок сопоставлений ключей для воспроизводимых перестроений
type State struct {
	Version    int                  `json:"version"`
	Dimensions map[string][]Mapping `json:"dimensions"`
}

// State возвращает снимок всех сопоставлений
func (r *Resolver) State() State {
	s := State{
		Version:    stateVersion,
		Dimensions: make(map[string][]Mapping),
	}
	for _, name := range r.Dimensions() {
		s.Dimensions[name] = r.AllKeys(name)
	}
	return s
}

// NewResolverFromState создает упорядоченный Resolver, засеянный сохраненными сопоставлениями.
// Новые ключи выделяются после максимального сохраненного в порядке естественных ключей (см. Settle).
func NewResolverFromState(s State) (*Resolver, error) {
	if s.Version != 0 && s.Version != stateVersion {
		return nil, fmt.Errorf("неподдерживаемая версия состояния ключей: %d", s.Version)
	}

	r := NewResolver()
	r.ordered = true
	for name, mappings := range s.Dimensions {
		d := r.dimension(name)

		sorted := append([]Mapping(nil), mappings...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

		seen := make(map[int]bool, len(sorted))
		for _, m := range sorted {
			if m.Key < 1 {
				return nil, fmt.Errorf("измерение %s: недопустимый ключ %d", name, m.Key)
			}
			if seen[m.Key] {
				return nil, fmt.Errorf("измерение %s: ключ %d выдан дважды", name, m.Key)
			}
			id := m.NaturalKey.ID()
			if _, dup := d.byNatural[id]; dup {
				return nil, fmt.Errorf("измерение %s: естественный ключ %q повторяется", name, id)
			}
			seen[m.Key] = true
			d.byNatural[id] = m.Key
			d.mappings = append(d.mappings, m)
			if m.Key >= d.next {
				d.next = m.Key + 1
			}
		}
		d.settled = d.next - 1
	}
	return r, nil
}

// SaveState записывает снимок в файл в сжатом виде
func SaveState(path string, s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("ошибка сериализации состояния ключей: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога состояния: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить обрезанное состояние
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compress(data), 0o644); err != nil {
		return fmt.Errorf("ошибка записи состояния ключей: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("ошибка сохранения состояния ключей: %w", err)
	}
	return nil
}

// LoadState читает снимок из файла
func LoadState(path string) (State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("ошибка чтения состояния ключей %s: %w", path, err)
	}

	data, err := decompress(raw)
	if err != nil {
		return State{}, fmt.Errorf("ошибка распаковки состояния ключей %s: %w", path, err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("ошибка разбора состояния ключей %s: %w", path, err)
	}
	return s, nil
}

// LoadResolver создает Resolver из файла состояния.
// Без пути Resolver пустой и выдает ключи в порядке встречи; отсутствующий файл дает пустой упорядоченный Resolver.
func LoadResolver(path string) (*Resolver, error) {
	if path == "" {
		return NewResolver(), nil
	}

	s, err := LoadState(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewResolverFromState(State{})
		}
		return nil, err
	}
	return NewResolverFromState(s)
}

func compress(data []byte) []byte {
	return snappy.Encode(nil, data)
}

func decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

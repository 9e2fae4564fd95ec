package normalize

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_lookups.yaml
var defaultLookups []byte

// UncategorizedSector - категория секторов с неизвестным префиксом
const UncategorizedSector = "Uncategorized"

// CountryEntry описывает страну в справочнике
type CountryEntry struct {
	ISO2    string   `yaml:"iso2"`
	ISO3    string   `yaml:"iso3"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Lookups содержит статические справочники нормализации, загружаемые один раз при старте
type Lookups struct {
	Countries               []CountryEntry    `yaml:"countries"`
	CountryCodeSynonyms     map[string]string `yaml:"country_code_synonyms"`
	SectorCategories        map[string]string `yaml:"sector_categories"`
	SectorNames             map[string]string `yaml:"sector_names"`
	AidTypes                map[string]string `yaml:"aid_types"`
	AidTypeSynonyms         map[string]string `yaml:"aid_type_synonyms"`
	TransactionTypes        map[string]string `yaml:"transaction_types"`
	TransactionTypeSynonyms map[string]string `yaml:"transaction_type_synonyms"`
	OrgRoles                map[string]string `yaml:"org_roles"`

	countryByCode map[string]CountryEntry
	countryByName map[string]CountryEntry
	prefixes      []string
	roles         map[string]string
}

// DefaultLookups возвращает встроенные справочники
func DefaultLookups() (*Lookups, error) {
	return ParseLookups(defaultLookups)
}

// LoadLookups читает справочники из YAML-файла; пустой путь означает встроенные справочники
func LoadLookups(path string) (*Lookups, error) {
	if path == "" {
		return DefaultLookups()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения справочников %s: %w", path, err)
	}
	return ParseLookups(data)
}

// ParseLookups разбирает справочники из YAML и строит индексы
func ParseLookups(data []byte) (*Lookups, error) {
	var l Lookups
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("ошибка разбора справочников: %w", err)
	}
	if err := l.index(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Lookups) index() error {
	l.countryByCode = make(map[string]CountryEntry, len(l.Countries)*2)
	l.countryByName = make(map[string]CountryEntry, len(l.Countries)*2)

	for _, c := range l.Countries {
		c.ISO2 = Code(c.ISO2)
		c.ISO3 = Code(c.ISO3)
		if c.ISO2 == "" || c.Name == "" {
			return fmt.Errorf("страна без кода или названия в справочнике: %+v", c)
		}
		if _, dup := l.countryByCode[c.ISO2]; dup {
			return fmt.Errorf("код страны %s повторяется в справочнике", c.ISO2)
		}
		l.countryByCode[c.ISO2] = c
		if c.ISO3 != "" {
			l.countryByCode[c.ISO3] = c
		}
		l.countryByName[FoldKey(c.Name)] = c
		for _, alias := range c.Aliases {
			l.countryByName[FoldKey(alias)] = c
		}
	}

	for synonym, code := range l.CountryCodeSynonyms {
		c, ok := l.countryByCode[Code(code)]
		if !ok {
			return fmt.Errorf("синоним кода страны %s ссылается на неизвестный код %s", synonym, code)
		}
		l.countryByCode[Code(synonym)] = c
	}

	l.prefixes = make([]string, 0, len(l.SectorCategories))
	for prefix := range l.SectorCategories {
		l.prefixes = append(l.prefixes, prefix)
	}
	// Сначала более длинные префиксы
	sort.Slice(l.prefixes, func(i, j int) bool {
		if len(l.prefixes[i]) != len(l.prefixes[j]) {
			return len(l.prefixes[i]) > len(l.prefixes[j])
		}
		return l.prefixes[i] < l.prefixes[j]
	})

	l.roles = make(map[string]string, len(l.OrgRoles))
	for raw, role := range l.OrgRoles {
		l.roles[FoldKey(raw)] = role
	}
	return nil
}

// CountryByCode ищет страну по коду ISO2, ISO3 или синониму кода
func (l *Lookups) CountryByCode(code string) (CountryEntry, bool) {
	c, ok := l.countryByCode[Code(code)]
	return c, ok
}

// CountryByName ищет страну по названию или его синониму без учета регистра и диакритики
func (l *Lookups) CountryByName(name string) (CountryEntry, bool) {
	c, ok := l.countryByName[FoldKey(name)]
	return c, ok
}

// SectorCategory возвращает категорию сектора по самому длинному известному префиксу кода
func (l *Lookups) SectorCategory(code string) string {
	for _, prefix := range l.prefixes {
		if strings.HasPrefix(code, prefix) {
			return l.SectorCategories[prefix]
		}
	}
	return UncategorizedSector
}

// SectorName возвращает название сектора из справочника
func (l *Lookups) SectorName(code string) (string, bool) {
	name, ok := l.SectorNames[code]
	return name, ok
}

// AidType возвращает канонический код и название типа помощи
func (l *Lookups) AidType(code string) (string, string, bool) {
	return lookupCode(Code(code), l.AidTypeSynonyms, l.AidTypes)
}

// TransactionType возвращает канонический код и название типа транзакции
func (l *Lookups) TransactionType(code string) (string, string, bool) {
	return lookupCode(Code(code), l.TransactionTypeSynonyms, l.TransactionTypes)
}

// OrgRole сопоставляет роль организации из источника с канонической ролью
func (l *Lookups) OrgRole(raw string) (string, bool) {
	role, ok := l.roles[FoldKey(raw)]
	return role, ok
}

func lookupCode(code string, synonyms, names map[string]string) (string, string, bool) {
	if canonical, ok := synonyms[code]; ok {
		code = canonical
	}
	name, ok := names[code]
	return code, name, ok
}

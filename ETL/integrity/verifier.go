// Package integrity проверяет ссылочную целостность и уникальность ключей построенного хранилища.
package integrity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// Виды нарушений
const (
	KindOrphanKey          = "orphan_key"
	KindDuplicateNatural   = "duplicate_natural_key"
	KindDuplicateSurrogate = "duplicate_surrogate_key"
	KindDuplicateGrain     = "duplicate_grain"
	KindInvalidGrain       = "invalid_grain"
)

// Violation описывает одно нарушение целостности
type Violation struct {
	Kind   string `json:"kind" yaml:"kind"`
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
	Key    string `json:"key" yaml:"key"`
	Count  int    `json:"count" yaml:"count"`
}

// IntegrityError перечисляет все найденные нарушения; построение с такой ошибкой считается неудачным
type IntegrityError struct {
	Violations []Violation
}

func (e *IntegrityError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Column != "" {
			parts = append(parts, fmt.Sprintf("%s %s.%s=%s (%d)", v.Kind, v.Table, v.Column, v.Key, v.Count))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s[%s] (%d)", v.Kind, v.Table, v.Key, v.Count))
		}
	}
	return fmt.Sprintf("нарушена целостность хранилища (%d): %s", len(e.Violations), strings.Join(parts, "; "))
}

type foreignKey struct {
	column    string
	dimension string
	value     func(i int) int
}

// Verify проверяет хранилище и возвращает *IntegrityError, если найдено хотя бы одно нарушение
func Verify(w *models.Warehouse) error {
	v := &verifier{
		keys:       make(map[string]map[int]bool),
		violations: make(map[Violation]int),
	}

	for _, dim := range models.Dimensions {
		v.checkDimension(dim, w.DimensionRows[dim])
	}
	v.checkTypedKeys(w)
	v.checkAidTransactions(w.AidTransactions)
	v.checkCountryContexts(w)

	if len(v.violations) == 0 {
		return nil
	}

	out := make([]Violation, 0, len(v.violations))
	for violation, count := range v.violations {
		violation.Count = count
		out = append(out, violation)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Key < b.Key
	})
	return &IntegrityError{Violations: out}
}

type verifier struct {
	keys       map[string]map[int]bool
	violations map[Violation]int
}

func (v *verifier) add(kind, table, column, key string) {
	v.violations[Violation{Kind: kind, Table: table, Column: column, Key: key}]++
}

func (v *verifier) checkDimension(dim string, rows []models.DimensionRow) {
	surrogate := make(map[int]int, len(rows))
	natural := make(map[string]int, len(rows))
	display := make(map[string]string, len(rows))
	for _, row := range rows {
		surrogate[row.Key]++
		id := row.NaturalKey.ID()
		natural[id]++
		display[id] = row.NaturalKey.String()
	}

	present := make(map[int]bool, len(surrogate))
	for key, count := range surrogate {
		present[key] = true
		if count > 1 {
			v.violations[Violation{Kind: KindDuplicateSurrogate, Table: dim, Key: strconv.Itoa(key)}] += count
		}
	}
	for id, count := range natural {
		if count > 1 {
			v.violations[Violation{Kind: KindDuplicateNatural, Table: dim, Key: display[id]}] += count
		}
	}
	v.keys[dim] = present
}

// checkTypedKeys сверяет типизированные таблицы с обобщенными строками
func (v *verifier) checkTypedKeys(w *models.Warehouse) {
	typed := map[string][]int{}
	for _, r := range w.Times {
		typed[models.DimTime] = append(typed[models.DimTime], r.ID)
	}
	for _, r := range w.Countries {
		typed[models.DimCountry] = append(typed[models.DimCountry], r.ID)
	}
	for _, r := range w.Sectors {
		typed[models.DimSector] = append(typed[models.DimSector], r.ID)
	}
	for _, r := range w.Organizations {
		typed[models.DimOrganization] = append(typed[models.DimOrganization], r.ID)
	}
	for _, r := range w.AidTypes {
		typed[models.DimAidType] = append(typed[models.DimAidType], r.ID)
	}
	for _, r := range w.TransactionTypes {
		typed[models.DimTransactionType] = append(typed[models.DimTransactionType], r.ID)
	}

	for _, dim := range models.Dimensions {
		seen := make(map[int]int)
		for _, id := range typed[dim] {
			seen[id]++
		}
		for id, count := range seen {
			if count > 1 && !v.violatedSurrogate(dim, id) {
				v.violations[Violation{Kind: KindDuplicateSurrogate, Table: dim, Key: strconv.Itoa(id)}] += count
			}
		}
	}
}

func (v *verifier) violatedSurrogate(dim string, id int) bool {
	_, ok := v.violations[Violation{Kind: KindDuplicateSurrogate, Table: dim, Key: strconv.Itoa(id)}]
	return ok
}

func (v *verifier) checkForeignKeys(table string, n int, fks []foreignKey) {
	for _, fk := range fks {
		present := v.keys[fk.dimension]
		for i := 0; i < n; i++ {
			if id := fk.value(i); !present[id] {
				v.add(KindOrphanKey, table, fk.column, strconv.Itoa(id))
			}
		}
	}
}

func (v *verifier) checkAidTransactions(facts []models.AidTransactionFact) {
	v.checkForeignKeys(models.FactAidTransaction, len(facts), []foreignKey{
		{"country_id", models.DimCountry, func(i int) int { return facts[i].CountryID }},
		{"time_id", models.DimTime, func(i int) int { return facts[i].TimeID }},
		{"sector_id", models.DimSector, func(i int) int { return facts[i].SectorID }},
		{"reporting_org_id", models.DimOrganization, func(i int) int { return facts[i].ReportingOrgID }},
		{"aid_type_id", models.DimAidType, func(i int) int { return facts[i].AidTypeID }},
		{"transaction_type_id", models.DimTransactionType, func(i int) int { return facts[i].TransactionTypeID }},
	})

	grain := make(map[string]int, len(facts))
	for _, f := range facts {
		grain[f.IATIID]++
	}
	for id, count := range grain {
		if count > 1 {
			v.violations[Violation{Kind: KindDuplicateGrain, Table: models.FactAidTransaction, Column: "iati_id", Key: id}] += count
		}
	}
}

func (v *verifier) checkCountryContexts(w *models.Warehouse) {
	facts := w.CountryContexts
	v.checkForeignKeys(models.FactCountryContext, len(facts), []foreignKey{
		{"country_id", models.DimCountry, func(i int) int { return facts[i].CountryID }},
		{"time_id", models.DimTime, func(i int) int { return facts[i].TimeID }},
	})

	quarters := make(map[int]int, len(w.Times))
	for _, t := range w.Times {
		quarters[t.ID] = t.Quarter
	}

	grain := make(map[string]int, len(facts))
	for _, f := range facts {
		grain[fmt.Sprintf("%d|%d", f.CountryID, f.TimeID)]++
		if q, ok := quarters[f.TimeID]; ok && q != models.AnnualQuarter {
			v.add(KindInvalidGrain, models.FactCountryContext, "time_id", strconv.Itoa(f.TimeID))
		}
	}
	for key, count := range grain {
		if count > 1 {
			v.violations[Violation{Kind: KindDuplicateGrain, Table: models.FactCountryContext, Column: "country_id|time_id", Key: key}] += count
		}
	}
}

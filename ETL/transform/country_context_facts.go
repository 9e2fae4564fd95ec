package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// Значения, которыми источники показателей обозначают пропуск
var missingMarkers = map[string]bool{"": true, "..": true, "na": true, "n/a": true, "null": true, "-": true}

type contextKey struct {
	countryID int
	timeID    int
}

// CountryContextFactsProcessor собирает строки fact_country_context с гранулярностью (страна, год).
// Повтор (страна, год) заменяет значения: побеждает последняя редакция.
type CountryContextFactsProcessor struct {
	dims     *Dimensions
	log      *BuildLog
	extra    []string
	position map[contextKey]int
	facts    []models.CountryContextFact
	seen     int
}

// NewCountryContextFactsProcessor создает новый экземпляр CountryContextFactsProcessor
func NewCountryContextFactsProcessor(dims *Dimensions, log *BuildLog, extraIndicators []string) *CountryContextFactsProcessor {
	return &CountryContextFactsProcessor{
		dims:     dims,
		log:      log,
		extra:    extraIndicators,
		position: make(map[contextKey]int),
	}
}

// Assemble добавляет или заменяет строку показателей страны за год
func (p *CountryContextFactsProcessor) Assemble(raw models.RawRecord) (models.CountryContextFact, error) {
	p.seen++
	country, _ := raw.String(models.FieldCountryCode, models.FieldCountry, models.FieldCountryName)
	year, _ := raw.String(models.FieldYear)
	recordID := fmt.Sprintf("%s/%s", country, year)
	if country == "" && year == "" {
		recordID = fmt.Sprintf("#%d", p.seen)
	}

	fact, err := p.assemble(raw, recordID)
	if err != nil {
		p.log.Reject(models.FactCountryContext, recordID, err)
		return models.CountryContextFact{}, err
	}
	return fact, nil
}

func (p *CountryContextFactsProcessor) assemble(raw models.RawRecord, recordID string) (models.CountryContextFact, error) {
	countryM, err := p.dims.Country.Normalize(raw)
	if err != nil {
		return models.CountryContextFact{}, &DimensionError{Dimension: models.DimCountry, Err: err}
	}

	year, present, err := raw.Float(models.FieldYear)
	if err != nil || (present && year != math.Trunc(year)) {
		v, _ := raw.String(models.FieldYear)
		return models.CountryContextFact{}, &DimensionError{
			Dimension: models.DimTime,
			Err:       &DateParseError{Value: v, Reason: "год не является целым числом"},
		}
	}
	if !present {
		return models.CountryContextFact{}, &DimensionError{
			Dimension: models.DimTime,
			Err:       &DateParseError{Reason: "год не указан"},
		}
	}
	timeM, err := p.dims.Time.NormalizeYear(int(year))
	if err != nil {
		return models.CountryContextFact{}, &DimensionError{Dimension: models.DimTime, Err: err}
	}

	fact := models.CountryContextFact{
		Population:   p.indicator(raw, recordID, models.FieldPopulation),
		GDPPerCapita: p.indicator(raw, recordID, models.FieldGDPPerCapita),
	}
	if len(p.extra) > 0 {
		fact.Indicators = make(map[string]*float64, len(p.extra))
		for _, name := range p.extra {
			fact.Indicators[name] = p.indicator(raw, recordID, name)
		}
	}

	fact.CountryID = p.dims.Country.Commit(countryM)
	fact.TimeID = p.dims.Time.Commit(timeM)

	key := contextKey{countryID: fact.CountryID, timeID: fact.TimeID}
	if pos, exists := p.position[key]; exists {
		p.facts[pos] = fact
		p.log.Revised(models.FactCountryContext)
	} else {
		p.position[key] = len(p.facts)
		p.facts = append(p.facts, fact)
	}
	p.log.Ingested(models.FactCountryContext)
	return fact, nil
}

// indicator разбирает необязательный показатель; нечисловое значение становится пустым с предупреждением
func (p *CountryContextFactsProcessor) indicator(raw models.RawRecord, recordID, name string) *float64 {
	if s, ok := raw[name].(string); ok && missingMarkers[strings.ToLower(strings.TrimSpace(s))] {
		return nil
	}

	v, present, err := raw.Float(name)
	if err != nil {
		p.log.Warn(models.FactCountryContext, recordID, fmt.Sprintf("показатель %s: %v", name, err))
		return nil
	}
	if !present {
		return nil
	}
	return &v
}

// Facts возвращает строки показателей в порядке первого появления (страна, год)
func (p *CountryContextFactsProcessor) Facts() []models.CountryContextFact {
	return append([]models.CountryContextFact(nil), p.facts...)
}

package transform

import (
	"regexp"

	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/normalize"
)

var isoLike = regexp.MustCompile(`^[A-Za-z]{2,3}$`)

// CountryDimensionProcessor сводит коды ISO и названия стран из обоих источников к одному члену
type CountryDimensionProcessor struct {
	*DimensionTable
	lookups *normalize.Lookups
}

// NewCountryDimensionProcessor создает новый экземпляр CountryDimensionProcessor
func NewCountryDimensionProcessor(resolver *keys.Resolver, log *BuildLog, lookups *normalize.Lookups) *CountryDimensionProcessor {
	return &CountryDimensionProcessor{
		DimensionTable: NewDimensionTable(models.DimCountry, []string{"iso_code", "country_name"}, resolver, log),
		lookups:        lookups,
	}
}

// Normalize ищет страну сначала по коду, затем по названию; неизвестный код принимается только вместе с названием
func (p *CountryDimensionProcessor) Normalize(raw models.RawRecord) (Member, error) {
	var candidates []string
	for _, field := range []string{models.FieldCountryCode, models.FieldCountry, models.FieldCountryName} {
		if v, ok := raw.String(field); ok {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return Member{}, &NormalizationError{Dimension: models.DimCountry, Reason: "страна не указана"}
	}

	for _, c := range candidates {
		if entry, ok := p.lookups.CountryByCode(c); ok {
			return countryMember(entry.ISO2, entry.Name), nil
		}
	}
	for _, c := range candidates {
		if entry, ok := p.lookups.CountryByName(c); ok {
			return countryMember(entry.ISO2, entry.Name), nil
		}
	}

	code, _ := raw.String(models.FieldCountryCode, models.FieldCountry)
	name, hasName := raw.String(models.FieldCountryName)
	if !hasName {
		// Поле country может содержать название вместо кода
		if v, ok := raw.String(models.FieldCountry); ok && !isoLike.MatchString(v) {
			name, hasName = v, true
			code, _ = raw.String(models.FieldCountryCode)
		}
	}
	if isoLike.MatchString(code) && hasName {
		return countryMember(normalize.Code(code), normalize.CleanName(name)), nil
	}

	return Member{}, &NormalizationError{
		Dimension: models.DimCountry,
		Value:     candidates[0],
		Reason:    "нет канонического кода страны",
	}
}

// Ingest нормализует запись и фиксирует страну
func (p *CountryDimensionProcessor) Ingest(raw models.RawRecord) (int, error) {
	return Ingest(p, raw)
}

func countryMember(iso, name string) Member {
	return Member{
		NaturalKey: models.NaturalKey{iso},
		Attributes: map[string]string{"iso_code": iso, "country_name": name},
	}
}

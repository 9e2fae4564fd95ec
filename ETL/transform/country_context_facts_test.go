package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

func newContextProcessor(t *testing.T) (*fixture, *CountryContextFactsProcessor) {
	f := newFixture(t)
	return f, NewCountryContextFactsProcessor(f.dims, f.log, []string{"life_expectancy"})
}

func TestCountryContextLastWriteWins(t *testing.T) {
	f, p := newContextProcessor(t)

	records := []models.RawRecord{
		{"country": "Kenya", "year": "2000", "gdp_per_capita": "400"},
		{"country": "AF", "year": "2000", "gdp_per_capita": "180"},
		{"country": "KE", "year": 2000, "gdp_per_capita": "410.5"},
	}
	for _, rec := range records {
		_, err := p.Assemble(rec)
		require.NoError(t, err)
	}

	facts := p.Facts()
	require.Len(t, facts, 2)
	// Строка сохраняет позицию первого появления
	assert.Equal(t, 1, facts[0].CountryID)
	require.NotNil(t, facts[0].GDPPerCapita)
	assert.Equal(t, 410.5, *facts[0].GDPPerCapita)

	stats := f.log.Stats()[models.FactCountryContext]
	assert.Equal(t, 3, stats.Ingested)
	assert.Equal(t, 1, stats.Revised)

	times := f.dims.Time.Rows()
	require.Len(t, times, 1)
	assert.Equal(t, models.NaturalKey{"2000", "0"}, times[0].NaturalKey)
}

func TestCountryContextSparseIndicators(t *testing.T) {
	f, p := newContextProcessor(t)

	fact, err := p.Assemble(models.RawRecord{
		"country": "KE", "year": "2001", "population": "", "gdp_per_capita": "420", "life_expectancy": "..",
	})
	require.NoError(t, err)

	assert.Nil(t, fact.Population)
	require.NotNil(t, fact.GDPPerCapita)
	assert.Equal(t, 420.0, *fact.GDPPerCapita)
	assert.Nil(t, fact.Indicators["life_expectancy"])
	assert.Empty(t, f.log.Warnings())
	assert.Empty(t, f.log.Rejections())
}

func TestCountryContextUnparseableIndicatorWarns(t *testing.T) {
	f, p := newContextProcessor(t)

	fact, err := p.Assemble(models.RawRecord{"country": "KE", "year": "2002", "population": "about 30m"})
	require.NoError(t, err)
	assert.Nil(t, fact.Population)

	warnings := f.log.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, models.FactCountryContext, warnings[0].Table)
	assert.Equal(t, "KE/2002", warnings[0].Key)
}

func TestCountryContextRejections(t *testing.T) {
	tests := []struct {
		name      string
		raw       models.RawRecord
		dimension string
	}{
		{name: "missing country", raw: models.RawRecord{"year": "2000", "population": "1"}, dimension: models.DimCountry},
		{name: "unknown country", raw: models.RawRecord{"country": "Atlantis Republic", "year": "2000"}, dimension: models.DimCountry},
		{name: "missing year", raw: models.RawRecord{"country": "KE", "population": "1"}, dimension: models.DimTime},
		{name: "fractional year", raw: models.RawRecord{"country": "KE", "year": "2000.5"}, dimension: models.DimTime},
		{name: "year out of range", raw: models.RawRecord{"country": "KE", "year": "1066"}, dimension: models.DimTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, p := newContextProcessor(t)

			_, err := p.Assemble(tt.raw)
			require.Error(t, err)

			rejections := f.log.Rejections()
			require.Len(t, rejections, 1)
			assert.Equal(t, tt.dimension, rejections[0].Dimension)
			assert.Empty(t, p.Facts())
			assert.Zero(t, f.dims.Country.Len())
			assert.Zero(t, f.dims.Time.Len())
		})
	}
}

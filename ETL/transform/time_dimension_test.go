package transform

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

func TestQuarter(t *testing.T) {
	want := map[time.Month]int{
		time.January: 1, time.March: 1, time.April: 2, time.June: 2,
		time.July: 3, time.August: 3, time.September: 3, time.October: 4, time.December: 4,
	}
	for month, q := range want {
		assert.Equal(t, q, Quarter(month), month.String())
	}
}

func TestTimeDimensionDerivesQuarter(t *testing.T) {
	f := newFixture(t)

	k1, err := f.dims.Time.IngestDate("1999-08-15")
	require.NoError(t, err)
	k2, err := f.dims.Time.IngestDate("2000-01-01")
	require.NoError(t, err)
	k3, err := f.dims.Time.IngestDate("2000-02-29T10:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, 1, k1)
	assert.Equal(t, 2, k2)
	assert.Equal(t, k2, k3)

	rows := f.dims.Time.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, models.NaturalKey{"1999", "3"}, rows[0].NaturalKey)
	assert.Equal(t, models.NaturalKey{"2000", "1"}, rows[1].NaturalKey)
}

func TestTimeDimensionDateFormats(t *testing.T) {
	f := newFixture(t)

	for _, value := range []string{"2001-05-17", "2001/05/17", "17.05.2001", "2001-05-17 08:30:00", "2001-05"} {
		m, err := f.dims.Time.NormalizeDate(value)
		require.NoError(t, err, value)
		assert.Equal(t, models.NaturalKey{"2001", "2"}, m.NaturalKey, value)
	}
}

func TestTimeDimensionRejectsBadDates(t *testing.T) {
	f := newFixture(t)

	for _, value := range []string{"not a date", "1900-01-01", "2200-12-31", "2001-13-01"} {
		_, err := f.dims.Time.NormalizeDate(value)
		var dateErr *DateParseError
		assert.True(t, errors.As(err, &dateErr), value)
	}

	_, err := f.dims.Time.Normalize(models.RawRecord{})
	var dateErr *DateParseError
	assert.True(t, errors.As(err, &dateErr))

	assert.Zero(t, f.dims.Time.Len())
}

func TestTimeDimensionAnnualMember(t *testing.T) {
	f := newFixture(t)

	m, err := f.dims.Time.NormalizeYear(2000)
	require.NoError(t, err)
	assert.Equal(t, models.NaturalKey{"2000", "0"}, m.NaturalKey)

	annual := f.dims.Time.Commit(m)
	quarterly, err := f.dims.Time.IngestDate("2000-01-01")
	require.NoError(t, err)
	assert.NotEqual(t, annual, quarterly)

	_, err = f.dims.Time.NormalizeYear(1800)
	assert.Error(t, err)
}

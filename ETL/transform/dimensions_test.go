package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

func TestCountryDimensionConformsCodesAndNames(t *testing.T) {
	f := newFixture(t)

	records := []models.RawRecord{
		{"country": "AF"},
		{"country_code": "afg"},
		{"country": "Afghanistan"},
		{"country_name": "Islamic Republic of Afghanistan"},
		{"country": "Kenya"},
		{"country_code": "KE", "country_name": "Kenia"},
	}

	var got []int
	for _, rec := range records {
		key, err := f.dims.Country.Ingest(rec)
		require.NoError(t, err)
		got = append(got, key)
	}

	assert.Equal(t, []int{1, 1, 1, 1, 2, 2}, got)
	rows := f.dims.Country.Rows()
	assert.Equal(t, []string{"AF", "KE"}, attrs(rows, "iso_code"))
	assert.Equal(t, []string{"Afghanistan", "Kenya"}, attrs(rows, "country_name"))
	assert.Empty(t, f.log.Warnings())
}

func TestCountryDimensionUnknownCode(t *testing.T) {
	f := newFixture(t)

	key, err := f.dims.Country.Ingest(models.RawRecord{"country_code": "QQ", "country_name": "Quux Islands"})
	require.NoError(t, err)
	assert.Equal(t, 1, key)

	_, err = f.dims.Country.Ingest(models.RawRecord{"country_code": "QZ"})
	var normErr *NormalizationError
	require.True(t, errors.As(err, &normErr))
	assert.Equal(t, models.DimCountry, normErr.Dimension)

	_, err = f.dims.Country.Ingest(models.RawRecord{"country": "Atlantis Republic"})
	assert.Error(t, err)

	_, err = f.dims.Country.Ingest(models.RawRecord{})
	assert.Error(t, err)

	assert.Equal(t, 1, f.dims.Country.Len())
}

func TestDimensionConflictKeepsFirstAndWarns(t *testing.T) {
	f := newFixture(t)

	first, err := f.dims.Organization.Ingest(models.RawRecord{
		"reporting_org": "Gates Foundation", "reporting_org_type": "60",
	})
	require.NoError(t, err)
	second, err := f.dims.Organization.Ingest(models.RawRecord{
		"reporting_org": "GATES  FOUNDATION", "reporting_org_type": "60", "reporting_org_role": "4",
	})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	rows := f.dims.Organization.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Gates Foundation", rows[0].Attributes["org_name"])
	assert.Equal(t, RoleFunder, rows[0].Attributes["role"])

	warnings := f.log.Warnings()
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.Equal(t, models.DimOrganization, w.Table)
		assert.Equal(t, "gates foundation|60", w.Key)
	}
	assert.Equal(t, 2, f.log.Stats()[models.DimOrganization].Warned)
}

func TestOrganizationTypeIsPartOfNaturalKey(t *testing.T) {
	f := newFixture(t)

	a, err := f.dims.Organization.Ingest(models.RawRecord{"reporting_org": "UNICEF", "reporting_org_type": "40"})
	require.NoError(t, err)
	b, err := f.dims.Organization.Ingest(models.RawRecord{"reporting_org": "UNICEF"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	unknown, err := f.dims.Organization.Ingest(models.RawRecord{})
	require.NoError(t, err)
	rows := f.dims.Organization.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, unknown, rows[2].Key)
	assert.Equal(t, map[string]string{"org_name": "Unknown", "org_type": "UNKNOWN", "role": RoleUnknown}, rows[2].Attributes)
}

func TestSectorDimension(t *testing.T) {
	f := newFixture(t)

	_, err := f.dims.Sector.Ingest(models.RawRecord{"sector_code": "12262"})
	require.NoError(t, err)
	_, err = f.dims.Sector.Ingest(models.RawRecord{"sector_code": "15230", "sector_name": "Participation in peace operations"})
	require.NoError(t, err)
	_, err = f.dims.Sector.Ingest(models.RawRecord{"sector_code": "88000"})
	require.NoError(t, err)
	_, err = f.dims.Sector.Ingest(models.RawRecord{})
	require.NoError(t, err)

	rows := f.dims.Sector.Rows()
	assert.Equal(t, []string{"12262", "15230", "88000", "UNKNOWN"}, attrs(rows, "sector_code"))
	assert.Equal(t, []string{"Malaria control", "Participation in peace operations", "88000", "Unknown"}, attrs(rows, "sector_name"))
	assert.Equal(t, []string{"Health", "Conflict, Peace and Security", "Uncategorized", "Uncategorized"}, attrs(rows, "category"))
}

func TestCodedDimensions(t *testing.T) {
	f := newFixture(t)

	k1, err := f.dims.TransactionType.Ingest(models.RawRecord{"transaction_type_code": "D"})
	require.NoError(t, err)
	k2, err := f.dims.TransactionType.Ingest(models.RawRecord{"transaction_type_code": "3"})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	_, err = f.dims.TransactionType.Ingest(models.RawRecord{"transaction_type_code": "42"})
	var normErr *NormalizationError
	require.True(t, errors.As(err, &normErr))
	assert.Equal(t, models.DimTransactionType, normErr.Dimension)

	_, err = f.dims.TransactionType.Ingest(models.RawRecord{"transaction_type_code": "42", "transaction_type_name": "Custom flow"})
	require.NoError(t, err)

	rows := f.dims.TransactionType.Rows()
	assert.Equal(t, []string{"3", "42"}, attrs(rows, "code"))
	assert.Equal(t, []string{"Disbursement", "Custom flow"}, attrs(rows, "name"))

	_, err = f.dims.AidType.Ingest(models.RawRecord{"aid_type_code": "c01"})
	require.NoError(t, err)
	_, err = f.dims.AidType.Ingest(models.RawRecord{})
	require.NoError(t, err)
	assert.Equal(t, []string{"C01", "UNKNOWN"}, attrs(f.dims.AidType.Rows(), "aid_type_code"))
}

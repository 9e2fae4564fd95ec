package integrity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

func row(key int, natural ...string) models.DimensionRow {
	return models.DimensionRow{Key: key, NaturalKey: natural}
}

func validWarehouse() *models.Warehouse {
	w := &models.Warehouse{
		Times:            []models.TimeDimension{{ID: 1, Year: 2000, Quarter: 1}, {ID: 2, Year: 2000, Quarter: 0}},
		Countries:        []models.CountryDimension{{ID: 1, ISOCode: "AF", Name: "Afghanistan"}},
		Sectors:          []models.SectorDimension{{ID: 1, Code: "UNKNOWN"}},
		Organizations:    []models.OrganizationDimension{{ID: 1, Name: "Unknown", Type: "UNKNOWN"}},
		AidTypes:         []models.AidTypeDimension{{ID: 1, Code: "UNKNOWN"}},
		TransactionTypes: []models.TransactionTypeDimension{{ID: 1, Code: "UNKNOWN"}},
		AidTransactions: []models.AidTransactionFact{{
			IATIID: "T1", ValueUSD: 100, CountryID: 1, TimeID: 1, SectorID: 1, ReportingOrgID: 1, AidTypeID: 1, TransactionTypeID: 1,
		}},
		CountryContexts: []models.CountryContextFact{{CountryID: 1, TimeID: 2}},
		DimensionRows: map[string][]models.DimensionRow{
			models.DimTime:            {row(1, "2000", "1"), row(2, "2000", "0")},
			models.DimCountry:         {row(1, "AF")},
			models.DimSector:          {row(1, "UNKNOWN")},
			models.DimOrganization:    {row(1, "unknown", "UNKNOWN")},
			models.DimAidType:         {row(1, "UNKNOWN")},
			models.DimTransactionType: {row(1, "UNKNOWN")},
		},
	}
	return w
}

func violations(t *testing.T, err error) []Violation {
	t.Helper()
	var integrityErr *IntegrityError
	require.True(t, errors.As(err, &integrityErr), "ожидалась IntegrityError, получено %v", err)
	return integrityErr.Violations
}

func TestVerifyAcceptsConsistentWarehouse(t *testing.T) {
	assert.NoError(t, Verify(validWarehouse()))
	assert.NoError(t, Verify(&models.Warehouse{}))
}

func TestVerifyReportsOrphanKeys(t *testing.T) {
	w := validWarehouse()
	w.AidTransactions = append(w.AidTransactions, models.AidTransactionFact{
		IATIID: "T2", CountryID: 7, TimeID: 1, SectorID: 1, ReportingOrgID: 1, AidTypeID: 1, TransactionTypeID: 1,
	}, models.AidTransactionFact{
		IATIID: "T3", CountryID: 7, TimeID: 1, SectorID: 1, ReportingOrgID: 1, AidTypeID: 1, TransactionTypeID: 1,
	})
	w.CountryContexts[0].TimeID = 9

	got := violations(t, Verify(w))
	assert.Equal(t, []Violation{
		{Kind: KindOrphanKey, Table: models.FactAidTransaction, Column: "country_id", Key: "7", Count: 2},
		{Kind: KindOrphanKey, Table: models.FactCountryContext, Column: "time_id", Key: "9", Count: 1},
	}, got)
}

func TestVerifyReportsDuplicateKeys(t *testing.T) {
	w := validWarehouse()
	w.DimensionRows[models.DimCountry] = append(w.DimensionRows[models.DimCountry], row(2, "AF"))
	w.Countries = append(w.Countries, models.CountryDimension{ID: 2, ISOCode: "AF"})
	w.DimensionRows[models.DimSector] = append(w.DimensionRows[models.DimSector], row(1, "12220"))
	w.AidTransactions = append(w.AidTransactions, w.AidTransactions[0])
	w.CountryContexts = append(w.CountryContexts, w.CountryContexts[0])

	got := violations(t, Verify(w))
	assert.Equal(t, []Violation{
		{Kind: KindDuplicateNatural, Table: models.DimCountry, Key: "AF", Count: 2},
		{Kind: KindDuplicateSurrogate, Table: models.DimSector, Key: "1", Count: 2},
		{Kind: KindDuplicateGrain, Table: models.FactAidTransaction, Column: "iati_id", Key: "T1", Count: 2},
		{Kind: KindDuplicateGrain, Table: models.FactCountryContext, Column: "country_id|time_id", Key: "1|2", Count: 2},
	}, got)
}

func TestVerifyReportsQuarterlyContextRows(t *testing.T) {
	w := validWarehouse()
	w.CountryContexts[0].TimeID = 1

	got := violations(t, Verify(w))
	require.Len(t, got, 1)
	assert.Equal(t, KindInvalidGrain, got[0].Kind)
	assert.Contains(t, (&IntegrityError{Violations: got}).Error(), "fact_country_context.time_id=1")
}

func TestVerifyKeepsOrganizationsWithSeparatorInName(t *testing.T) {
	w := validWarehouse()
	w.DimensionRows[models.DimOrganization] = append(w.DimensionRows[models.DimOrganization],
		row(2, "alpha|10", "21"), row(3, "alpha", "10|21"))
	w.Organizations = append(w.Organizations,
		models.OrganizationDimension{ID: 2, Name: "alpha|10", Type: "21"},
		models.OrganizationDimension{ID: 3, Name: "alpha", Type: "10|21"})

	assert.NoError(t, Verify(w))
}

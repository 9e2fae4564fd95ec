package load

import (
	"github.com/LilVoxy/aid_analytics/ETL/models"
)

func ptr(v float64) *float64 {
	return &v
}

func sampleWarehouse() *models.Warehouse {
	return &models.Warehouse{
		Times:            []models.TimeDimension{{ID: 1, Year: 2000, Quarter: 1}, {ID: 2, Year: 2000, Quarter: 0}},
		Countries:        []models.CountryDimension{{ID: 1, ISOCode: "AF", Name: "Afghanistan"}},
		Sectors:          []models.SectorDimension{{ID: 1, Code: "111", Name: "Education, Level Unspecified", Category: "Education"}},
		Organizations:    []models.OrganizationDimension{{ID: 1, Name: "UNICEF", Type: "40", Role: "funder"}},
		AidTypes:         []models.AidTypeDimension{{ID: 1, Code: "C01", Name: "Project-type interventions"}},
		TransactionTypes: []models.TransactionTypeDimension{{ID: 1, Code: "3", Name: "Disbursement"}},
		AidTransactions: []models.AidTransactionFact{
			{IATIID: "T1", ValueUSD: 1500.5, Humanitarian: true, CountryID: 1, TimeID: 1, SectorID: 1, ReportingOrgID: 1, AidTypeID: 1, TransactionTypeID: 1},
			{IATIID: "T2", ValueUSD: -20, CountryID: 1, TimeID: 1, SectorID: 1, ReportingOrgID: 1, AidTypeID: 1, TransactionTypeID: 1},
		},
		CountryContexts: []models.CountryContextFact{
			{CountryID: 1, TimeID: 2, Population: ptr(38000000), Indicators: map[string]*float64{"life_expectancy": ptr(64.5)}},
		},
		ExtraIndicators: []string{"life_expectancy"},
		Rejections: []models.Rejection{
			{Table: models.FactAidTransaction, RecordID: "T3", Dimension: models.DimTime, Reason: `дата "2000-13-01" не распознана`},
		},
		Warnings: []models.Warning{
			{Table: models.DimCountry, Key: "AF", Reason: "конфликт атрибута country_name"},
		},
	}
}

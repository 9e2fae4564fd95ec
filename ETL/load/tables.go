package load

import (
	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// ColumnKind определяет тип столбца при записи
type ColumnKind int

const (
	KindInt ColumnKind = iota
	KindText
	KindFloat
	KindNullableFloat
	KindBool
)

// Column описывает столбец выходной таблицы
type Column struct {
	Name string
	Kind ColumnKind
}

// Table - выходная таблица: столбцы в порядке контракта и строки значений
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	Rows       [][]any
}

// Tables возвращает все таблицы хранилища в порядке записи: сначала измерения, затем факты
func Tables(w *models.Warehouse) []Table {
	tables := []Table{
		timeTable(w.Times),
		countryTable(w.Countries),
		sectorTable(w.Sectors),
		organizationTable(w.Organizations),
		aidTypeTable(w.AidTypes),
		transactionTypeTable(w.TransactionTypes),
		aidTransactionTable(w.AidTransactions),
		countryContextTable(w.CountryContexts, w.ExtraIndicators),
	}
	return tables
}

func timeTable(rows []models.TimeDimension) Table {
	t := Table{
		Name:       models.DimTime,
		Columns:    []Column{{"time_id", KindInt}, {"year", KindInt}, {"quarter", KindInt}},
		PrimaryKey: []string{"time_id"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ID, r.Year, r.Quarter})
	}
	return t
}

func countryTable(rows []models.CountryDimension) Table {
	t := Table{
		Name:       models.DimCountry,
		Columns:    []Column{{"country_id", KindInt}, {"iso_code", KindText}, {"country_name", KindText}},
		PrimaryKey: []string{"country_id"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ID, r.ISOCode, r.Name})
	}
	return t
}

func sectorTable(rows []models.SectorDimension) Table {
	t := Table{
		Name:       models.DimSector,
		Columns:    []Column{{"sector_id", KindInt}, {"sector_code", KindText}, {"sector_name", KindText}, {"category", KindText}},
		PrimaryKey: []string{"sector_id"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ID, r.Code, r.Name, r.Category})
	}
	return t
}

func organizationTable(rows []models.OrganizationDimension) Table {
	t := Table{
		Name:       models.DimOrganization,
		Columns:    []Column{{"org_id", KindInt}, {"org_name", KindText}, {"org_type", KindText}, {"role", KindText}},
		PrimaryKey: []string{"org_id"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ID, r.Name, r.Type, r.Role})
	}
	return t
}

func aidTypeTable(rows []models.AidTypeDimension) Table {
	t := Table{
		Name:       models.DimAidType,
		Columns:    []Column{{"aid_type_id", KindInt}, {"aid_type_code", KindText}, {"aid_type_name", KindText}},
		PrimaryKey: []string{"aid_type_id"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ID, r.Code, r.Name})
	}
	return t
}

func transactionTypeTable(rows []models.TransactionTypeDimension) Table {
	t := Table{
		Name:       models.DimTransactionType,
		Columns:    []Column{{"transaction_type_id", KindInt}, {"code", KindText}, {"name", KindText}},
		PrimaryKey: []string{"transaction_type_id"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ID, r.Code, r.Name})
	}
	return t
}

func aidTransactionTable(rows []models.AidTransactionFact) Table {
	t := Table{
		Name: models.FactAidTransaction,
		Columns: []Column{
			{"iati_id", KindText},
			{"value_usd", KindFloat},
			{"humanitarian", KindBool},
			{"country_id", KindInt},
			{"time_id", KindInt},
			{"sector_id", KindInt},
			{"reporting_org_id", KindInt},
			{"aid_type_id", KindInt},
			{"transaction_type_id", KindInt},
		},
		PrimaryKey: []string{"iati_id"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.IATIID, r.ValueUSD, r.Humanitarian,
			r.CountryID, r.TimeID, r.SectorID, r.ReportingOrgID, r.AidTypeID, r.TransactionTypeID,
		})
	}
	return t
}

func countryContextTable(rows []models.CountryContextFact, extra []string) Table {
	t := Table{
		Name: models.FactCountryContext,
		Columns: []Column{
			{"country_id", KindInt},
			{"time_id", KindInt},
			{"population", KindNullableFloat},
			{"gdp_per_capita", KindNullableFloat},
		},
		PrimaryKey: []string{"country_id", "time_id"},
	}
	for _, name := range extra {
		t.Columns = append(t.Columns, Column{name, KindNullableFloat})
	}
	for _, r := range rows {
		row := []any{r.CountryID, r.TimeID, r.Population, r.GDPPerCapita}
		for _, name := range extra {
			row = append(row, r.Indicators[name])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// rejectionTable и warningTable описывают журналы построения
func rejectionTable(rows []models.Rejection) Table {
	t := Table{
		Name:    "rejections",
		Columns: []Column{{"table_name", KindText}, {"record_id", KindText}, {"dimension", KindText}, {"reason", KindText}},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Table, r.RecordID, r.Dimension, r.Reason})
	}
	return t
}

func warningTable(rows []models.Warning) Table {
	t := Table{
		Name:    "warnings",
		Columns: []Column{{"table_name", KindText}, {"natural_key", KindText}, {"reason", KindText}},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Table, r.Key, r.Reason})
	}
	return t
}

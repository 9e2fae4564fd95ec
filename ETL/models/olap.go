package models

import (
	"slices"
	"strconv"
	"strings"
)

// Названия измерений хранилища
const (
	DimTime            = "dim_time"
	DimCountry         = "dim_country"
	DimSector          = "dim_sector"
	DimOrganization    = "dim_organization"
	DimAidType         = "dim_aid_type"
	DimTransactionType = "dim_transaction_type"
)

// Названия таблиц фактов
const (
	FactAidTransaction = "fact_aid_transaction"
	FactCountryContext = "fact_country_context"
)

// Dimensions перечисляет измерения в порядке записи
var Dimensions = []string{DimTime, DimCountry, DimSector, DimOrganization, DimAidType, DimTransactionType}

// AnnualQuarter обозначает годовую гранулярность в измерении времени
const AnnualQuarter = 0

// NaturalKey представляет естественный ключ измерения (кортеж строк)
type NaturalKey []string

// String возвращает ключ в читаемом виде для журналов и отчетов
func (k NaturalKey) String() string {
	return strings.Join(k, "|")
}

// ID возвращает однозначное представление ключа для использования в картах.
// Каждый компонент заключается в кавычки, поэтому разделитель внутри компонента не склеивает разные ключи.
func (k NaturalKey) ID() string {
	var b strings.Builder
	for i, part := range k {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.Quote(part))
	}
	return b.String()
}

// Compare сравнивает ключи покомпонентно
func (k NaturalKey) Compare(other NaturalKey) int {
	return slices.Compare(k, other)
}

// DimensionRow представляет строку измерения в обобщенном виде
type DimensionRow struct {
	Key        int               `json:"key"`
	NaturalKey NaturalKey        `json:"natural_key"`
	Attributes map[string]string `json:"attributes"`
}

// TimeDimension представляет строку dim_time
type TimeDimension struct {
	ID      int `json:"time_id"`
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// CountryDimension представляет строку dim_country
type CountryDimension struct {
	ID      int    `json:"country_id"`
	ISOCode string `json:"iso_code"`
	Name    string `json:"country_name"`
}

// SectorDimension представляет строку dim_sector
type SectorDimension struct {
	ID       int    `json:"sector_id"`
	Code     string `json:"sector_code"`
	Name     string `json:"sector_name"`
	Category string `json:"category"`
}

// OrganizationDimension представляет строку dim_organization
type OrganizationDimension struct {
	ID   int    `json:"org_id"`
	Name string `json:"org_name"`
	Type string `json:"org_type"`
	Role string `json:"role"`
}

// AidTypeDimension представляет строку dim_aid_type
type AidTypeDimension struct {
	ID   int    `json:"aid_type_id"`
	Code string `json:"aid_type_code"`
	Name string `json:"aid_type_name"`
}

// TransactionTypeDimension представляет строку dim_transaction_type
type TransactionTypeDimension struct {
	ID   int    `json:"transaction_type_id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// AidTransactionFact представляет строку fact_aid_transaction (одна строка на iati_id)
type AidTransactionFact struct {
	IATIID            string  `json:"iati_id"`
	ValueUSD          float64 `json:"value_usd"`
	Humanitarian      bool    `json:"humanitarian"`
	CountryID         int     `json:"country_id"`
	TimeID            int     `json:"time_id"`
	SectorID          int     `json:"sector_id"`
	ReportingOrgID    int     `json:"reporting_org_id"`
	AidTypeID         int     `json:"aid_type_id"`
	TransactionTypeID int     `json:"transaction_type_id"`
}

// CountryContextFact представляет строку fact_country_context (одна строка на страну и год)
type CountryContextFact struct {
	CountryID    int                 `json:"country_id"`
	TimeID       int                 `json:"time_id"`
	Population   *float64            `json:"population"`
	GDPPerCapita *float64            `json:"gdp_per_capita"`
	Indicators   map[string]*float64 `json:"indicators,omitempty"`
}

package transform

import (
	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/normalize"
)

// Dimensions объединяет процессоры всех согласованных измерений
type Dimensions struct {
	Time            *TimeDimensionProcessor
	Country         *CountryDimensionProcessor
	Sector          *SectorDimensionProcessor
	Organization    *OrganizationDimensionProcessor
	AidType         *CodedDimensionProcessor
	TransactionType *CodedDimensionProcessor
}

// NewDimensions создает процессоры измерений поверх общего Resolver
func NewDimensions(resolver *keys.Resolver, lookups *normalize.Lookups, log *BuildLog, minYear, maxYear int) *Dimensions {
	return &Dimensions{
		Time:            NewTimeDimensionProcessor(resolver, log, minYear, maxYear),
		Country:         NewCountryDimensionProcessor(resolver, log, lookups),
		Sector:          NewSectorDimensionProcessor(resolver, log, lookups),
		Organization:    NewOrganizationDimensionProcessor(resolver, log, lookups),
		AidType:         NewAidTypeDimensionProcessor(resolver, log, lookups),
		TransactionType: NewTransactionTypeDimensionProcessor(resolver, log, lookups),
	}
}

// Tables возвращает таблицы измерений в порядке записи
func (d *Dimensions) Tables() []*DimensionTable {
	return []*DimensionTable{
		d.Time.DimensionTable,
		d.Country.DimensionTable,
		d.Sector.DimensionTable,
		d.Organization.DimensionTable,
		d.AidType.DimensionTable,
		d.TransactionType.DimensionTable,
	}
}

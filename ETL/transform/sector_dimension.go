package transform

import (
	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/normalize"
)

// SectorDimensionProcessor отвечает за измерение секторов.
// Категория выводится из префикса кода; неизвестный префикс дает категорию Uncategorized.
type SectorDimensionProcessor struct {
	*DimensionTable
	lookups *normalize.Lookups
}

// NewSectorDimensionProcessor создает новый экземпляр SectorDimensionProcessor
func NewSectorDimensionProcessor(resolver *keys.Resolver, log *BuildLog, lookups *normalize.Lookups) *SectorDimensionProcessor {
	return &SectorDimensionProcessor{
		DimensionTable: NewDimensionTable(models.DimSector, []string{"sector_code", "sector_name", "category"}, resolver, log),
		lookups:        lookups,
	}
}

// Normalize строит член сектора; отсутствующий код дает зарезервированный член UNKNOWN
func (p *SectorDimensionProcessor) Normalize(raw models.RawRecord) (Member, error) {
	value, ok := raw.String(models.FieldSectorCode)
	if !ok {
		return sectorMember(unknownCode, unknownName, normalize.UncategorizedSector), nil
	}

	code := normalize.Code(value)
	name, ok := p.lookups.SectorName(code)
	if !ok {
		if supplied, has := raw.String(models.FieldSectorName); has {
			name = normalize.CleanName(supplied)
		} else {
			name = code
		}
	}
	return sectorMember(code, name, p.lookups.SectorCategory(code)), nil
}

// Ingest нормализует запись и фиксирует сектор
func (p *SectorDimensionProcessor) Ingest(raw models.RawRecord) (int, error) {
	return Ingest(p, raw)
}

func sectorMember(code, name, category string) Member {
	return Member{
		NaturalKey: models.NaturalKey{code},
		Attributes: map[string]string{"sector_code": code, "sector_name": name, "category": category},
	}
}

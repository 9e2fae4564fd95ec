package transform

import (
	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/normalize"
)

// codeLookup возвращает канонический код и название из справочника
type codeLookup func(code string) (canonical, name string, ok bool)

// CodedDimensionProcessor обслуживает измерения вида (код, название): типы помощи и типы транзакций
type CodedDimensionProcessor struct {
	*DimensionTable
	codeField string
	nameField string
	codeAttr  string
	nameAttr  string
	lookup    codeLookup
}

// NewAidTypeDimensionProcessor создает процессор измерения типов помощи
func NewAidTypeDimensionProcessor(resolver *keys.Resolver, log *BuildLog, lookups *normalize.Lookups) *CodedDimensionProcessor {
	return &CodedDimensionProcessor{
		DimensionTable: NewDimensionTable(models.DimAidType, []string{"aid_type_code", "aid_type_name"}, resolver, log),
		codeField:      models.FieldAidTypeCode,
		nameField:      models.FieldAidTypeName,
		codeAttr:       "aid_type_code",
		nameAttr:       "aid_type_name",
		lookup:         lookups.AidType,
	}
}

// NewTransactionTypeDimensionProcessor создает процессор измерения типов транзакций
func NewTransactionTypeDimensionProcessor(resolver *keys.Resolver, log *BuildLog, lookups *normalize.Lookups) *CodedDimensionProcessor {
	return &CodedDimensionProcessor{
		DimensionTable: NewDimensionTable(models.DimTransactionType, []string{"code", "name"}, resolver, log),
		codeField:      models.FieldTransactionTypeCode,
		nameField:      models.FieldTransactionTypeName,
		codeAttr:       "code",
		nameAttr:       "name",
		lookup:         lookups.TransactionType,
	}
}

// Normalize сопоставляет код со справочником; неизвестный код без названия - ошибка нормализации
func (p *CodedDimensionProcessor) Normalize(raw models.RawRecord) (Member, error) {
	value, ok := raw.String(p.codeField)
	if !ok {
		return p.member(unknownCode, unknownName), nil
	}

	code, name, known := p.lookup(value)
	if known {
		return p.member(code, name), nil
	}

	if supplied, has := raw.String(p.nameField); has {
		return p.member(code, normalize.CleanName(supplied)), nil
	}
	return Member{}, &NormalizationError{
		Dimension: p.Name(),
		Value:     value,
		Reason:    "неизвестный код без названия",
	}
}

// Ingest нормализует запись и фиксирует член измерения
func (p *CodedDimensionProcessor) Ingest(raw models.RawRecord) (int, error) {
	return Ingest(p, raw)
}

func (p *CodedDimensionProcessor) member(code, name string) Member {
	return Member{
		NaturalKey: models.NaturalKey{code},
		Attributes: map[string]string{p.codeAttr: code, p.nameAttr: name},
	}
}

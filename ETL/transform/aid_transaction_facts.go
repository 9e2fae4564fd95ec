package transform

import (
	"fmt"
	"strings"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

var (
	truthy = map[string]bool{"1": true, "true": true, "yes": true, "y": true, "t": true}
	falsy  = map[string]bool{"0": true, "false": true, "no": true, "n": true, "f": true}
)

// AidTransactionFactsProcessor собирает строки fact_aid_transaction.
// Повтор iati_id отклоняется: побеждает первая запись в порядке источника.
type AidTransactionFactsProcessor struct {
	dims    *Dimensions
	log     *BuildLog
	signed  map[string]bool
	emitted map[string]bool
	facts   []models.AidTransactionFact
	seen    int
}

// NewAidTransactionFactsProcessor создает новый экземпляр AidTransactionFactsProcessor
func NewAidTransactionFactsProcessor(dims *Dimensions, log *BuildLog, signedTransactionTypes []string) *AidTransactionFactsProcessor {
	signed := make(map[string]bool, len(signedTransactionTypes))
	for _, code := range signedTransactionTypes {
		signed[strings.ToUpper(strings.TrimSpace(code))] = true
	}
	return &AidTransactionFactsProcessor{
		dims:    dims,
		log:     log,
		signed:  signed,
		emitted: make(map[string]bool),
	}
}

// Assemble проверяет запись, разрешает все измерения и добавляет факт.
// Отклоненная запись попадает в журнал и не создает строк ни в одной таблице.
func (p *AidTransactionFactsProcessor) Assemble(raw models.RawRecord) (models.AidTransactionFact, error) {
	p.seen++
	recordID, _ := raw.String(models.FieldIATIID)
	if recordID == "" {
		recordID = fmt.Sprintf("#%d", p.seen)
	}

	fact, err := p.assemble(raw)
	if err != nil {
		p.log.Reject(models.FactAidTransaction, recordID, err)
		return models.AidTransactionFact{}, err
	}

	p.emitted[fact.IATIID] = true
	p.facts = append(p.facts, fact)
	p.log.Ingested(models.FactAidTransaction)
	return fact, nil
}

func (p *AidTransactionFactsProcessor) assemble(raw models.RawRecord) (models.AidTransactionFact, error) {
	id, ok := raw.String(models.FieldIATIID)
	if !ok {
		return models.AidTransactionFact{}, &ValidationError{Field: models.FieldIATIID, Reason: "не указано"}
	}
	if p.emitted[id] {
		return models.AidTransactionFact{}, &DuplicateError{Table: models.FactAidTransaction, Key: id}
	}

	value, present, err := raw.Float(models.FieldValueUSD)
	if err != nil {
		return models.AidTransactionFact{}, &ValidationError{Field: models.FieldValueUSD, Reason: err.Error()}
	}
	if !present {
		return models.AidTransactionFact{}, &ValidationError{Field: models.FieldValueUSD, Reason: "не указано"}
	}

	humanitarian, err := parseFlag(raw)
	if err != nil {
		return models.AidTransactionFact{}, err
	}

	// Сначала нормализуем все измерения, чтобы отклоненная запись не оставила строк в таблицах
	timeM, err := p.dims.Time.Normalize(raw)
	if err != nil {
		return models.AidTransactionFact{}, &DimensionError{Dimension: models.DimTime, Err: err}
	}
	members := make([]Member, 0, 5)
	builders := []DimensionBuilder{p.dims.Country, p.dims.Sector, p.dims.Organization, p.dims.AidType, p.dims.TransactionType}
	for _, b := range builders {
		m, err := b.Normalize(raw)
		if err != nil {
			return models.AidTransactionFact{}, &DimensionError{Dimension: b.Name(), Err: err}
		}
		members = append(members, m)
	}

	txType := members[4].NaturalKey[0]
	if value < 0 && !p.signed[txType] {
		return models.AidTransactionFact{}, &ValidationError{
			Field:  models.FieldValueUSD,
			Reason: fmt.Sprintf("отрицательная сумма недопустима для типа транзакции %s", txType),
		}
	}

	return models.AidTransactionFact{
		IATIID:            id,
		ValueUSD:          value,
		Humanitarian:      humanitarian,
		TimeID:            p.dims.Time.Commit(timeM),
		CountryID:         p.dims.Country.Commit(members[0]),
		SectorID:          p.dims.Sector.Commit(members[1]),
		ReportingOrgID:    p.dims.Organization.Commit(members[2]),
		AidTypeID:         p.dims.AidType.Commit(members[3]),
		TransactionTypeID: p.dims.TransactionType.Commit(members[4]),
	}, nil
}

// Facts возвращает принятые факты в порядке источника
func (p *AidTransactionFactsProcessor) Facts() []models.AidTransactionFact {
	return append([]models.AidTransactionFact(nil), p.facts...)
}

func parseFlag(raw models.RawRecord) (bool, error) {
	v, ok := raw.String(models.FieldHumanitarian)
	if !ok {
		return false, nil
	}
	s := strings.ToLower(v)
	switch {
	case truthy[s]:
		return true, nil
	case falsy[s]:
		return false, nil
	default:
		return false, &ValidationError{Field: models.FieldHumanitarian, Reason: fmt.Sprintf("значение %q не является признаком", v)}
	}
}

package transform

import (
	"strconv"
	"time"

	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// Поддерживаемые форматы дат источников
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02.01.2006",
	"2006-01",
}

// TimeDimensionProcessor отвечает за измерение времени (год, квартал).
// Квартал вычисляется из даты и никогда не берется из источника.
type TimeDimensionProcessor struct {
	*DimensionTable
	minYear int
	maxYear int
}

// NewTimeDimensionProcessor создает новый экземпляр TimeDimensionProcessor
func NewTimeDimensionProcessor(resolver *keys.Resolver, log *BuildLog, minYear, maxYear int) *TimeDimensionProcessor {
	return &TimeDimensionProcessor{
		DimensionTable: NewDimensionTable(models.DimTime, []string{"year", "quarter"}, resolver, log),
		minYear:        minYear,
		maxYear:        maxYear,
	}
}

// Quarter возвращает номер квартала для месяца
func Quarter(month time.Month) int {
	return 1 + (int(month)-1)/3
}

// ParseDate разбирает дату в одном из поддерживаемых форматов
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DateParseError{Value: value, Reason: "неизвестный формат даты"}
}

// Normalize строит член измерения из даты транзакции
func (p *TimeDimensionProcessor) Normalize(raw models.RawRecord) (Member, error) {
	value, ok := raw.String(models.FieldTransactionDate, models.FieldDate)
	if !ok {
		return Member{}, &DateParseError{Reason: "дата не указана"}
	}
	return p.NormalizeDate(value)
}

// NormalizeDate строит член (год, квартал) из строки даты
func (p *TimeDimensionProcessor) NormalizeDate(value string) (Member, error) {
	t, err := ParseDate(value)
	if err != nil {
		return Member{}, err
	}
	if err := p.checkYear(t.Year(), value); err != nil {
		return Member{}, err
	}
	return timeMember(t.Year(), Quarter(t.Month())), nil
}

// NormalizeYear строит годовой член (год, 0)
func (p *TimeDimensionProcessor) NormalizeYear(year int) (Member, error) {
	if err := p.checkYear(year, strconv.Itoa(year)); err != nil {
		return Member{}, err
	}
	return timeMember(year, models.AnnualQuarter), nil
}

// IngestDate фиксирует член измерения для даты и возвращает его ключ
func (p *TimeDimensionProcessor) IngestDate(value string) (int, error) {
	m, err := p.NormalizeDate(value)
	if err != nil {
		return 0, err
	}
	return p.Commit(m), nil
}

func (p *TimeDimensionProcessor) checkYear(year int, value string) error {
	if year < p.minYear || year > p.maxYear {
		return &DateParseError{Value: value, Reason: "год вне допустимого диапазона"}
	}
	return nil
}

func timeMember(year, quarter int) Member {
	y, q := strconv.Itoa(year), strconv.Itoa(quarter)
	return Member{
		NaturalKey: models.NaturalKey{y, q},
		Attributes: map[string]string{"year": y, "quarter": q},
	}
}

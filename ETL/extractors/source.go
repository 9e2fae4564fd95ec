package extractors

import (
	"context"
	"fmt"
	"io"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// Iterator выдает сырые записи по одной; после последней записи Next возвращает io.EOF
type Iterator interface {
	Next() (models.RawRecord, error)
	Close() error
}

// Source - ленивая перезапускаемая последовательность сырых записей: каждый Open начинает чтение заново
type Source interface {
	Name() string
	Open(ctx context.Context) (Iterator, error)
}

// MalformedRecordError - отдельная запись источника не разбирается; чтение можно продолжать
type MalformedRecordError struct {
	Source string
	Line   int
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s, строка %d: %v", e.Source, e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// SliceSource - источник записей в памяти
type SliceSource struct {
	name    string
	records []models.RawRecord
}

// NewSliceSource создает источник из готовых записей
func NewSliceSource(name string, records []models.RawRecord) *SliceSource {
	return &SliceSource{name: name, records: records}
}

// Name возвращает имя источника
func (s *SliceSource) Name() string {
	return s.name
}

// Open начинает новый проход по записям
func (s *SliceSource) Open(context.Context) (Iterator, error) {
	return &sliceIterator{records: s.records}, nil
}

type sliceIterator struct {
	records []models.RawRecord
	pos     int
}

func (it *sliceIterator) Next() (models.RawRecord, error) {
	if it.pos >= len(it.records) {
		return nil, io.EOF
	}
	rec := it.records[it.pos]
	it.pos++
	return rec, nil
}

func (it *sliceIterator) Close() error {
	return nil
}

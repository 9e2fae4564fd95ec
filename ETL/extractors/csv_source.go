package extractors

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// CSVSource читает записи из файла с разделителями; первая строка содержит имена полей
type CSVSource struct {
	name      string
	path      string
	delimiter rune
}

// NewCSVSource создает источник из CSV-файла
func NewCSVSource(name, path string, delimiter rune) *CSVSource {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVSource{name: name, path: path, delimiter: delimiter}
}

// Name возвращает имя источника
func (s *CSVSource) Name() string {
	return s.name
}

// Open открывает файл и читает заголовок
func (s *CSVSource) Open(ctx context.Context) (Iterator, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия источника %s: %w", s.name, err)
	}

	reader := csv.NewReader(file)
	reader.Comma = s.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		file.Close()
		if errors.Is(err, io.EOF) {
			return &csvIterator{file: file, reader: reader, done: true}, nil
		}
		return nil, fmt.Errorf("ошибка чтения заголовка источника %s: %w", s.name, err)
	}

	fields := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		fields[i] = strings.ToLower(strings.TrimSpace(h))
	}

	return &csvIterator{source: s.name, file: file, reader: reader, header: fields}, nil
}

type csvIterator struct {
	source string
	file   *os.File
	reader *csv.Reader
	header []string
	done   bool
}

func (it *csvIterator) Next() (models.RawRecord, error) {
	if it.done {
		return nil, io.EOF
	}

	row, err := it.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			it.done = true
			return nil, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &MalformedRecordError{Source: it.source, Line: parseErr.Line, Err: err}
		}
		return nil, fmt.Errorf("ошибка чтения источника %s: %w", it.source, err)
	}

	rec := make(models.RawRecord, len(it.header))
	for i, name := range it.header {
		if i >= len(row) || name == "" {
			continue
		}
		rec[name] = row[i]
	}
	return rec, nil
}

func (it *csvIterator) Close() error {
	it.done = true
	return it.file.Close()
}

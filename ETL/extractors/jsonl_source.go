package extractors

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// maxLineSize ограничивает длину одной строки JSON Lines
const maxLineSize = 4 << 20

// JSONLinesSource читает записи из файла JSON Lines: один объект на строку
type JSONLinesSource struct {
	name string
	path string
}

// NewJSONLinesSource создает источник из файла JSON Lines
func NewJSONLinesSource(name, path string) *JSONLinesSource {
	return &JSONLinesSource{name: name, path: path}
}

// Name возвращает имя источника
func (s *JSONLinesSource) Name() string {
	return s.name
}

// Open открывает файл для нового прохода
func (s *JSONLinesSource) Open(ctx context.Context) (Iterator, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия источника %s: %w", s.name, err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &jsonlIterator{source: s.name, file: file, scanner: scanner}, nil
}

type jsonlIterator struct {
	source  string
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

func (it *jsonlIterator) Next() (models.RawRecord, error) {
	for it.scanner.Scan() {
		it.line++
		line := bytes.TrimSpace(it.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		decoder := json.NewDecoder(bytes.NewReader(line))
		decoder.UseNumber()

		var obj map[string]any
		if err := decoder.Decode(&obj); err != nil {
			return nil, &MalformedRecordError{Source: it.source, Line: it.line, Err: err}
		}

		rec := make(models.RawRecord, len(obj))
		for k, v := range obj {
			rec[strings.ToLower(strings.TrimSpace(k))] = v
		}
		return rec, nil
	}

	if err := it.scanner.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения источника %s: %w", it.source, err)
	}
	return nil, io.EOF
}

func (it *jsonlIterator) Close() error {
	return it.file.Close()
}

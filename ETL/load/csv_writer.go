package load

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

// CSVWriter записывает каждую таблицу в отдельный файл с разделителями
type CSVWriter struct {
	dir       string
	delimiter rune
	logger    *utils.ETLLogger
}

// NewCSVWriter создает новый экземпляр CSVWriter
func NewCSVWriter(dir string, delimiter rune, logger *utils.ETLLogger) *CSVWriter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVWriter{dir: dir, delimiter: delimiter, logger: logger}
}

// Name возвращает имя загрузчика
func (l *CSVWriter) Name() string {
	return "csv"
}

// Load записывает таблицы хранилища и журналы отклонений и предупреждений
func (l *CSVWriter) Load(ctx context.Context, w *models.Warehouse) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога %s: %w", l.dir, err)
	}

	tables := append(Tables(w), rejectionTable(w.Rejections), warningTable(w.Warnings))
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		startTime := time.Now()
		path := filepath.Join(l.dir, t.Name+".csv")
		if err := l.writeTable(path, t); err != nil {
			l.logger.Error("Ошибка при записи таблицы %s: %v", t.Name, err)
			return fmt.Errorf("ошибка при записи таблицы %s: %w", t.Name, err)
		}
		l.logger.Debug("Таблица %s записана в %s (строк: %d, %v)", t.Name, path, len(t.Rows), time.Since(startTime))
	}
	return nil
}

// writeTable пишет таблицу через временный файл
func (l *CSVWriter) writeTable(path string, t Table) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	writer.Comma = l.delimiter

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := writer.Write(header); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := writer.Write(record); err != nil {
			file.Close()
			os.Remove(tmp)
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

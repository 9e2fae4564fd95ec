package extractors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/LilVoxy/aid_analytics/ETL/config"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

// Имена источников
const (
	TransactionsSource = "transactions"
	IndicatorsSource   = "indicators"
)

// Extractor координирует чтение сырых записей из источников
type Extractor struct {
	logger *utils.ETLLogger
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(logger *utils.ETLLogger) *Extractor {
	return &Extractor{logger: logger}
}

// NewSource создает файловый источник по конфигурации
func NewSource(name string, cfg config.SourceConfig) (Source, error) {
	switch cfg.SourceFormat() {
	case config.FormatCSV:
		return NewCSVSource(name, cfg.Path, ','), nil
	case config.FormatJSONL:
		return NewJSONLinesSource(name, cfg.Path), nil
	default:
		return nil, fmt.Errorf("неизвестный формат источника %s: %q", name, cfg.Format)
	}
}

// Scan проходит по всем записям источника и передает каждую в fn.
// Неразборчивые записи передаются в onMalformed, чтение продолжается.
// Возвращает число прочитанных записей.
func (e *Extractor) Scan(ctx context.Context, src Source, fn func(models.RawRecord) error, onMalformed func(*MalformedRecordError)) (int, error) {
	startTime := time.Now()
	e.logger.LogExtractStart(src.Name())

	it, err := src.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		rec, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var malformed *MalformedRecordError
			if errors.As(err, &malformed) && onMalformed != nil {
				e.logger.Debug("Пропуск записи %s: %v", src.Name(), malformed)
				onMalformed(malformed)
				continue
			}
			return count, fmt.Errorf("ошибка извлечения из %s: %w", src.Name(), err)
		}

		count++
		if err := fn(rec); err != nil {
			return count, err
		}
	}

	e.logger.LogExtractComplete(src.Name(), count, time.Since(startTime))
	return count, nil
}

package models

import (
	"time"
)

// Статусы запуска построения
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// ETLRunLog представляет запись о запуске построения хранилища
type ETLRunLog struct {
	RunID                string    `json:"run_id"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Status               string    `json:"status"` // "success", "failed", "in_progress"
	RowsIngested         int       `json:"rows_ingested"`
	RowsRejected         int       `json:"rows_rejected"`
	RowsWarned           int       `json:"rows_warned"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// ETLLogRepository представляет репозиторий для работы с журналом запусков
type ETLLogRepository interface {
	// CreateETLLogTable создает таблицу журнала, если ее нет
	CreateETLLogTable() error

	// CreateLogEntry создает новую запись о запуске
	CreateLogEntry(runID string, startTime time.Time) error

	// UpdateLogEntrySuccess обновляет запись при успешном завершении
	UpdateLogEntrySuccess(runID string, endTime time.Time, totals TableStats) error

	// UpdateLogEntryFailure обновляет запись при неудачном завершении
	UpdateLogEntryFailure(runID string, endTime time.Time, totals TableStats, errorMessage string) error

	// GetLastSuccessfulRun получает информацию о последнем успешном запуске
	GetLastSuccessfulRun() (*ETLRunLog, error)

	// GetRecentRuns получает последние запуски
	GetRecentRuns(limit int) ([]ETLRunLog, error)
}

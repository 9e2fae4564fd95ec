package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/LilVoxy/aid_analytics/ETL/config"
)

// SQLETLLogRepository реализация ETLLogRepository для SQL-хранилища
type SQLETLLogRepository struct {
	db     *sql.DB
	driver string
}

// NewSQLETLLogRepository создает новый экземпляр SQLETLLogRepository
func NewSQLETLLogRepository(db *sql.DB, driver string) *SQLETLLogRepository {
	return &SQLETLLogRepository{
		db:     db,
		driver: driver,
	}
}

// CreateETLLogTable создает таблицу журнала запусков, если она не существует
func (r *SQLETLLogRepository) CreateETLLogTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS etl_run_log (
		run_id VARCHAR(36) PRIMARY KEY,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NULL,
		status VARCHAR(16) NOT NULL,
		rows_ingested INTEGER DEFAULT 0,
		rows_rejected INTEGER DEFAULT 0,
		rows_warned INTEGER DEFAULT 0,
		error_message TEXT,
		execution_time_seconds ` + config.FloatColumnType(r.driver) + `
	)
	`

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка при создании таблицы etl_run_log: %w", err)
	}

	return nil
}

// CreateLogEntry создает новую запись о запуске
func (r *SQLETLLogRepository) CreateLogEntry(runID string, startTime time.Time) error {
	query := config.Rebind(r.driver, `
	INSERT INTO etl_run_log (run_id, start_time, status, error_message)
	VALUES (?, ?, ?, '')
	`)

	if _, err := r.db.Exec(query, runID, startTime.UTC(), RunStatusInProgress); err != nil {
		return fmt.Errorf("ошибка при создании записи о запуске %s: %w", runID, err)
	}

	return nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении
func (r *SQLETLLogRepository) UpdateLogEntrySuccess(runID string, endTime time.Time, totals TableStats) error {
	return r.finish(runID, endTime, RunStatusSuccess, totals, "")
}

// UpdateLogEntryFailure обновляет запись при неудачном завершении
func (r *SQLETLLogRepository) UpdateLogEntryFailure(runID string, endTime time.Time, totals TableStats, errorMessage string) error {
	return r.finish(runID, endTime, RunStatusFailed, totals, errorMessage)
}

func (r *SQLETLLogRepository) finish(runID string, endTime time.Time, status string, totals TableStats, errorMessage string) error {
	// Рассчитываем время выполнения в секундах
	var startTime time.Time
	err := r.db.QueryRow(config.Rebind(r.driver, "SELECT start_time FROM etl_run_log WHERE run_id = ?"), runID).Scan(&startTime)
	if err != nil {
		return fmt.Errorf("ошибка при получении времени начала запуска %s: %w", runID, err)
	}

	executionTime := endTime.Sub(startTime).Seconds()

	query := config.Rebind(r.driver, `
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = ?,
		rows_ingested = ?,
		rows_rejected = ?,
		rows_warned = ?,
		error_message = ?,
		execution_time_seconds = ?
	WHERE run_id = ?
	`)

	_, err = r.db.Exec(query,
		endTime.UTC(),
		status,
		totals.Ingested,
		totals.Rejected,
		totals.Warned,
		errorMessage,
		executionTime,
		runID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске %s: %w", runID, err)
	}

	return nil
}

const runLogColumns = `run_id, start_time, end_time, status, rows_ingested, rows_rejected, rows_warned,
		COALESCE(error_message, ''), COALESCE(execution_time_seconds, 0)`

// GetLastSuccessfulRun получает информацию о последнем успешном запуске
func (r *SQLETLLogRepository) GetLastSuccessfulRun() (*ETLRunLog, error) {
	query := config.Rebind(r.driver, `
	SELECT `+runLogColumns+`
	FROM etl_run_log
	WHERE status = ?
	ORDER BY end_time DESC
	LIMIT 1
	`)

	log, err := scanRunLog(r.db.QueryRow(query, RunStatusSuccess))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Нет успешных запусков
		}
		return nil, fmt.Errorf("ошибка при получении последнего успешного запуска: %w", err)
	}

	return log, nil
}

// GetRecentRuns получает последние запуски в порядке убывания времени начала
func (r *SQLETLLogRepository) GetRecentRuns(limit int) ([]ETLRunLog, error) {
	query := config.Rebind(r.driver, `
	SELECT `+runLogColumns+`
	FROM etl_run_log
	ORDER BY start_time DESC
	LIMIT ?
	`)

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка запусков: %w", err)
	}
	defer rows.Close()

	var logs []ETLRunLog
	for rows.Next() {
		log, err := scanRunLog(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании записи о запуске: %w", err)
		}
		logs = append(logs, *log)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка после итерации по записям о запусках: %w", err)
	}

	return logs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunLog(row rowScanner) (*ETLRunLog, error) {
	var log ETLRunLog
	var endTime sql.NullTime
	err := row.Scan(
		&log.RunID, &log.StartTime, &endTime, &log.Status,
		&log.RowsIngested, &log.RowsRejected, &log.RowsWarned,
		&log.ErrorMessage, &log.ExecutionTimeSeconds,
	)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		log.EndTime = endTime.Time
	}
	return &log, nil
}

package load

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/LilVoxy/aid_analytics/ETL/config"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

// SQLLoader полностью перестраивает таблицы хранилища в SQL-базе: одна транзакция на таблицу
type SQLLoader struct {
	db     *sql.DB
	driver string
	logger *utils.ETLLogger
}

// NewSQLLoader создает новый экземпляр SQLLoader
func NewSQLLoader(db *sql.DB, driver string, logger *utils.ETLLogger) *SQLLoader {
	return &SQLLoader{db: db, driver: driver, logger: logger}
}

// Name возвращает имя загрузчика
func (l *SQLLoader) Name() string {
	return l.driver
}

// Load записывает таблицы хранилища и журналы построения
func (l *SQLLoader) Load(ctx context.Context, w *models.Warehouse) error {
	rejections := rejectionTable(w.Rejections)
	rejections.Name = "etl_rejections"
	warnings := warningTable(w.Warnings)
	warnings.Name = "etl_warnings"

	tables := append(Tables(w), rejections, warnings)
	for _, t := range tables {
		if err := l.loadTable(ctx, t); err != nil {
			l.logger.Error("Ошибка при загрузке таблицы %s: %v", t.Name, err)
			return fmt.Errorf("ошибка при загрузке таблицы %s: %w", t.Name, err)
		}
	}
	return nil
}

func (l *SQLLoader) loadTable(ctx context.Context, t Table) error {
	startTime := time.Now()

	// DDL выполняется вне транзакции: MySQL фиксирует транзакцию неявно перед CREATE TABLE
	if _, err := l.db.ExecContext(ctx, l.createTableSQL(t)); err != nil {
		return fmt.Errorf("ошибка при создании таблицы: %w", err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.Name); err != nil {
		return fmt.Errorf("ошибка при очистке таблицы: %w", err)
	}

	if len(t.Rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, l.insertSQL(t))
		if err != nil {
			return fmt.Errorf("ошибка при подготовке запроса: %w", err)
		}
		defer stmt.Close()

		args := make([]any, len(t.Columns))
		for n, row := range t.Rows {
			for i, v := range row {
				args[i] = sqlValue(v)
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("ошибка при вставке строки %d: %w", n+1, err)
			}
			if (n+1)%1000 == 0 {
				l.logger.Debug("Загружено %d из %d строк в %s...", n+1, len(t.Rows), t.Name)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	l.logger.Debug("Таблица %s загружена (строк: %d, %v)", t.Name, len(t.Rows), time.Since(startTime))
	return nil
}

func (l *SQLLoader) createTableSQL(t Table) string {
	primary := make(map[string]bool, len(t.PrimaryKey))
	for _, name := range t.PrimaryKey {
		primary[name] = true
	}

	defs := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		def := c.Name + " " + l.columnType(c, primary[c.Name])
		if c.Kind != KindNullableFloat {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if len(t.PrimaryKey) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(t.PrimaryKey, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.Name, strings.Join(defs, ",\n\t"))
}

func (l *SQLLoader) columnType(c Column, primary bool) string {
	switch c.Kind {
	case KindInt:
		return "BIGINT"
	case KindFloat, KindNullableFloat:
		return config.FloatColumnType(l.driver)
	case KindBool:
		return "BOOLEAN"
	default:
		if l.driver == config.DriverMySQL {
			if primary {
				return "VARCHAR(255)"
			}
			return "TEXT"
		}
		return "TEXT"
	}
}

func (l *SQLLoader) insertSQL(t Table) string {
	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name, strings.Join(names, ", "), strings.Join(marks, ", "))
	return config.Rebind(l.driver, query)
}

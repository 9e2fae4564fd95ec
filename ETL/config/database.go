package config

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

// Поддерживаемые драйверы хранилища
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverDuckDB   = "duckdb"
	DriverSQLite   = "sqlite3"
)

// WarehouseConnection содержит подключение к SQL-хранилищу и имя драйвера
type WarehouseConnection struct {
	DB     *sql.DB
	Driver string
	logger *utils.ETLLogger
}

// DSN формирует строку подключения для драйвера
func (c DatabaseConfig) DSN() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.DBName), nil
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.DBName), nil
	case DriverDuckDB, DriverSQLite:
		// Пустой путь у duckdb означает базу в памяти
		return c.Path, nil
	default:
		return "", fmt.Errorf("неподдерживаемый драйвер хранилища: %q", c.Driver)
	}
}

// ConnectWarehouse устанавливает подключение к SQL-хранилищу
func ConnectWarehouse(cfg DatabaseConfig, logger *utils.ETLLogger) (*WarehouseConnection, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к хранилищу %s: %w", cfg.Driver, err)
	}

	// Настройка параметров подключения
	switch cfg.Driver {
	case DriverSQLite, DriverDuckDB:
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// Проверка подключения
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось установить соединение с хранилищем %s: %w", cfg.Driver, err)
	}

	logger.Info("Успешное подключение к хранилищу %s", cfg.Driver)
	return &WarehouseConnection{DB: db, Driver: cfg.Driver, logger: logger}, nil
}

// CloseWarehouse закрывает подключение к хранилищу
func CloseWarehouse(conn *WarehouseConnection) {
	if conn == nil || conn.DB == nil {
		return
	}
	if err := conn.DB.Close(); err != nil {
		conn.logger.Error("Ошибка при закрытии соединения с хранилищем: %v", err)
	}
}

// Rebind заменяет плейсхолдеры '?' на нумерованные для драйверов, которым они нужны
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FloatColumnType возвращает тип столбца с плавающей точкой для драйвера
func FloatColumnType(driver string) string {
	switch driver {
	case DriverPostgres:
		return "DOUBLE PRECISION"
	case DriverSQLite:
		return "REAL"
	default:
		return "DOUBLE"
	}
}

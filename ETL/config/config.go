package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Форматы файлов источников
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// ETLConfig содержит конфигурацию для построения хранилища
type ETLConfig struct {
	// Источник транзакций помощи
	Transactions SourceConfig `yaml:"transactions" validate:"required"`

	// Источник страновых показателей
	Indicators SourceConfig `yaml:"indicators" validate:"required"`

	// Каталог и формат файлов выходных таблиц
	Output OutputConfig `yaml:"output"`

	// Конфигурация для подключения к SQL-хранилищу (целевому)
	Warehouse DatabaseConfig `yaml:"warehouse"`

	// Файл с сохраненным состоянием суррогатных ключей (пусто - полная перестройка)
	StatePath string `yaml:"state_path"`

	// Файл справочников нормализации (пусто - встроенные справочники)
	LookupsPath string `yaml:"lookups_path"`

	// Интервал запуска в режиме планировщика
	RunInterval time.Duration `yaml:"run_interval" validate:"gt=0"`

	// Адрес HTTP-сервера статуса и метрик в режиме планировщика
	ListenAddr string `yaml:"listen_addr"`

	// Параллельное чтение двух источников
	Parallel bool `yaml:"parallel"`

	// Допустимый диапазон лет в датах источников
	MinYear int `yaml:"min_year" validate:"gte=1"`
	MaxYear int `yaml:"max_year" validate:"gtefield=MinYear"`

	// Дополнительные столбцы показателей fact_country_context
	ExtraIndicators []string `yaml:"extra_indicators" validate:"unique,dive,required"`

	// Типы транзакций, для которых допускаются отрицательные суммы
	SignedTransactionTypes []string `yaml:"signed_transaction_types"`

	// Каталог файла лога (пусто - только консоль)
	LogDir string `yaml:"log_dir"`

	// Включение/отключение подробного логирования
	EnableDetailedLogging bool `yaml:"enable_detailed_logging"`
}

// SourceConfig описывает файл сырых записей
type SourceConfig struct {
	Path   string `yaml:"path" validate:"required"`
	Format string `yaml:"format" validate:"omitempty,oneof=csv jsonl"`
}

// OutputConfig описывает запись таблиц в файлы с разделителями
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Delimiter string `yaml:"delimiter" validate:"omitempty,len=1"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Driver   string `yaml:"driver" validate:"omitempty,oneof=mysql postgres duckdb sqlite3"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	// Path используется файловыми базами (duckdb, sqlite3)
	Path string `yaml:"path"`
}

var columnName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reservedColumns - постоянные столбцы fact_country_context
var reservedColumns = map[string]bool{
	"country_id":     true,
	"time_id":        true,
	"population":     true,
	"gdp_per_capita": true,
}

// Значения конфигурации по умолчанию
var (
	DefaultWarehouseConfig = DatabaseConfig{
		Enabled: false,
		Driver:  "mysql",
		Host:    "localhost",
		Port:    3306,
		User:    "root",
		DBName:  "aid_analytics",
	}

	DefaultETLConfig = ETLConfig{
		Transactions: SourceConfig{Path: "data/transactions.csv", Format: FormatCSV},
		Indicators:   SourceConfig{Path: "data/indicators.csv", Format: FormatCSV},
		Output: OutputConfig{
			Dir:       "warehouse",
			Delimiter: ",",
		},
		Warehouse:              DefaultWarehouseConfig,
		RunInterval:            24 * time.Hour,
		ListenAddr:             ":9108",
		MinYear:                1950,
		MaxYear:                2100,
		ExtraIndicators:        []string{"life_expectancy", "gdp_growth"},
		SignedTransactionTypes: []string{"6", "7", "9"},
		EnableDetailedLogging:  false,
	}
)

// GetConfig возвращает конфигурацию по умолчанию
func GetConfig() ETLConfig {
	cfg := DefaultETLConfig
	cfg.ExtraIndicators = append([]string(nil), DefaultETLConfig.ExtraIndicators...)
	cfg.SignedTransactionTypes = append([]string(nil), DefaultETLConfig.SignedTransactionTypes...)
	return cfg
}

// LoadConfig читает YAML-файл поверх значений по умолчанию и проверяет результат
func LoadConfig(path string) (ETLConfig, error) {
	cfg := GetConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("ошибка чтения файла конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c ETLConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("некорректная конфигурация: %w", err)
	}

	if c.Warehouse.Enabled && c.Warehouse.Driver == "" {
		return fmt.Errorf("некорректная конфигурация: не указан драйвер хранилища")
	}

	// Имена показателей становятся именами столбцов
	for _, name := range c.ExtraIndicators {
		if !columnName.MatchString(name) {
			return fmt.Errorf("некорректная конфигурация: недопустимое имя показателя %q", name)
		}
		if reservedColumns[name] {
			return fmt.Errorf("некорректная конфигурация: показатель %q совпадает с постоянным столбцом", name)
		}
	}
	return nil
}

// SourceFormat возвращает формат источника, определяя его по расширению, если он не задан
func (s SourceConfig) SourceFormat() string {
	if s.Format != "" {
		return s.Format
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatCSV
	}
}

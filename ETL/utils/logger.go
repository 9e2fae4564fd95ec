package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ETLLogger представляет логгер для процесса построения хранилища
type ETLLogger struct {
	logger    *zap.SugaredLogger
	file      *os.File
	isVerbose bool
}

// NewETLLogger создает логгер, пишущий в консоль и, если задан каталог, в файл лога за текущий день
func NewETLLogger(verbose bool, logDir string) (*ETLLogger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	var file *os.File
	if logDir != "" {
		// Создаем или открываем лог-файл для записи
		logFileName := filepath.Join(logDir, fmt.Sprintf("etl_log_%s.log", time.Now().Format("2006-01-02")))
		var err error
		file, err = os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("не удалось открыть или создать файл лога: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(file),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &ETLLogger{
		logger:    logger.Sugar(),
		file:      file,
		isVerbose: verbose,
	}, nil
}

// NewNopLogger создает логгер, который ничего не выводит
func NewNopLogger() *ETLLogger {
	return &ETLLogger{logger: zap.NewNop().Sugar()}
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	l.logger.Infof(format, v...)
}

// Warn логирует предупреждение
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	l.logger.Warnf(format, v...)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	l.logger.Errorf(format, v...)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.logger.Debugf(format, v...)
}

// Sync сбрасывает буферы логгера и закрывает файл лога; повторный вызов безопасен
func (l *ETLLogger) Sync() {
	_ = l.logger.Sync()
	if l.file == nil {
		return
	}
	_ = l.file.Close()
	l.file = nil
}

// LogETLStart логирует начало построения
func (l *ETLLogger) LogETLStart(runID string) {
	l.Info("Начало построения хранилища, запуск %s", runID)
}

// LogETLComplete логирует завершение построения
func (l *ETLLogger) LogETLComplete(startTime time.Time, ingested, rejected, warned int) {
	l.Info("Построение хранилища завершено. Длительность: %v", time.Since(startTime))
	l.Info("Принято: %d записей, отклонено: %d, предупреждений: %d", ingested, rejected, warned)
}

// LogExtractStart логирует начало чтения источника
func (l *ETLLogger) LogExtractStart(source string) {
	l.Info("Начало чтения источника %s", source)
}

// LogExtractComplete логирует завершение чтения источника
func (l *ETLLogger) LogExtractComplete(source string, records int, duration time.Duration) {
	l.Info("Чтение источника %s завершено: %d записей. Длительность: %v", source, records, duration)
}

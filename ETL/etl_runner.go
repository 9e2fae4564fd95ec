package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/LilVoxy/aid_analytics/ETL/config"
	"github.com/LilVoxy/aid_analytics/ETL/extractors"
	"github.com/LilVoxy/aid_analytics/ETL/integrity"
	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/load"
	"github.com/LilVoxy/aid_analytics/ETL/metrics"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/normalize"
	"github.com/LilVoxy/aid_analytics/ETL/transform"
	"github.com/LilVoxy/aid_analytics/ETL/utils"
	"github.com/LilVoxy/aid_analytics/routes"
)

type ETLRunner struct {
	config      config.ETLConfig
	logger      *utils.ETLLogger
	warehouse   *config.WarehouseConnection
	lookups     *normalize.Lookups
	extractor   *extractors.Extractor
	loadManager *load.LoadManager
	etlLogRepo  models.ETLLogRepository
	metrics     *metrics.Collector

	// mu не дает двум построениям идти одновременно
	mu sync.Mutex

	statusMu    sync.RWMutex
	lastSummary *models.BuildSummary
}

// NewETLRunner создает новый экземпляр ETLRunner
func NewETLRunner(etlConfig config.ETLConfig, logger *utils.ETLLogger) (*ETLRunner, error) {
	logger.Info("Инициализация ETL Runner")

	// Загружаем справочники нормализации
	var lookups *normalize.Lookups
	var err error
	if etlConfig.LookupsPath != "" {
		lookups, err = normalize.LoadLookups(etlConfig.LookupsPath)
	} else {
		lookups, err = normalize.DefaultLookups()
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки справочников: %w", err)
	}

	runner := &ETLRunner{
		config:    etlConfig,
		logger:    logger,
		lookups:   lookups,
		extractor: extractors.NewExtractor(logger),
		metrics:   metrics.NewCollector(),
	}

	var loaders []load.Loader
	if etlConfig.Output.Dir != "" {
		loaders = append(loaders, load.NewCSVWriter(etlConfig.Output.Dir, delimiter(etlConfig.Output.Delimiter), logger))
	}

	// Подключаемся к SQL-хранилищу, если оно включено
	if etlConfig.Warehouse.Enabled {
		conn, err := config.ConnectWarehouse(etlConfig.Warehouse, logger)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к хранилищу: %w", err)
		}
		runner.warehouse = conn

		repo := models.NewSQLETLLogRepository(conn.DB, conn.Driver)
		if err := repo.CreateETLLogTable(); err != nil {
			config.CloseWarehouse(conn)
			return nil, fmt.Errorf("ошибка при создании таблицы логов ETL: %w", err)
		}
		runner.etlLogRepo = repo
		loaders = append(loaders, load.NewSQLLoader(conn.DB, conn.Driver, logger))
	}

	if len(loaders) == 0 {
		logger.Warn("Не настроено ни одного хранилища для записи таблиц")
	}
	runner.loadManager = load.NewLoadManager(logger, loaders...)

	return runner, nil
}

// Close закрывает соединения с хранилищем
func (r *ETLRunner) Close() {
	r.logger.Info("Завершение работы ETL Runner")
	config.CloseWarehouse(r.warehouse)
}

// ExecuteETL выполняет полное построение хранилища.
// Сводка возвращается и при ошибке; *integrity.IntegrityError означает, что таблицы не записаны.
func (r *ETLRunner) ExecuteETL(ctx context.Context) (models.BuildSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()
	startTime := time.Now()
	r.logger.LogETLStart(runID)

	// Создаем запись в журнале ETL
	if r.etlLogRepo != nil {
		if err := r.etlLogRepo.CreateLogEntry(runID, startTime); err != nil {
			r.logger.Error("Ошибка при создании записи в журнале ETL: %v", err)
			return models.BuildSummary{RunID: runID, Status: models.RunStatusFailed, Error: err.Error()},
				fmt.Errorf("ошибка при создании записи в журнале ETL: %w", err)
		}
	}

	summary := models.BuildSummary{RunID: runID, Status: models.RunStatusInProgress}

	// Ключи прошлых построений, если состояние сохранено
	resolver, err := keys.LoadResolver(r.config.StatePath)
	if err != nil {
		return r.fail(summary, startTime, "загрузка состояния ключей", err)
	}

	// 1. Источники сырых записей (Extract выполняется потоково внутри Transform)
	transactions, err := extractors.NewSource(extractors.TransactionsSource, r.config.Transactions)
	if err != nil {
		return r.fail(summary, startTime, "Extract", err)
	}
	indicators, err := extractors.NewSource(extractors.IndicatorsSource, r.config.Indicators)
	if err != nil {
		return r.fail(summary, startTime, "Extract", err)
	}

	// 2. Фаза трансформации данных (Transform)
	transformer := transform.NewTransformer(resolver, r.lookups, r.extractor, r.logger, transform.Options{
		MinYear:                r.config.MinYear,
		MaxYear:                r.config.MaxYear,
		ExtraIndicators:        r.config.ExtraIndicators,
		SignedTransactionTypes: r.config.SignedTransactionTypes,
		Parallel:               r.config.Parallel,
	}).WithObserver(r.metrics)

	warehouse, err := transformer.Transform(ctx, transactions, indicators)
	if err != nil {
		return r.fail(summary, startTime, "Transform", err)
	}
	summary.Tables = warehouse.Summary.Tables

	// 3. Проверка целостности: нарушение делает построение неудачным
	if err := integrity.Verify(warehouse); err != nil {
		return r.fail(summary, startTime, "Verify", err)
	}

	// 4. Фаза загрузки данных (Load)
	if err := r.loadManager.Load(ctx, warehouse); err != nil {
		return r.fail(summary, startTime, "Load", err)
	}

	// Состояние ключей сохраняется только после успешной записи таблиц
	if r.config.StatePath != "" {
		if err := keys.SaveState(r.config.StatePath, resolver.State()); err != nil {
			return r.fail(summary, startTime, "сохранение состояния ключей", err)
		}
	}

	summary.Status = models.RunStatusSuccess
	totals := summary.Totals()
	if r.etlLogRepo != nil {
		if err := r.etlLogRepo.UpdateLogEntrySuccess(runID, time.Now(), totals); err != nil {
			r.logger.Error("Ошибка при обновлении записи в журнале ETL: %v", err)
		}
	}
	r.finish(summary, startTime)
	r.logger.LogETLComplete(startTime, totals.Ingested, totals.Rejected, totals.Warned)

	return summary, nil
}

// fail фиксирует неудачное построение в журнале, метриках и сводке
func (r *ETLRunner) fail(summary models.BuildSummary, startTime time.Time, phase string, err error) (models.BuildSummary, error) {
	errMsg := fmt.Sprintf("Ошибка в фазе %s: %v", phase, err)
	r.logger.Error("%s", errMsg)

	summary.Status = models.RunStatusFailed
	summary.Error = errMsg

	if r.etlLogRepo != nil {
		if logErr := r.etlLogRepo.UpdateLogEntryFailure(summary.RunID, time.Now(), summary.Totals(), errMsg); logErr != nil {
			r.logger.Error("Ошибка при обновлении записи в журнале ETL: %v", logErr)
		}
	}
	r.finish(summary, startTime)

	return summary, fmt.Errorf("ошибка в фазе %s: %w", phase, err)
}

func (r *ETLRunner) finish(summary models.BuildSummary, startTime time.Time) {
	r.metrics.ObserveBuild(summary, time.Since(startTime))

	r.statusMu.Lock()
	r.lastSummary = &summary
	r.statusMu.Unlock()
}

// LastSummary возвращает сводку последнего построения
func (r *ETLRunner) LastSummary() (models.BuildSummary, bool) {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	if r.lastSummary == nil {
		return models.BuildSummary{}, false
	}
	return *r.lastSummary, true
}

// RecentRuns возвращает последние записи журнала запусков
func (r *ETLRunner) RecentRuns(limit int) ([]models.ETLRunLog, error) {
	if r.etlLogRepo == nil {
		return nil, nil
	}
	return r.etlLogRepo.GetRecentRuns(limit)
}

// Handler возвращает маршрутизатор статуса построений и метрик
func (r *ETLRunner) Handler() http.Handler {
	router := mux.NewRouter()
	routes.SetupRoutes(router, r, r.metrics.Handler(), r.logger)
	return router
}

// StartScheduler запускает планировщик для регулярного выполнения ETL и HTTP-сервер статуса
func (r *ETLRunner) StartScheduler(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Запуск планировщика ETL с интервалом %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).Do(func() {
		r.logger.Info("Запланированный запуск ETL процесса")
		if _, err := r.ExecuteETL(ctx); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного ETL: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("ошибка при настройке планировщика: %w", err)
	}

	var server *http.Server
	if r.config.ListenAddr != "" {
		server = &http.Server{
			Addr:              r.config.ListenAddr,
			Handler:           r.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			r.logger.Info("HTTP-сервер статуса слушает %s", r.config.ListenAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				r.logger.Error("Ошибка HTTP-сервера: %v", err)
			}
		}()
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	// Останавливаем планировщик
	scheduler.Stop()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("Ошибка при остановке HTTP-сервера: %v", err)
		}
	}
	r.logger.Info("Планировщик ETL остановлен")
	return nil
}

func delimiter(s string) rune {
	for _, r := range s {
		return r
	}
	return ','
}

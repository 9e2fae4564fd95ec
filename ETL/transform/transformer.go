package transform

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LilVoxy/aid_analytics/ETL/extractors"
	"github.com/LilVoxy/aid_analytics/ETL/keys"
	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/normalize"
	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

// Options задает параметры преобразования
type Options struct {
	MinYear                int
	MaxYear                int
	ExtraIndicators        []string
	SignedTransactionTypes []string
	// Parallel включает одновременное чтение обоих источников
	Parallel bool
}

// Transformer координирует построение звездной схемы из сырых записей
type Transformer struct {
	resolver  *keys.Resolver
	lookups   *normalize.Lookups
	extractor *extractors.Extractor
	logger    *utils.ETLLogger
	opts      Options
	observer  BuildObserver
}

// NewTransformer создает новый экземпляр Transformer
func NewTransformer(resolver *keys.Resolver, lookups *normalize.Lookups, extractor *extractors.Extractor, logger *utils.ETLLogger, opts Options) *Transformer {
	return &Transformer{
		resolver:  resolver,
		lookups:   lookups,
		extractor: extractor,
		logger:    logger,
		opts:      opts,
	}
}

// WithObserver подключает получателя событий построения
func (t *Transformer) WithObserver(observer BuildObserver) *Transformer {
	t.observer = observer
	return t
}

// Transform выполняет полный проход по обоим источникам и возвращает готовые таблицы.
// Ошибки отдельных записей попадают в журнал отклонений; ошибка возвращается только при сбое источника или отмене.
func (t *Transformer) Transform(ctx context.Context, transactions, indicators extractors.Source) (*models.Warehouse, error) {
	startTime := time.Now()
	t.logger.Info("Начало фазы Transform (Построение звездной схемы)")

	log := NewBuildLog(t.observer)
	dims := NewDimensions(t.resolver, t.lookups, log, t.opts.MinYear, t.opts.MaxYear)
	aidFacts := NewAidTransactionFactsProcessor(dims, log, t.opts.SignedTransactionTypes)
	contextFacts := NewCountryContextFactsProcessor(dims, log, t.opts.ExtraIndicators)

	scanTransactions := func(ctx context.Context) error {
		return t.scan(ctx, transactions, models.FactAidTransaction, log, func(raw models.RawRecord) {
			aidFacts.Assemble(raw)
		})
	}
	scanIndicators := func(ctx context.Context) error {
		return t.scan(ctx, indicators, models.FactCountryContext, log, func(raw models.RawRecord) {
			contextFacts.Assemble(raw)
		})
	}

	if t.opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return scanTransactions(gctx) })
		g.Go(func() error { return scanIndicators(gctx) })
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := scanTransactions(ctx); err != nil {
			return nil, err
		}
		if err := scanIndicators(ctx); err != nil {
			return nil, err
		}
	}

	// Ключи закрепляются после полного прохода: в упорядоченном режиме новые ключи перенумеровываются
	remap := t.resolver.Settle()

	w, err := t.assemble(dims, aidFacts, contextFacts, log, remap)
	if err != nil {
		return nil, err
	}

	totals := w.Summary.Totals()
	t.logger.Info("Фаза Transform завершена за %v: принято %d, отклонено %d, предупреждений %d",
		time.Since(startTime), totals.Ingested, totals.Rejected, totals.Warned)
	return w, nil
}

// scan читает источник; nil-источник считается пустым
func (t *Transformer) scan(ctx context.Context, src extractors.Source, table string, log *BuildLog, assemble func(models.RawRecord)) error {
	if src == nil {
		t.logger.Debug("Источник для %s не задан, пропуск", table)
		return nil
	}

	_, err := t.extractor.Scan(ctx, src, func(raw models.RawRecord) error {
		assemble(raw)
		return nil
	}, func(malformed *extractors.MalformedRecordError) {
		log.Reject(table, fmt.Sprintf("%s:%d", malformed.Source, malformed.Line), malformed)
	})
	if err != nil {
		t.logger.Error("Ошибка при чтении источника %s: %v", src.Name(), err)
		return fmt.Errorf("ошибка чтения источника %s: %w", src.Name(), err)
	}
	return nil
}

// assemble переносит накопленные строки в типизированные таблицы хранилища
func (t *Transformer) assemble(dims *Dimensions, aidFacts *AidTransactionFactsProcessor, contextFacts *CountryContextFactsProcessor, log *BuildLog, remap map[string]map[int]int) (*models.Warehouse, error) {
	w := &models.Warehouse{
		AidTransactions: aidFacts.Facts(),
		CountryContexts: contextFacts.Facts(),
		ExtraIndicators: append([]string(nil), t.opts.ExtraIndicators...),
		Rejections:      log.Rejections(),
		Warnings:        log.Warnings(),
		DimensionRows:   make(map[string][]models.DimensionRow, len(models.Dimensions)),
	}

	for _, table := range dims.Tables() {
		w.DimensionRows[table.Name()] = remapRows(table.Rows(), remap[table.Name()])
	}
	remapFacts(w, remap)

	for _, row := range w.DimensionRows[models.DimTime] {
		year, err := strconv.Atoi(row.Attributes["year"])
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора года в %s (ключ %d): %w", models.DimTime, row.Key, err)
		}
		quarter, err := strconv.Atoi(row.Attributes["quarter"])
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора квартала в %s (ключ %d): %w", models.DimTime, row.Key, err)
		}
		w.Times = append(w.Times, models.TimeDimension{ID: row.Key, Year: year, Quarter: quarter})
	}
	for _, row := range w.DimensionRows[models.DimCountry] {
		w.Countries = append(w.Countries, models.CountryDimension{
			ID: row.Key, ISOCode: row.Attributes["iso_code"], Name: row.Attributes["country_name"],
		})
	}
	for _, row := range w.DimensionRows[models.DimSector] {
		w.Sectors = append(w.Sectors, models.SectorDimension{
			ID: row.Key, Code: row.Attributes["sector_code"], Name: row.Attributes["sector_name"], Category: row.Attributes["category"],
		})
	}
	for _, row := range w.DimensionRows[models.DimOrganization] {
		w.Organizations = append(w.Organizations, models.OrganizationDimension{
			ID: row.Key, Name: row.Attributes["org_name"], Type: row.Attributes["org_type"], Role: row.Attributes["role"],
		})
	}
	for _, row := range w.DimensionRows[models.DimAidType] {
		w.AidTypes = append(w.AidTypes, models.AidTypeDimension{
			ID: row.Key, Code: row.Attributes["aid_type_code"], Name: row.Attributes["aid_type_name"],
		})
	}
	for _, row := range w.DimensionRows[models.DimTransactionType] {
		w.TransactionTypes = append(w.TransactionTypes, models.TransactionTypeDimension{
			ID: row.Key, Code: row.Attributes["code"], Name: row.Attributes["name"],
		})
	}

	stats := log.Stats()
	for _, name := range models.Dimensions {
		s := stats[name]
		s.Rows = len(w.DimensionRows[name])
		stats[name] = s
	}
	aid := stats[models.FactAidTransaction]
	aid.Rows = len(w.AidTransactions)
	stats[models.FactAidTransaction] = aid
	ctx := stats[models.FactCountryContext]
	ctx.Rows = len(w.CountryContexts)
	stats[models.FactCountryContext] = ctx

	w.Summary = models.BuildSummary{Tables: stats}
	return w, nil
}

// remapRows заменяет ключи строк измерения и восстанавливает порядок по ключу
func remapRows(rows []models.DimensionRow, changes map[int]int) []models.DimensionRow {
	if len(changes) == 0 {
		return rows
	}
	for i := range rows {
		if key, ok := changes[rows[i].Key]; ok {
			rows[i].Key = key
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// remapFacts переводит внешние ключи фактов на закрепленные ключи измерений
func remapFacts(w *models.Warehouse, remap map[string]map[int]int) {
	if len(remap) == 0 {
		return
	}
	apply := func(dim string, key *int) {
		if k, ok := remap[dim][*key]; ok {
			*key = k
		}
	}
	for i := range w.AidTransactions {
		f := &w.AidTransactions[i]
		apply(models.DimCountry, &f.CountryID)
		apply(models.DimTime, &f.TimeID)
		apply(models.DimSector, &f.SectorID)
		apply(models.DimOrganization, &f.ReportingOrgID)
		apply(models.DimAidType, &f.AidTypeID)
		apply(models.DimTransactionType, &f.TransactionTypeID)
	}
	for i := range w.CountryContexts {
		f := &w.CountryContexts[i]
		apply(models.DimCountry, &f.CountryID)
		apply(models.DimTime, &f.TimeID)
	}
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

const namespace = "aid_etl"

// Collector собирает метрики построений в собственном реестре
type Collector struct {
	registry *prometheus.Registry

	ingested  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	warned    *prometheus.CounterVec
	tableRows *prometheus.GaugeVec
	duration  prometheus.Histogram
	builds    *prometheus.CounterVec
	lastBuild prometheus.Gauge
}

// NewCollector создает новый экземпляр Collector
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		ingested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_ingested_total",
			Help:      "Принятые записи по таблицам",
		}, []string{"table"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Отклоненные записи по таблицам и измерениям",
		}, []string{"table", "dimension"}),
		warned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Предупреждения по таблицам",
		}, []string{"table"}),
		tableRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Число строк в таблицах последнего построения",
		}, []string{"table"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Длительность построения хранилища",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		}),
		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Построения по статусу",
		}, []string{"status"}),
		lastBuild: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Время последнего успешного построения",
		}),
	}
}

// RecordIngested учитывает принятую запись
func (c *Collector) RecordIngested(table string) {
	c.ingested.WithLabelValues(table).Inc()
}

// RecordRejected учитывает отклоненную запись
func (c *Collector) RecordRejected(table, dimension string) {
	c.rejected.WithLabelValues(table, dimension).Inc()
}

// RecordWarned учитывает предупреждение
func (c *Collector) RecordWarned(table string) {
	c.warned.WithLabelValues(table).Inc()
}

// ObserveBuild фиксирует итог построения
func (c *Collector) ObserveBuild(summary models.BuildSummary, duration time.Duration) {
	c.duration.Observe(duration.Seconds())
	c.builds.WithLabelValues(summary.Status).Inc()

	if summary.Status != models.RunStatusSuccess {
		return
	}
	for table, stats := range summary.Tables {
		c.tableRows.WithLabelValues(table).Set(float64(stats.Rows))
	}
	c.lastBuild.SetToCurrentTime()
}

// Registry возвращает реестр метрик
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler возвращает HTTP-обработчик для экспорта метрик
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

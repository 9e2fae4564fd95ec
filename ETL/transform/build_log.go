package transform

import (
	"sync"

	"github.com/LilVoxy/aid_analytics/ETL/models"
)

// BuildObserver получает события построения (например, для метрик)
type BuildObserver interface {
	RecordIngested(table string)
	RecordRejected(table, dimension string)
	RecordWarned(table string)
}

// BuildLog собирает журнал отклонений, предупреждений и счетчики по таблицам.
// Безопасен для одновременного использования из нескольких горутин.
type BuildLog struct {
	mu         sync.Mutex
	rejections []models.Rejection
	warnings   []models.Warning
	stats      map[string]*models.TableStats
	observer   BuildObserver
}

// NewBuildLog создает новый журнал построения; observer может быть nil
func NewBuildLog(observer BuildObserver) *BuildLog {
	return &BuildLog{
		stats:    make(map[string]*models.TableStats),
		observer: observer,
	}
}

func (l *BuildLog) table(name string) *models.TableStats {
	s, ok := l.stats[name]
	if !ok {
		s = &models.TableStats{}
		l.stats[name] = s
	}
	return s
}

// Reject добавляет отклонение записи
func (l *BuildLog) Reject(table, recordID string, err error) {
	dimension := failedDimension(err)

	l.mu.Lock()
	l.rejections = append(l.rejections, models.Rejection{
		Table:     table,
		RecordID:  recordID,
		Dimension: dimension,
		Reason:    err.Error(),
	})
	l.table(table).Rejected++
	l.mu.Unlock()

	if l.observer != nil {
		l.observer.RecordRejected(table, dimension)
	}
}

// Warn добавляет предупреждение
func (l *BuildLog) Warn(table, key, reason string) {
	l.mu.Lock()
	l.warnings = append(l.warnings, models.Warning{Table: table, Key: key, Reason: reason})
	l.table(table).Warned++
	l.mu.Unlock()

	if l.observer != nil {
		l.observer.RecordWarned(table)
	}
}

// Ingested учитывает принятую запись
func (l *BuildLog) Ingested(table string) {
	l.mu.Lock()
	l.table(table).Ingested++
	l.mu.Unlock()

	if l.observer != nil {
		l.observer.RecordIngested(table)
	}
}

// Revised учитывает замену строки факта более поздней редакцией
func (l *BuildLog) Revised(table string) {
	l.mu.Lock()
	l.table(table).Revised++
	l.mu.Unlock()
}

// Rejections возвращает копию журнала отклонений
func (l *BuildLog) Rejections() []models.Rejection {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Rejection(nil), l.rejections...)
}

// Warnings возвращает копию журнала предупреждений
func (l *BuildLog) Warnings() []models.Warning {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Warning(nil), l.warnings...)
}

// Stats возвращает копию счетчиков по таблицам
func (l *BuildLog) Stats() map[string]models.TableStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]models.TableStats, len(l.stats))
	for name, s := range l.stats {
		out[name] = *s
	}
	return out
}

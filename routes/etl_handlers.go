// routes/etl_handlers.go
package routes

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

// Ограничения на размер списка запусков
const (
	defaultRunsLimit = 10
	maxRunsLimit     = 100
)

// StatusProvider отдает сведения о построениях хранилища
type StatusProvider interface {
	// LastSummary возвращает сводку последнего построения; false, если построений еще не было
	LastSummary() (models.BuildSummary, bool)
	// RecentRuns возвращает последние записи журнала запусков
	RecentRuns(limit int) ([]models.ETLRunLog, error)
}

// RunsResponse структура ответа API для списка запусков
type RunsResponse struct {
	Runs []models.ETLRunLog `json:"runs"`
}

// GetSummaryHandler обрабатывает запросы на получение сводки последнего построения
func GetSummaryHandler(status StatusProvider, logger *utils.ETLLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, ok := status.LastSummary()
		if !ok {
			http.Error(w, "Построение еще не выполнялось", http.StatusNotFound)
			return
		}
		writeJSON(w, summary, logger)
	}
}

// GetRunsHandler обрабатывает запросы на получение журнала запусков
func GetRunsHandler(status StatusProvider, logger *utils.ETLLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRunsLimit
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				http.Error(w, "Неверный формат параметра limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxRunsLimit)
		}

		runs, err := status.RecentRuns(limit)
		if err != nil {
			logger.Error("Ошибка при получении журнала запусков: %v", err)
			http.Error(w, "Ошибка при получении журнала запусков", http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []models.ETLRunLog{}
		}
		writeJSON(w, RunsResponse{Runs: runs}, logger)
	}
}

// HealthHandler отвечает на проверку живости
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v any, logger *utils.ETLLogger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Ошибка при кодировании ответа: %v", err)
	}
}

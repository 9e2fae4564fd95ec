// routes/api_routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

// SetupRoutes настраивает маршруты статуса построений и метрик
func SetupRoutes(router *mux.Router, status StatusProvider, metrics http.Handler, logger *utils.ETLLogger) {
	// Применяем CORS middleware
	router.Use(corsMiddleware)

	// API построений
	router.HandleFunc("/api/etl/summary", GetSummaryHandler(status, logger)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/etl/runs", GetRunsHandler(status, logger)).Methods("GET", "OPTIONS")

	// Проверка живости
	router.HandleFunc("/healthz", HealthHandler).Methods("GET")

	// Метрики Prometheus
	if metrics != nil {
		router.Handle("/metrics", metrics).Methods("GET")
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

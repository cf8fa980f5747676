package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/screener/internal/api/handlers"
	"github.com/wonny/screener/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
// dataHandler, hub and metricsHandler may be nil.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(
	screenHandler *handlers.ScreenHandler,
	dataHandler *handlers.DataHandler,
	hub *handlers.StreamHub,
	metricsHandler http.Handler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods("GET")
	}

	// API
	api := r.PathPrefix("/api").Subrouter()

	// Scoring endpoints
	api.HandleFunc("/score", screenHandler.Score).Methods("POST")
	api.HandleFunc("/screen/latest", screenHandler.GetLatest).Methods("GET")
	api.HandleFunc("/screen/run", screenHandler.Run).Methods("POST")

	// Data endpoints (DB 필요)
	if dataHandler != nil {
		api.HandleFunc("/data/quality", dataHandler.GetQuality).Methods("GET")
		api.HandleFunc("/data/universe", dataHandler.GetUniverse).Methods("GET")
	}

	// Score stream
	if hub != nil {
		r.HandleFunc("/ws/screen", hub.ServeWS).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "screener-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

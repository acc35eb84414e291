package api

import (
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stopguard/internal/api/handlers"
	"stopguard/internal/api/middleware"
	"stopguard/internal/websocket"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	Status handlers.StatusProvider
	Events handlers.EventsReader // nil когда журнал отключён
	Hub    *websocket.Hub        // nil когда WebSocket отключён
}

// SetupRoutes настраивает все HTTP маршруты сервера статуса
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── GET /status - снимок состояния цикла сопровождения
//	└── GET /events - журнал событий (если включена БД)
//
// /metrics - Prometheus метрики
// /ws      - WebSocket для real-time обновлений
// /health  - health check
// /debug/pprof/* - профилирование (закрыто DebugAuth)
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	// API v1 routes
	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	if deps != nil && deps.Status != nil {
		statusHandler := handlers.NewStatusHandler(deps.Status, deps.Events)
		apiV1.HandleFunc("/status", statusHandler.GetStatus).Methods("GET")
		apiV1.HandleFunc("/events", statusHandler.GetEvents).Methods("GET")
	}

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// WebSocket route
	if deps != nil && deps.Hub != nil {
		hub := deps.Hub
		router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(hub, w, r)
		})
	}

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Профилирование, закрыто basic auth
	debug := router.PathPrefix("/debug/pprof").Subrouter()
	debug.Use(middleware.DebugAuth)
	debug.HandleFunc("/", pprof.Index)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)
	debug.PathPrefix("/").Handler(http.HandlerFunc(pprof.Index))

	return router
}

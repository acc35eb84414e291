package handlers

import (
	"context"
	"net/http"
	"strconv"

	"stopguard/internal/bot"
	"stopguard/internal/models"
)

// StatusProvider отдаёт снимок состояния цикла сопровождения.
// Реализуется bot.Engine.
type StatusProvider interface {
	Status() models.BotStatus
}

// EventsReader читает журнал событий.
// Реализуется repository.StopEventRepository; nil когда БД отключена.
type EventsReader interface {
	GetRecent(ctx context.Context, limit int) ([]models.StopEvent, error)
	GetBySymbol(ctx context.Context, symbol string, limit int) ([]models.StopEvent, error)
}

// StatusHandler обрабатывает HTTP запросы состояния бота.
//
// Endpoints:
// - GET /api/v1/status - снимок состояния цикла сопровождения
// - GET /api/v1/events?limit=N&symbol=S - журнал событий
type StatusHandler struct {
	status StatusProvider
	events EventsReader
}

// NewStatusHandler создает новый StatusHandler с внедрением зависимостей.
// events может быть nil - тогда /events отвечает 404.
func NewStatusHandler(status StatusProvider, events EventsReader) *StatusHandler {
	return &StatusHandler{
		status: status,
		events: events,
	}
}

// statusResponse - снимок состояния с человекочитаемым описанием режима
type statusResponse struct {
	models.BotStatus
	ModeInfo string `json:"mode_info"`
}

// GetStatus возвращает снимок состояния бота.
//
// GET /api/v1/status
//
// Response 200 OK:
//
//	{
//	  "mode": "MANAGING",
//	  "symbol": "BTCUSDT",
//	  "resolved_symbol": "BTC-USDT",
//	  "max_loss_usdt": 50,
//	  "last_notional": 1000,
//	  "last_stop_price": 95.0,
//	  "tick_size": 0.1,
//	  "updated_at": "2026-08-30T12:00:00Z",
//	  "mode_info": "Позиция открыта, стоп-лосс сопровождается"
//	}
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := h.status.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		BotStatus: status,
		ModeInfo:  bot.ModeInfo(status.Mode),
	})
}

// GetEvents возвращает журнал событий сопровождения, новые первыми.
//
// GET /api/v1/events?limit=50&symbol=BTCUSDT
//
// limit по умолчанию 50, максимум 500. symbol опционален.
func (h *StatusHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeError(w, http.StatusNotFound, "event journal is disabled")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}
	if limit > 500 {
		limit = 500
	}

	var (
		events []models.StopEvent
		err    error
	)
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		events, err = h.events.GetBySymbol(r.Context(), symbol, limit)
	} else {
		events, err = h.events.GetRecent(r.Context(), limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read events")
		return
	}

	if events == nil {
		events = []models.StopEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

package models

import "time"

// Режимы бота (state machine)
const (
	ModeWatching = "WATCHING" // открытой позиции нет, опрос по расписанию
	ModeManaging = "MANAGING" // позиция найдена, стоп-лосс сопровождается
)

// ManagementState представляет изменяемое состояние цикла сопровождения.
// Принадлежит исключительно циклу: горутины сервера читают только снимок
// через Engine.Status.
type ManagementState struct {
	Mode             string  `json:"mode"`               // WATCHING, MANAGING
	Symbol           string  `json:"symbol"`             // символ, введённый пользователем (с суффиксом USDT)
	ResolvedSymbol   string  `json:"resolved_symbol"`    // точное написание символа у биржи
	MaxLossUSDT      float64 `json:"max_loss_usdt"`      // бюджет риска в USDT
	LastNotionalSeen float64 `json:"last_notional_seen"` // 0 = сентинел "стоп ещё не ставился"
}

// BotStatus представляет снимок состояния бота для API и WebSocket
type BotStatus struct {
	Mode           string    `json:"mode"`
	Symbol         string    `json:"symbol"`
	ResolvedSymbol string    `json:"resolved_symbol"`
	MaxLossUSDT    float64   `json:"max_loss_usdt"`
	LastNotional   float64   `json:"last_notional"`
	LastStopPrice  float64   `json:"last_stop_price"`
	TickSize       float64   `json:"tick_size"`
	UpdatedAt      time.Time `json:"updated_at"`
}

package models

import "time"

// StopEvent представляет событие журнала сопровождения стоп-лосса
type StopEvent struct {
	ID         int64     `json:"id" db:"id"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	Type       string    `json:"type" db:"type"` // STOP_PLACED, POSITION_CLOSED, MODE_CHANGE
	Symbol     string    `json:"symbol" db:"symbol"`
	PositionID string    `json:"position_id,omitempty" db:"position_id"`
	Side       string    `json:"side,omitempty" db:"side"`
	StopPrice  float64   `json:"stop_price,omitempty" db:"stop_price"`
	Notional   float64   `json:"notional,omitempty" db:"notional"`
	MaxLoss    float64   `json:"max_loss,omitempty" db:"max_loss"`
	Message    string    `json:"message,omitempty" db:"message"`
}

// Типы событий журнала
const (
	EventStopPlaced     = "STOP_PLACED"     // стоп-лосс поставлен/переставлен
	EventPositionClosed = "POSITION_CLOSED" // позиция закрыта, ордера сняты
	EventModeChange     = "MODE_CHANGE"     // переход WATCHING <-> MANAGING
)

// StopUpdate представляет real-time обновление стопа для WebSocket клиентов
type StopUpdate struct {
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	StopPrice float64   `json:"stop_price"`
	Qty       float64   `json:"qty"`
	Notional  float64   `json:"notional"`
	Timestamp time.Time `json:"timestamp"`
}

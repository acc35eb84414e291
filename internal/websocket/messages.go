package websocket

import (
	"time"

	"stopguard/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeStatus - снимок состояния бота.
	// Отправляется при каждой смене режима и применении новых вводов.
	MessageTypeStatus MessageType = "status"

	// MessageTypeStopUpdate - постановка/перестановка стоп-лосса
	MessageTypeStopUpdate MessageType = "stopUpdate"

	// MessageTypeEvent - событие журнала сопровождения
	MessageTypeEvent MessageType = "event"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// StatusMessage - сообщение со снимком состояния бота
type StatusMessage struct {
	BaseMessage
	Data models.BotStatus `json:"data"`
}

// StopUpdateMessage - сообщение о перестановке стоп-лосса
type StopUpdateMessage struct {
	BaseMessage
	Data models.StopUpdate `json:"data"`
}

// EventMessage - сообщение о событии журнала
type EventMessage struct {
	BaseMessage
	Data *models.StopEvent `json:"data"`
}

// NewStatusMessage создает сообщение состояния
func NewStatusMessage(status models.BotStatus) *StatusMessage {
	return &StatusMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeStatus,
			Timestamp: time.Now(),
		},
		Data: status,
	}
}

// NewStopUpdateMessage создает сообщение о перестановке стопа
func NewStopUpdateMessage(update models.StopUpdate) *StopUpdateMessage {
	return &StopUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeStopUpdate,
			Timestamp: time.Now(),
		},
		Data: update,
	}
}

// NewEventMessage создает сообщение о событии журнала
func NewEventMessage(event *models.StopEvent) *EventMessage {
	return &EventMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeEvent,
			Timestamp: time.Now(),
		},
		Data: event,
	}
}

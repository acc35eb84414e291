// Package exchange реализует REST клиент Bitunix futures:
// подпись запросов, выгрузку позиций и управление TP/SL ордерами.
package exchange

import "fmt"

// Стороны позиции (канонические значения)
const (
	SideLong    = "LONG"
	SideShort   = "SHORT"
	SideUnknown = "UNKNOWN"
)

// Параметры стоп-ордера (фиксированная форма ордера)
const (
	StopTypeLastPrice = "LAST_PRICE"
	OrderTypeMarket   = "MARKET"
)

// RawRecord - запись ответа API без фиксированной схемы.
// Bitunix отдаёт одни и те же данные под разными именами полей,
// поэтому декодируем в map и извлекаем по таблицам альтернатив (extract.go).
type RawRecord map[string]any

// Position - каноническое представление открытой позиции,
// выведенное из RawRecord. Не персистится, пересоздаётся каждый опрос.
type Position struct {
	Symbol     string  // точное написание символа у биржи
	Side       string  // SideLong / SideShort / SideUnknown
	Qty        float64 // размер позиции в монетах
	EntryPrice float64 // средняя цена входа
	Notional   float64 // стоимость позиции в USDT
	PositionID string  // идентификатор позиции у биржи
}

// Actionable возвращает true если по позиции можно ставить стоп:
// ненулевой размер, положительная цена входа и стоимость, есть ID.
// Любая другая форма трактуется как "нет открытой позиции".
func (p Position) Actionable() bool {
	return p.Qty != 0 && p.EntryPrice > 0 && p.Notional > 0 && p.PositionID != ""
}

// StopLossRequest - параметры постановки стоп-лосса
type StopLossRequest struct {
	Symbol     string
	PositionID string
	SLPrice    float64
	SLQty      float64
	StopType   string // по умолчанию LAST_PRICE
	OrderType  string // по умолчанию MARKET
}

// APIError - ошибка уровня HTTP/API: не-2xx статус или нечитаемый ответ
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bitunix API error: HTTP %d: %s", e.Status, e.Body)
}

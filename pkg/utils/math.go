package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// math.go - математические утилиты для работы со стоп-ордерами
//
// Назначение:
// Вспомогательные функции округления цен и объёмов под шаги биржи.
// Все функции являются чистыми (pure functions) без побочных эффектов.
//
// Функции:
// - QuantizeToTick: округление цены ВНИЗ до тиковой сетки (exact decimal)
// - QuantizeToTickUp: округление цены ВВЕРХ до тиковой сетки
// - RoundToLotSize: округление объёма вниз до lot size биржи

// QuantizeToTick округляет цену ВНИЗ до ближайшего кратного tick.
//
// Расчёт ведётся в точной десятичной арифметике (shopspring/decimal),
// а не в float64: двоичный float накапливает дрейф (95.0 может стать
// 94.99999999), и биржа отклонит цену вне тиковой сетки.
//
// Округление всегда вниз, независимо от стороны позиции - так
// стоп никогда не отодвигается от цены входа дальше запрошенного
// в сторону увеличения риска.
//
// Параметры:
//   - price: исходная цена
//   - tick: минимальный шаг цены инструмента
//
// Возвращает:
//   - Цену, кратную tick
//   - Если tick <= 0, возвращает исходную цену
//
// Примеры:
//   - QuantizeToTick(95.07, 0.1) = 95.0
//   - QuantizeToTick(120.0, 1.0) = 120.0
//   - QuantizeToTick(0.123456, 0.0001) = 0.1234
func QuantizeToTick(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	steps := p.Div(t).Floor()
	out, _ := steps.Mul(t).Float64()
	return out
}

// QuantizeToTickUp округляет цену ВВЕРХ до ближайшего кратного tick.
//
// Для стоп-лоссов не используется (там всегда QuantizeToTick),
// оставлена для ордеров, где нужна гарантия минимальной цены.
func QuantizeToTickUp(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	steps := p.Div(t).Ceil()
	out, _ := steps.Mul(t).Float64()
	return out
}

// RoundToLotSize округляет объём ВНИЗ до ближайшего кратного lotSize.
//
// Округление вниз гарантирует, что ордер не превысит размер позиции.
//
// Параметры:
//   - value: объём в монетах актива
//   - lotSize: минимальный шаг объёма на бирже
//
// Возвращает:
//   - Округлённое значение, кратное lotSize
//   - Если lotSize <= 0, возвращает исходное значение
func RoundToLotSize(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	return math.Floor(value/lotSize) * lotSize
}

package exchange

import "math"

// instrument.go - вывод тикового шага из метаданных инструмента
//
// Метаданные пары тоже приходят в разнородной форме: tickSize может
// лежать в корне записи или внутри priceFilter, а может
// отсутствовать вовсе - тогда шаг выводится из точности цены.

// DefaultTickSize - консервативный шаг цены, если метаданные
// не содержат ни tickSize, ни точности
const DefaultTickSize = 0.01

// Поля точности цены (порядок = приоритет)
var scaleFields = []string{"quotePrecision", "pricePrecision", "priceScale", "quoteScale"}

// DeriveTick выводит минимальный шаг цены из записи метаданных пары.
//
// Приоритет:
//  1. явное поле tickSize (в корне или внутри priceFilter)
//  2. 10^-scale из первого присутствующего поля точности
//  3. DefaultTickSize
func DeriveTick(info RawRecord) float64 {
	if tick, ok := coerceFloat(info["tickSize"]); ok && tick > 0 {
		return tick
	}

	if pf, ok := info["priceFilter"].(map[string]any); ok {
		if tick, ok := coerceFloat(pf["tickSize"]); ok && tick > 0 {
			return tick
		}
	}

	for _, f := range scaleFields {
		v, ok := info[f]
		if !ok || v == nil {
			continue
		}
		if scale, ok := coerceFloat(v); ok {
			return math.Pow(10, -math.Trunc(scale))
		}
	}

	return DefaultTickSize
}

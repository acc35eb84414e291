package exchange

import (
	"strconv"
	"strings"
)

// extract.go - извлечение полей позиции из разнородных ответов API
//
// Bitunix (и его вариации) отдают одно и то же значение под разными
// именами полей в зависимости от эндпоинта и версии. Вместо
// динамического перебора атрибутов - статические таблицы альтернатив
// с фиксированным приоритетом. Извлечение никогда не возвращает
// ошибку: отсутствующее или кривое поле деградирует в ноль/пустую
// строку, а вызывающий код единообразно применяет инвариант
// Position.Actionable.

// Таблицы альтернативных имён полей (порядок = приоритет)
var (
	sideFields     = []string{"side", "positionSide", "posSide"}
	qtyFields      = []string{"qty", "positionSize", "size", "volume", "availableQty"}
	entryFields    = []string{"avgOpenPrice", "entryPrice", "avgPrice"}
	notionalFields = []string{"positionValue"}
	idFields       = []string{"positionId", "id"}
	symbolFields   = []string{"symbol", "tradingPair"}
)

// ExtractPosition строит каноническую позицию из сырой записи API
func ExtractPosition(rec RawRecord) Position {
	qty := firstFloat(rec, qtyFields)
	entry := firstFloat(rec, entryFields)

	notional := firstFloat(rec, notionalFields)
	if notional == 0 && qty != 0 && entry > 0 {
		notional = abs(qty) * entry
	}

	return Position{
		Symbol:     RecordSymbol(rec),
		Side:       normalizeSide(firstString(rec, sideFields)),
		Qty:        qty,
		EntryPrice: entry,
		Notional:   notional,
		PositionID: firstString(rec, idFields),
	}
}

// RecordSymbol возвращает написание символа из сырой записи (верхний регистр)
func RecordSymbol(rec RawRecord) string {
	return strings.ToUpper(firstString(rec, symbolFields))
}

// normalizeSide приводит сторону к каноническому значению.
// В части ответов вместо LONG/SHORT приходит BUY/SELL.
func normalizeSide(s string) string {
	switch strings.ToUpper(s) {
	case "LONG", "BUY":
		return SideLong
	case "SHORT", "SELL":
		return SideShort
	default:
		return SideUnknown
	}
}

// firstString возвращает первое присутствующее строковое значение
func firstString(rec RawRecord, fields []string) string {
	for _, f := range fields {
		v, ok := rec[f]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

// firstFloat возвращает первое присутствующее числовое значение.
// Числа приходят и как JSON number, и как строки; нечитаемые
// значения пропускаются, при полном отсутствии возвращается 0.
func firstFloat(rec RawRecord, fields []string) float64 {
	for _, f := range fields {
		v, ok := rec[f]
		if !ok || v == nil {
			continue
		}
		if out, ok := coerceFloat(v); ok {
			return out
		}
	}
	return 0
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		out, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return out, true
	default:
		return 0, false
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

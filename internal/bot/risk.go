package bot

import (
	"errors"

	"stopguard/internal/exchange"
	"stopguard/pkg/utils"
)

// risk.go - расчёт цены стоп-лосса из бюджета риска
//
// Бюджет задаётся в USDT и переводится в процент от стоимости позиции,
// а затем в ценовое смещение от входа. Для лонга стоп ниже входа,
// для шорта - выше. Неизвестная сторона трактуется как шорт:
// консервативный стоп выше входа никогда не уходит в отрицательную цену.

// ErrStopNotPositive возвращается когда бюджет риска превышает
// жизнеспособный диапазон позиции и расчётный стоп уходит в ноль
// или ниже
var ErrStopNotPositive = errors.New("computed stop price is not positive: risk budget exceeds position range")

// ComputeStop рассчитывает цену стоп-лосса до квантования.
//
// pct = maxLoss × 100 / notional; delta = entry × pct / 100;
// стоп = entry − delta для лонга, entry + delta иначе.
func ComputeStop(pos exchange.Position, maxLossUSDT float64) (float64, error) {
	pct := maxLossUSDT * 100.0 / pos.Notional
	delta := pos.EntryPrice * pct / 100.0

	var stop float64
	if pos.Side == exchange.SideLong {
		stop = pos.EntryPrice - delta
	} else {
		stop = pos.EntryPrice + delta
	}

	if stop <= 0 {
		return 0, ErrStopNotPositive
	}
	return stop, nil
}

// QuantizeStop приводит расчётный стоп к тиковой сетке инструмента.
// Округление всегда вниз, независимо от стороны позиции: floor никогда
// не отодвигает стоп от входа в сторону увеличения риска сильнее,
// чем запрошено.
func QuantizeStop(stop, tick float64) float64 {
	return utils.QuantizeToTick(stop, tick)
}

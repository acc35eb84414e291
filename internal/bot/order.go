package bot

import (
	"context"
	"errors"

	"stopguard/internal/exchange"
	"stopguard/pkg/retry"
	"stopguard/pkg/utils"
)

// order.go - снятие ордеров при закрытии позиции
//
// Когда позиция закрыта или невалидна, все TP/SL и обычные ордера
// по символу снимаются. Снятие best-effort: у закрытой позиции часто
// нечего снимать, и ответ API об этом - ожидаемый исход, а не сбой.

// CancelOutcome - исход операции снятия ордеров
type CancelOutcome int

const (
	// CancelDone - ордера сняты
	CancelDone CancelOutcome = iota
	// CancelNothing - снимать было нечего (API ответил ошибкой уровня
	// бизнес-логики на отсутствие ордеров)
	CancelNothing
	// CancelFailed - транспортный сбой, ордера могли остаться
	CancelFailed
)

func (o CancelOutcome) String() string {
	switch o {
	case CancelDone:
		return "done"
	case CancelNothing:
		return "nothing"
	case CancelFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// classifyCancel переводит ошибку снятия в исход
func classifyCancel(err error) CancelOutcome {
	if err == nil {
		return CancelDone
	}
	var apiErr *exchange.APIError
	if errors.As(err, &apiErr) {
		// Биржа ответила, но снимать нечего либо запрос отвергнут -
		// для cleanup это равнозначно "нечего снимать"
		return CancelNothing
	}
	return CancelFailed
}

// CleanupOrders снимает все TP/SL и обычные ордера по символу.
//
// Сетевые сбои ретраятся агрессивно; итоговые исходы обоих вызовов
// возвращаются вызывающему, который явно решает игнорировать неудачу.
func CleanupOrders(ctx context.Context, gw Gateway, symbol string) (tpsl, orders CancelOutcome) {
	cfg := retry.AggressiveConfig()
	// Ответ API (в том числе "нечего снимать") не ретраится -
	// повторяются только транспортные сбои
	cfg.RetryIf = func(err error) bool {
		var apiErr *exchange.APIError
		if errors.As(err, &apiErr) {
			return false
		}
		return retry.RetryIfNotContext(err)
	}

	tpslErr := retry.Do(ctx, func() error {
		return gw.CancelAllTPSL(ctx, symbol)
	}, cfg)
	tpsl = classifyCancel(tpslErr)

	ordersErr := retry.Do(ctx, func() error {
		return gw.CancelAllOrders(ctx, symbol)
	}, cfg)
	orders = classifyCancel(ordersErr)

	if tpsl == CancelFailed || orders == CancelFailed {
		utils.Log().Warnw("order cleanup incomplete",
			"symbol", symbol,
			"tpsl", tpsl.String(),
			"orders", orders.String(),
		)
	}
	RecordCleanup(symbol, tpsl.String(), orders.String())
	return tpsl, orders
}

package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики цикла сопровождения
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации
// - Alertmanager для уведомлений об ошибках API

// ============ Метрики цикла ============

// PollCycles - количество итераций цикла по режимам
var PollCycles = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "stopguard",
		Subsystem: "bot",
		Name:      "poll_cycles_total",
		Help:      "Total number of reconciliation loop iterations",
	},
	[]string{"mode"}, // watching, managing
)

// PollDuration - длительность одной итерации
var PollDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "stopguard",
		Subsystem: "bot",
		Name:      "poll_duration_ms",
		Help:      "Duration of a single reconciliation iteration in milliseconds",
		Buckets:   []float64{50, 100, 200, 300, 500, 1000, 2000, 5000},
	},
	[]string{"mode"},
)

// PollErrors - ошибки итераций (цикл продолжает работу)
var PollErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "stopguard",
		Subsystem: "bot",
		Name:      "poll_errors_total",
		Help:      "Total number of failed reconciliation iterations",
	},
	[]string{"mode"},
)

// ============ Метрики ордеров ============

// StopOrdersPlaced - количество поставленных стоп-лоссов
var StopOrdersPlaced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "stopguard",
		Subsystem: "bot",
		Name:      "stop_orders_placed_total",
		Help:      "Total number of stop loss orders placed",
	},
	[]string{"symbol", "side"},
)

// StopSkippedNotPositive - пропуски из-за неположительного стопа
var StopSkippedNotPositive = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "stopguard",
		Subsystem: "bot",
		Name:      "stop_skipped_not_positive_total",
		Help:      "Ticks skipped because the computed stop price was not positive",
	},
	[]string{"symbol"},
)

// CleanupOutcomes - исходы снятия ордеров при закрытии позиции
var CleanupOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "stopguard",
		Subsystem: "bot",
		Name:      "cleanup_outcomes_total",
		Help:      "Order cleanup outcomes on position close",
	},
	[]string{"symbol", "kind", "outcome"}, // kind: tpsl, orders; outcome: done, nothing, failed
)

// ============ Метрики состояния ============

// CurrentMode - текущий режим бота (1 у активного режима)
var CurrentMode = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "stopguard",
		Subsystem: "bot",
		Name:      "mode",
		Help:      "Current bot mode (1 for the active mode, 0 otherwise)",
	},
	[]string{"mode"},
)

// PositionNotional - стоимость сопровождаемой позиции в USDT
var PositionNotional = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "stopguard",
		Subsystem: "bot",
		Name:      "position_notional_usdt",
		Help:      "Notional value of the managed position in USDT",
	},
	[]string{"symbol"},
)

// LastStopPrice - цена последнего поставленного стопа
var LastStopPrice = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "stopguard",
		Subsystem: "bot",
		Name:      "last_stop_price",
		Help:      "Price of the most recently placed stop order",
	},
	[]string{"symbol"},
)

// ============ Вспомогательные функции ============

// RecordPoll записывает итерацию цикла
func RecordPoll(mode string, durationMs float64, err error) {
	PollCycles.WithLabelValues(mode).Inc()
	PollDuration.WithLabelValues(mode).Observe(durationMs)
	if err != nil {
		PollErrors.WithLabelValues(mode).Inc()
	}
}

// RecordStopPlaced записывает постановку стоп-лосса
func RecordStopPlaced(symbol, side string, stopPrice, notional float64) {
	StopOrdersPlaced.WithLabelValues(symbol, side).Inc()
	LastStopPrice.WithLabelValues(symbol).Set(stopPrice)
	PositionNotional.WithLabelValues(symbol).Set(notional)
}

// RecordCleanup записывает исходы снятия ордеров
func RecordCleanup(symbol, tpslOutcome, ordersOutcome string) {
	CleanupOutcomes.WithLabelValues(symbol, "tpsl", tpslOutcome).Inc()
	CleanupOutcomes.WithLabelValues(symbol, "orders", ordersOutcome).Inc()
}

// UpdateMode обновляет gauge текущего режима
func UpdateMode(mode string) {
	for _, m := range []string{"WATCHING", "MANAGING"} {
		v := 0.0
		if m == mode {
			v = 1.0
		}
		CurrentMode.WithLabelValues(m).Set(v)
	}
}

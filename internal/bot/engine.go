package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"stopguard/internal/config"
	"stopguard/internal/exchange"
	"stopguard/internal/models"
	"stopguard/pkg/utils"
)

// notionalEpsilon - порог изменения стоимости позиции, при превышении
// которого стоп переставляется
const notionalEpsilon = 1e-9

// Gateway - интерфейс биржи, который использует цикл сопровождения.
// Реализуется exchange.Client; в тестах подменяется фейком.
type Gateway interface {
	GetTradingPair(ctx context.Context, symbol string) (exchange.RawRecord, error)
	GetPendingPositions(ctx context.Context) ([]exchange.RawRecord, error)
	CancelAllOrders(ctx context.Context, symbol string) error
	CancelAllTPSL(ctx context.Context, symbol string) error
	PlaceStopLoss(ctx context.Context, req exchange.StopLossRequest) error
}

// Inputs - параметры сопровождения, введённые пользователем
type Inputs struct {
	Symbol      string  // символ с суффиксом USDT
	MaxLossUSDT float64 // максимальный убыток в USDT
}

// InputSource - источник пользовательского ввода.
// Реализуется консольным промптом (internal/cli); в тестах подменяется.
type InputSource interface {
	ReadInputs(ctx context.Context) (Inputs, error)
}

// Journal - опциональный журнал событий сопровождения.
// Реализуется repository.StopEventRepository поверх PostgreSQL.
type Journal interface {
	RecordEvent(ctx context.Context, event *models.StopEvent) error
}

// Broadcaster - опциональная отправка real-time обновлений клиентам.
// Реализуется пакетом internal/websocket/Hub.
type Broadcaster interface {
	BroadcastStatus(status models.BotStatus)
	BroadcastStopUpdate(update models.StopUpdate)
}

// Engine - цикл сопровождения стоп-лосса
//
// Один последовательный цикл опроса, без параллельных запросов.
// Состояние принадлежит только циклу; mutex нужен исключительно для
// снимков Status, которые читают горутины HTTP сервера.
//
// Режимы:
// - WATCHING: позиции нет, опрос раз в PollInterval
// - MANAGING: позиция найдена, каждый тик пересчитывает стоп и
//   переставляет его при изменении стоимости позиции
type Engine struct {
	gw    Gateway
	input InputSource

	// Опциональные зависимости, допускают nil
	journal Journal
	hub     Broadcaster

	pollInterval time.Duration // пауза между тиками WATCHING
	retryDelay   time.Duration // пауза после неположительного стопа
	promptDelay  time.Duration // пауза после невалидного ввода

	mu            sync.RWMutex
	state         models.ManagementState
	lastStopPrice float64
	tickSize      float64
	updatedAt     time.Time
}

// NewEngine создаёт цикл сопровождения.
//
// journal и hub могут быть nil - журналирование и broadcast
// отключаются.
func NewEngine(gw Gateway, input InputSource, cfg config.BotConfig, journal Journal, hub Broadcaster) *Engine {
	return &Engine{
		gw:           gw,
		input:        input,
		journal:      journal,
		hub:          hub,
		pollInterval: cfg.PollInterval,
		retryDelay:   cfg.RetryDelay,
		promptDelay:  cfg.PromptRetryDelay,
		state: models.ManagementState{
			Mode: models.ModeWatching,
		},
	}
}

// Run запускает цикл сопровождения и блокируется до отмены контекста.
//
// Любая ошибка одного тика логируется, цикл продолжает работу:
// деградация до повторных попыток вместо падения процесса.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.promptInputs(ctx); err != nil {
		return err
	}
	UpdateMode(models.ModeWatching)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		mode := e.currentMode()
		start := time.Now()

		var delay time.Duration
		var err error
		if mode == models.ModeManaging {
			delay, err = e.managingTick(ctx)
		} else {
			delay, err = e.watchingTick(ctx)
		}

		RecordPoll(mode, float64(time.Since(start).Milliseconds()), err)

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			utils.Log().Errorw("tick failed, continuing", "mode", mode, "error", err)
			delay = e.pollInterval
		}

		if delay > 0 {
			if !sleepCtx(ctx, delay) {
				return nil
			}
		}
	}
}

// watchingTick опрашивает позиции в режиме ожидания.
// Возвращает паузу до следующего тика.
func (e *Engine) watchingTick(ctx context.Context) (time.Duration, error) {
	records, err := e.gw.GetPendingPositions(ctx)
	if err != nil {
		return 0, err
	}

	rec, apiSymbol := FindPositionFuzzy(records, e.currentSymbol())
	if rec != nil {
		pos := exchange.ExtractPosition(rec)
		if pos.Qty != 0 {
			utils.Log().Infow("position detected, starting stop management",
				"symbol", apiSymbol,
				"side", pos.Side,
				"qty", pos.Qty,
			)
			e.enterManaging(ctx, apiSymbol)
			// Без паузы: первый управляющий тик сразу ставит стоп
			return 0, nil
		}
	}

	utils.Log().Infow("no open position, watching", "symbol", e.currentSymbol())
	return e.pollInterval, nil
}

// managingTick пересчитывает и при необходимости переставляет стоп.
// Возвращает паузу до следующего тика (0 = продолжить немедленно).
func (e *Engine) managingTick(ctx context.Context) (time.Duration, error) {
	records, err := e.gw.GetPendingPositions(ctx)
	if err != nil {
		return 0, err
	}

	rec, apiSymbol := FindPositionFuzzy(records, e.currentSymbol())

	var pos exchange.Position
	if rec != nil {
		pos = exchange.ExtractPosition(rec)
	}

	if rec == nil || !pos.Actionable() {
		return 0, e.handlePositionClosed(ctx, apiSymbol)
	}

	e.mu.Lock()
	e.state.ResolvedSymbol = apiSymbol
	e.updatedAt = time.Now()
	e.mu.Unlock()

	stop, err := ComputeStop(pos, e.currentMaxLoss())
	if err != nil {
		if errors.Is(err, ErrStopNotPositive) {
			utils.Log().Warnw("computed stop is not positive, check the max loss budget",
				"symbol", apiSymbol,
				"entry", pos.EntryPrice,
				"notional", pos.Notional,
			)
			StopSkippedNotPositive.WithLabelValues(apiSymbol).Inc()
			return e.retryDelay, nil
		}
		return 0, err
	}

	info, err := e.gw.GetTradingPair(ctx, apiSymbol)
	if err != nil {
		return 0, err
	}
	tick := exchange.DeriveTick(info)
	stopQ := QuantizeStop(stop, tick)

	e.mu.Lock()
	e.tickSize = tick
	lastNotional := e.state.LastNotionalSeen
	e.mu.Unlock()

	if abs(pos.Notional-lastNotional) > notionalEpsilon {
		if err := e.placeStop(ctx, apiSymbol, pos, stopQ); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

// placeStop ставит стоп-лосс и фиксирует новую стоимость позиции
func (e *Engine) placeStop(ctx context.Context, symbol string, pos exchange.Position, stopPrice float64) error {
	utils.Log().Infow("placing stop loss",
		"symbol", symbol,
		"side", pos.Side,
		"stop_price", stopPrice,
		"notional", pos.Notional,
	)

	err := e.gw.PlaceStopLoss(ctx, exchange.StopLossRequest{
		Symbol:     symbol,
		PositionID: pos.PositionID,
		SLPrice:    stopPrice,
		SLQty:      abs(pos.Qty),
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.state.LastNotionalSeen = pos.Notional
	e.lastStopPrice = stopPrice
	e.updatedAt = time.Now()
	maxLoss := e.state.MaxLossUSDT
	e.mu.Unlock()

	RecordStopPlaced(symbol, pos.Side, stopPrice, pos.Notional)

	e.recordEvent(ctx, &models.StopEvent{
		Timestamp:  time.Now(),
		Type:       models.EventStopPlaced,
		Symbol:     symbol,
		PositionID: pos.PositionID,
		Side:       pos.Side,
		StopPrice:  stopPrice,
		Notional:   pos.Notional,
		MaxLoss:    maxLoss,
	})
	if e.hub != nil {
		e.hub.BroadcastStopUpdate(models.StopUpdate{
			Symbol:    symbol,
			Side:      pos.Side,
			StopPrice: stopPrice,
			Qty:       abs(pos.Qty),
			Notional:  pos.Notional,
			Timestamp: time.Now(),
		})
	}
	return nil
}

// handlePositionClosed снимает ордера закрытой позиции, сбрасывает
// состояние и запрашивает новые параметры сопровождения
func (e *Engine) handlePositionClosed(ctx context.Context, apiSymbol string) error {
	symbol := apiSymbol
	if symbol == "" {
		symbol = e.resolvedOrUserSymbol()
	}

	utils.Log().Infow("position closed or not actionable, cancelling orders", "symbol", symbol)

	// Best-effort: неудача снятия не прерывает возврат в WATCHING
	CleanupOrders(ctx, e.gw, symbol)

	e.recordEvent(ctx, &models.StopEvent{
		Timestamp: time.Now(),
		Type:      models.EventPositionClosed,
		Symbol:    symbol,
		Message:   "orders cancelled, returning to watch mode",
	})

	e.mu.Lock()
	e.state = models.ManagementState{Mode: models.ModeWatching}
	e.lastStopPrice = 0
	e.tickSize = 0
	e.updatedAt = time.Now()
	e.mu.Unlock()
	UpdateMode(models.ModeWatching)
	e.broadcastStatus()

	return e.promptInputs(ctx)
}

// enterManaging переводит бот в режим сопровождения
func (e *Engine) enterManaging(ctx context.Context, apiSymbol string) {
	e.mu.Lock()
	if !CanTransition(e.state.Mode, models.ModeManaging) {
		e.mu.Unlock()
		return
	}
	e.state.Mode = models.ModeManaging
	e.state.ResolvedSymbol = apiSymbol
	// Сентинел: первый тик сопровождения всегда ставит стоп
	e.state.LastNotionalSeen = 0
	e.updatedAt = time.Now()
	e.mu.Unlock()

	UpdateMode(models.ModeManaging)
	e.recordEvent(ctx, &models.StopEvent{
		Timestamp: time.Now(),
		Type:      models.EventModeChange,
		Symbol:    apiSymbol,
		Message:   ModeInfo(models.ModeManaging),
	})
	e.broadcastStatus()
}

// promptInputs запрашивает параметры у источника ввода до первого
// валидного ответа
func (e *Engine) promptInputs(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		inputs, err := e.input.ReadInputs(ctx)
		if err == nil {
			err = validateInputs(inputs)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			utils.Log().Warnw("invalid inputs", "error", err)
			if !sleepCtx(ctx, e.promptDelay) {
				return nil
			}
			continue
		}

		e.mu.Lock()
		e.state.Symbol = inputs.Symbol
		e.state.MaxLossUSDT = inputs.MaxLossUSDT
		e.updatedAt = time.Now()
		e.mu.Unlock()
		e.broadcastStatus()
		return nil
	}
}

func validateInputs(in Inputs) error {
	if err := utils.ValidateSymbol(in.Symbol); err != nil {
		return err
	}
	return utils.ValidateMaxLoss(in.MaxLossUSDT)
}

// Status возвращает снимок состояния бота
func (e *Engine) Status() models.BotStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return models.BotStatus{
		Mode:           e.state.Mode,
		Symbol:         e.state.Symbol,
		ResolvedSymbol: e.state.ResolvedSymbol,
		MaxLossUSDT:    e.state.MaxLossUSDT,
		LastNotional:   e.state.LastNotionalSeen,
		LastStopPrice:  e.lastStopPrice,
		TickSize:       e.tickSize,
		UpdatedAt:      e.updatedAt,
	}
}

func (e *Engine) currentMode() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Mode
}

func (e *Engine) currentSymbol() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Symbol
}

func (e *Engine) currentMaxLoss() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.MaxLossUSDT
}

func (e *Engine) resolvedOrUserSymbol() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state.ResolvedSymbol != "" {
		return e.state.ResolvedSymbol
	}
	return e.state.Symbol
}

// recordEvent пишет событие в журнал, если журнал подключён.
// Ошибка журнала не влияет на сопровождение.
func (e *Engine) recordEvent(ctx context.Context, event *models.StopEvent) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordEvent(ctx, event); err != nil {
		utils.Log().Warnw("failed to record stop event", "type", event.Type, "error", err)
	}
}

func (e *Engine) broadcastStatus() {
	if e.hub != nil {
		e.hub.BroadcastStatus(e.Status())
	}
}

// sleepCtx спит delay или до отмены контекста.
// Возвращает false если контекст отменён.
func sleepCtx(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"stopguard/internal/config"
	"stopguard/internal/exchange"
	"stopguard/internal/models"
)

// fakeGateway - фейковая биржа для тестов цикла
type fakeGateway struct {
	positions     []exchange.RawRecord
	positionsErr  error
	tradingPair   exchange.RawRecord
	tradingPairs  int // счётчик вызовов GetTradingPair
	placed        []exchange.StopLossRequest
	placeErr      error
	cancelledTPSL []string
	cancelledOrds []string
	cancelTPSLErr error
	cancelOrdsErr error
}

func (f *fakeGateway) GetTradingPair(ctx context.Context, symbol string) (exchange.RawRecord, error) {
	f.tradingPairs++
	if f.tradingPair == nil {
		return exchange.RawRecord{"tickSize": "0.1"}, nil
	}
	return f.tradingPair, nil
}

func (f *fakeGateway) GetPendingPositions(ctx context.Context) ([]exchange.RawRecord, error) {
	return f.positions, f.positionsErr
}

func (f *fakeGateway) CancelAllOrders(ctx context.Context, symbol string) error {
	f.cancelledOrds = append(f.cancelledOrds, symbol)
	return f.cancelOrdsErr
}

func (f *fakeGateway) CancelAllTPSL(ctx context.Context, symbol string) error {
	f.cancelledTPSL = append(f.cancelledTPSL, symbol)
	return f.cancelTPSLErr
}

func (f *fakeGateway) PlaceStopLoss(ctx context.Context, req exchange.StopLossRequest) error {
	if f.placeErr != nil {
		return f.placeErr
	}
	f.placed = append(f.placed, req)
	return nil
}

// fakeInput - очередь заранее заданных вводов
type fakeInput struct {
	queue []Inputs
}

func (f *fakeInput) ReadInputs(ctx context.Context) (Inputs, error) {
	if len(f.queue) == 0 {
		return Inputs{}, errors.New("input queue exhausted")
	}
	in := f.queue[0]
	f.queue = f.queue[1:]
	return in, nil
}

func testBotConfig() config.BotConfig {
	return config.BotConfig{
		PollInterval:     3 * time.Second,
		RetryDelay:       2 * time.Second,
		PromptRetryDelay: time.Millisecond,
	}
}

func newTestEngine(gw *fakeGateway, symbol string, maxLoss float64) *Engine {
	e := NewEngine(gw, &fakeInput{}, testBotConfig(), nil, nil)
	e.state.Symbol = symbol
	e.state.MaxLossUSDT = maxLoss
	return e
}

func longPosition() exchange.RawRecord {
	return exchange.RawRecord{
		"symbol":        "BTC-USDT",
		"side":          "LONG",
		"qty":           "10",
		"avgOpenPrice":  "100",
		"positionValue": "1000",
		"positionId":    "pos-1",
	}
}

func TestWatchingTickDetectsPosition(t *testing.T) {
	gw := &fakeGateway{positions: []exchange.RawRecord{longPosition()}}
	e := newTestEngine(gw, "BTCUSDT", 50)

	delay, err := e.watchingTick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delay != 0 {
		t.Errorf("delay = %v, want 0 (immediate first managing tick)", delay)
	}

	st := e.Status()
	if st.Mode != models.ModeManaging {
		t.Errorf("mode = %s, want MANAGING", st.Mode)
	}
	if st.ResolvedSymbol != "BTC-USDT" {
		t.Errorf("resolved symbol = %q, want BTC-USDT", st.ResolvedSymbol)
	}
	if st.LastNotional != 0 {
		t.Errorf("lastNotional = %v, want sentinel 0", st.LastNotional)
	}
}

func TestWatchingTickNoPosition(t *testing.T) {
	gw := &fakeGateway{}
	e := newTestEngine(gw, "BTCUSDT", 50)

	delay, err := e.watchingTick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delay != e.pollInterval {
		t.Errorf("delay = %v, want poll interval %v", delay, e.pollInterval)
	}
	if e.Status().Mode != models.ModeWatching {
		t.Errorf("mode changed unexpectedly to %s", e.Status().Mode)
	}
}

func TestWatchingTickZeroQtyStaysWatching(t *testing.T) {
	rec := longPosition()
	rec["qty"] = "0"
	gw := &fakeGateway{positions: []exchange.RawRecord{rec}}
	e := newTestEngine(gw, "BTCUSDT", 50)

	if _, err := e.watchingTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status().Mode != models.ModeWatching {
		t.Errorf("mode = %s, want WATCHING", e.Status().Mode)
	}
}

func TestManagingTickPlacesStop(t *testing.T) {
	gw := &fakeGateway{positions: []exchange.RawRecord{longPosition()}}
	e := newTestEngine(gw, "BTCUSDT", 50)
	e.state.Mode = models.ModeManaging

	delay, err := e.managingTick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delay != 0 {
		t.Errorf("delay = %v, want 0", delay)
	}

	if len(gw.placed) != 1 {
		t.Fatalf("placed %d stops, want 1", len(gw.placed))
	}
	req := gw.placed[0]
	// entry=100, notional=1000, бюджет 50 → pct=5 → стоп 95, тик 0.1 → 95.0
	if req.SLPrice != 95.0 {
		t.Errorf("SLPrice = %v, want 95.0", req.SLPrice)
	}
	if req.SLQty != 10 {
		t.Errorf("SLQty = %v, want 10", req.SLQty)
	}
	if req.Symbol != "BTC-USDT" {
		t.Errorf("symbol = %q, want exchange spelling BTC-USDT", req.Symbol)
	}
	if req.PositionID != "pos-1" {
		t.Errorf("positionId = %q, want pos-1", req.PositionID)
	}
	if e.Status().LastNotional != 1000 {
		t.Errorf("lastNotional = %v, want 1000", e.Status().LastNotional)
	}
}

func TestManagingTickIdempotence(t *testing.T) {
	gw := &fakeGateway{positions: []exchange.RawRecord{longPosition()}}
	e := newTestEngine(gw, "BTCUSDT", 50)
	e.state.Mode = models.ModeManaging

	for i := 0; i < 3; i++ {
		if _, err := e.managingTick(context.Background()); err != nil {
			t.Fatalf("tick %d: unexpected error: %v", i, err)
		}
	}

	// Стоимость позиции не менялась: стоп ставится ровно один раз
	if len(gw.placed) != 1 {
		t.Errorf("placed %d stops across unchanged ticks, want 1", len(gw.placed))
	}
}

func TestManagingTickReplacesOnNotionalChange(t *testing.T) {
	rec := longPosition()
	gw := &fakeGateway{positions: []exchange.RawRecord{rec}}
	e := newTestEngine(gw, "BTCUSDT", 50)
	e.state.Mode = models.ModeManaging

	if _, err := e.managingTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Частичное закрытие: размер и стоимость уменьшились
	rec["qty"] = "5"
	rec["positionValue"] = "500"

	if _, err := e.managingTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gw.placed) != 2 {
		t.Fatalf("placed %d stops, want 2", len(gw.placed))
	}
	second := gw.placed[1]
	// notional=500, бюджет 50 → pct=10 → стоп 90
	if second.SLPrice != 90.0 {
		t.Errorf("second SLPrice = %v, want 90.0", second.SLPrice)
	}
	if second.SLQty != 5 {
		t.Errorf("second SLQty = %v, want 5", second.SLQty)
	}
}

func TestManagingTickNonPositiveStop(t *testing.T) {
	gw := &fakeGateway{positions: []exchange.RawRecord{{
		"symbol":        "BTCUSDT",
		"side":          "LONG",
		"qty":           "1",
		"avgOpenPrice":  "10",
		"positionValue": "10",
		"positionId":    "pos-1",
	}}}
	e := newTestEngine(gw, "BTCUSDT", 50)
	e.state.Mode = models.ModeManaging

	delay, err := e.managingTick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delay != e.retryDelay {
		t.Errorf("delay = %v, want retry delay %v", delay, e.retryDelay)
	}
	if len(gw.placed) != 0 {
		t.Errorf("placed %d stops, want 0", len(gw.placed))
	}
	// Метаданные пары не запрашиваются, пока стоп невалиден
	if gw.tradingPairs != 0 {
		t.Errorf("GetTradingPair called %d times, want 0", gw.tradingPairs)
	}
}

func TestManagingTickPositionClosedCleansUp(t *testing.T) {
	rec := longPosition()
	rec["qty"] = "0" // позиция закрыта, остальные поля валидны
	gw := &fakeGateway{positions: []exchange.RawRecord{rec}}
	e := NewEngine(gw, &fakeInput{queue: []Inputs{{Symbol: "ETHUSDT", MaxLossUSDT: 25}}}, testBotConfig(), nil, nil)
	e.state.Mode = models.ModeManaging
	e.state.Symbol = "BTCUSDT"
	e.state.ResolvedSymbol = "BTC-USDT"
	e.state.MaxLossUSDT = 50

	if _, err := e.managingTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gw.cancelledTPSL) != 1 || gw.cancelledTPSL[0] != "BTC-USDT" {
		t.Errorf("cancelled TPSL = %v, want [BTC-USDT]", gw.cancelledTPSL)
	}
	if len(gw.cancelledOrds) != 1 || gw.cancelledOrds[0] != "BTC-USDT" {
		t.Errorf("cancelled orders = %v, want [BTC-USDT]", gw.cancelledOrds)
	}

	st := e.Status()
	if st.Mode != models.ModeWatching {
		t.Errorf("mode = %s, want WATCHING", st.Mode)
	}
	if st.Symbol != "ETHUSDT" || st.MaxLossUSDT != 25 {
		t.Errorf("new inputs not applied: %+v", st)
	}
	if st.LastNotional != 0 {
		t.Errorf("lastNotional = %v, want reset to 0", st.LastNotional)
	}
}

func TestManagingTickMissingPositionCleansUpUserSymbol(t *testing.T) {
	gw := &fakeGateway{} // позиций нет вовсе
	e := NewEngine(gw, &fakeInput{queue: []Inputs{{Symbol: "ETHUSDT", MaxLossUSDT: 25}}}, testBotConfig(), nil, nil)
	e.state.Mode = models.ModeManaging
	e.state.Symbol = "BTCUSDT"

	if _, err := e.managingTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.cancelledOrds) != 1 || gw.cancelledOrds[0] != "BTCUSDT" {
		t.Errorf("cancelled orders = %v, want [BTCUSDT]", gw.cancelledOrds)
	}
}

func TestManagingTickPropagatesFetchError(t *testing.T) {
	gw := &fakeGateway{positionsErr: errors.New("network down")}
	e := newTestEngine(gw, "BTCUSDT", 50)
	e.state.Mode = models.ModeManaging

	if _, err := e.managingTick(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if e.Status().Mode != models.ModeManaging {
		t.Errorf("mode = %s, want MANAGING preserved across failed tick", e.Status().Mode)
	}
}

func TestPromptInputsValidation(t *testing.T) {
	input := &fakeInput{queue: []Inputs{
		{Symbol: "BTC-USDT!", MaxLossUSDT: 50}, // недопустимые символы
		{Symbol: "BTCUSDT", MaxLossUSDT: -1},   // неположительный бюджет
		{Symbol: "BTCUSDT", MaxLossUSDT: 50},
	}}
	e := NewEngine(&fakeGateway{}, input, testBotConfig(), nil, nil)

	if err := e.promptInputs(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := e.Status()
	if st.Symbol != "BTCUSDT" || st.MaxLossUSDT != 50 {
		t.Errorf("accepted inputs = %q / %v, want BTCUSDT / 50", st.Symbol, st.MaxLossUSDT)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	gw := &fakeGateway{}
	input := &fakeInput{queue: []Inputs{{Symbol: "BTCUSDT", MaxLossUSDT: 50}}}
	cfg := testBotConfig()
	cfg.PollInterval = time.Millisecond
	e := NewEngine(gw, input, cfg, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil on cancellation", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

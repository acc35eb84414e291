package exchange

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"stopguard/pkg/ratelimit"
	"stopguard/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	apiPrefix = "/api/v1"

	pathTradingPairs     = apiPrefix + "/futures/market/trading_pairs"
	pathPendingPositions = apiPrefix + "/futures/position/get_pending_positions"
	pathCancelAllOrders  = apiPrefix + "/futures/trade/cancel_all_orders"
	pathCancelAllTPSL    = apiPrefix + "/futures/tpsl/cancel_all"
	pathPlaceTPSL        = apiPrefix + "/futures/tpsl/place_order"
)

// debugBodyLimit - сколько байт ответа попадает в debug лог
const debugBodyLimit = 500

// Client - REST клиент Bitunix futures
//
// Все приватные вызовы подписываются (sign.go), исходящие запросы
// проходят через token bucket limiter.
type Client struct {
	apiKey    string
	apiSecret string
	baseURL   string

	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
}

// NewClient создаёт клиент Bitunix
//
// limiter может быть nil - тогда запросы не лимитируются
// (используется в тестах).
func NewClient(apiKey, apiSecret, baseURL string, httpClient *http.Client, limiter *ratelimit.RateLimiter) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultHTTPClientConfig())
	}
	return &Client{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// doRequest выполняет подписанный HTTP запрос к Bitunix API
//
// body маршалится в compact JSON ровно один раз: подписываются
// те же байты, что уходят на провод (порядок ключей = порядок
// полей структуры).
func (c *Client) doRequest(ctx context.Context, method, path string, params map[string]string, body any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var bodyBytes []byte
	if method != http.MethodGet && body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}

	for k, v := range signHeaders(c.apiKey, c.apiSecret, params, bodyBytes) {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bitunix %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bitunix %s %s: read body: %w", method, path, err)
	}

	utils.Log().Debugw("bitunix request",
		"method", method,
		"path", path,
		"params", params,
		"status", resp.StatusCode,
		"response", truncate(string(respBody), debugBodyLimit),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// envelope - обёртка ответа Bitunix; полезная нагрузка лежит
// в первом непустом из data/result/list
type envelope struct {
	Data   jsoniter.RawMessage `json:"data"`
	Result jsoniter.RawMessage `json:"result"`
	List   jsoniter.RawMessage `json:"list"`
}

// payload извлекает полезную нагрузку из обёртки ответа
func payload(raw []byte) (jsoniter.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &APIError{Status: http.StatusOK, Body: truncate(string(raw), debugBodyLimit)}
	}
	for _, candidate := range []jsoniter.RawMessage{env.Data, env.Result, env.List} {
		if len(candidate) > 0 && string(candidate) != "null" {
			return candidate, nil
		}
	}
	return nil, nil
}

// GetTradingPair возвращает метаданные торговой пары
//
// Эндпоинт отдаёт либо список с одним элементом, либо объект -
// принимаются обе формы.
func (c *Client) GetTradingPair(ctx context.Context, symbol string) (RawRecord, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, pathTradingPairs, map[string]string{"symbols": symbol}, nil)
	if err != nil {
		return nil, err
	}

	data, err := payload(raw)
	if err != nil {
		return nil, err
	}

	var list []RawRecord
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 {
			return list[0], nil
		}
		return nil, fmt.Errorf("trading pair not found: %s", symbol)
	}

	var rec RawRecord
	if err := json.Unmarshal(data, &rec); err == nil && len(rec) > 0 {
		return rec, nil
	}

	return nil, fmt.Errorf("trading pair not found: %s", symbol)
}

// GetPendingPositions возвращает все открытые позиции аккаунта
//
// Эндпоинт не принимает фильтр по символу - сопоставление делает
// вызывающий код через fuzzy match.
func (c *Client) GetPendingPositions(ctx context.Context) ([]RawRecord, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, pathPendingPositions, nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := payload(raw)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var list []RawRecord
	if err := json.Unmarshal(data, &list); err != nil {
		// Не список - трактуем как отсутствие позиций
		return nil, nil
	}
	return list, nil
}

type symbolBody struct {
	Symbol string `json:"symbol"`
}

// CancelAllOrders снимает все открытые ордера по символу
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) error {
	_, err := c.doRequest(ctx, http.MethodPost, pathCancelAllOrders, nil, symbolBody{Symbol: symbol})
	return err
}

// CancelAllTPSL снимает все TP/SL ордера по символу
func (c *Client) CancelAllTPSL(ctx context.Context, symbol string) error {
	_, err := c.doRequest(ctx, http.MethodPost, pathCancelAllTPSL, nil, symbolBody{Symbol: symbol})
	return err
}

// placeTPSLBody - тело постановки стопа; все числовые значения
// биржа принимает строками
type placeTPSLBody struct {
	Symbol      string `json:"symbol"`
	PositionID  string `json:"positionId"`
	SLPrice     string `json:"slPrice"`
	SLStopType  string `json:"slStopType"`
	SLOrderType string `json:"slOrderType"`
	SLQty       string `json:"slQty"`
}

// PlaceStopLoss ставит стоп-лосс на позицию
func (c *Client) PlaceStopLoss(ctx context.Context, req StopLossRequest) error {
	stopType := req.StopType
	if stopType == "" {
		stopType = StopTypeLastPrice
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = OrderTypeMarket
	}

	body := placeTPSLBody{
		Symbol:      req.Symbol,
		PositionID:  req.PositionID,
		SLPrice:     strconv.FormatFloat(req.SLPrice, 'f', -1, 64),
		SLStopType:  stopType,
		SLOrderType: orderType,
		SLQty:       strconv.FormatFloat(req.SLQty, 'f', -1, 64),
	}

	_, err := c.doRequest(ctx, http.MethodPost, pathPlaceTPSL, nil, body)
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package exchange

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"
)

// sign.go - подпись запросов Bitunix
//
// Схема (двойной SHA-256, не HMAC):
//  1. nonce: случайная строка из 32 букв/цифр
//  2. timestamp: миллисекунды Unix
//  3. канонический query: ключи сортируются, пары key=value
//     конкатенируются БЕЗ разделителей
//  4. канонический body: пустая строка для GET/без тела, иначе
//     ровно те байты compact JSON, которые уйдут на провод
//  5. digest = hex(SHA256(nonce + ts + apiKey + query + body))
//  6. sign   = hex(SHA256(digest + apiSecret))

const nonceLength = 32

const nonceCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newNonce генерирует случайный буквенно-цифровой nonce.
// Криптостойкость не требуется - nonce лишь исключает повтор подписи.
func newNonce(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(nonceCharset[rand.Intn(len(nonceCharset))])
	}
	return b.String()
}

// canonicalQuery сортирует ключи лексикографически и конкатенирует
// пары key=value без разделителей
func canonicalQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// signPayload вычисляет подпись для канонизированных компонентов.
// Чистая функция - проверяется тестовыми векторами.
func signPayload(nonce, timestamp, apiKey, query, body, apiSecret string) string {
	digestSum := sha256.Sum256([]byte(nonce + timestamp + apiKey + query + body))
	digest := hex.EncodeToString(digestSum[:])

	signSum := sha256.Sum256([]byte(digest + apiSecret))
	return hex.EncodeToString(signSum[:])
}

// signHeaders собирает полный набор заголовков аутентификации.
// body - байты тела в том виде, в котором они будут отправлены
// (nil для GET). Подпись не может завершиться ошибкой: это чистое
// вычисление над входами.
func signHeaders(apiKey, apiSecret string, params map[string]string, body []byte) map[string]string {
	nonce := newNonce(nonceLength)
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	bodyStr := ""
	if len(body) > 0 {
		bodyStr = string(body)
	}

	return map[string]string{
		"api-key":      apiKey,
		"nonce":        nonce,
		"timestamp":    ts,
		"sign":         signPayload(nonce, ts, apiKey, canonicalQuery(params), bodyStr, apiSecret),
		"language":     "en-US",
		"Content-Type": "application/json",
	}
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"stopguard/internal/bot"
)

// Console читает параметры сопровождения из интерактивного терминала.
//
// Символ автоматически дополняется суффиксом USDT: ввод "BTC"
// превращается в "BTCUSDT". Валидацию выполняет вызывающая сторона,
// Console отвечает только за чтение и разбор.
type Console struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewConsole создает источник ввода поверх stdin/stdout.
func NewConsole() *Console {
	return New(os.Stdin, os.Stdout)
}

// New создает источник ввода поверх произвольных потоков.
// Используется в тестах для подмены терминала.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// ReadInputs запрашивает у пользователя символ и максимальный убыток.
//
// Блокирует до ввода обеих строк. Ошибка возвращается при пустом
// символе, неразбираемом числе или закрытии потока ввода.
func (c *Console) ReadInputs(ctx context.Context) (bot.Inputs, error) {
	if err := ctx.Err(); err != nil {
		return bot.Inputs{}, err
	}

	symbol, err := c.readLine("Введите символ (например BTC): ")
	if err != nil {
		return bot.Inputs{}, fmt.Errorf("failed to read symbol: %w", err)
	}
	symbol = strings.ToUpper(symbol)
	if symbol == "" {
		return bot.Inputs{}, fmt.Errorf("symbol must not be empty")
	}
	if !strings.HasSuffix(symbol, "USDT") {
		symbol += "USDT"
	}

	raw, err := c.readLine("Введите максимальный убыток в USDT: ")
	if err != nil {
		return bot.Inputs{}, fmt.Errorf("failed to read max loss: %w", err)
	}
	maxLoss, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return bot.Inputs{}, fmt.Errorf("invalid max loss %q: %w", raw, err)
	}

	return bot.Inputs{
		Symbol:      symbol,
		MaxLossUSDT: maxLoss,
	}, nil
}

// readLine печатает приглашение и читает одну строку без перевода строки.
func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

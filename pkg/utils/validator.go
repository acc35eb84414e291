package utils

// validator.go - валидация пользовательского ввода
//
// Назначение:
// Проверка корректности данных, вводимых в консоли и приходящих
// из конфигурации.
//
// Функции:
// - ValidateSymbol: проверка формата символа (BTC, BTCUSDT)
// - ValidateMaxLoss: проверка бюджета риска (> 0)
// - ValidateAPIKey: базовая проверка API ключа
//
// Возвращает error с описанием проблемы или nil

import (
	"errors"
	"fmt"
)

// Ошибки валидации
var (
	ErrEmptySymbol   = errors.New("symbol cannot be empty")
	ErrSymbolFormat  = errors.New("symbol must contain only letters and digits")
	ErrMaxLossRange  = errors.New("max loss budget must be positive")
	ErrEmptyAPIKey   = errors.New("API key cannot be empty")
	ErrAPIKeyTooShort = errors.New("API key is suspiciously short")
)

// ValidateSymbol проверяет корневой символ торговой пары.
// Допускаются латинские буквы и цифры (BTC, 1000PEPE, BTCUSDT).
func ValidateSymbol(s string) error {
	if s == "" {
		return ErrEmptySymbol
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isLetter && !isDigit {
			return fmt.Errorf("%w: %q", ErrSymbolFormat, s)
		}
	}
	return nil
}

// ValidateMaxLoss проверяет бюджет максимальных потерь в USDT.
func ValidateMaxLoss(v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: got %v", ErrMaxLossRange, v)
	}
	return nil
}

// ValidateAPIKey выполняет базовую проверку API ключа биржи.
// Формат ключей у бирж разный, поэтому проверяется только длина.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrEmptyAPIKey
	}
	if len(key) < 8 {
		return ErrAPIKeyTooShort
	}
	return nil
}

package exchange

import "strings"

// symbol.go - нормализация символов торговых пар
//
// Биржи пишут один и тот же контракт по-разному: BTCUSDT, BTC_USDT,
// BTC-USDT, BTCUSDT-PERP. Нормализация + перебор вариантов позволяют
// сопоставить позицию пользовательскому символу без запроса списка
// всех контрактов.

// NormalizeSymbol приводит символ к канонической форме для сравнения:
// верхний регистр, без дефисов/подчёркиваний, без суффикса PERP.
// Только для сравнения, никогда для отображения.
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "PERP", "")
	return s
}

// SymbolVariants перечисляет известные написания пары для корневого символа.
//
// Если base уже оканчивается на USDT, суффикс отрезается для получения root;
// иначе вход считается root, а base = root + USDT.
// Всегда ровно 4 варианта: base, root_USDT, root-USDT, base-PERP.
func SymbolVariants(base string) []string {
	base = strings.ToUpper(base)
	root := base
	if strings.HasSuffix(base, "USDT") {
		root = strings.TrimSuffix(base, "USDT")
	} else {
		base = base + "USDT"
	}
	return []string{
		base,
		root + "_USDT",
		root + "-USDT",
		base + "-PERP",
	}
}

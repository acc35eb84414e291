package exchange

import (
	"reflect"
	"testing"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "BTCUSDT", "BTCUSDT"},
		{"lowercase", "btcusdt", "BTCUSDT"},
		{"underscore", "BTC_USDT", "BTCUSDT"},
		{"dash", "BTC-USDT", "BTCUSDT"},
		{"perp suffix", "BTCUSDT-PERP", "BTCUSDT"},
		{"dash and perp lowercase", "btc-usdt-perp", "BTCUSDT"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSymbol(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.input, got, tt.want)
			}

			// Нормализация идемпотентна
			if again := NormalizeSymbol(got); again != got {
				t.Errorf("NormalizeSymbol not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSymbolVariants(t *testing.T) {
	tests := []struct {
		name string
		base string
		want []string
	}{
		{
			name: "usdt suffix present",
			base: "BTCUSDT",
			want: []string{"BTCUSDT", "BTC_USDT", "BTC-USDT", "BTCUSDT-PERP"},
		},
		{
			name: "root only",
			base: "ETH",
			want: []string{"ETHUSDT", "ETH_USDT", "ETH-USDT", "ETHUSDT-PERP"},
		},
		{
			name: "lowercase input",
			base: "solusdt",
			want: []string{"SOLUSDT", "SOL_USDT", "SOL-USDT", "SOLUSDT-PERP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SymbolVariants(tt.base)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SymbolVariants(%q) = %v, want %v", tt.base, got, tt.want)
			}
		})
	}
}

// Все варианты одного корня нормализуются в одну каноническую форму
func TestSymbolVariantsNormalizeToSame(t *testing.T) {
	for _, base := range []string{"BTCUSDT", "ETH", "1000pepeusdt"} {
		variants := SymbolVariants(base)
		canon := NormalizeSymbol(variants[0])
		for _, v := range variants[1:] {
			if NormalizeSymbol(v) != canon {
				t.Errorf("variant %q of %q normalizes to %q, want %q", v, base, NormalizeSymbol(v), canon)
			}
		}
	}
}

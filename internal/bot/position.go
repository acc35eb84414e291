package bot

import (
	"stopguard/internal/exchange"
	"stopguard/pkg/utils"
)

// position.go - сопоставление позиций биржи пользовательскому символу
//
// Эндпоинт позиций не фильтрует по символу, поэтому сопоставление
// делается на нашей стороне: все варианты написания пользовательского
// символа нормализуются в множество целей, и первая позиция, чьё
// нормализованное написание попадает в это множество, считается
// совпадением.

// FindPositionFuzzy ищет позицию по нечёткому совпадению символа.
//
// Возвращает сырую запись и точное написание символа у биржи,
// либо (nil, "") если совпадения нет. Точное написание используется
// во всех последующих вызовах API вместо пользовательского.
func FindPositionFuzzy(records []exchange.RawRecord, userSymbol string) (exchange.RawRecord, string) {
	targets := make(map[string]struct{})
	for _, v := range exchange.SymbolVariants(userSymbol) {
		targets[exchange.NormalizeSymbol(v)] = struct{}{}
	}

	for _, rec := range records {
		apiSym := exchange.RecordSymbol(rec)
		if apiSym == "" {
			continue
		}
		if _, ok := targets[exchange.NormalizeSymbol(apiSym)]; ok {
			return rec, apiSym
		}
	}

	logPositionInventory(records)
	return nil, ""
}

// logPositionInventory пишет в debug лог сводку всех открытых позиций.
// Помогает понять, под каким написанием биржа отдала искомый символ.
func logPositionInventory(records []exchange.RawRecord) {
	if len(records) == 0 {
		return
	}
	inventory := make([]exchange.Position, 0, len(records))
	for _, rec := range records {
		inventory = append(inventory, exchange.ExtractPosition(rec))
	}
	utils.Log().Debugw("position inventory", "positions", inventory)
}

package bot

import "stopguard/internal/models"

// ValidTransitions определяет допустимые переходы между режимами
var ValidTransitions = map[string][]string{
	models.ModeWatching: {models.ModeManaging}, // найдена позиция с ненулевым размером
	models.ModeManaging: {models.ModeWatching}, // позиция закрыта или невалидна
}

// CanTransition проверяет допустимость перехода
func CanTransition(from, to string) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ModeInfo возвращает описание режима для UI
func ModeInfo(m string) string {
	switch m {
	case models.ModeWatching:
		return "Ожидание открытой позиции"
	case models.ModeManaging:
		return "Позиция открыта, стоп-лосс сопровождается"
	default:
		return "Неизвестный режим"
	}
}

// HasOpenPosition возвращает true если бот сопровождает открытую позицию
func HasOpenPosition(m string) bool {
	return m == models.ModeManaging
}

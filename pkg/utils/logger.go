package utils

// logger.go - настройка логирования
//
// Назначение:
// Инициализация и настройка структурированного логирования через zap (uber-go/zap).
//
// Функции:
// - InitLogger: создать и настроить глобальный logger
//   * Выбор формата (json, console)
//   * Уровни: debug, info, warn, error
// - Log: доступ к глобальному logger из любого пакета
// - SyncLogger: сброс буферов при завершении процесса
//
// Все сообщения пишутся в stdout/stderr; ротацию файлов выполняет
// системный supervisor (systemd/docker), не приложение.

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.SugaredLogger
	loggerMu   sync.RWMutex
	loggerOnce sync.Once
)

// InitLogger создаёт и устанавливает глобальный logger
//
// Параметры:
//   - level: "debug", "info", "warn", "error" (неизвестное значение = info)
//   - format: "json" для production, "console" для локальной разработки
//
// Возвращает ошибку только при невозможности построить zap core
func InitLogger(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	base, err := cfg.Build()
	if err != nil {
		return err
	}

	loggerMu.Lock()
	logger = base.Sugar()
	loggerMu.Unlock()
	return nil
}

// Log возвращает глобальный logger
//
// Если InitLogger не вызывался, лениво создаётся production logger
// с уровнем info - пакеты могут логировать до загрузки конфигурации.
func Log() *zap.SugaredLogger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}

	loggerOnce.Do(func() {
		base, err := zap.NewProduction()
		if err != nil {
			base = zap.NewNop()
		}
		loggerMu.Lock()
		if logger == nil {
			logger = base.Sugar()
		}
		loggerMu.Unlock()
	})

	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SyncLogger сбрасывает буферизованные записи
// Вызывается при graceful shutdown
func SyncLogger() {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger != nil {
		_ = logger.Sync()
	}
}

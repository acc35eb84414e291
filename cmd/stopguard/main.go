package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stopguard/internal/api"
	"stopguard/internal/bot"
	"stopguard/internal/cli"
	"stopguard/internal/config"
	"stopguard/internal/exchange"
	"stopguard/internal/repository"
	"stopguard/internal/websocket"
	"stopguard/pkg/crypto"
	"stopguard/pkg/ratelimit"
	"stopguard/pkg/utils"

	_ "github.com/lib/pq"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	if err := utils.InitLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer utils.SyncLogger()

	// Расшифровка API секрета, если он хранится зашифрованным
	apiSecret, err := resolveAPISecret(cfg)
	if err != nil {
		utils.Log().Fatalw("Failed to resolve API secret", "error", err)
	}

	// Клиент биржи с rate limiter
	limiter := ratelimit.NewRateLimiter(cfg.Exchange.RateLimit, float64(cfg.Exchange.RateBurst))
	client := exchange.NewClient(cfg.Exchange.APIKey, apiSecret, cfg.Exchange.BaseURL, nil, limiter)

	// Контекст с graceful shutdown по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Журнал событий (опционально)
	var journal bot.Journal
	var events *repository.StopEventRepository
	if cfg.Database.Enabled {
		db, err := initDatabase(cfg)
		if err != nil {
			utils.Log().Fatalw("Failed to connect to database", "error", err)
		}
		defer db.Close()

		utils.Log().Infow("Connected to database", "dsn", cfg.Database.DSNWithoutPassword())
		events = repository.NewStopEventRepository(db)
		journal = events
	}

	// WebSocket hub (только вместе с сервером статуса)
	var hub bot.Broadcaster
	var wsHub *websocket.Hub
	if cfg.Server.Enabled {
		wsHub = websocket.NewHub()
		go wsHub.Run()
		hub = wsHub
	}

	// Движок сопровождения
	engine := bot.NewEngine(client, cli.NewConsole(), cfg.Bot, journal, hub)

	// Сервер статуса (опционально)
	var server *http.Server
	if cfg.Server.Enabled {
		deps := &api.Dependencies{
			Status: engine,
			Hub:    wsHub,
		}
		if events != nil {
			deps.Events = events
		}

		server = &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      api.SetupRoutes(deps),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			utils.Log().Infow("Starting status server", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				utils.Log().Fatalw("Status server failed", "error", err)
			}
		}()
	}

	runEngine(ctx, engine)

	if server != nil {
		shutdownServer(server)
	}
}

// runEngine запускает цикл сопровождения и блокирует до его остановки.
func runEngine(ctx context.Context, engine *bot.Engine) {
	utils.Log().Infow("Bitunix stop-loss sentinel started")
	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		utils.Log().Errorw("Engine stopped with error", "error", err)
		return
	}
	utils.Log().Infow("Engine stopped")
}

// shutdownServer останавливает HTTP сервер с таймаутом.
func shutdownServer(server *http.Server) {
	utils.Log().Infow("Shutting down status server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		utils.Log().Errorw("Server forced to shutdown", "error", err)
	}
}

// resolveAPISecret возвращает API секрет в открытом виде.
// Если задан BITUNIX_API_SECRET_ENC, секрет расшифровывается ключом,
// производным от SECRET_PASSPHRASE.
func resolveAPISecret(cfg *config.Config) (string, error) {
	if cfg.Exchange.APISecretEnc == "" {
		return cfg.Exchange.APISecret, nil
	}

	key, err := crypto.DeriveKey(cfg.Security.Passphrase)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}
	secret, err := crypto.Decrypt(cfg.Exchange.APISecretEnc, key)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt API secret: %w", err)
	}
	return secret, nil
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

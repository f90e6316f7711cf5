package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ebanking/config"
	"ebanking/database"
	"ebanking/events"
	"ebanking/routes"
	"ebanking/services"
	"ebanking/utils"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

// newDependencies собирает сервисы приложения поверх подключенной базы
func newDependencies(cfg *config.Config, db *database.Database, publisher events.Publisher) routes.Dependencies {
	metrics := utils.GetMetrics()

	accounts := services.NewBankAccountService(db.GetDB(),
		services.WithPublisher(publisher),
		services.WithNotifier(services.NewEmailService(cfg)),
		services.WithMetrics(metrics),
	)

	deps := routes.Dependencies{
		Accounts:   accounts,
		Statements: services.NewStatementService(db.GetDB()),
		Reconciler: services.NewReconciliationService(db.GetDB(), cfg.ReconcileInterval),
		Metrics:    metrics,
		Limiter:    utils.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}
	if cfg.Auth.Enabled {
		deps.Auth = services.NewAuthService(cfg)
	}
	return deps
}

func main() {
	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		utils.Log.Fatalf("Ошибка чтения .env: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		utils.Log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if err := utils.ConfigureLogger(utils.LoggerOptions{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}); err != nil {
		utils.Log.Fatalf("Ошибка настройки логгера: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		utils.Log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := newDependencies(cfg, db, publisher)

	// Запускаем периодическую сверку балансов
	deps.Reconciler.Start(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Сервер запущен на порту %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Остановка сервера")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogError("Ошибка остановки сервера: %v", err)
	}
}

// Точка входа Ingest Module — модуля безопасного приёма артефактов.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bigkaa/goingest/internal/api/handlers"
	"github.com/bigkaa/goingest/internal/api/middleware"
	"github.com/bigkaa/goingest/internal/config"
	"github.com/bigkaa/goingest/internal/server"
	"github.com/bigkaa/goingest/internal/service"
	"github.com/bigkaa/goingest/internal/storage/contextstore"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Ingest Module запускается",
		slog.String("service_id", cfg.ServiceID),
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
	)

	// --- Инициализация компонентов ---

	// 1. Директория данных
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Error("Ошибка создания директории данных", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Хранилище контекстов
	store, err := contextstore.Open(cfg.StorePath, logger)
	if err != nil {
		logger.Error("Ошибка загрузки хранилища контекстов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. Сервисы
	extractSvc := service.NewExtractService(cfg, logger)
	contextSvc := service.NewContextService(store, logger)

	// 4. Middleware: metrics → logging → JWT (при заданном IM_JWKS_URL)
	middlewares := []func(http.Handler) http.Handler{
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	}

	ctx := context.Background()

	if cfg.JWKSUrl != "" {
		jwtAuth, jwtErr := middleware.NewJWTAuth(middleware.JWTAuthConfig{
			JWKSURL:         cfg.JWKSUrl,
			CACertPath:      cfg.JWKSCACert,
			ClientTimeout:   cfg.HTTPReadTimeout,
			RefreshInterval: cfg.JWKSRefreshInterval,
			JWTLeeway:       cfg.JWTLeeway,
		}, logger)
		if jwtErr != nil {
			logger.Error("Ошибка инициализации JWT middleware", slog.String("error", jwtErr.Error()))
			os.Exit(1)
		}

		// Публичные endpoints без аутентификации
		middlewares = append(middlewares, server.JWTAuthWithExclusions(
			jwtAuth.Middleware(),
			"/health/", "/metrics", "/api/v1/info",
		))
		logger.Info("JWT-аутентификация включена", slog.String("jwks_url", cfg.JWKSUrl))

		// topologymetrics — мониторинг JWKS endpoint
		dephealthSvc, dephealthErr := service.NewDephealthService(
			cfg.ServiceID,
			cfg.DephealthGroup,
			cfg.DephealthDepName,
			cfg.JWKSUrl,
			cfg.DephealthCheckInterval,
			logger,
		)
		if dephealthErr != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", dephealthErr.Error()),
			)
		} else {
			if startErr := dephealthSvc.Start(ctx); startErr != nil {
				logger.Warn("Ошибка запуска topologymetrics",
					slog.String("error", startErr.Error()),
				)
			} else {
				defer dephealthSvc.Stop()
				logger.Info("topologymetrics запущен",
					slog.String("jwks_url", cfg.JWKSUrl),
					slog.String("check_interval", cfg.DephealthCheckInterval.String()),
				)
			}
		}
	} else {
		logger.Warn("IM_JWKS_URL не задан: JWT-аутентификация отключена")
	}

	// 5. Handlers
	extractHandler := handlers.NewExtractHandler(cfg, extractSvc, contextSvc)
	contextsHandler := handlers.NewContextsHandler(cfg, contextSvc)
	systemHandler := handlers.NewSystemHandler(cfg, contextSvc)
	healthHandler := handlers.NewHealthHandler(cfg.DataDir, store)
	metricsHandler := server.NewMetricsHandler()

	// Единый API handler
	apiHandler := handlers.NewAPIHandler(
		extractHandler,
		contextsHandler,
		systemHandler,
		healthHandler,
		metricsHandler,
	)

	// 6. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler, middlewares...)

	// 7. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Ingest Module остановлен")
}

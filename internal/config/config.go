// Пакет config — загрузка и валидация конфигурации Ingest Module
// из переменных окружения.
//
// Политика безопасности (лимиты размеров, allowlist'ы, порог bomb-детектора)
// НЕ конфигурируется: это контрактные константы пакетов
// internal/security/filegate и internal/security/zipcheck.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Ingest Module.
type Config struct {
	// Порт HTTP-сервера (диапазон 8030-8039)
	Port int
	// Уникальный идентификатор экземпляра (например, "ingest-01")
	ServiceID string
	// Корневая директория данных: staging загрузок и корни извлечения
	// резолвятся только внутри неё
	DataDir string
	// Путь к файлу коллекции контекстов (по умолчанию <DataDir>/contexts.json)
	StorePath string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймауты HTTP-сервера
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
	// URL JWKS endpoint (опционально; пустое значение отключает
	// JWT-аутентификацию и dephealth-мониторинг)
	JWKSUrl string
	// Путь к CA-сертификату для проверки TLS JWKS endpoint (опционально)
	JWKSCACert string
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics (IM_DEPHEALTH_GROUP)
	DephealthGroup string
	// Имя зависимости (целевого сервиса) в метриках topologymetrics
	DephealthDepName string
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}

	// IM_PORT — порт HTTP-сервера (по умолчанию 8030)
	port, err := getEnvInt("IM_PORT", 8030)
	if err != nil {
		return nil, fmt.Errorf("IM_PORT: %w", err)
	}
	if port < 8030 || port > 8039 {
		return nil, fmt.Errorf("IM_PORT: значение %d вне допустимого диапазона 8030-8039", port)
	}
	cfg.Port = port

	// IM_SERVICE_ID — идентификатор экземпляра (по умолчанию "ingest-module")
	cfg.ServiceID = getEnvDefault("IM_SERVICE_ID", "ingest-module")

	// IM_DATA_DIR — обязательный
	cfg.DataDir, err = getEnvRequired("IM_DATA_DIR")
	if err != nil {
		return nil, err
	}

	// IM_STORE_PATH — путь к contexts.json (по умолчанию внутри DataDir)
	cfg.StorePath = getEnvDefault("IM_STORE_PATH", filepath.Join(cfg.DataDir, "contexts.json"))

	// IM_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("IM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("IM_LOG_LEVEL: %w", err)
	}

	// IM_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("IM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("IM_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// Таймауты HTTP-сервера
	cfg.HTTPReadTimeout, err = getEnvDuration("IM_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IM_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("IM_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IM_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("IM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// IM_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s).
	// Должен быть меньше K8s terminationGracePeriodSeconds.
	cfg.ShutdownTimeout, err = getEnvDuration("IM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IM_SHUTDOWN_TIMEOUT: %w", err)
	}

	// IM_JWKS_URL — опциональный: пустое значение отключает JWT-аутентификацию
	cfg.JWKSUrl = getEnvDefault("IM_JWKS_URL", "")

	// IM_JWKS_CA_CERT — путь к CA-сертификату для JWKS endpoint (опционально)
	cfg.JWKSCACert = getEnvDefault("IM_JWKS_CA_CERT", "")

	// IM_JWKS_REFRESH_INTERVAL — интервал обновления JWKS-ключей (по умолчанию 1h)
	cfg.JWKSRefreshInterval, err = getEnvDuration("IM_JWKS_REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("IM_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// IM_JWT_LEEWAY — допуск времени при проверке JWT (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("IM_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IM_JWT_LEEWAY: %w", err)
	}

	// IM_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("IM_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// IM_DEPHEALTH_GROUP — имя группы в метриках topologymetrics
	cfg.DephealthGroup = getEnvDefault("IM_DEPHEALTH_GROUP", "ingest-module")

	// IM_DEPHEALTH_DEP_NAME — имя зависимости в метриках topologymetrics
	cfg.DephealthDepName = getEnvDefault("IM_DEPHEALTH_DEP_NAME", "admin-jwks")

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

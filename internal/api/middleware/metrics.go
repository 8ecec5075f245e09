// metrics.go — Prometheus HTTP метрики для Ingest Module.
// Регистрирует метрики: im_http_requests_total, im_http_request_duration_seconds.
// Бизнес-метрики (im_contexts_total, im_extract_operations_total и др.)
// обновляются из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "im_http_requests_total",
			Help: "Общее количество HTTP-запросов к Ingest Module",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "im_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Ingest Module в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из сервисного слоя)
var (
	// ContextsTotal — текущее количество контекстов по статусам (gauge).
	ContextsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "im_contexts_total",
			Help: "Текущее количество контекстов по статусам",
		},
		[]string{"status"},
	)

	// ExtractOperationsTotal — общее количество операций извлечения.
	ExtractOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "im_extract_operations_total",
			Help: "Общее количество операций извлечения архивов",
		},
		[]string{"result"},
	)

	// ExtractBytesTotal — суммарный объём извлечённых данных.
	ExtractBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "im_extract_bytes_total",
			Help: "Суммарный объём извлечённых данных в байтах",
		},
	)

	// ExtractWarningsTotal — количество пропущенных/отклонённых записей архивов.
	ExtractWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "im_extract_warnings_total",
			Help: "Количество записей архивов, пропущенных с warning",
		},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем UUID на {id} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// contextsPrefix — префикс маршрутов контекстов для нормализации.
const contextsPrefix = "/api/v1/contexts/"

// normalizePath заменяет UUID-сегменты пути на {id} для предотвращения
// взрывного роста кардинальности метрик.
// /api/v1/contexts/a1b2c3d4-... → /api/v1/contexts/{id}
func normalizePath(path string) string {
	switch {
	case path == "/health/live", path == "/health/ready", path == "/metrics",
		path == "/api/v1/info", path == "/api/v1/extract", path == "/api/v1/contexts":
		return path
	case len(path) >= len(contextsPrefix)+36 && isUUIDSegment(path, contextsPrefix):
		suffix := path[len(contextsPrefix)+36:]
		if suffix == "/approval" {
			return "/api/v1/contexts/{id}/approval"
		}
		if suffix == "" {
			return "/api/v1/contexts/{id}"
		}
	}
	return path
}

// isUUIDSegment проверяет, начинается ли сегмент пути после prefix с UUID.
func isUUIDSegment(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) || len(path) < len(prefix)+36 {
		return false
	}
	segment := path[len(prefix) : len(prefix)+36]
	// Формат UUID: 8-4-4-4-12
	for i, c := range segment {
		if i == 8 || i == 13 || i == 18 || i == 23 {
			if c != '-' {
				return false
			}
		} else {
			if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
				return false
			}
		}
	}
	return true
}

// handler.go — APIHandler реализует generated.ServerInterface,
// делегируя вызовы в отдельные handler'ы по доменам.
package handlers

import (
	"net/http"

	"github.com/bigkaa/goingest/internal/api/generated"
	"github.com/bigkaa/goingest/internal/server"
)

// APIHandler — единая реализация ServerInterface, собирающая
// все доменные handlers в один объект.
type APIHandler struct {
	extract  *ExtractHandler
	contexts *ContextsHandler
	system   *SystemHandler
	health   *HealthHandler
	metrics  *server.MetricsHandler
}

// NewAPIHandler создаёт единый handler для всех endpoints.
func NewAPIHandler(
	extract *ExtractHandler,
	contexts *ContextsHandler,
	system *SystemHandler,
	health *HealthHandler,
	metrics *server.MetricsHandler,
) *APIHandler {
	return &APIHandler{
		extract:  extract,
		contexts: contexts,
		system:   system,
		health:   health,
		metrics:  metrics,
	}
}

// --- Extraction ---

func (h *APIHandler) ExtractArchive(w http.ResponseWriter, r *http.Request) {
	h.extract.ExtractArchive(w, r)
}

// --- Contexts ---

func (h *APIHandler) ListContexts(w http.ResponseWriter, r *http.Request, params generated.ListContextsParams) {
	h.contexts.ListContexts(w, r, params)
}

func (h *APIHandler) CreateContext(w http.ResponseWriter, r *http.Request) {
	h.contexts.CreateContext(w, r)
}

func (h *APIHandler) GetContext(w http.ResponseWriter, r *http.Request, contextId generated.ContextId) {
	h.contexts.GetContext(w, r, contextId)
}

func (h *APIHandler) SetContextApproval(w http.ResponseWriter, r *http.Request, contextId generated.ContextId) {
	h.contexts.SetContextApproval(w, r, contextId)
}

// --- System ---

func (h *APIHandler) GetServiceInfo(w http.ResponseWriter, r *http.Request) {
	h.system.GetServiceInfo(w, r)
}

// --- Health ---

func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// --- Metrics ---

func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ generated.ServerInterface = (*APIHandler)(nil)

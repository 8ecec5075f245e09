// system.go — обработчик GET /api/v1/info (информация об Ingest Module).
// Публичный endpoint (без аутентификации) для service discovery и мониторинга.
package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/bigkaa/goingest/internal/api/generated"
	"github.com/bigkaa/goingest/internal/config"
	"github.com/bigkaa/goingest/internal/security/filegate"
	"github.com/bigkaa/goingest/internal/security/zipcheck"
	"github.com/bigkaa/goingest/internal/service"
)

// SystemHandler — обработчик системных endpoints.
type SystemHandler struct {
	cfg        *config.Config
	contextSvc *service.ContextService
}

// NewSystemHandler создаёт обработчик системных endpoints.
func NewSystemHandler(cfg *config.Config, contextSvc *service.ContextService) *SystemHandler {
	return &SystemHandler{
		cfg:        cfg,
		contextSvc: contextSvc,
	}
}

// GetServiceInfo обрабатывает GET /api/v1/info.
// Без аутентификации. Возвращает версию, счётчики контекстов
// и контрактные лимиты политики безопасности.
func (h *SystemHandler) GetServiceInfo(w http.ResponseWriter, _ *http.Request) {
	extensions := zipcheck.AllowedExtensions()
	sort.Strings(extensions)

	resp := generated.ServiceInfo{
		Service:   "ingest-module",
		ServiceId: h.cfg.ServiceID,
		Version:   config.Version,
		Contexts:  h.contextSvc.CountByStatus(),
		Limits: generated.ServiceLimits{
			MaxUploadSize:            filegate.MaxUploadSize,
			MaxTotalUncompressedSize: zipcheck.MaxTotalUncompressedSize,
			MaxEntries:               zipcheck.MaxEntries,
			MaxEntrySize:             zipcheck.MaxEntrySize,
			MaxCompressionRatio:      zipcheck.MaxCompressionRatio,
			AllowedExtensions:        extensions,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// contexts.go — HTTP handlers для операций с контекстами:
// регистрация, список, получение, утверждение/отклонение.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/bigkaa/goingest/internal/api/errors"
	"github.com/bigkaa/goingest/internal/api/generated"
	"github.com/bigkaa/goingest/internal/config"
	"github.com/bigkaa/goingest/internal/domain/model"
	"github.com/bigkaa/goingest/internal/service"
	"github.com/bigkaa/goingest/internal/storage/contextstore"
)

// ContextsHandler — обработчик endpoints контекстов.
type ContextsHandler struct {
	cfg        *config.Config
	contextSvc *service.ContextService
}

// NewContextsHandler создаёт обработчик endpoints контекстов.
func NewContextsHandler(cfg *config.Config, contextSvc *service.ContextService) *ContextsHandler {
	return &ContextsHandler{
		cfg:        cfg,
		contextSvc: contextSvc,
	}
}

// ListContexts обрабатывает GET /api/v1/contexts.
// Фильтры: status, type, search. Пагинация: limit (по умолчанию 20), offset.
func (h *ContextsHandler) ListContexts(w http.ResponseWriter, r *http.Request, params generated.ListContextsParams) {
	// Значения по умолчанию
	limit := 20
	offset := 0
	var filter contextstore.ListFilter

	if params.Limit != nil {
		limit = *params.Limit
		if limit <= 0 || limit > 100 {
			errors.ValidationError(w, "Параметр limit должен быть от 1 до 100")
			return
		}
	}

	if params.Offset != nil {
		offset = *params.Offset
		if offset < 0 {
			errors.ValidationError(w, "Параметр offset не может быть отрицательным")
			return
		}
	}

	if params.Status != nil {
		status := model.ContextStatus(*params.Status)
		if !model.IsValidStatus(status) {
			errors.ValidationError(w, fmt.Sprintf("Недопустимый статус: %s", status))
			return
		}
		filter.Status = status
	}

	if params.Type != nil {
		ctype := model.ContextType(*params.Type)
		if !model.IsValidType(ctype) {
			errors.ValidationError(w, fmt.Sprintf("Недопустимый тип: %s", ctype))
			return
		}
		filter.Type = ctype
	}

	if params.Search != nil {
		filter.Search = *params.Search
	}

	filter.Limit = limit
	filter.Offset = offset

	items, total := h.contextSvc.List(filter)

	apiItems := make([]generated.Context, 0, len(items))
	for _, item := range items {
		apiItems = append(apiItems, domainToAPIContext(item))
	}

	resp := generated.ContextList{
		Items: apiItems,
		Total: total,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// CreateContext обрабатывает POST /api/v1/contexts.
// Регистрирует существующий файл или директорию внутри директории данных
// как контекст типа file/directory (контексты zip создаются извлечением).
func (h *ContextsHandler) CreateContext(w http.ResponseWriter, r *http.Request) {
	var req generated.CreateContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.ValidationError(w, fmt.Sprintf("Некорректное тело запроса: %s", err.Error()))
		return
	}

	if req.Path == "" {
		errors.ValidationError(w, "Поле 'path' обязательно")
		return
	}

	absPath, pathErr := resolveDataPath(h.cfg.DataDir, req.Path)
	if pathErr != "" {
		errors.ValidationError(w, fmt.Sprintf("path: %s", pathErr))
		return
	}

	rec, svcErr := h.contextSvc.Register(req.Name, model.ContextType(req.Type), absPath)
	if svcErr != nil {
		errors.WriteError(w, svcErr.StatusCode, svcErr.Code, svcErr.Message)
		return
	}

	resp := domainToAPIContext(rec)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

// GetContext обрабатывает GET /api/v1/contexts/{context_id}.
func (h *ContextsHandler) GetContext(w http.ResponseWriter, r *http.Request, contextId generated.ContextId) {
	rec, svcErr := h.contextSvc.Get(contextId.String())
	if svcErr != nil {
		errors.WriteError(w, svcErr.StatusCode, svcErr.Code, svcErr.Message)
		return
	}

	resp := domainToAPIContext(rec)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// SetContextApproval обрабатывает POST /api/v1/contexts/{context_id}/approval.
// Решение необратимо: повторное решение по решённому контексту — 409.
func (h *ContextsHandler) SetContextApproval(w http.ResponseWriter, r *http.Request, contextId generated.ContextId) {
	var req generated.ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.ValidationError(w, fmt.Sprintf("Некорректное тело запроса: %s", err.Error()))
		return
	}

	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}

	rec, svcErr := h.contextSvc.SetApproval(contextId.String(), req.Approved, reason)
	if svcErr != nil {
		errors.WriteError(w, svcErr.StatusCode, svcErr.Code, svcErr.Message)
		return
	}

	message := "Контекст отклонён"
	if req.Approved {
		message = "Контекст утверждён"
	}

	apiContext := domainToAPIContext(rec)
	resp := generated.ApprovalResult{
		Success: true,
		Message: message,
		Data: &generated.ApprovalResultData{
			Context: &apiContext,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// domainToAPIContext преобразует доменную запись в API-формат.
func domainToAPIContext(rec *model.ContextRecord) generated.Context {
	apiContext := generated.Context{
		Name:    rec.Name,
		Type:    generated.ContextType(rec.Type),
		Status:  generated.ContextStatus(rec.Status),
		Created: rec.Created,
		Updated: rec.Updated,
		Size:    rec.Size,
	}
	if id, err := uuid.Parse(rec.ID); err == nil {
		apiContext.ContextId = id
	}
	if rec.FileCount != nil {
		fc := *rec.FileCount
		apiContext.FileCount = &fc
	}
	if len(rec.Metadata) > 0 {
		metadata := make(map[string]string, len(rec.Metadata))
		for k, v := range rec.Metadata {
			metadata[k] = v
		}
		apiContext.Metadata = &metadata
	}
	return apiContext
}

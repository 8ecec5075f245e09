// extract.go — HTTP handler операции безопасного извлечения zip-архива.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bigkaa/goingest/internal/api/errors"
	"github.com/bigkaa/goingest/internal/api/generated"
	"github.com/bigkaa/goingest/internal/config"
	"github.com/bigkaa/goingest/internal/service"
)

// defaultExtractDir — поддиректория извлечения по умолчанию
// внутри директории данных.
const defaultExtractDir = "extracted"

// ExtractHandler — обработчик endpoint извлечения архивов.
type ExtractHandler struct {
	cfg        *config.Config
	extractSvc *service.ExtractService
	contextSvc *service.ContextService
}

// NewExtractHandler создаёт обработчик извлечения архивов.
func NewExtractHandler(
	cfg *config.Config,
	extractSvc *service.ExtractService,
	contextSvc *service.ContextService,
) *ExtractHandler {
	return &ExtractHandler{
		cfg:        cfg,
		extractSvc: extractSvc,
		contextSvc: contextSvc,
	}
}

// ExtractArchive обрабатывает POST /api/v1/extract.
// Тело: file_path (обязательно), extract_to (опционально), options (опционально).
// Пути резолвятся только внутри директории данных.
func (h *ExtractHandler) ExtractArchive(w http.ResponseWriter, r *http.Request) {
	var req generated.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.ValidationError(w, fmt.Sprintf("Некорректное тело запроса: %s", err.Error()))
		return
	}

	if req.FilePath == "" {
		errors.ValidationError(w, "Поле 'file_path' обязательно")
		return
	}

	archivePath, pathErr := resolveDataPath(h.cfg.DataDir, req.FilePath)
	if pathErr != "" {
		errors.ValidationError(w, fmt.Sprintf("file_path: %s", pathErr))
		return
	}

	extractTo := defaultExtractDir
	if req.ExtractTo != nil && *req.ExtractTo != "" {
		extractTo = *req.ExtractTo
	}
	extractRoot, pathErr := resolveDataPath(h.cfg.DataDir, extractTo)
	if pathErr != "" {
		errors.ValidationError(w, fmt.Sprintf("extract_to: %s", pathErr))
		return
	}

	// Опции по умолчанию: без перезаписи, со структурой директорий
	overwrite := false
	preserveStructure := true
	if req.Options != nil {
		if req.Options.Overwrite != nil {
			overwrite = *req.Options.Overwrite
		}
		if req.Options.PreserveStructure != nil {
			preserveStructure = *req.Options.PreserveStructure
		}
	}

	outcome, extractErr := h.extractSvc.Extract(service.ExtractParams{
		FilePath:          archivePath,
		ExtractTo:         extractRoot,
		Overwrite:         overwrite,
		PreserveStructure: preserveStructure,
	})
	if extractErr != nil {
		if extractErr.Code == errors.CodeBudgetExceeded && extractErr.Outcome != nil {
			// Частичный результат: уже извлечённые файлы остаются на диске
			writeBudgetExceeded(w, extractErr)
			return
		}
		errors.WriteError(w, extractErr.StatusCode, extractErr.Code, extractErr.Message)
		return
	}

	// Регистрируем контекст по успешному извлечению
	rec, ctxErr := h.contextSvc.RegisterExtracted(
		filepath.Base(req.FilePath),
		outcome.TotalSizeBytes,
		len(outcome.ExtractedFiles),
	)
	if ctxErr != nil {
		errors.WriteError(w, ctxErr.StatusCode, ctxErr.Code, ctxErr.Message)
		return
	}

	resp := generated.ExtractResult{
		Success: true,
		Message: fmt.Sprintf("Извлечено %d из %d файлов",
			len(outcome.ExtractedFiles), outcome.TotalFiles),
		ExtractedFiles: outcome.ExtractedFiles,
		TotalFiles:     outcome.TotalFiles,
		TotalSize:      outcome.TotalSizeBytes,
		DurationMs:     outcome.DurationMs,
	}
	if len(outcome.Warnings) > 0 {
		warnings := outcome.Warnings
		resp.Warnings = &warnings
	}
	if id, err := uuid.Parse(rec.ID); err == nil {
		resp.ContextId = &id
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeBudgetExceeded пишет ответ 507 с частичным результатом извлечения.
func writeBudgetExceeded(w http.ResponseWriter, extractErr *service.ExtractError) {
	outcome := extractErr.Outcome
	body := map[string]any{
		"success":         false,
		"code":            extractErr.Code,
		"message":         extractErr.Message,
		"extracted_files": outcome.ExtractedFiles,
		"total_files":     outcome.TotalFiles,
		"total_size":      outcome.TotalSizeBytes,
		"duration_ms":     outcome.DurationMs,
	}
	if len(outcome.Warnings) > 0 {
		body["warnings"] = outcome.Warnings
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(extractErr.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// resolveDataPath резолвит относительный путь запроса внутри директории
// данных. Абсолютные пути и пути, выходящие за пределы директории данных,
// отклоняются. Возвращает абсолютный путь или текст ошибки.
func resolveDataPath(dataDir, rel string) (string, string) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || !filepath.IsLocal(cleaned) {
		return "", "путь должен быть относительным и оставаться внутри директории данных"
	}
	return filepath.Join(dataDir, cleaned), ""
}

// Пакет errors — конструкторы стандартных ошибок в формате Ingest Module.
// Единый формат: {"success": false, "code": "...", "message": "..."}.
// Автоматизация ветвится по полю success и машиночитаемому code,
// message предназначен только для человека.
package errors //nolint:revive // имя пакета закреплено контрактом OpenAPI

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeSecurityRejected   = "SECURITY_REJECTED"
	CodeStructuralRejected = "STRUCTURAL_REJECTED"
	CodeBudgetExceeded     = "BUDGET_EXCEEDED"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeInternalError      = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате Ingest Module.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// SecurityRejected — 422 файл не прошёл security gate.
func SecurityRejected(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnprocessableEntity, CodeSecurityRejected, message)
}

// StructuralRejected — 422 архив враждебен как единое целое.
func StructuralRejected(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnprocessableEntity, CodeStructuralRejected, message)
}

// FileTooLarge — 413 файл превышает лимит загрузки.
func FileTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestEntityTooLarge, CodeFileTooLarge, message)
}

// InvalidTransition — 409 недопустимый переход статуса контекста.
func InvalidTransition(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeInvalidTransition, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}

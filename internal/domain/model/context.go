// Пакет model — доменные модели Ingest Module.
// ContextRecord — единая структура записи контекста, используется
// как in-memory представление и как формат contexts.json на диске.
package model

import (
	"time"
)

// ContextType — тип исходного артефакта контекста.
type ContextType string

const (
	// TypeZip — контекст создан из распакованного zip-архива
	TypeZip ContextType = "zip"
	// TypeFile — контекст создан из одиночного файла
	TypeFile ContextType = "file"
	// TypeDirectory — контекст создан из директории
	TypeDirectory ContextType = "directory"
)

// ContextStatus — статус контекста в workflow утверждения.
type ContextStatus string

const (
	// StatusPending — ожидает решения оператора
	StatusPending ContextStatus = "pending"
	// StatusApproved — утверждён, артефакт доверен для дальнейшего использования
	StatusApproved ContextStatus = "approved"
	// StatusRejected — отклонён
	StatusRejected ContextStatus = "rejected"
)

// MetadataKeyApprovalReason — ключ metadata, под которым сохраняется
// причина решения оператора при утверждении/отклонении.
const MetadataKeyApprovalReason = "approval_reason"

// ContextRecord — запись одного ингестированного артефакта.
// Соответствует элементу коллекции contexts.json.
type ContextRecord struct {
	// ID — уникальный идентификатор контекста (UUID v4), неизменяем после создания
	ID string `json:"context_id"`

	// Name — человекочитаемое имя артефакта
	Name string `json:"name"`

	// Type — тип исходного артефакта
	Type ContextType `json:"type"`

	// Status — текущий статус workflow утверждения
	Status ContextStatus `json:"status"`

	// Created — дата и время создания записи (UTC)
	Created time.Time `json:"created"`

	// Updated — дата и время последнего изменения (UTC), updated >= created
	Updated time.Time `json:"updated"`

	// Size — размер артефакта в байтах
	Size int64 `json:"size"`

	// FileCount — количество файлов артефакта (nil, если неприменимо)
	FileCount *int `json:"file_count,omitempty"`

	// Metadata — открытый набор строковых пар ключ/значение
	// (например, причина решения под ключом approval_reason)
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone возвращает глубокую копию записи.
// Store отдаёт читателям только копии, чтобы избежать data race.
func (r *ContextRecord) Clone() *ContextRecord {
	copied := *r
	if r.FileCount != nil {
		fc := *r.FileCount
		copied.FileCount = &fc
	}
	if r.Metadata != nil {
		copied.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			copied.Metadata[k] = v
		}
	}
	return &copied
}

// IsDecided проверяет, находится ли контекст в конечном статусе.
func (r *ContextRecord) IsDecided() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

// validTransitions — матрица допустимых переходов статуса.
// Ключ — текущий статус, значение — набор допустимых целевых статусов.
// Конечные статусы (approved, rejected) переходов не имеют: повторное
// решение по уже решённому контексту запрещено.
var validTransitions = map[ContextStatus]map[ContextStatus]bool{
	StatusPending:  {StatusApproved: true, StatusRejected: true},
	StatusApproved: {},
	StatusRejected: {},
}

// CanTransition проверяет, допустим ли переход между статусами.
func CanTransition(from, to ContextStatus) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// StatusForDecision возвращает целевой статус для решения оператора.
func StatusForDecision(approved bool) ContextStatus {
	if approved {
		return StatusApproved
	}
	return StatusRejected
}

// IsValidStatus проверяет, что строка — известный статус контекста.
func IsValidStatus(s ContextStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsValidType проверяет, что строка — известный тип контекста.
func IsValidType(t ContextType) bool {
	switch t {
	case TypeZip, TypeFile, TypeDirectory:
		return true
	}
	return false
}

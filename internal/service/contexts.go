// contexts.go — сервис управления контекстами: регистрация,
// выборка, утверждение/отклонение.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apierrors "github.com/bigkaa/goingest/internal/api/errors"
	"github.com/bigkaa/goingest/internal/api/middleware"
	"github.com/bigkaa/goingest/internal/domain/model"
	"github.com/bigkaa/goingest/internal/storage/contextstore"
	"github.com/bigkaa/goingest/internal/storage/fsinfo"
)

// ContextError — ошибка операции с контекстом с HTTP-кодом.
type ContextError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ContextService — сервис управления контекстами.
type ContextService struct {
	store  *contextstore.Store
	logger *slog.Logger
}

// NewContextService создаёт сервис управления контекстами.
func NewContextService(store *contextstore.Store, logger *slog.Logger) *ContextService {
	return &ContextService{
		store:  store,
		logger: logger.With(slog.String("component", "context_service")),
	}
}

// Register регистрирует контекст типа file или directory:
// путь уже отрезолвлен и проверен handler'ом, размер и количество
// файлов измеряются по фактическому содержимому.
func (s *ContextService) Register(name string, ctype model.ContextType, absPath string) (*model.ContextRecord, *ContextError) {
	if strings.TrimSpace(name) == "" {
		return nil, &ContextError{
			StatusCode: 400,
			Code:       apierrors.CodeValidationError,
			Message:    "Имя контекста не может быть пустым",
		}
	}
	if ctype != model.TypeFile && ctype != model.TypeDirectory {
		return nil, &ContextError{
			StatusCode: 400,
			Code:       apierrors.CodeValidationError,
			Message:    fmt.Sprintf("Недопустимый тип контекста %q, допустимые: file, directory", ctype),
		}
	}

	stats, err := fsinfo.Measure(absPath)
	if err != nil {
		return nil, &ContextError{
			StatusCode: 404,
			Code:       apierrors.CodeNotFound,
			Message:    "Путь артефакта не найден или недоступен",
		}
	}

	var fileCount *int
	if ctype == model.TypeDirectory {
		fc := stats.FileCount
		fileCount = &fc
	}

	rec, err := s.store.Create(name, ctype, stats.SizeBytes, fileCount)
	if err != nil {
		s.logger.Error("Ошибка сохранения контекста", slog.String("error", err.Error()))
		return nil, &ContextError{
			StatusCode: 500,
			Code:       apierrors.CodeInternalError,
			Message:    "Ошибка сохранения коллекции контекстов",
		}
	}

	s.refreshContextsGauge()
	s.logger.Info("Контекст зарегистрирован",
		slog.String("context_id", rec.ID),
		slog.String("type", string(rec.Type)),
		slog.Int64("size", rec.Size),
	)
	return rec, nil
}

// RegisterExtracted создаёт контекст типа zip по результату извлечения.
func (s *ContextService) RegisterExtracted(name string, sizeBytes int64, fileCount int) (*model.ContextRecord, *ContextError) {
	rec, err := s.store.Create(name, model.TypeZip, sizeBytes, &fileCount)
	if err != nil {
		s.logger.Error("Ошибка сохранения контекста", slog.String("error", err.Error()))
		return nil, &ContextError{
			StatusCode: 500,
			Code:       apierrors.CodeInternalError,
			Message:    "Ошибка сохранения коллекции контекстов",
		}
	}

	s.refreshContextsGauge()
	return rec, nil
}

// Get возвращает контекст по идентификатору.
func (s *ContextService) Get(contextID string) (*model.ContextRecord, *ContextError) {
	rec, err := s.store.Get(contextID)
	if err != nil {
		return nil, &ContextError{
			StatusCode: 404,
			Code:       apierrors.CodeNotFound,
			Message:    fmt.Sprintf("Контекст %s не найден", contextID),
		}
	}
	return rec, nil
}

// List возвращает страницу контекстов по фильтрам и общее количество.
func (s *ContextService) List(filter contextstore.ListFilter) ([]*model.ContextRecord, int) {
	return s.store.List(filter)
}

// SetApproval утверждает или отклоняет контекст.
// Повторное решение по уже решённому контексту запрещено.
func (s *ContextService) SetApproval(contextID string, approved bool, reason string) (*model.ContextRecord, *ContextError) {
	rec, err := s.store.Approve(contextID, approved, reason)
	if err != nil {
		switch {
		case errors.Is(err, contextstore.ErrNotFound):
			return nil, &ContextError{
				StatusCode: 404,
				Code:       apierrors.CodeNotFound,
				Message:    fmt.Sprintf("Контекст %s не найден", contextID),
			}
		case errors.Is(err, contextstore.ErrAlreadyDecided):
			return nil, &ContextError{
				StatusCode: 409,
				Code:       apierrors.CodeInvalidTransition,
				Message:    "Решение по контексту уже принято и не может быть изменено",
			}
		default:
			s.logger.Error("Ошибка сохранения решения",
				slog.String("context_id", contextID),
				slog.String("error", err.Error()),
			)
			return nil, &ContextError{
				StatusCode: 500,
				Code:       apierrors.CodeInternalError,
				Message:    "Ошибка сохранения коллекции контекстов",
			}
		}
	}

	s.refreshContextsGauge()
	s.logger.Info("Решение по контексту сохранено",
		slog.String("context_id", contextID),
		slog.String("status", string(rec.Status)),
	)
	return rec, nil
}

// CountByStatus возвращает количество контекстов по каждому статусу.
func (s *ContextService) CountByStatus() map[string]int {
	return map[string]int{
		string(model.StatusPending):  s.store.CountByStatus(model.StatusPending),
		string(model.StatusApproved): s.store.CountByStatus(model.StatusApproved),
		string(model.StatusRejected): s.store.CountByStatus(model.StatusRejected),
	}
}

// refreshContextsGauge обновляет gauge количества контекстов по статусам.
func (s *ContextService) refreshContextsGauge() {
	for status, count := range s.CountByStatus() {
		middleware.ContextsTotal.WithLabelValues(status).Set(float64(count))
	}
}

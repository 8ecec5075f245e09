// Пакет contextstore — потокобезопасное хранилище записей контекстов.
//
// Вся коллекция держится в памяти (map context_id → record) и целиком
// сбрасывается на диск при каждой мутации. Единственный владелец
// мутаций — внутренний mutex: конкурентные Create/Approve сериализуются,
// read-modify-write гонка исключена. Запись на диск атомарна:
// temp файл → fsync → rename, усечённый файл при падении невозможен.
//
// Ожидаемый масштаб — сотни/единицы тысяч контекстов, линейный скан
// при фильтрации достаточен.
package contextstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/goingest/internal/domain/model"
)

// Сигнальные ошибки хранилища.
var (
	// ErrNotFound — контекст с указанным id не существует
	ErrNotFound = errors.New("контекст не найден")
	// ErrAlreadyDecided — контекст уже в конечном статусе,
	// повторное решение запрещено
	ErrAlreadyDecided = errors.New("контекст уже находится в конечном статусе")
)

// collectionVersion — версия формата contexts.json.
const collectionVersion = 1

// persistedCollection — формат файла contexts.json.
type persistedCollection struct {
	Version  int                    `json:"version"`
	Contexts []*model.ContextRecord `json:"contexts"`
}

// Store — хранилище записей контекстов.
// Единственный писатель коллекции; читатели получают копии.
type Store struct {
	mu       sync.RWMutex
	path     string
	contexts map[string]*model.ContextRecord
	ready    bool
	logger   *slog.Logger
}

// Open загружает коллекцию из файла path (или создаёт пустую,
// если файла нет) и возвращает готовое хранилище.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:     path,
		contexts: make(map[string]*model.ContextRecord),
		logger:   logger.With(slog.String("component", "context_store")),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию хранилища: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Первый запуск — пустая коллекция
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	default:
		var collection persistedCollection
		if err := json.Unmarshal(data, &collection); err != nil {
			return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
		}
		for _, rec := range collection.Contexts {
			s.contexts[rec.ID] = rec
		}
	}

	s.ready = true
	s.logger.Info("Хранилище контекстов загружено",
		slog.Int("contexts", len(s.contexts)),
		slog.String("path", path),
	)
	return s, nil
}

// IsReady возвращает true, если коллекция загружена.
func (s *Store) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Create создаёт новую запись контекста в статусе pending и персистирует
// коллекцию. fileCount может быть nil, если количество файлов неприменимо.
func (s *Store) Create(name string, ctype model.ContextType, size int64, fileCount *int) (*model.ContextRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := &model.ContextRecord{
		ID:      uuid.New().String(),
		Name:    name,
		Type:    ctype,
		Status:  model.StatusPending,
		Created: now,
		Updated: now,
		Size:    size,
	}
	if fileCount != nil {
		fc := *fileCount
		rec.FileCount = &fc
	}

	s.contexts[rec.ID] = rec
	if err := s.persistLocked(); err != nil {
		// Откат in-memory состояния: коллекция на диске не изменилась
		delete(s.contexts, rec.ID)
		return nil, err
	}

	return rec.Clone(), nil
}

// Get возвращает копию записи по id или ErrNotFound.
func (s *Store) Get(id string) (*model.ContextRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.contexts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// ListFilter — параметры фильтрации и пагинации List.
type ListFilter struct {
	// Status — фильтр по статусу ("" = без фильтра)
	Status model.ContextStatus
	// Type — фильтр по типу ("" = без фильтра)
	Type model.ContextType
	// Search — подстрока имени без учёта регистра ("" = без фильтра)
	Search string
	// Limit — максимальное количество элементов (0 = все)
	Limit int
	// Offset — смещение от начала списка
	Offset int
}

// List возвращает пагинированный список копий записей.
// Фильтры применяются в порядке status → type → search,
// затем сортировка по created (новые первые), затем пагинация.
// Возвращает срез и общее количество записей с учётом фильтров.
func (s *Store) List(f ListFilter) ([]*model.ContextRecord, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)

	var filtered []*model.ContextRecord
	for _, rec := range s.contexts {
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.Type != "" && rec.Type != f.Type {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.Name), search) {
			continue
		}
		filtered = append(filtered, rec.Clone())
	}

	// Сортировка по дате создания (новые первые); при равенстве —
	// по id для детерминированного порядка
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Created.Equal(filtered[j].Created) {
			return filtered[i].ID < filtered[j].ID
		}
		return filtered[i].Created.After(filtered[j].Created)
	})

	total := len(filtered)

	if f.Offset >= total {
		return nil, total
	}

	end := total
	if f.Limit > 0 && f.Offset+f.Limit < total {
		end = f.Offset + f.Limit
	}

	return filtered[f.Offset:end], total
}

// Approve применяет решение оператора к контексту: переводит статус
// в approved/rejected, обновляет updated и сохраняет причину в metadata
// под ключом approval_reason (если причина непуста).
//
// Возвращает ErrNotFound для неизвестного id и ErrAlreadyDecided для
// контекста в конечном статусе (переход из approved/rejected запрещён).
func (s *Store) Approve(id string, approved bool, reason string) (*model.ContextRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.contexts[id]
	if !ok {
		return nil, ErrNotFound
	}

	target := model.StatusForDecision(approved)
	if !model.CanTransition(rec.Status, target) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDecided, rec.Status)
	}

	// Мутируем копию: map обновляется только после успешной записи на диск
	updated := rec.Clone()
	updated.Status = target
	updated.Updated = time.Now().UTC()
	if reason != "" {
		if updated.Metadata == nil {
			updated.Metadata = make(map[string]string, 1)
		}
		updated.Metadata[model.MetadataKeyApprovalReason] = reason
	}

	s.contexts[id] = updated
	if err := s.persistLocked(); err != nil {
		s.contexts[id] = rec
		return nil, err
	}

	return updated.Clone(), nil
}

// Count возвращает общее количество контекстов.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}

// CountByStatus возвращает количество контекстов с указанным статусом.
func (s *Store) CountByStatus(status model.ContextStatus) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.contexts {
		if rec.Status == status {
			count++
		}
	}
	return count
}

// persistLocked атомарно сбрасывает коллекцию на диск.
// Паттерн: JSON → temp файл → fsync → atomic rename.
// Вызывается только под эксклюзивным mutex.
func (s *Store) persistLocked() error {
	records := make([]*model.ContextRecord, 0, len(s.contexts))
	for _, rec := range s.contexts {
		records = append(records, rec)
	}
	// Детерминированный порядок в файле
	sort.Slice(records, func(i, j int) bool {
		if records[i].Created.Equal(records[j].Created) {
			return records[i].ID < records[j].ID
		}
		return records[i].Created.After(records[j].Created)
	})

	data, err := json.MarshalIndent(persistedCollection{
		Version:  collectionVersion,
		Contexts: records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации коллекции: %w", err)
	}

	tmpPath := s.path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}

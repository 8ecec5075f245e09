package contextstore

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bigkaa/goingest/internal/domain/model"
)

// testLogger возвращает логгер для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// openTestStore создаёт хранилище во временной директории.
func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "contexts.json")
	s, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("ошибка открытия хранилища: %v", err)
	}
	return s, path
}

// TestOpen_Empty проверяет открытие без существующего файла.
func TestOpen_Empty(t *testing.T) {
	s, path := openTestStore(t)

	if !s.IsReady() {
		t.Error("хранилище должно быть ready после загрузки")
	}
	if s.Count() != 0 {
		t.Errorf("ожидалось 0 контекстов, получено %d", s.Count())
	}

	// Файл создаётся только при первой мутации
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("файл не должен существовать до первой мутации")
	}
}

// TestCreate проверяет создание контекста.
func TestCreate(t *testing.T) {
	s, path := openTestStore(t)

	fc := 3
	rec, err := s.Create("release-notes", model.TypeZip, 2048, &fc)
	if err != nil {
		t.Fatalf("ошибка создания контекста: %v", err)
	}

	if rec.ID == "" {
		t.Error("context_id не должен быть пустым")
	}
	if rec.Status != model.StatusPending {
		t.Errorf("ожидался статус pending, получен %q", rec.Status)
	}
	if rec.FileCount == nil || *rec.FileCount != 3 {
		t.Error("неверный file_count")
	}
	if !rec.Updated.Equal(rec.Created) {
		t.Error("updated должен совпадать с created при создании")
	}

	// Коллекция персистирована
	if _, err := os.Stat(path); err != nil {
		t.Errorf("файл коллекции должен существовать: %v", err)
	}
}

// TestGet проверяет получение контекста по id.
func TestGet(t *testing.T) {
	s, _ := openTestStore(t)

	rec, err := s.Create("ctx", model.TypeFile, 100, nil)
	if err != nil {
		t.Fatalf("ошибка создания: %v", err)
	}

	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatalf("ошибка получения: %v", err)
	}
	if got.Name != "ctx" {
		t.Errorf("ожидалось имя 'ctx', получено %q", got.Name)
	}

	// Мутация копии не затрагивает хранилище
	got.Name = "mutated"
	again, _ := s.Get(rec.ID)
	if again.Name != "ctx" {
		t.Error("Get должен возвращать копию записи")
	}

	if _, err := s.Get("unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
}

// TestList_Filters проверяет фильтрацию по статусу, типу и имени.
func TestList_Filters(t *testing.T) {
	s, _ := openTestStore(t)

	z, _ := s.Create("alpha-bundle", model.TypeZip, 10, nil)
	s.Create("beta-file", model.TypeFile, 20, nil)
	s.Create("Alpha-dir", model.TypeDirectory, 30, nil)

	if _, err := s.Approve(z.ID, true, ""); err != nil {
		t.Fatalf("ошибка approve: %v", err)
	}

	// Фильтр по статусу
	items, total := s.List(ListFilter{Status: model.StatusPending})
	if total != 2 || len(items) != 2 {
		t.Errorf("pending: ожидалось 2, получено total=%d len=%d", total, len(items))
	}

	// Фильтр по типу
	items, total = s.List(ListFilter{Type: model.TypeZip})
	if total != 1 || items[0].ID != z.ID {
		t.Errorf("type=zip: ожидался 1 контекст %s", z.ID)
	}

	// Поиск без учёта регистра
	_, total = s.List(ListFilter{Search: "ALPHA"})
	if total != 2 {
		t.Errorf("search=ALPHA: ожидалось 2, получено %d", total)
	}

	// Комбинация фильтров
	_, total = s.List(ListFilter{Status: model.StatusPending, Search: "alpha"})
	if total != 1 {
		t.Errorf("pending+alpha: ожидался 1, получено %d", total)
	}
}

// TestList_Pagination проверяет limit/offset и сортировку.
func TestList_Pagination(t *testing.T) {
	s, _ := openTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := s.Create("ctx", model.TypeFile, int64(i), nil); err != nil {
			t.Fatalf("ошибка создания: %v", err)
		}
	}

	// Без limit — все записи
	items, total := s.List(ListFilter{})
	if total != 5 || len(items) != 5 {
		t.Fatalf("ожидалось 5 записей, получено total=%d len=%d", total, len(items))
	}

	// Сортировка: новые первые
	for i := 1; i < len(items); i++ {
		if items[i].Created.After(items[i-1].Created) {
			t.Error("нарушен порядок сортировки (новые первые)")
		}
	}

	// Страница
	page, total := s.List(ListFilter{Limit: 2, Offset: 2})
	if total != 5 || len(page) != 2 {
		t.Errorf("страница: ожидалось total=5 len=2, получено total=%d len=%d", total, len(page))
	}

	// Offset за пределами
	page, total = s.List(ListFilter{Limit: 2, Offset: 10})
	if total != 5 || len(page) != 0 {
		t.Errorf("offset за пределами: ожидался пустой срез, получено len=%d", len(page))
	}
}

// TestApprove проверяет утверждение и отклонение контекстов.
func TestApprove(t *testing.T) {
	s, _ := openTestStore(t)

	rec, _ := s.Create("ctx", model.TypeZip, 10, nil)

	updated, err := s.Approve(rec.ID, true, "проверено вручную")
	if err != nil {
		t.Fatalf("ошибка approve: %v", err)
	}
	if updated.Status != model.StatusApproved {
		t.Errorf("ожидался статус approved, получен %q", updated.Status)
	}
	if updated.Metadata[model.MetadataKeyApprovalReason] != "проверено вручную" {
		t.Error("причина решения не сохранена в metadata")
	}
	if updated.Updated.Before(updated.Created) {
		t.Error("updated не должен быть раньше created")
	}

	// Отклонение без причины — metadata не создаётся
	rec2, _ := s.Create("ctx2", model.TypeZip, 10, nil)
	rejected, err := s.Approve(rec2.ID, false, "")
	if err != nil {
		t.Fatalf("ошибка reject: %v", err)
	}
	if rejected.Status != model.StatusRejected {
		t.Errorf("ожидался статус rejected, получен %q", rejected.Status)
	}
	if rejected.Metadata != nil {
		t.Error("metadata не должна создаваться без причины")
	}
}

// TestApprove_Terminal проверяет запрет повторного решения.
func TestApprove_Terminal(t *testing.T) {
	s, _ := openTestStore(t)

	rec, _ := s.Create("ctx", model.TypeZip, 10, nil)
	if _, err := s.Approve(rec.ID, true, ""); err != nil {
		t.Fatalf("ошибка approve: %v", err)
	}

	// Повторное решение — в любую сторону — запрещено
	if _, err := s.Approve(rec.ID, false, ""); !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("ожидалась ErrAlreadyDecided, получено %v", err)
	}
	if _, err := s.Approve(rec.ID, true, ""); !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("ожидалась ErrAlreadyDecided, получено %v", err)
	}

	// Статус не изменился
	got, _ := s.Get(rec.ID)
	if got.Status != model.StatusApproved {
		t.Errorf("статус не должен меняться, получен %q", got.Status)
	}
}

// TestApprove_NotFound проверяет, что решение по неизвестному id
// не меняет коллекцию.
func TestApprove_NotFound(t *testing.T) {
	s, _ := openTestStore(t)
	s.Create("ctx", model.TypeZip, 10, nil)

	if _, err := s.Approve("unknown", true, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
	if s.Count() != 1 {
		t.Errorf("размер коллекции не должен меняться, получено %d", s.Count())
	}
}

// TestPersistence проверяет выживание коллекции после перезагрузки.
func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contexts.json")

	s1, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("ошибка открытия: %v", err)
	}
	rec, _ := s1.Create("persisted", model.TypeDirectory, 500, nil)
	if _, err := s1.Approve(rec.ID, false, "не прошёл ревью"); err != nil {
		t.Fatalf("ошибка reject: %v", err)
	}

	// Повторное открытие того же файла
	s2, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("ошибка повторного открытия: %v", err)
	}

	got, err := s2.Get(rec.ID)
	if err != nil {
		t.Fatalf("контекст не пережил перезагрузку: %v", err)
	}
	if got.Status != model.StatusRejected {
		t.Errorf("ожидался статус rejected, получен %q", got.Status)
	}
	if got.Metadata[model.MetadataKeyApprovalReason] != "не прошёл ревью" {
		t.Error("причина решения не пережила перезагрузку")
	}
}

// TestConcurrentCreate проверяет сериализацию конкурентных мутаций.
func TestConcurrentCreate(t *testing.T) {
	s, _ := openTestStore(t)

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.Create("concurrent", model.TypeFile, 1, nil); err != nil {
				t.Errorf("ошибка создания: %v", err)
			}
		}()
	}
	wg.Wait()

	if s.Count() != workers {
		t.Errorf("ожидалось %d контекстов, получено %d", workers, s.Count())
	}
}

// TestCountByStatus проверяет подсчёт по статусам.
func TestCountByStatus(t *testing.T) {
	s, _ := openTestStore(t)

	a, _ := s.Create("a", model.TypeZip, 1, nil)
	s.Create("b", model.TypeZip, 1, nil)
	s.Create("c", model.TypeZip, 1, nil)
	s.Approve(a.ID, true, "")

	if got := s.CountByStatus(model.StatusPending); got != 2 {
		t.Errorf("pending: ожидалось 2, получено %d", got)
	}
	if got := s.CountByStatus(model.StatusApproved); got != 1 {
		t.Errorf("approved: ожидалось 1, получено %d", got)
	}
	if got := s.CountByStatus(model.StatusRejected); got != 0 {
		t.Errorf("rejected: ожидалось 0, получено %d", got)
	}
}

package service

import (
	"archive/zip"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	apierrors "github.com/bigkaa/goingest/internal/api/errors"
	"github.com/bigkaa/goingest/internal/config"
	"github.com/bigkaa/goingest/internal/security/zipcheck"
)

// testLogger возвращает логгер для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// zipEntry — запись тестового архива.
type zipEntry struct {
	name    string
	content string
}

// writeZip создаёт zip-архив с указанными записями.
func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("ошибка создания архива: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("ошибка создания записи %q: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.content)); err != nil {
			t.Fatalf("ошибка записи %q: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("ошибка закрытия архива: %v", err)
	}
}

// newTestService создаёт сервис извлечения для тестов.
func newTestService(t *testing.T) *ExtractService {
	t.Helper()
	return NewExtractService(&config.Config{DataDir: t.TempDir()}, testLogger())
}

// countFiles считает обычные файлы в дереве директории.
func countFiles(t *testing.T, root string) int {
	t.Helper()

	count := 0
	err := filepath.WalkDir(root, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("ошибка обхода %s: %v", root, err)
	}
	return count
}

// TestExtract_TraversalSkipped проверяет, что валидные записи извлекаются,
// а traversal-записи пропускаются с warning.
func TestExtract_TraversalSkipped(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "mixed.zip")
	writeZip(t, archive, []zipEntry{
		{"notes.md", "# notes\n"},
		{"../../etc/passwd", "root:x\n"},
	})

	svc := newTestService(t)
	extractTo := filepath.Join(dir, "out")

	outcome, extractErr := svc.Extract(ExtractParams{
		FilePath:          archive,
		ExtractTo:         extractTo,
		PreserveStructure: true,
	})
	if extractErr != nil {
		t.Fatalf("ожидался успех, получена ошибка: %s", extractErr.Message)
	}

	if len(outcome.ExtractedFiles) != 1 || outcome.ExtractedFiles[0] != "notes.md" {
		t.Errorf("ожидался единственный файл notes.md, получено %v", outcome.ExtractedFiles)
	}
	if outcome.TotalFiles != 2 {
		t.Errorf("ожидалось total_files=2, получено %d", outcome.TotalFiles)
	}
	if len(outcome.Warnings) != 1 {
		t.Errorf("ожидался ровно 1 warning, получено %v", outcome.Warnings)
	}

	// На диске только notes.md, ничего за пределами корня
	if countFiles(t, extractTo) != 1 {
		t.Error("в директории извлечения должен быть ровно 1 файл")
	}
	if _, err := os.Stat(filepath.Join(extractTo, "notes.md")); err != nil {
		t.Errorf("notes.md не извлечён: %v", err)
	}
}

// TestExtract_FlattenStructure проверяет flatten при preserve_structure=false.
func TestExtract_FlattenStructure(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "nested.zip")
	writeZip(t, archive, []zipEntry{
		{"dir/sub/file.md", "content\n"},
	})

	svc := newTestService(t)
	extractTo := filepath.Join(dir, "out")

	outcome, extractErr := svc.Extract(ExtractParams{
		FilePath:          archive,
		ExtractTo:         extractTo,
		PreserveStructure: false,
	})
	if extractErr != nil {
		t.Fatalf("ожидался успех, получена ошибка: %s", extractErr.Message)
	}

	if len(outcome.ExtractedFiles) != 1 || outcome.ExtractedFiles[0] != "file.md" {
		t.Errorf("ожидался file.md в корне, получено %v", outcome.ExtractedFiles)
	}
	if _, err := os.Stat(filepath.Join(extractTo, "file.md")); err != nil {
		t.Errorf("file.md не извлечён в корень: %v", err)
	}
}

// TestExtract_PreserveStructure проверяет сохранение дерева директорий.
func TestExtract_PreserveStructure(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "nested.zip")
	writeZip(t, archive, []zipEntry{
		{"dir/sub/file.md", "content\n"},
	})

	svc := newTestService(t)
	extractTo := filepath.Join(dir, "out")

	outcome, extractErr := svc.Extract(ExtractParams{
		FilePath:          archive,
		ExtractTo:         extractTo,
		PreserveStructure: true,
	})
	if extractErr != nil {
		t.Fatalf("ожидался успех, получена ошибка: %s", extractErr.Message)
	}

	if len(outcome.ExtractedFiles) != 1 || outcome.ExtractedFiles[0] != "dir/sub/file.md" {
		t.Errorf("ожидался dir/sub/file.md, получено %v", outcome.ExtractedFiles)
	}
	if _, err := os.Stat(filepath.Join(extractTo, "dir", "sub", "file.md")); err != nil {
		t.Errorf("дерево директорий не сохранено: %v", err)
	}
}

// TestExtract_NotFound проверяет отказ для несуществующего архива.
func TestExtract_NotFound(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t)

	_, extractErr := svc.Extract(ExtractParams{
		FilePath:  filepath.Join(dir, "missing.zip"),
		ExtractTo: filepath.Join(dir, "out"),
	})
	if extractErr == nil {
		t.Fatal("ожидалась ошибка для несуществующего архива")
	}
	if extractErr.StatusCode != 404 || extractErr.Code != apierrors.CodeNotFound {
		t.Errorf("ожидался 404 NOT_FOUND, получено %d %s", extractErr.StatusCode, extractErr.Code)
	}
}

// TestExtract_CorruptZip проверяет отказ для битого архива:
// сигнатура zip корректная, структура — нет.
func TestExtract_CorruptZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "corrupt.zip")
	if err := os.WriteFile(archive, []byte("PK\x03\x04мусор вместо структуры"), 0o600); err != nil {
		t.Fatalf("ошибка записи файла: %v", err)
	}

	svc := newTestService(t)
	_, extractErr := svc.Extract(ExtractParams{
		FilePath:  archive,
		ExtractTo: filepath.Join(dir, "out"),
	})
	if extractErr == nil {
		t.Fatal("ожидалась ошибка для битого архива")
	}
	if extractErr.StatusCode != 422 || extractErr.Code != apierrors.CodeStructuralRejected {
		t.Errorf("ожидался 422 STRUCTURAL_REJECTED, получено %d %s", extractErr.StatusCode, extractErr.Code)
	}
}

// TestExtract_Bomb проверяет, что bomb-архив отклоняется до записи
// чего-либо на диск: 2 MiB нулей сжимаются лучше порога 100x.
func TestExtract_Bomb(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bomb.zip")
	writeZip(t, archive, []zipEntry{
		{"zeros.txt", strings.Repeat("\x00", 2<<20)},
	})

	svc := newTestService(t)
	extractTo := filepath.Join(dir, "out")

	_, extractErr := svc.Extract(ExtractParams{
		FilePath:  archive,
		ExtractTo: extractTo,
	})
	if extractErr == nil {
		t.Fatal("ожидался отказ bomb-детектора")
	}
	if extractErr.StatusCode != 422 || extractErr.Code != apierrors.CodeStructuralRejected {
		t.Errorf("ожидался 422 STRUCTURAL_REJECTED, получено %d %s", extractErr.StatusCode, extractErr.Code)
	}
	if countFiles(t, extractTo) != 0 {
		t.Error("bomb-архив не должен оставлять файлов на диске")
	}
}

// TestExtract_TooManyEntries проверяет отказ до записи на диск
// при превышении лимита количества записей.
func TestExtract_TooManyEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "many.zip")

	entries := make([]zipEntry, 0, zipcheck.MaxEntries+1)
	for i := 0; i <= zipcheck.MaxEntries; i++ {
		entries = append(entries, zipEntry{name: "files/" + strconv.Itoa(i) + ".txt"})
	}
	writeZip(t, archive, entries)

	svc := newTestService(t)
	extractTo := filepath.Join(dir, "out")

	_, extractErr := svc.Extract(ExtractParams{
		FilePath:  archive,
		ExtractTo: extractTo,
	})
	if extractErr == nil {
		t.Fatal("ожидался отказ по количеству записей")
	}
	if extractErr.Code != apierrors.CodeStructuralRejected {
		t.Errorf("ожидался STRUCTURAL_REJECTED, получен %s", extractErr.Code)
	}
	if countFiles(t, extractTo) != 0 {
		t.Error("отказ по количеству записей не должен оставлять файлов на диске")
	}
}

// TestExtract_OverwriteSemantics проверяет пропуск существующих файлов
// без overwrite и перезапись с overwrite.
func TestExtract_OverwriteSemantics(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive.zip")
	writeZip(t, archive, []zipEntry{
		{"data.txt", "v1\n"},
	})

	svc := newTestService(t)
	extractTo := filepath.Join(dir, "out")

	// Первое извлечение
	outcome, extractErr := svc.Extract(ExtractParams{
		FilePath: archive, ExtractTo: extractTo, PreserveStructure: true,
	})
	if extractErr != nil {
		t.Fatalf("первое извлечение: %s", extractErr.Message)
	}
	if len(outcome.ExtractedFiles) != 1 {
		t.Fatalf("ожидался 1 файл, получено %v", outcome.ExtractedFiles)
	}

	// Повторное без overwrite — пропуск с warning
	outcome, extractErr = svc.Extract(ExtractParams{
		FilePath: archive, ExtractTo: extractTo, PreserveStructure: true,
	})
	if extractErr != nil {
		t.Fatalf("повторное извлечение: %s", extractErr.Message)
	}
	if len(outcome.ExtractedFiles) != 0 {
		t.Errorf("без overwrite файл не должен извлекаться: %v", outcome.ExtractedFiles)
	}
	if len(outcome.Warnings) != 1 {
		t.Errorf("ожидался 1 warning, получено %v", outcome.Warnings)
	}

	// С overwrite — перезапись
	outcome, extractErr = svc.Extract(ExtractParams{
		FilePath: archive, ExtractTo: extractTo, Overwrite: true, PreserveStructure: true,
	})
	if extractErr != nil {
		t.Fatalf("извлечение с overwrite: %s", extractErr.Message)
	}
	if len(outcome.ExtractedFiles) != 1 {
		t.Errorf("с overwrite файл должен извлекаться: %v", outcome.ExtractedFiles)
	}
}

// TestExtract_DisallowedExtension проверяет пропуск записей
// с запрещённым расширением.
func TestExtract_DisallowedExtension(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive.zip")
	writeZip(t, archive, []zipEntry{
		{"ok.md", "# ok\n"},
		{"evil.exe", "MZ"},
	})

	svc := newTestService(t)
	extractTo := filepath.Join(dir, "out")

	outcome, extractErr := svc.Extract(ExtractParams{
		FilePath: archive, ExtractTo: extractTo, PreserveStructure: true,
	})
	if extractErr != nil {
		t.Fatalf("ожидался успех: %s", extractErr.Message)
	}
	if len(outcome.ExtractedFiles) != 1 || outcome.ExtractedFiles[0] != "ok.md" {
		t.Errorf("ожидался только ok.md, получено %v", outcome.ExtractedFiles)
	}
	if len(outcome.Warnings) != 1 {
		t.Errorf("ожидался 1 warning, получено %v", outcome.Warnings)
	}
	if _, err := os.Stat(filepath.Join(extractTo, "evil.exe")); !os.IsNotExist(err) {
		t.Error("evil.exe не должен быть извлечён")
	}
}

// TestExtract_BudgetExceeded проверяет частичный результат при
// превышении байтового бюджета: бюджет понижен до теста.
func TestExtract_BudgetExceeded(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive.zip")
	writeZip(t, archive, []zipEntry{
		{"first.txt", "12345678"},
		{"second.txt", "12345678"},
	})

	svc := newTestService(t)
	svc.maxTotalBytes = 10 // первый файл (8 байт) проходит, второй — нет

	extractTo := filepath.Join(dir, "out")
	outcome, extractErr := svc.Extract(ExtractParams{
		FilePath: archive, ExtractTo: extractTo, PreserveStructure: true,
	})
	if extractErr == nil {
		t.Fatal("ожидался отказ по бюджету")
	}
	if outcome != nil {
		t.Error("при ошибке основной результат должен быть nil")
	}
	if extractErr.StatusCode != 507 || extractErr.Code != apierrors.CodeBudgetExceeded {
		t.Errorf("ожидался 507 BUDGET_EXCEEDED, получено %d %s", extractErr.StatusCode, extractErr.Code)
	}

	// Частичный результат: первый файл извлечён и остаётся на диске
	partial := extractErr.Outcome
	if partial == nil {
		t.Fatal("ожидался частичный результат")
	}
	if len(partial.ExtractedFiles) != 1 || partial.ExtractedFiles[0] != "first.txt" {
		t.Errorf("ожидался извлечённый first.txt, получено %v", partial.ExtractedFiles)
	}
	if partial.TotalSizeBytes != 8 {
		t.Errorf("ожидалось 8 байт, получено %d", partial.TotalSizeBytes)
	}
	if _, err := os.Stat(filepath.Join(extractTo, "first.txt")); err != nil {
		t.Errorf("first.txt должен остаться на диске: %v", err)
	}
	if _, err := os.Stat(filepath.Join(extractTo, "second.txt")); !os.IsNotExist(err) {
		t.Error("second.txt не должен остаться на диске")
	}
}

// TestExtract_SanitizedNames проверяет, что запрещённые символы имён
// заменяются, а файл извлекается под безопасным именем.
func TestExtract_SanitizedNames(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive.zip")
	writeZip(t, archive, []zipEntry{
		{"my file (1).txt", "data\n"},
	})

	svc := newTestService(t)
	extractTo := filepath.Join(dir, "out")

	outcome, extractErr := svc.Extract(ExtractParams{
		FilePath: archive, ExtractTo: extractTo, PreserveStructure: true,
	})
	if extractErr != nil {
		t.Fatalf("ожидался успех: %s", extractErr.Message)
	}
	if len(outcome.ExtractedFiles) != 1 || outcome.ExtractedFiles[0] != "my_file__1_.txt" {
		t.Errorf("ожидалось санитизированное имя, получено %v", outcome.ExtractedFiles)
	}
}

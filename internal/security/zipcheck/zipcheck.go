// Пакет zipcheck — структурная валидация содержимого zip-архива.
//
// Две операции, обе read-only над списком записей открытого архива:
//   - ValidateContents — проверка набора записей целиком
//     (количество, агрегатный коэффициент сжатия, бюджет извлечения);
//   - ValidateEntry — проверка одной записи
//     (traversal-паттерны, allowlist расширений, размер записи).
//
// Провал ValidateContents фатален для всей операции (архив враждебен
// как единое целое), провал ValidateEntry — нет (запись пропускается
// с warning, извлечение продолжается).
package zipcheck

import (
	"archive/zip"
	"fmt"
	"path/filepath"
	"strings"
)

// Контрактные константы политики. Все сравнения строгие (>):
// значение ровно на пороге проходит.
const (
	// MaxEntries — максимальное количество записей архива
	MaxEntries = 1000
	// MaxTotalUncompressedSize — агрегатный бюджет извлечения (100 MiB)
	MaxTotalUncompressedSize int64 = 100 << 20
	// MaxEntrySize — максимальный заявленный размер одной записи (10 MiB)
	MaxEntrySize int64 = 10 << 20
	// MaxCompressionRatio — порог bomb-детектора: отношение суммарного
	// несжатого размера к суммарному сжатому
	MaxCompressionRatio = 100.0
)

// allowedExtensions — allowlist расширений записей (без учёта регистра).
// Запись без расширения допустима.
var allowedExtensions = map[string]bool{
	".js":   true,
	".ts":   true,
	".json": true,
	".md":   true,
	".txt":  true,
	".yml":  true,
	".yaml": true,
	".csv":  true,
	".xml":  true,
}

// AllowedExtensions возвращает список разрешённых расширений
// (порядок не определён).
func AllowedExtensions() []string {
	result := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		result = append(result, ext)
	}
	return result
}

// Entry — read-only представление записи архива, производное от
// собственного индекса архива. Имя — сырая строка атакующего.
type Entry struct {
	// Name — сырое имя записи из индекса архива
	Name string
	// UncompressedSize — заявленный несжатый размер
	UncompressedSize int64
	// CompressedSize — сжатый размер в архиве
	CompressedSize int64
	// IsDir — признак директории
	IsDir bool
}

// EntriesFromZip строит список Entry из открытого zip.Reader.
// Порядок записей соответствует порядку в архиве.
func EntriesFromZip(r *zip.Reader) []Entry {
	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, Entry{
			Name:             f.Name,
			UncompressedSize: int64(f.UncompressedSize64), //nolint:gosec // размеры архива < 2^63
			CompressedSize:   int64(f.CompressedSize64),   //nolint:gosec
			IsDir:            f.FileInfo().IsDir(),
		})
	}
	return entries
}

// Violation — причина отказа структурной валидации.
// nil означает, что проверка пройдена.
type Violation struct {
	// Reason — машиночитаемая причина
	Reason string
	// Message — человекочитаемое описание
	Message string
}

// Причины отказа ValidateContents / ValidateEntry.
const (
	ReasonEmptyArchive     = "empty_archive"
	ReasonTooManyEntries   = "too_many_entries"
	ReasonCompressionRatio = "compression_ratio"
	ReasonTotalSize        = "total_size"
	ReasonPathTraversal    = "path_traversal"
	ReasonExtension        = "extension"
	ReasonEntrySize        = "entry_size"
)

// ValidateContents проверяет набор записей архива целиком.
// Агрегаты считаются только по файловым (не-директорным) записям.
// Bomb определяется аномальным агрегатным коэффициентом расширения,
// а не размером отдельной записи.
func ValidateContents(entries []Entry) *Violation {
	if len(entries) == 0 {
		return &Violation{
			Reason:  ReasonEmptyArchive,
			Message: "Архив не содержит записей",
		}
	}

	if len(entries) > MaxEntries {
		return &Violation{
			Reason:  ReasonTooManyEntries,
			Message: fmt.Sprintf("Количество записей %d превышает максимум %d", len(entries), MaxEntries),
		}
	}

	var uncompressedTotal, compressedTotal int64
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		uncompressedTotal += e.UncompressedSize
		compressedTotal += e.CompressedSize
	}

	// Bomb-детектор: агрегатный коэффициент расширения.
	// Нулевой сжатый размер при ненулевом несжатом — вырожденный случай
	// того же признака (бесконечный коэффициент).
	if compressedTotal > 0 {
		ratio := float64(uncompressedTotal) / float64(compressedTotal)
		if ratio > MaxCompressionRatio {
			return &Violation{
				Reason: ReasonCompressionRatio,
				Message: fmt.Sprintf("Коэффициент сжатия %.1f превышает порог %.0f (признак zip bomb)",
					ratio, MaxCompressionRatio),
			}
		}
	} else if uncompressedTotal > 0 {
		return &Violation{
			Reason:  ReasonCompressionRatio,
			Message: "Нулевой сжатый размер при ненулевом несжатом (признак zip bomb)",
		}
	}

	if uncompressedTotal > MaxTotalUncompressedSize {
		return &Violation{
			Reason: ReasonTotalSize,
			Message: fmt.Sprintf("Суммарный несжатый размер %d байт превышает бюджет %d байт",
				uncompressedTotal, MaxTotalUncompressedSize),
		}
	}

	return nil
}

// ValidateEntry проверяет одну запись архива.
// Traversal-проверка по сырому имени выполняется независимо от
// санитайзера — это быстрый отказ до каких-либо преобразований.
func ValidateEntry(e Entry) *Violation {
	if strings.Contains(e.Name, "..") || strings.Contains(e.Name, "\\") || strings.HasPrefix(e.Name, "/") {
		return &Violation{
			Reason:  ReasonPathTraversal,
			Message: fmt.Sprintf("Имя записи %q содержит traversal-паттерн", e.Name),
		}
	}

	if ext := strings.ToLower(filepath.Ext(e.Name)); ext != "" && !allowedExtensions[ext] {
		return &Violation{
			Reason:  ReasonExtension,
			Message: fmt.Sprintf("Расширение %q записи %q не входит в allowlist", ext, e.Name),
		}
	}

	if e.UncompressedSize > MaxEntrySize {
		return &Violation{
			Reason: ReasonEntrySize,
			Message: fmt.Sprintf("Заявленный размер записи %q (%d байт) превышает максимум %d байт",
				e.Name, e.UncompressedSize, MaxEntrySize),
		}
	}

	return nil
}

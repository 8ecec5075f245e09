// Пакет service — бизнес-логика Ingest Module.
// extract.go — сервис безопасного извлечения zip-архивов.
package service

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	apierrors "github.com/bigkaa/goingest/internal/api/errors"
	"github.com/bigkaa/goingest/internal/api/middleware"
	"github.com/bigkaa/goingest/internal/config"
	"github.com/bigkaa/goingest/internal/security/filegate"
	"github.com/bigkaa/goingest/internal/security/sanitize"
	"github.com/bigkaa/goingest/internal/security/zipcheck"
)

// ExtractParams — параметры операции извлечения.
type ExtractParams struct {
	// FilePath — абсолютный путь к zip-архиву
	FilePath string
	// ExtractTo — абсолютный путь корневой директории извлечения
	ExtractTo string
	// Overwrite — перезаписывать существующие файлы
	Overwrite bool
	// PreserveStructure — сохранять структуру директорий архива
	PreserveStructure bool
}

// Outcome — результат операции извлечения (в том числе частичный
// при превышении байтового бюджета).
type Outcome struct {
	// ExtractedFiles — относительные пути извлечённых файлов (slash-формат)
	ExtractedFiles []string
	// TotalFiles — количество файловых записей в архиве (без директорий)
	TotalFiles int
	// TotalSizeBytes — суммарный объём записанных на диск байт
	TotalSizeBytes int64
	// Warnings — причины пропуска отдельных записей
	Warnings []string
	// DurationMs — длительность операции в миллисекундах
	DurationMs int64
}

// ExtractError — ошибка извлечения с HTTP-кодом.
// Outcome заполняется при BUDGET_EXCEEDED: уже извлечённые файлы
// остаются на диске, ответ описывает частичный результат.
type ExtractError struct {
	StatusCode int
	Code       string
	Message    string
	Outcome    *Outcome
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ExtractService — сервис извлечения архивов.
type ExtractService struct {
	cfg    *config.Config
	logger *slog.Logger
	// Байтовый бюджет извлечения; в тестах понижается для проверки
	// частичного результата без гигантских архивов.
	maxTotalBytes int64
}

// NewExtractService создаёт сервис извлечения архивов.
func NewExtractService(cfg *config.Config, logger *slog.Logger) *ExtractService {
	return &ExtractService{
		cfg:           cfg,
		logger:        logger.With(slog.String("component", "extract_service")),
		maxTotalBytes: zipcheck.MaxTotalUncompressedSize,
	}
}

// Extract выполняет безопасное извлечение zip-архива.
//
// Поток:
//  1. Проверка файла архива (размер, content-type, имя)
//  2. Открытие zip (структурная корректность)
//  3. Предварительная валидация содержимого (bomb-детектор, лимиты)
//  4. Пофайловое извлечение: невалидные записи пропускаются с warning,
//     превышение байтового бюджета прерывает операцию с частичным результатом
//
// Ошибки шагов 1-3 — fatal, на диск ничего не записывается.
func (s *ExtractService) Extract(params ExtractParams) (*Outcome, *ExtractError) {
	start := time.Now()

	// 1. Проверка файла архива
	if rej := filegate.ValidateFile(params.FilePath); rej != nil {
		middleware.ExtractOperationsTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("Архив отклонён проверкой файла",
			slog.String("path", params.FilePath),
			slog.String("code", rej.Code),
			slog.String("reason", rej.Message),
		)
		return nil, &ExtractError{
			StatusCode: statusForRejection(rej.Code),
			Code:       rej.Code,
			Message:    rej.Message,
		}
	}

	// 2. Открытие zip-архива
	zr, err := zip.OpenReader(params.FilePath)
	if err != nil {
		middleware.ExtractOperationsTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("Файл не является корректным zip-архивом",
			slog.String("path", params.FilePath),
			slog.String("error", err.Error()),
		)
		return nil, &ExtractError{
			StatusCode: 422,
			Code:       apierrors.CodeStructuralRejected,
			Message:    "Файл не является корректным zip-архивом",
		}
	}
	defer zr.Close()

	// 3. Предварительная валидация содержимого по заголовкам
	entries := zipcheck.EntriesFromZip(&zr.Reader)
	if v := zipcheck.ValidateContents(entries); v != nil {
		middleware.ExtractOperationsTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("Архив отклонён структурной валидацией",
			slog.String("path", params.FilePath),
			slog.String("reason", v.Reason),
		)
		return nil, &ExtractError{
			StatusCode: 422,
			Code:       apierrors.CodeStructuralRejected,
			Message:    v.Message,
		}
	}

	outcome := &Outcome{
		ExtractedFiles: []string{},
		Warnings:       []string{},
	}

	// 4. Пофайловое извлечение
	for _, f := range zr.File {
		entry := zipcheck.Entry{
			Name:             f.Name,
			UncompressedSize: int64(f.UncompressedSize64),
			CompressedSize:   int64(f.CompressedSize64),
			IsDir:            f.FileInfo().IsDir(),
		}
		if entry.IsDir {
			continue
		}
		outcome.TotalFiles++

		// Невалидная запись — warning, не fatal
		if v := zipcheck.ValidateEntry(entry); v != nil {
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("%s: %s", f.Name, v.Message))
			continue
		}

		// Санитизация имени: результат всегда безопасный относительный путь
		name := sanitize.Sanitize(f.Name)
		if !params.PreserveStructure {
			name = path.Base(name)
		}

		destPath := filepath.Join(params.ExtractTo, filepath.FromSlash(name))

		// Повторная проверка удержания внутри корня извлечения
		rel, err := filepath.Rel(params.ExtractTo, destPath)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("%s: путь выходит за пределы директории извлечения", f.Name))
			continue
		}

		// Существующий файл без overwrite — пропуск
		if _, err := os.Stat(destPath); err == nil && !params.Overwrite {
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("%s: файл уже существует", name))
			continue
		}

		written, writeErr := s.writeEntry(f, destPath, s.maxTotalBytes-outcome.TotalSizeBytes)
		if writeErr != nil {
			if writeErr == errBudgetExceeded {
				// Бюджет исчерпан: уже извлечённые файлы остаются на диске
				outcome.DurationMs = time.Since(start).Milliseconds()
				middleware.ExtractOperationsTotal.WithLabelValues("budget_exceeded").Inc()
				middleware.ExtractBytesTotal.Add(float64(outcome.TotalSizeBytes))
				middleware.ExtractWarningsTotal.Add(float64(len(outcome.Warnings)))
				s.logger.Warn("Извлечение прервано: превышен байтовый бюджет",
					slog.String("path", params.FilePath),
					slog.Int64("budget", s.maxTotalBytes),
					slog.Int("extracted", len(outcome.ExtractedFiles)),
				)
				return nil, &ExtractError{
					StatusCode: 507,
					Code:       apierrors.CodeBudgetExceeded,
					Message: fmt.Sprintf("Превышен байтовый бюджет извлечения %d байт",
						s.maxTotalBytes),
					Outcome: outcome,
				}
			}
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("%s: ошибка записи: %s", name, writeErr.Error()))
			continue
		}

		outcome.TotalSizeBytes += written
		outcome.ExtractedFiles = append(outcome.ExtractedFiles, name)
	}

	outcome.DurationMs = time.Since(start).Milliseconds()

	// 5. Обновляем метрики
	middleware.ExtractOperationsTotal.WithLabelValues("success").Inc()
	middleware.ExtractBytesTotal.Add(float64(outcome.TotalSizeBytes))
	middleware.ExtractWarningsTotal.Add(float64(len(outcome.Warnings)))

	s.logger.Info("Архив извлечён",
		slog.String("path", params.FilePath),
		slog.Int("extracted", len(outcome.ExtractedFiles)),
		slog.Int("total", outcome.TotalFiles),
		slog.Int64("size", outcome.TotalSizeBytes),
		slog.Int("warnings", len(outcome.Warnings)),
		slog.Int64("duration_ms", outcome.DurationMs),
	)

	return outcome, nil
}

// errBudgetExceeded — сигнальная ошибка превышения байтового бюджета.
var errBudgetExceeded = fmt.Errorf("байтовый бюджет извлечения исчерпан")

// writeEntry записывает одну запись архива в destPath.
// budget — оставшийся байтовый бюджет; лимит контролируется по фактически
// распакованным байтам, а не по заголовку архива (заголовку доверять нельзя).
// При превышении бюджета или ошибке записи частичный файл удаляется.
func (s *ExtractService) writeEntry(f *zip.File, destPath string, budget int64) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("открытие записи: %w", err)
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return 0, fmt.Errorf("создание директории: %w", err)
	}

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("создание файла: %w", err)
	}

	// Копируем на один байт больше бюджета: лишний байт означает превышение
	written, err := io.Copy(dst, io.LimitReader(rc, budget+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(destPath)
		return 0, err
	}
	if written > budget {
		_ = os.Remove(destPath)
		return 0, errBudgetExceeded
	}

	return written, nil
}

// statusForRejection сопоставляет код отклонения файла с HTTP-статусом.
func statusForRejection(code string) int {
	switch code {
	case apierrors.CodeNotFound:
		return 404
	case apierrors.CodeFileTooLarge:
		return 413
	default:
		return 422
	}
}

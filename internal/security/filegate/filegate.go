// Пакет filegate — security gate файла целиком.
//
// Проверяет загруженный файл до того, как он будет открыт как архив:
// существование, размер, бинарный content type (определяется по байтам,
// клиентскому расширению/MIME-заголовку не доверяем), опасные паттерны
// в имени. Проверки выполняются по порядку с остановкой на первой ошибке.
package filegate

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apierrors "github.com/bigkaa/goingest/internal/api/errors"
)

// MaxUploadSize — максимальный размер загружаемого файла (50 MiB).
// Контрактная константа: сравнение строгое (ровно 50 MiB проходит).
const MaxUploadSize = 50 << 20

// sniffLen — количество байт, по которым определяется content type.
// http.DetectContentType использует не более 512 байт.
const sniffLen = 512

// allowedArchiveTypes — allowlist бинарных типов zip-семейства.
var allowedArchiveTypes = map[string]bool{
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"multipart/x-zip":              true,
}

// hazardPatterns — подстроки имени файла, сигнализирующие об атаке:
// ссылки на родительскую директорию, обратные слэши, нулевой байт,
// script/URI инъекции. Сравнение без учёта регистра.
var hazardPatterns = []string{
	"..",
	"\\",
	"\x00",
	"<script",
	"javascript:",
}

// Rejection — структурированная причина отказа security gate.
// nil означает, что файл прошёл все проверки.
type Rejection struct {
	// Code — машиночитаемый код из OpenAPI контракта
	Code string
	// Message — человекочитаемое описание
	Message string
	// Detail — опциональные детали (например, detected/allowed типы)
	Detail map[string]string
}

// ValidateFile проверяет файл по пути path до открытия его как архива.
// Порядок проверок: существование → размер → sniffed content type →
// опасные паттерны имени. Возвращает nil при успехе.
func ValidateFile(path string) *Rejection {
	// 1. Файл существует и является обычным файлом
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Rejection{
				Code:    apierrors.CodeNotFound,
				Message: fmt.Sprintf("Файл не найден: %s", path),
			}
		}
		return &Rejection{
			Code:    apierrors.CodeSecurityRejected,
			Message: fmt.Sprintf("Файл недоступен: %s", err),
		}
	}
	if !info.Mode().IsRegular() {
		return &Rejection{
			Code:    apierrors.CodeSecurityRejected,
			Message: fmt.Sprintf("Путь не является обычным файлом: %s", path),
		}
	}

	// 2. Размер не превышает лимит загрузки
	if info.Size() > MaxUploadSize {
		return &Rejection{
			Code:    apierrors.CodeFileTooLarge,
			Message: fmt.Sprintf("Размер файла %d байт превышает максимум %d байт", info.Size(), int64(MaxUploadSize)),
			Detail: map[string]string{
				"size":     fmt.Sprintf("%d", info.Size()),
				"max_size": fmt.Sprintf("%d", int64(MaxUploadSize)),
			},
		}
	}

	// 3. Content type определяется по первым байтам файла
	detected, err := sniffContentType(path)
	if err != nil {
		return &Rejection{
			Code:    apierrors.CodeSecurityRejected,
			Message: fmt.Sprintf("Не удалось прочитать файл: %s", err),
		}
	}
	if !allowedArchiveTypes[detected] {
		return &Rejection{
			Code:    apierrors.CodeSecurityRejected,
			Message: fmt.Sprintf("Недопустимый тип содержимого: %s", detected),
			Detail: map[string]string{
				"detected": detected,
				"allowed":  strings.Join(allowedTypesList(), ", "),
			},
		}
	}

	// 4. Имя файла не содержит опасных паттернов
	name := filepath.Base(path)
	if pattern, bad := hazardousName(name); bad {
		return &Rejection{
			Code:    apierrors.CodeSecurityRejected,
			Message: fmt.Sprintf("Опасное имя файла: %q", name),
			Detail:  map[string]string{"pattern": pattern},
		}
	}

	return nil
}

// sniffContentType читает первые байты файла и определяет content type.
func sniffContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	// MIME-тип может содержать параметры (например, charset) — отрезаем
	detected := http.DetectContentType(buf[:n])
	if idx := strings.Index(detected, ";"); idx >= 0 {
		detected = strings.TrimSpace(detected[:idx])
	}
	return detected, nil
}

// hazardousName проверяет имя на опасные паттерны.
// Возвращает сработавший паттерн и true, если имя опасно.
func hazardousName(name string) (string, bool) {
	if strings.HasPrefix(name, "/") {
		return "/", true
	}
	lower := strings.ToLower(name)
	for _, pattern := range hazardPatterns {
		if strings.Contains(lower, pattern) {
			return pattern, true
		}
	}
	return "", false
}

// allowedTypesList возвращает отсортированный по вставке список
// допустимых типов для детализации ошибки.
func allowedTypesList() []string {
	return []string{
		"application/zip",
		"application/x-zip-compressed",
		"multipart/x-zip",
	}
}

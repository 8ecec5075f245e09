// Пакет sanitize — тотальная санитизация имён записей архива.
//
// Имя записи полностью контролируется атакующим, поэтому Sanitize
// никогда не возвращает ошибку: любой вход отображается в безопасный
// относительный путь, пригодный для join под корнем извлечения.
// Executor дополнительно перепроверяет итоговый абсолютный путь
// (защита в глубину на случай ошибки санитайзера).
package sanitize

import (
	"strings"
)

// FallbackName — имя, возвращаемое когда все сегменты входа невалидны
// (пустая строка, только слэши, только "." и "..").
const FallbackName = "unnamed"

// placeholder — символ, которым заменяются запрещённые байты сегмента.
const placeholder = '_'

// Sanitize отображает произвольное имя записи архива в безопасный
// относительный путь: без абсолютного префикса, без сегментов "." и "..",
// без обратных слэшей и нулевых байтов.
//
// Алгоритм: разбиение по "/", посимвольная замена запрещённых байтов
// в каждом сегменте, отбрасывание пустых и точечных сегментов,
// склейка обратно через "/". Функция тотальна и идемпотентна:
// Sanitize(Sanitize(x)) == Sanitize(x) для любого входа.
func Sanitize(name string) string {
	segments := strings.Split(name, "/")

	cleaned := make([]string, 0, len(segments))
	for _, seg := range segments {
		s := cleanSegment(seg)
		// Пустые и точечные сегменты отбрасываются целиком:
		// именно они образуют traversal и абсолютные пути.
		if s == "" || s == "." || s == ".." {
			continue
		}
		cleaned = append(cleaned, s)
	}

	if len(cleaned) == 0 {
		return FallbackName
	}
	return strings.Join(cleaned, "/")
}

// cleanSegment заменяет запрещённые символы сегмента на placeholder.
// Разрешены только латинские буквы, цифры и символы ". _ -".
func cleanSegment(seg string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return placeholder
		}
	}, seg)
}

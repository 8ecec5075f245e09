package sanitize

import (
	"strings"
	"testing"
)

// TestSanitize_Traversal проверяет нейтрализацию traversal-паттернов.
func TestSanitize_Traversal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"родительская директория", "../../etc/passwd", "etc/passwd"},
		{"абсолютный путь", "/etc/passwd", "etc/passwd"},
		{"точечные сегменты", "./a/./b", "a/b"},
		{"traversal в середине", "a/../b", "a/b"},
		{"только traversal", "../..", "unnamed"},
		{"только слэши", "///", "unnamed"},
		{"пустая строка", "", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, ожидалось %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_ForbiddenChars проверяет замену запрещённых символов.
func TestSanitize_ForbiddenChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"обратный слэш", `a\b.txt`, "a_b.txt"},
		{"нулевой байт", "a\x00b.txt", "a_b.txt"},
		{"пробел", "my file.txt", "my_file.txt"},
		{"кириллица", "файл.txt", "____.txt"},
		{"разрешённые символы", "a-b_c.1.txt", "a-b_c.1.txt"},
		{"вложенный путь", "dir/sub/file.md", "dir/sub/file.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, ожидалось %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_Total проверяет тотальность: результат никогда не пуст,
// не абсолютен и не содержит traversal.
func TestSanitize_Total(t *testing.T) {
	inputs := []string{
		"", ".", "..", "/", "//", "\\..\\", "../../../../root",
		"a/b/c", "\x00\x00", "normal.txt", strings.Repeat("../", 100),
	}

	for _, input := range inputs {
		got := Sanitize(input)
		if got == "" {
			t.Errorf("Sanitize(%q) вернул пустую строку", input)
		}
		if strings.HasPrefix(got, "/") {
			t.Errorf("Sanitize(%q) = %q: абсолютный путь", input, got)
		}
		for _, seg := range strings.Split(got, "/") {
			if seg == ".." || seg == "." || seg == "" {
				t.Errorf("Sanitize(%q) = %q: недопустимый сегмент %q", input, got, seg)
			}
		}
	}
}

// TestSanitize_Idempotent проверяет идемпотентность санитайзера.
func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "../../etc/passwd", `a\b c.txt`, "dir/file.md", "/abs/path",
		"файл.txt", "..", strings.Repeat("x/", 50) + "y",
	}

	for _, input := range inputs {
		once := Sanitize(input)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("санитайзер не идемпотентен для %q: %q != %q", input, once, twice)
		}
	}
}

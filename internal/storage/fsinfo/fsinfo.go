// Пакет fsinfo — агрегация размера и количества файлов по пути.
// Используется при регистрации контекстов типа file/directory:
// семантика подсчёта совпадает с учётом байтов в executor'е
// (считаются только обычные файлы, символические ссылки не раскрываются).
package fsinfo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Stats — агрегированная информация об артефакте.
type Stats struct {
	// SizeBytes — суммарный размер обычных файлов в байтах
	SizeBytes int64
	// FileCount — количество обычных файлов
	FileCount int
}

// Measure возвращает Stats для пути: для обычного файла — его размер
// и count=1, для директории — рекурсивный обход.
func Measure(path string) (Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stats{}, fmt.Errorf("ошибка stat %s: %w", path, err)
	}

	if info.Mode().IsRegular() {
		return Stats{SizeBytes: info.Size(), FileCount: 1}, nil
	}

	if !info.IsDir() {
		return Stats{}, fmt.Errorf("путь %s не является файлом или директорией", path)
	}

	var stats Stats
	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		stats.SizeBytes += fi.Size()
		stats.FileCount++
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("ошибка обхода %s: %w", path, err)
	}

	return stats, nil
}

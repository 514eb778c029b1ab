package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"reports":      true,
	"dist":         true,
	"bin":          true,
}

// datasetExts are the file extensions the dataset loader understands.
var datasetExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// FileScanner implements domain.DatasetScanner by walking the filesystem.
type FileScanner struct {
	exclude map[string]bool
}

// New creates a FileScanner. excludePaths are directory names skipped in
// addition to the built-in ones.
func New(excludePaths ...string) *FileScanner {
	extra := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extra[strings.TrimSuffix(p, "/")] = true
	}
	return &FileScanner{exclude: extra}
}

// Scan returns the dataset files below root, sorted, each joined with root.
// Hidden files and directories are skipped.
func (s *FileScanner) Scan(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name] || s.exclude[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			return nil
		}
		if datasetExts[strings.ToLower(filepath.Ext(name))] {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	return found, nil
}

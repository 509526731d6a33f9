// Package extract loads HOA source documents from a local directory,
// pulling plain text out of the supported file formats.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hoabrief/hoabrief"
)

// LogFunc is the signature for a warning logger. The loader reports skipped
// files through it instead of failing the batch.
type LogFunc func(format string, args ...any)

// tempFilePrefix marks editor lock and autosave files left next to documents.
const tempFilePrefix = "~$"

// supported lists the file extensions the loader will attempt.
var supported = map[string]bool{
	".doc":  true,
	".docx": true,
	".pdf":  true,
	".txt":  true,
	".md":   true,
}

// Ensure DirLoader implements hoabrief.Loader at compile time.
var _ hoabrief.Loader = (*DirLoader)(nil)

// DirLoader loads documents from a flat directory.
type DirLoader struct {
	// Log, if set, receives one line per skipped file.
	Log LogFunc
}

// NewDirLoader creates a new DirLoader. The log function may be nil.
func NewDirLoader(log LogFunc) *DirLoader {
	return &DirLoader{Log: log}
}

// Load extracts text from every supported file directly under dir. Files
// that cannot be parsed, or that yield no text, are skipped with a warning.
// Returns ENOTFOUND if nothing in the directory produces content.
func (l *DirLoader) Load(ctx context.Context, dir string) ([]*hoabrief.SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, hoabrief.Errorf(hoabrief.EINVALID, "read documents directory: %v", err)
	}

	var files []*hoabrief.SourceFile
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(name, tempFilePrefix) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if !supported[ext] {
			continue
		}

		content, err := extractFile(filepath.Join(dir, name), ext)
		if err != nil {
			l.logf("skip %s: %v", name, err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			l.logf("skip %s: no extractable text", name)
			continue
		}

		files = append(files, &hoabrief.SourceFile{Filename: name, Content: content})
	}

	if len(files) == 0 {
		return nil, hoabrief.Errorf(hoabrief.ENOTFOUND, "no parseable documents in %s", dir)
	}
	return files, nil
}

// extractFile dispatches on extension. Plain text formats are read as-is.
func extractFile(path, ext string) (string, error) {
	switch ext {
	case ".doc", ".docx":
		return extractWordText(path)
	case ".pdf":
		return extractPDFText(path)
	default: // .txt, .md
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func (l *DirLoader) logf(format string, args ...any) {
	if l.Log != nil {
		l.Log(format, args...)
	}
}

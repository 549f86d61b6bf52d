// Package output handles file naming and writing for exported reports.
// Filenames are derived from the activity title (e.g. AI_Workshop_2024.pdf).
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is used when the activity title has no usable characters.
const DefaultName = "activity_report"

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data under a name derived from title and returns the path.
func (w *Writer) Write(title string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, Filename(title)+ext)
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile replaces path atomically so a viewer polling the file never
// sees a half-written document.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

// Filename converts an activity title into a flat filename.
// Example: "AI Workshop: 2024" → AI_Workshop_2024
func Filename(title string) string {
	var parts []string
	for _, seg := range strings.FieldsFunc(sanitize(title), func(r rune) bool { return r == '_' }) {
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return DefaultName
	}
	return strings.Join(parts, "_")
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

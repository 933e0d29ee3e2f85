package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ReadFile loads a selected or dropped file into an artifact. The MIME type is
// sniffed and reported, never enforced.
func ReadFile(ctx context.Context, path string) (ImageArtifact, error) {
	path = CleanDroppedPath(path)
	if path == "" {
		return Empty, ErrNoArtifact
	}
	if err := ctx.Err(); err != nil {
		return Empty, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return Empty, ErrNoArtifact
	}
	mt := mimetype.Detect(data)
	return NewArtifact(filepath.Base(path), mt.String(), data), nil
}

// CleanDroppedPath normalises a path pasted into the terminal by a drag and
// drop: surrounding quotes and backslash-escaped spaces are removed.
func CleanDroppedPath(raw string) string {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 {
		if (p[0] == '\'' && p[len(p)-1] == '\'') || (p[0] == '"' && p[len(p)-1] == '"') {
			p = p[1 : len(p)-1]
		}
	}
	p = strings.ReplaceAll(p, `\ `, " ")
	p = strings.TrimPrefix(p, "file://")
	return p
}

// IsImageType reports whether a MIME type is one the intake step advertises.
func IsImageType(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/png":
		return true
	}
	return false
}

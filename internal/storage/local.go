package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local writes assets under a fixed directory. The router serves the same
// directory read-only at the configured URL prefix.
type Local struct {
	dir       string
	urlPrefix string
}

// NewLocal creates a local store rooted at dir. The directory is created
// on first use if missing.
func NewLocal(dir, urlPrefix string) *Local {
	return &Local{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}
}

func (s *Local) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}

	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}

	return s.urlPrefix + "/" + key, nil
}

func (s *Local) Delete(ctx context.Context, key string) error {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}

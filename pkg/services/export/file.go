package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type fileSink struct {
	dir string
}

func NewFileSink(dir string) Sink {
	if dir == "" {
		dir = "."
	}
	return &fileSink{dir: dir}
}

func (f *fileSink) Name() string {
	return "file"
}

func (f *fileSink) Store(_ context.Context, name, _ string, data []byte) (string, error) {
	target := filepath.Join(f.dir, filepath.FromSlash(keyFor("", name)))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return target, nil
}

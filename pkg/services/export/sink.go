package export

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/de-tools/report-atlas/pkg/services/config"
)

// Sink persists a rendered report or metrics snapshot outside the backend
type Sink interface {
	Name() string
	// Store writes data under name and returns where it landed
	Store(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// NewSink builds the sink selected by settings.Sink
func NewSink(ctx context.Context, settings config.ExportSettings) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(settings.Sink)) {
	case "", "file":
		return NewFileSink(settings.Dir), nil
	case "s3":
		return NewS3Sink(ctx, settings.Bucket, settings.Prefix)
	case "azure":
		return NewAzureBlobSink(settings.Account, settings.Key, settings.Container, settings.Prefix)
	default:
		return nil, fmt.Errorf("unknown export sink %q", settings.Sink)
	}
}

func keyFor(prefix, name string) string {
	if prefix == "" {
		return path.Clean(name)
	}
	return path.Join(prefix, name)
}

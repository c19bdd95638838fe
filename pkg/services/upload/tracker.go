package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/rs/zerolog"
)

const (
	uploadPath = "/files/upload/"
	formField  = "file"

	MaxFileSize = 50 * 1024 * 1024
	MaxDuration = 300 * time.Second
)

var allowedExtensions = []string{".csv", ".xlsx", ".xls"}

type Transport interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...client.RequestOption) error
	Stream(ctx context.Context, method, path, contentType string, body io.Reader, out any) error
}

type Tracker struct {
	transport Transport
	timeout   time.Duration
}

func NewTracker(transport Transport) *Tracker {
	return &Tracker{
		transport: transport,
		timeout:   MaxDuration,
	}
}

// WithTimeout lowers the upload ceiling. Values above MaxDuration are ignored.
func (t *Tracker) WithTimeout(timeout time.Duration) *Tracker {
	if timeout > 0 && timeout < MaxDuration {
		t.timeout = timeout
	}
	return t
}

// OpenFile prepares a local file for Upload. The caller closes the returned closer.
func OpenFile(path string) (domain.FileHandle, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.FileHandle{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return domain.FileHandle{}, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return domain.FileHandle{
		Name:   filepath.Base(path),
		Size:   info.Size(),
		Reader: f,
	}, f, nil
}

func CheckFile(file domain.FileHandle) error {
	ext := strings.ToLower(filepath.Ext(file.Name))
	supported := false
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			supported = true
			break
		}
	}
	if !supported {
		return &Error{Kind: KindRejected, Err: fmt.Errorf("only csv, xls or xlsx files are accepted, got %q", file.Name)}
	}
	if file.Size > MaxFileSize {
		return &Error{Kind: KindRejected, Err: fmt.Errorf("file exceeds %d bytes", MaxFileSize)}
	}
	if file.Reader == nil {
		return &Error{Kind: KindRejected, Err: fmt.Errorf("file %q has no content", file.Name)}
	}
	return nil
}

// Upload streams file as multipart form field "file". onProgress receives
// non-decreasing percentages and exactly 100 once the server accepted the file.
func (t *Tracker) Upload(
	ctx context.Context,
	file domain.FileHandle,
	onProgress func(percent float64),
) (*domain.UploadedFile, error) {
	if err := CheckFile(file); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("file", file.Name).Logger()
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	progress := newProgress(file.Size, onProgress)
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	var writeErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		writeErr = writeForm(mw, file, progress)
		_ = pw.CloseWithError(writeErr)
	}()

	var out api.UploadedFile
	start := time.Now()
	err := t.transport.Stream(ctx, http.MethodPost, uploadPath, mw.FormDataContentType(), pr, &out)
	_ = pr.CloseWithError(io.ErrClosedPipe)
	<-done

	var rejected *Error
	if errors.As(writeErr, &rejected) {
		logger.Warn().Err(writeErr).Msg("upload aborted")
		return nil, rejected
	}
	if err != nil {
		uerr := classify(ctx, err)
		logger.Warn().Err(err).Str("kind", string(uerr.Kind)).Msg("upload failed")
		return nil, uerr
	}

	progress.finish()
	logger.Debug().Dur("elapsed", time.Since(start)).Str("file_id", out.ID).Msg("upload accepted")
	return adapters.MapAPIFileToDomain(&out), nil
}

func writeForm(mw *multipart.Writer, file domain.FileHandle, progress *progress) error {
	part, err := mw.CreateFormFile(formField, file.Name)
	if err != nil {
		return err
	}
	n, err := io.Copy(part, &countingReader{r: file.Reader, progress: progress})
	if err != nil {
		return err
	}
	if file.Size > 0 && n != file.Size {
		return &Error{Kind: KindRejected, Err: fmt.Errorf("file %q declared %d bytes but %d were read", file.Name, file.Size, n)}
	}
	return mw.Close()
}

// GetFile reads the server's current record of an uploaded file
func (t *Tracker) GetFile(ctx context.Context, id string) (*domain.UploadedFile, error) {
	var out api.UploadedFile
	if err := t.transport.Do(ctx, http.MethodGet, "/files/"+id+"/", nil, &out); err != nil {
		return nil, fmt.Errorf("get file %s: %w", id, err)
	}
	return adapters.MapAPIFileToDomain(&out), nil
}

// WaitReady polls the file until server-side processing finishes. Reports can
// only reference completed files.
func (t *Tracker) WaitReady(
	ctx context.Context,
	id string,
	interval time.Duration,
	maxAttempts int,
) (*domain.UploadedFile, error) {
	for attempt := 1; ; attempt++ {
		f, err := t.GetFile(ctx, id)
		if err != nil {
			return nil, err
		}
		if f.Ready() {
			return f, nil
		}
		if f.Broken() {
			return f, fmt.Errorf("file %s %s: %s", id, f.Status, f.ErrorMessage)
		}
		if attempt >= maxAttempts {
			return f, ErrFileNotReady
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

type progress struct {
	mu      sync.Mutex
	total   int64
	written int64
	last    float64
	notify  func(float64)
}

func newProgress(total int64, notify func(float64)) *progress {
	if notify == nil {
		notify = func(float64) {}
	}
	return &progress{total: total, notify: notify}
}

// add records n more bytes. Intermediate values stop short of 100 so that 100
// always means the server accepted the upload.
func (p *progress) add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.written += int64(n)
	if p.total <= 0 {
		return
	}
	pct := float64(p.written) / float64(p.total) * 100
	if pct > 99 {
		pct = 99
	}
	if pct > p.last {
		p.last = pct
		p.notify(pct)
	}
}

func (p *progress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.last = 100
	p.notify(100)
}

type countingReader struct {
	r        io.Reader
	progress *progress
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	if n > 0 {
		c.progress.add(n)
	}
	return n, err
}

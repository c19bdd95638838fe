package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/store/client"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T, router http.Handler) *Tracker {
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c := client.New(client.Options{
		BaseURL: srv.URL,
		Retry:   client.RetryPolicy{MaxAttempts: 1},
	})
	return NewTracker(c)
}

func uploadRouter(t *testing.T, received *[]byte) chi.Router {
	r := chi.NewRouter()
	r.Post("/files/upload/", func(w http.ResponseWriter, req *http.Request) {
		f, header, err := req.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		assert.NoError(t, err)
		*received = data

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                "f-1",
			"original_filename": header.Filename,
			"file_size":         len(data),
			"processing_status": "pending",
		})
	})
	return r
}

func TestTracker_Upload_Progress(t *testing.T) {
	var received []byte
	tracker := newTracker(t, uploadRouter(t, &received))

	content := bytes.Repeat([]byte("a,b,c\n"), 20000)
	var values []float64
	file := domain.FileHandle{
		Name:   "advisor.csv",
		Size:   int64(len(content)),
		Reader: bytes.NewReader(content),
	}

	uploaded, err := tracker.Upload(context.Background(), file, func(p float64) {
		values = append(values, p)
	})

	require.NoError(t, err)
	assert.Equal(t, "f-1", uploaded.ID)
	assert.Equal(t, "advisor.csv", uploaded.OriginalFilename)
	assert.Equal(t, domain.FileStatusPending, uploaded.Status)
	assert.Equal(t, content, received)

	require.NotEmpty(t, values)
	assert.Equal(t, 100.0, values[len(values)-1])
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1], "progress must not decrease")
	}
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestTracker_Upload_UnknownSize(t *testing.T) {
	var received []byte
	tracker := newTracker(t, uploadRouter(t, &received))

	var values []float64
	_, err := tracker.Upload(context.Background(), domain.FileHandle{
		Name:   "advisor.xlsx",
		Reader: strings.NewReader("payload"),
	}, func(p float64) { values = append(values, p) })

	require.NoError(t, err)
	assert.Equal(t, []float64{100}, values)
}

func TestTracker_Upload_Rejected(t *testing.T) {
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Post("/files/upload/", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	})
	tracker := newTracker(t, r)

	tests := []struct {
		name string
		file domain.FileHandle
	}{
		{"extension", domain.FileHandle{Name: "advisor.json", Size: 10, Reader: strings.NewReader("{}")}},
		{"size", domain.FileHandle{Name: "advisor.csv", Size: MaxFileSize + 1, Reader: strings.NewReader("a")}},
		{"no reader", domain.FileHandle{Name: "advisor.csv", Size: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tracker.Upload(context.Background(), tc.file, nil)

			var uerr *Error
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, KindRejected, uerr.Kind)
		})
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestTracker_Upload_SizeMismatch(t *testing.T) {
	var received []byte
	tracker := newTracker(t, uploadRouter(t, &received))

	tests := []struct {
		name    string
		size    int64
		content string
	}{
		{"fewer bytes than declared", 5, ""},
		{"more bytes than declared", 2, "a,b,c"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var values []float64
			_, err := tracker.Upload(context.Background(), domain.FileHandle{
				Name:   "advisor.csv",
				Size:   tc.size,
				Reader: strings.NewReader(tc.content),
			}, func(p float64) { values = append(values, p) })

			var uerr *Error
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, KindRejected, uerr.Kind)
			assert.NotContains(t, values, 100.0)
		})
	}
	assert.Nil(t, received)
}

func TestTracker_Upload_Failures(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		timeout  time.Duration
		expected Kind
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"file too large"}`))
			},
			expected: KindStatus,
		},
		{
			name: "decode",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			expected: KindDecode,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, req *http.Request) {
				select {
				case <-req.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout:  50 * time.Millisecond,
			expected: KindTimeout,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Post("/files/upload/", tc.handler)
			tracker := newTracker(t, r).WithTimeout(tc.timeout)

			var values []float64
			_, err := tracker.Upload(context.Background(), domain.FileHandle{
				Name:   "advisor.csv",
				Size:   3,
				Reader: strings.NewReader("a,b"),
			}, func(p float64) { values = append(values, p) })

			var uerr *Error
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, tc.expected, uerr.Kind)
			assert.NotContains(t, values, 100.0)
		})
	}
}

func TestTracker_Upload_Network(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	tracker := NewTracker(client.New(client.Options{BaseURL: srv.URL}))

	_, err := tracker.Upload(context.Background(), domain.FileHandle{
		Name:   "advisor.csv",
		Size:   3,
		Reader: strings.NewReader("a,b"),
	}, nil)

	var uerr *Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, KindNetwork, uerr.Kind)
}

func TestTracker_WaitReady(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		var calls atomic.Int32
		r := chi.NewRouter()
		r.Get("/files/f-1/", func(w http.ResponseWriter, _ *http.Request) {
			status := "processing"
			if calls.Add(1) >= 3 {
				status = "completed"
			}
			_, _ = w.Write([]byte(`{"id":"f-1","processing_status":"` + status + `","rows_count":42}`))
		})
		tracker := newTracker(t, r)

		f, err := tracker.WaitReady(context.Background(), "f-1", time.Millisecond, 5)

		require.NoError(t, err)
		assert.True(t, f.Ready())
		assert.Equal(t, 42, f.RowsCount)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("broken file", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get("/files/f-1/", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"f-1","processing_status":"failed","error_message":"bad header"}`))
		})
		tracker := newTracker(t, r)

		_, err := tracker.WaitReady(context.Background(), "f-1", time.Millisecond, 5)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad header")
	})

	t.Run("budget exhausted", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get("/files/f-1/", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"f-1","processing_status":"processing"}`))
		})
		tracker := newTracker(t, r)

		_, err := tracker.WaitReady(context.Background(), "f-1", time.Millisecond, 2)

		assert.True(t, errors.Is(err, ErrFileNotReady))
	})
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	handle, closer, err := OpenFile(path)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, "advisor.csv", handle.Name)
	assert.Equal(t, int64(8), handle.Size)
	assert.NoError(t, CheckFile(handle))

	_, _, err = OpenFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

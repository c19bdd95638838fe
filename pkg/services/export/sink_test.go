package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_Store(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	location, err := sink.Store(context.Background(), "reports/r1.html", "text/html", []byte("<h1>ok</h1>"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "r1.html"), location)
	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, "<h1>ok</h1>", string(data))
	assert.Equal(t, "file", sink.Name())
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "r1.pdf", keyFor("", "r1.pdf"))
	assert.Equal(t, "exports/r1.pdf", keyFor("exports", "r1.pdf"))
	assert.Equal(t, "exports/daily/r1.pdf", keyFor("exports/", "daily/r1.pdf"))
}

func TestNewSink(t *testing.T) {
	tests := []struct {
		name     string
		settings config.ExportSettings
		wantName string
		wantErr  string
	}{
		{name: "default file sink", settings: config.ExportSettings{Dir: t.TempDir()}, wantName: "file"},
		{name: "s3 without bucket", settings: config.ExportSettings{Sink: "s3"}, wantErr: "export.bucket required"},
		{name: "azure without credentials", settings: config.ExportSettings{Sink: "azure", Account: "acct"}, wantErr: "required for azure sink"},
		{
			name:     "azure shared key",
			settings: config.ExportSettings{Sink: "Azure", Account: "acct", Key: "c2VjcmV0", Container: "reports"},
			wantName: "azure",
		},
		{name: "unknown sink", settings: config.ExportSettings{Sink: "ftp"}, wantErr: `unknown export sink "ftp"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewSink(context.Background(), tt.settings)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, sink.Name())
		})
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink_Store(t *testing.T) {
	putter := &fakePutter{}
	sink := &s3Sink{client: putter, bucket: "atlas", prefix: "exports"}

	location, err := sink.Store(context.Background(), "r1.pdf", "application/pdf", []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, "s3://atlas/exports/r1.pdf", location)
	assert.Equal(t, "atlas", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "exports/r1.pdf", aws.ToString(putter.input.Key))
	assert.Equal(t, "application/pdf", aws.ToString(putter.input.ContentType))

	putter.err = errors.New("access denied")
	_, err = sink.Store(context.Background(), "r1.pdf", "", nil)
	assert.ErrorContains(t, err, "access denied")
}

type fakeUploader struct {
	container string
	blobName  string
	data      []byte
	opts      *azblob.UploadBufferOptions
}

func (f *fakeUploader) UploadBuffer(
	_ context.Context,
	containerName, blobName string,
	buffer []byte,
	o *azblob.UploadBufferOptions,
) (azblob.UploadBufferResponse, error) {
	f.container, f.blobName, f.data, f.opts = containerName, blobName, buffer, o
	return azblob.UploadBufferResponse{}, nil
}

func TestAzureSink_Store(t *testing.T) {
	uploader := &fakeUploader{}
	sink := &azureSink{client: uploader, container: "reports"}

	location, err := sink.Store(context.Background(), "r1.html", "text/html", []byte("<p/>"))

	require.NoError(t, err)
	assert.Equal(t, "azure://reports/r1.html", location)
	assert.Equal(t, "reports", uploader.container)
	assert.Equal(t, "r1.html", uploader.blobName)
	require.NotNil(t, uploader.opts)
	assert.Equal(t, "text/html", *uploader.opts.HTTPHeaders.BlobContentType)
}

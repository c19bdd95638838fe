package export

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

type blobUploader interface {
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

type azureSink struct {
	client    blobUploader
	container string
	prefix    string
}

func NewAzureBlobSink(account, key, container, prefix string) (Sink, error) {
	if account == "" || key == "" || container == "" {
		return nil, fmt.Errorf("export.account/export.key/export.container required for azure sink")
	}
	credential, err := azblob.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, fmt.Errorf("build shared key credential: %w", err)
	}
	url := fmt.Sprintf("https://%s.blob.core.windows.net/", account)
	client, err := azblob.NewClientWithSharedKeyCredential(url, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}
	return &azureSink{
		client:    client,
		container: container,
		prefix:    prefix,
	}, nil
}

func (a *azureSink) Name() string {
	return "azure"
}

func (a *azureSink) Store(ctx context.Context, name, contentType string, data []byte) (string, error) {
	blobName := keyFor(a.prefix, name)
	var opts *azblob.UploadBufferOptions
	if contentType != "" {
		opts = &azblob.UploadBufferOptions{
			HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		}
	}
	if _, err := a.client.UploadBuffer(ctx, a.container, blobName, data, opts); err != nil {
		return "", fmt.Errorf("upload blob: %w", err)
	}
	return fmt.Sprintf("azure://%s/%s", a.container, blobName), nil
}

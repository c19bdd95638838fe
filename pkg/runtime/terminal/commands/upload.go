package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/upload"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type UploadCmd struct {
	deps *Deps
	wait bool
}

func NewUploadCmd(deps *Deps) *cobra.Command {
	uc := &UploadCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a CSV or Excel advisor export",
		Args:  cobra.ExactArgs(1),
		RunE:  uc.run,
	}

	cmd.Flags().BoolVar(&uc.wait, "wait", false, "Wait until the backend finished processing the file")
	return cmd
}

func (uc *UploadCmd) run(cmd *cobra.Command, args []string) error {
	file, err := uploadFile(cmd, uc.deps, args[0], uc.wait)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", file.ID, file.OriginalFilename, file.Status)
	return nil
}

// uploadFile uploads path with a progress line on stderr and optionally
// waits until the file can back a report
func uploadFile(cmd *cobra.Command, deps *Deps, path string, wait bool) (*domain.UploadedFile, error) {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	handle, closer, err := upload.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func(c io.Closer) {
		if err := c.Close(); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("failed to close upload file")
		}
	}(closer)

	errOut := cmd.ErrOrStderr()
	file, err := deps.Uploads.Upload(ctx, handle, func(percent float64) {
		fmt.Fprintf(errOut, "\ruploading %s: %3.0f%%", handle.Name, percent)
	})
	fmt.Fprintln(errOut)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}

	if !wait || file.Ready() {
		return file, nil
	}
	return waitFile(ctx, deps, file.ID)
}

func waitFile(ctx context.Context, deps *Deps, id string) (*domain.UploadedFile, error) {
	polling := deps.Polling
	file, err := deps.Uploads.WaitReady(ctx, id, polling.PollInterval, polling.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("file %s is not ready: %w", id, err)
	}
	return file, nil
}

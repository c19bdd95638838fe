package upload

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/de-tools/report-atlas/pkg/store/client"
)

type Kind string

const (
	KindRejected Kind = "rejected"
	KindNetwork  Kind = "network"
	KindStatus   Kind = "status"
	KindDecode   Kind = "decode"
	KindTimeout  Kind = "timeout"
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrFileNotReady is returned when the server keeps processing a file past
// the wait budget
var ErrFileNotReady = errors.New("file is still being processed")

func classify(ctx context.Context, err error) *Error {
	var (
		httpErr   *client.HTTPError
		decodeErr *client.DecodeError
		netErr    net.Error
	)

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case errors.As(err, &httpErr):
		return &Error{Kind: KindStatus, Err: err}
	case errors.As(err, &decodeErr):
		return &Error{Kind: KindDecode, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

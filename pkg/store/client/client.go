package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultUploadTimeout  = 300 * time.Second

	requestIDHeader = "X-Request-ID"
)

type Options struct {
	BaseURL        string
	Token          TokenSource
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	Retry          RetryPolicy
	Logger         *zerolog.Logger
}

// Client talks JSON to the report backend. Do and Fetch retry transient
// failures; Stream sends exactly one attempt.
type Client struct {
	baseURL string
	token   TokenSource
	http    *retryablehttp.Client
	upload  *http.Client
}

type RequestOption func(req *http.Request)

func WithQuery(values url.Values) RequestOption {
	return func(req *http.Request) {
		req.URL.RawQuery = values.Encode()
	}
}

func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Blob is an opaque response body such as a rendered report
type Blob struct {
	ContentType string
	Data        []byte
}

func New(opts Options) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.UploadTimeout <= 0 || opts.UploadTimeout > DefaultUploadTimeout {
		opts.UploadTimeout = DefaultUploadTimeout
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = DefaultRetryPolicy()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Timeout = opts.RequestTimeout
	rc.RetryMax = opts.Retry.MaxAttempts - 1
	rc.RetryWaitMin = opts.Retry.BaseDelay
	rc.RetryWaitMax = opts.Retry.MaxDelay
	rc.CheckRetry = checkRetry
	rc.Backoff = opts.Retry.backoff
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{logger: logger}

	upload := cleanhttp.DefaultPooledClient()
	upload.Timeout = opts.UploadTimeout

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    rc,
		upload:  upload,
	}
}

// Do sends a JSON request and decodes a JSON response into out. A nil body
// sends no payload, a nil out discards the response.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := c.newRequest(ctx, method, path, payload, opts...)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	data, _, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// Fetch retrieves an opaque body with retries
func (c *Client) Fetch(ctx context.Context, path string, opts ...RequestOption) (*Blob, error) {
	opts = append([]RequestOption{WithHeader("Accept", "*/*")}, opts...)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, opts...)
	if err != nil {
		return nil, err
	}

	data, header, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Blob{ContentType: header.Get("Content-Type"), Data: data}, nil
}

// Stream sends body as-is in a single attempt bounded by the upload timeout
func (c *Client) Stream(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	logger := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if err := c.decorate(ctx, req); err != nil {
		return err
	}

	resp, err := c.upload.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("stream request failed")
		return err
	}
	data, err := readBody(ctx, resp)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp.StatusCode, data)
	}
	return decode(data, out)
}

func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	payload []byte,
	opts ...RequestOption,
) (*retryablehttp.Request, error) {
	var body interface{}
	if payload != nil {
		body = payload
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(req.Request)
	}
	if err := c.decorate(ctx, req.Request); err != nil {
		return nil, err
	}
	return req, nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) error {
	req.Header.Set(requestIDHeader, uuid.NewString())
	if c.token == nil {
		return nil
	}

	token, err := c.token.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolve token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req *retryablehttp.Request) ([]byte, http.Header, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Msg("sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		logger.Warn().Err(err).Str("url", req.URL.String()).Msg("request failed")
		return nil, nil, err
	}

	data, err := readBody(ctx, resp)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, newHTTPError(resp.StatusCode, data)
	}
	return data, resp.Header, nil
}

func readBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func decode(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

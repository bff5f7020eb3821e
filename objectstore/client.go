// Package objectstore sends signed PUT and DELETE requests to an
// S3-compatible bucket. Every request is signed with attachly.Sign using the
// caller's StorageConfig; there is no retry and no client-side timeout.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/metrics"
)

// maxErrorBody caps how much of a failed response is kept as diagnostics.
const maxErrorBody = 64 * 1024

// Client implements attachly.ObjectStore.
type Client struct {
	httpClient *http.Client
	signer     *attachly.Signer
	observer   metrics.StoreObserver
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client used for outbound requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithSigner sets the signer, typically to pin its clock in tests.
func WithSigner(s *attachly.Signer) Option {
	return func(cl *Client) {
		cl.signer = s
	}
}

// WithObserver records every request outcome on o.
func WithObserver(o metrics.StoreObserver) Option {
	return func(cl *Client) {
		cl.observer = o
	}
}

// New creates a Client backed by http.DefaultClient.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		signer:     attachly.NewSigner(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload streams size bytes of body to key. It returns key on any 2xx.
func (c *Client) Upload(ctx context.Context, cfg attachly.StorageConfig, key, contentType string, body io.Reader, size int64) (string, error) {
	signed, _ := c.signer.Sign(http.MethodPut, key, cfg, contentType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, signed.URL, body)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	req.ContentLength = size
	if size == 0 {
		req.Body = http.NoBody
	}
	setHeaders(req, signed)

	resp, err := c.do(req, "upload")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", responseError("upload", resp)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return key, nil
}

// Delete removes key. 2xx and 404 both count as success.
func (c *Client) Delete(ctx context.Context, cfg attachly.StorageConfig, key string) error {
	signed, _ := c.signer.Sign(http.MethodDelete, key, cfg, "")

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, signed.URL, nil)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	setHeaders(req, signed)

	resp, err := c.do(req, "delete")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError("delete", resp)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)

	if c.observer != nil {
		code := 0
		if resp != nil {
			code = resp.StatusCode
		}
		c.observer.ObserveStore(op, code, time.Since(start))
	}

	if err != nil {
		return nil, &attachly.StorageError{Op: op, Err: err}
	}
	return resp, nil
}

func setHeaders(req *http.Request, signed attachly.SignedRequest) {
	for k, v := range signed.Headers {
		req.Header.Set(k, v)
	}
}

func responseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &attachly.StorageError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/config"
	"github.com/oneconcern/datahub/pkg/tracing"
	"github.com/oneconcern/datahub/pkg/transport/status"
)

const (
	apiPrefix   = "v2"
	tokenHeader = "X-Token"

	defaultUserAgent = "datahub-go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Doer performs a request against the API and decodes the JSON response into out.
//
// A nil out discards the response body.
type Doer interface {
	Do(ctx context.Context, req Request, out interface{}) error
}

// Opener retrieves the raw content of a remote object from its (signed) URL
type Opener interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Request to the API.
//
// When DatasetID is set, Resource is relative to that dataset.
type Request struct {
	Method    string
	Resource  string
	DatasetID string
	Query     url.Values
	Body      interface{}
}

// Path of the request, relative to the endpoint
func (r Request) Path() string {
	if r.DatasetID == "" {
		return path.Join("/", apiPrefix, r.Resource)
	}
	return path.Join("/", apiPrefix, "datasets", url.PathEscape(r.DatasetID), r.Resource)
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

var (
	_ Doer   = &Client{}
	_ Opener = &Client{}
)

// Client is the HTTP implementation of the Doer
type Client struct {
	baseURL   string
	accessKey string
	userAgent string
	http      *http.Client
	l         *zap.Logger
}

// New API client from the configuration
func New(cfg config.ClientConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:   cfg.BaseURL(),
		accessKey: cfg.AccessKey,
		userAgent: defaultUserAgent,
		l:         zap.NewNop(),
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultTimeout
	}
	c.http = &http.Client{Timeout: timeout}

	for _, apply := range opts {
		apply(c)
	}
	return c
}

// Do a request against the API
func (c *Client) Do(ctx context.Context, req Request, out interface{}) (err error) {
	ctx, span := tracing.Start(ctx, "transport."+req.method(), trace.WithAttributes(
		attribute.String(tracing.AttrKeyResource, req.Resource),
		attribute.String(tracing.AttrKeyDatasetID, req.DatasetID),
	))
	defer func() {
		tracing.SetSpanError(ctx, err)
		span.End()
	}()

	u := c.baseURL + req.Path()
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		buf, erm := json.Marshal(req.Body)
		if erm != nil {
			return status.ErrInvalidRequest.Wrap(erm)
		}
		body = bytes.NewReader(buf)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.method(), u, body)
	if err != nil {
		return status.ErrInvalidRequest.Wrap(err)
	}
	hreq.Header.Set(tokenHeader, c.accessKey)
	hreq.Header.Set("User-Agent", c.userAgent)
	hreq.Header.Set("Accept", "application/json")
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		c.l.Debug("request failed", zap.String("method", hreq.Method), zap.String("url", u), zap.Error(err))
		return fmt.Errorf("%s %s: %w", hreq.Method, req.Path(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	span.SetAttributes(attribute.Int(tracing.AttrKeyStatusCode, resp.StatusCode))
	c.l.Debug("request",
		zap.String("method", hreq.Method),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s %s: %w", hreq.Method, req.Path(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newResponseError(hreq.Method, req.Path(), resp.StatusCode, payload)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err = json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decoding response from %s %s: %w", hreq.Method, req.Path(), err)
	}
	return nil
}

// Open the remote content at some signed URL, as returned by the API.
//
// The caller must close the returned reader.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, status.ErrInvalidRequest.Wrap(err)
	}
	hreq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(hreq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() {
			_ = resp.Body.Close()
		}()
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, newResponseError(http.MethodGet, hreq.URL.Path, resp.StatusCode, payload)
	}
	return resp.Body, nil
}

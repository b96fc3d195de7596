package api

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

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/notify"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// Base is the underlying transport; http.DefaultTransport when nil.
	Base http.RoundTripper
	// OnSessionExpired runs after the session has been given up and the
	// tokens cleared.
	OnSessionExpired func()
}

// Client talks to the food-ordering REST backend.
//
// Calls made through Client carry the session bearer token and recover from
// an expired access token. Refreshing itself goes over a bare client so that
// a failing refresh never re-enters the session transport.
type Client struct {
	baseURL string
	authed  *http.Client
	bare    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func New(opts Options, tokens session.TokenStore, notifier notify.Notifier, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		bare:    &http.Client{Transport: base, Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, opts.Burst),
		log:     log,
	}
	transport := session.NewTransport(base, tokens, c, notifier, log)
	if opts.OnSessionExpired != nil {
		transport.OnExpire(opts.OnSessionExpired)
	}
	c.authed = &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}
	return c
}

type call struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers http.Header
	bare    bool
}

// do sends the call and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, cl call, out any) error {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.readError(cl, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%s %s: decode response: %w", cl.method, cl.path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, cl call) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}

	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode request: %w", cl.method, cl.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, err
	}
	for k, v := range cl.headers {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	client := c.authed
	if cl.bare {
		client = c.bare
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.log.Warn("backend call failed",
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	c.log.Debug("backend call",
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func (c *Client) readError(cl call, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(raw, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	apiErr := newError(resp.StatusCode, msg)
	if resp.StatusCode >= 500 {
		c.log.Error("backend error",
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
	}
	return apiErr
}

// envelope is the list response shape: items under _embedded.<collection>.
type envelope struct {
	Embedded map[string]json.RawMessage `json:"_embedded"`
	Page     models.PageInfo            `json:"page"`
}

// decodePage reads a list response. A bare JSON array is accepted as well.
func decodePage[T any](raw json.RawMessage, collection string) (models.Page[T], error) {
	page := models.Page[T]{Items: []T{}}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return page, nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Items); err != nil {
			return page, fmt.Errorf("decode %s: %w", collection, err)
		}
		page.Page = models.PageInfo{Size: len(page.Items), TotalElements: len(page.Items), TotalPages: 1}
		return page, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return page, fmt.Errorf("decode %s: %w", collection, err)
	}
	page.Page = env.Page
	if items, ok := env.Embedded[collection]; ok {
		if err := json.Unmarshal(items, &page.Items); err != nil {
			return page, fmt.Errorf("decode %s: %w", collection, err)
		}
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

func getPage[T any](ctx context.Context, c *Client, path string, query url.Values, collection string) (models.Page[T], error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, path: path, query: query}, &raw); err != nil {
		return models.Page[T]{}, err
	}
	return decodePage[T](raw, collection)
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

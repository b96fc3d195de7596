package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/notify"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MaxReplays is how many times one request is replayed after a 401.
const MaxReplays = 2

var ErrRefreshFailed = errors.New("token refresh failed")

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (models.Tokens, error)
}

// Transport attaches the bearer token to every request and recovers from
// 401 responses by refreshing the token and replaying the request.
//
// Concurrent requests that fail together share one refresh. When the replay
// budget is spent, the refresh itself fails, or the request body cannot be
// sent again, the tokens are cleared, a "session expired" notification is
// pushed, the OnExpire hooks run and the last 401 response is returned to the
// caller.
type Transport struct {
	base       http.RoundTripper
	store      TokenStore
	refresher  Refresher
	notifier   notify.Notifier
	log        *zap.Logger
	maxReplays int

	flight singleflight.Group

	hooksMu  sync.RWMutex
	onExpire []func()
}

func NewTransport(base http.RoundTripper, store TokenStore, refresher Refresher, notifier notify.Notifier, log *zap.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Transport{
		base:       base,
		store:      store,
		refresher:  refresher,
		notifier:   notifier,
		log:        log,
		maxReplays: MaxReplays,
	}
}

// OnExpire registers fn to run after the session has been given up.
func (t *Transport) OnExpire(fn func()) {
	t.hooksMu.Lock()
	t.onExpire = append(t.onExpire, fn)
	t.hooksMu.Unlock()
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, err := t.store.AccessToken(ctx)
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, fmt.Errorf("read access token: %w", err)
	}

	resp, err := t.send(req, token, false)
	for replay := 0; ; replay++ {
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}
		if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
			t.log.Warn("401 on a request that cannot be replayed",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
			)
			t.expire(ctx)
			return resp, nil
		}
		if replay >= t.maxReplays {
			t.log.Warn("giving up after repeated 401",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("replays", replay),
			)
			t.expire(ctx)
			return resp, nil
		}

		fresh, rerr := t.refresh(ctx, token)
		if rerr != nil {
			t.log.Warn("token refresh failed", zap.Error(rerr))
			t.expire(ctx)
			return resp, nil
		}

		drain(resp)
		token = fresh
		resp, err = t.send(req, token, true)
	}
}

func (t *Transport) send(req *http.Request, token string, replay bool) (*http.Response, error) {
	out := req.Clone(req.Context())
	if replay && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		out.Body = body
	}
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		out.Header.Del("Authorization")
	}
	return t.base.RoundTrip(out)
}

// refresh returns a token newer than failed. Only one refresh runs at a time;
// callers arriving while it is in flight wait for its result, and a caller
// whose token has already been replaced reuses the replacement.
func (t *Transport) refresh(ctx context.Context, failed string) (string, error) {
	ctx = context.WithoutCancel(ctx)

	v, err, shared := t.flight.Do("refresh", func() (any, error) {
		current, err := t.store.AccessToken(ctx)
		if err == nil && current != "" && current != failed {
			return current, nil
		}

		if err := t.store.ClearAccessToken(ctx); err != nil {
			return "", err
		}
		refreshToken, err := t.store.RefreshToken(ctx)
		if err != nil {
			return "", err
		}

		tokens, err := t.refresher.RefreshToken(ctx, refreshToken)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
		if tokens.AccessToken == "" {
			return "", fmt.Errorf("%w: empty access token", ErrRefreshFailed)
		}
		if err := t.store.SetTokens(ctx, tokens); err != nil {
			return "", err
		}
		t.log.Debug("access token refreshed")
		return tokens.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		t.log.Debug("joined in-flight token refresh")
	}
	return v.(string), nil
}

func (t *Transport) expire(ctx context.Context) {
	if err := t.store.Clear(context.WithoutCancel(ctx)); err != nil {
		t.log.Error("failed to clear session", zap.Error(err))
	}
	if t.notifier != nil {
		t.notifier.Error("Session expired, please sign in again")
	}

	t.hooksMu.RLock()
	hooks := append([]func(){}, t.onExpire...)
	t.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

package oauthflow

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-training/oauth-playground/pkg/core"
	"github.com/go-training/oauth-playground/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// DefaultExchangeTimeout bounds a single token request.
const DefaultExchangeTimeout = 30 * time.Second

// Handler exchanges authorization codes at the provider's token endpoint.
type Handler struct {
	provider   Provider
	httpClient *http.Client
}

// NewHandler creates a Handler. A nil client gets DefaultExchangeTimeout.
func NewHandler(provider Provider, client *http.Client) *Handler {
	if client == nil {
		client = &http.Client{Timeout: DefaultExchangeTimeout}
	}
	return &Handler{
		provider:   provider,
		httpClient: client,
	}
}

// ExchangeCodeForToken trades code for tokens using the credential staged in kv.
// Both credential keys are removed from kv on every return path.
func (h *Handler) ExchangeCodeForToken(ctx context.Context, kv core.KV, code, origin string) (out Outcome) {
	ctx, span := observability.Tracer().Start(ctx, "oauthflow.ExchangeCodeForToken")
	defer span.End()

	defer func() {
		purge(context.WithoutCancel(ctx), kv)
		record(ctx, span, out)
	}()

	cred, ok := readCredential(ctx, kv)
	if !ok {
		return Failed(KindMissingCredentials, MsgMissingCredentials)
	}

	cfg := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		RedirectURL:  CallbackURI(origin),
		Endpoint:     h.provider.endpoint(),
	}
	tok, err := cfg.Exchange(context.WithValue(ctx, oauth2.HTTPClient, h.httpClient), code)
	if err != nil {
		return classify(ctx, err)
	}

	return Succeeded(TokenResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	})
}

func readCredential(ctx context.Context, kv core.KV) (core.Credential, bool) {
	logger := core.LoggerFromCtx(ctx)

	clientID, err := kv.Get(ctx, core.KeyClientID)
	if err != nil {
		logger.Debug("Client ID unavailable", "error", err)
		return core.Credential{}, false
	}
	clientSecret, err := kv.Get(ctx, core.KeyClientSecret)
	if err != nil {
		logger.Debug("Client secret unavailable", "error", err)
		return core.Credential{}, false
	}
	if clientID == "" || clientSecret == "" {
		return core.Credential{}, false
	}
	return core.Credential{ClientID: clientID, ClientSecret: clientSecret}, true
}

func purge(ctx context.Context, kv core.KV) {
	if err := kv.Delete(ctx, core.KeyClientID, core.KeyClientSecret); err != nil {
		core.LoggerFromCtx(ctx).Error("Failed to purge staged credentials", "error", err)
	}
}

func classify(ctx context.Context, err error) Outcome {
	logger := core.LoggerFromCtx(ctx)

	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		out := Failed(KindExchangeRejected, MsgExchangeRejected)
		out.ProviderError = rErr.ErrorCode
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		logger.Warn("Token endpoint rejected the exchange",
			"status", status,
			"error_code", rErr.ErrorCode,
			"error_description", rErr.ErrorDescription,
		)
		return out
	}

	reason := err.Error()
	if reason == "" {
		reason = MsgUnknownError
	}
	logger.Error("Token exchange failed", "error", err)
	return Failed(KindTransportFailure, reason)
}

func record(ctx context.Context, span trace.Span, out Outcome) {
	attrs := []attribute.KeyValue{
		attribute.String("oauth.state", out.State.String()),
	}
	if out.State == StateFailure {
		attrs = append(attrs, attribute.String("oauth.failure_kind", out.Kind.String()))
		if out.ProviderError != "" {
			attrs = append(attrs, attribute.String("oauth.provider_error", out.ProviderError))
		}
		span.SetStatus(codes.Error, out.Reason)
	}
	if out.Token != nil {
		attrs = append(attrs, attribute.Bool("oauth.refresh_token", out.Token.HasRefreshToken()))
		core.LoggerFromCtx(ctx).Info("Token exchange succeeded",
			"access_token", MaskToken(out.Token.AccessToken),
			"refresh_token", out.Token.HasRefreshToken(),
		)
	}
	observability.AddRequestAttributes(ctx, attrs...)
}

// Callback is the exchange handler for one callback page load. It runs the
// exchange at most once; later Mount calls return the same outcome.
type Callback struct {
	handler *Handler
	kv      core.KV
	origin  string

	mu      sync.Mutex
	state   State
	outcome Outcome
}

// NewCallback creates an Idle callback bound to one flow session.
func (h *Handler) NewCallback(kv core.KV, origin string) *Callback {
	return &Callback{
		handler: h,
		kv:      kv,
		origin:  origin,
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Callback) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mount reads the code parameter from query and drives the state machine to
// a terminal state. Without a code no network call is made, but any staged
// credential is still purged.
func (c *Callback) Mount(ctx context.Context, query url.Values) Outcome {
	c.mu.Lock()
	if c.state != StateIdle {
		out := c.outcome
		out.State = c.state
		c.mu.Unlock()
		return out
	}

	code := query.Get("code")
	if code == "" {
		out := Failed(KindMissingCode, MsgMissingCode)
		c.finishLocked(out)
		c.mu.Unlock()
		purge(context.WithoutCancel(ctx), c.kv)
		return out
	}
	c.state = StateLoading
	c.mu.Unlock()

	out := c.handler.ExchangeCodeForToken(ctx, c.kv, code, c.origin)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishLocked(out)
	return c.outcome
}

func (c *Callback) finishLocked(out Outcome) {
	c.outcome = out
	c.state = out.State
}

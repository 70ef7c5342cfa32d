package oauthflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-training/oauth-playground/pkg/core"

	"golang.org/x/oauth2"
)

// AuthorizationRequest is the query sent to the provider's authorization endpoint.
// It is derived on demand and never stored.
type AuthorizationRequest struct {
	ClientID     string
	RedirectURI  string
	ResponseType string
	Scope        string
	AccessType   string
	Prompt       string
}

// NewAuthorizationRequest builds an offline, consent-forcing code request.
func NewAuthorizationRequest(clientID, redirectURI string, scopes []string) AuthorizationRequest {
	return AuthorizationRequest{
		ClientID:     clientID,
		RedirectURI:  redirectURI,
		ResponseType: "code",
		Scope:        strings.Join(scopes, " "),
		AccessType:   "offline",
		Prompt:       "consent",
	}
}

// AuthorizationURL renders req against the provider's authorization endpoint.
func (p Provider) AuthorizationURL(req AuthorizationRequest) string {
	cfg := &oauth2.Config{
		ClientID:    req.ClientID,
		RedirectURL: req.RedirectURI,
		Endpoint:    p.endpoint(),
	}
	return cfg.AuthCodeURL("",
		oauth2.SetAuthURLParam("response_type", req.ResponseType),
		oauth2.SetAuthURLParam("scope", req.Scope),
		oauth2.SetAuthURLParam("access_type", req.AccessType),
		oauth2.SetAuthURLParam("prompt", req.Prompt),
	)
}

// Submission is what the operator typed into the capture form.
type Submission struct {
	ClientID     string
	ClientSecret string
	RawScopes    string
}

// Builder stages credentials and produces the provider redirect.
type Builder struct {
	provider Provider
}

// NewBuilder creates a Builder for the given provider.
func NewBuilder(provider Provider) *Builder {
	return &Builder{provider: provider}
}

// Submit writes the credential into kv and returns the URL the browser must
// navigate to. Required-field checks belong to the caller.
func (b *Builder) Submit(ctx context.Context, kv core.KV, sub Submission, origin string) (string, error) {
	scopes := ParseScopes(sub.RawScopes)

	if err := kv.Set(ctx, core.KeyClientID, sub.ClientID); err != nil {
		return "", fmt.Errorf("failed to stage client id: %w", err)
	}
	if err := kv.Set(ctx, core.KeyClientSecret, sub.ClientSecret); err != nil {
		_ = kv.Delete(context.WithoutCancel(ctx), core.KeyClientID)
		return "", fmt.Errorf("failed to stage client secret: %w", err)
	}

	req := NewAuthorizationRequest(sub.ClientID, CallbackURI(origin), scopes)
	core.LoggerFromCtx(ctx).Info("Redirecting to authorization endpoint",
		"redirect_uri", req.RedirectURI,
		"scope", req.Scope,
	)
	return b.provider.AuthorizationURL(req), nil
}

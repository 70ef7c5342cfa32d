package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-training/oauth-playground/pkg/core"
	"github.com/go-training/oauth-playground/pkg/oauthflow"
	"github.com/go-training/oauth-playground/pkg/store"

	"github.com/gin-gonic/gin"
)

// pinger is implemented by stores backed by a remote service.
type pinger interface {
	Ping(ctx context.Context) error
}

// app holds what the HTTP handlers share. Nothing in it carries per-flow state.
type app struct {
	store    core.Store
	builder  *oauthflow.Builder
	exchange *oauthflow.Handler
	baseURL  string
	// cookieMaxAge matches the store TTL so the cookie never outlives the credentials.
	cookieMaxAge int
}

// origin returns the deployment origin. With -base-url unset it is derived
// from the request, which stays stable as long as the Host header does.
func (a *app) origin(c *gin.Context) string {
	if a.baseURL != "" {
		return a.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

func (a *app) secure(c *gin.Context) bool {
	return strings.HasPrefix(a.origin(c), "https://")
}

// index renders the capture form.
func (a *app) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"CallbackURL": oauthflow.CallbackURI(a.origin(c)),
	})
}

// authorize stages the submitted credential and sends the browser to the provider.
func (a *app) authorize(c *gin.Context) {
	ctx := c.Request.Context()
	logger := core.LoggerFromCtx(ctx)

	sub := oauthflow.Submission{
		ClientID:     c.PostForm("client_id"),
		ClientSecret: c.PostForm("client_secret"),
		RawScopes:    c.PostForm("scopes"),
	}
	if sub.ClientID == "" || sub.ClientSecret == "" {
		c.HTML(http.StatusBadRequest, "index.html", gin.H{
			"CallbackURL": oauthflow.CallbackURI(a.origin(c)),
			"Error":       "Client ID and Client Secret are required",
			"ClientID":    sub.ClientID,
			"Scopes":      sub.RawScopes,
		})
		return
	}

	// A browser runs one flow at a time; drop whatever an earlier attempt left.
	if previous, ok := flowSession(c); ok {
		if err := a.store.Delete(ctx, previous, core.KeyClientID, core.KeyClientSecret); err != nil {
			logger.Warn("Failed to drop previous flow", "error", err)
		}
	}

	session := newFlowSession()
	target, err := a.builder.Submit(ctx, store.ForSession(a.store, session), sub, a.origin(c))
	if err != nil {
		logger.Error("Failed to stage credentials", "error", err)
		c.HTML(http.StatusInternalServerError, "index.html", gin.H{
			"CallbackURL": oauthflow.CallbackURI(a.origin(c)),
			"Error":       "Could not store the credentials, please try again",
			"ClientID":    sub.ClientID,
			"Scopes":      sub.RawScopes,
		})
		return
	}

	setFlowCookie(c, session, a.cookieMaxAge, a.secure(c))
	c.Redirect(http.StatusFound, target)
}

// callback runs the exchange for one page load and renders its outcome.
func (a *app) callback(c *gin.Context) {
	session, ok := flowSession(c)
	if !ok {
		// Nothing was staged for this browser; an unused session reads empty.
		session = newFlowSession()
	}
	clearFlowCookie(c, a.secure(c))

	cb := a.exchange.NewCallback(store.ForSession(a.store, session), a.origin(c))
	out := cb.Mount(c.Request.Context(), c.Request.URL.Query())

	c.HTML(statusFor(out), "callback.html", gin.H{
		"Outcome": out,
	})
}

func statusFor(out oauthflow.Outcome) int {
	switch out.Kind {
	case oauthflow.KindNone:
		return http.StatusOK
	case oauthflow.KindMissingCode, oauthflow.KindMissingCredentials:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (a *app) healthz(c *gin.Context) {
	if p, ok := a.store.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			core.LoggerFromCtx(c.Request.Context()).Error("Store ping failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

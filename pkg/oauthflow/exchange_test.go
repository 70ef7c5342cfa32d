package oauthflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-training/oauth-playground/pkg/core"
	"github.com/go-training/oauth-playground/pkg/store"
)

// tokenEndpoint is a fake provider token endpoint that records every request.
type tokenEndpoint struct {
	*httptest.Server
	calls atomic.Int32

	mu    sync.Mutex
	forms []url.Values
	ctype string
}

func newTokenEndpoint(t *testing.T, status int, body string) *tokenEndpoint {
	t.Helper()
	te := &tokenEndpoint{}
	te.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		te.calls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		te.mu.Lock()
		te.forms = append(te.forms, r.PostForm)
		te.ctype = r.Header.Get("Content-Type")
		te.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(te.Close)
	return te
}

func (te *tokenEndpoint) lastForm() url.Values {
	te.mu.Lock()
	defer te.mu.Unlock()
	if len(te.forms) == 0 {
		return nil
	}
	return te.forms[len(te.forms)-1]
}

func (te *tokenEndpoint) provider() Provider {
	return Provider{AuthURL: GoogleAuthURL, TokenURL: te.URL + "/token"}
}

// countingKV counts Delete calls on top of a real session view.
type countingKV struct {
	core.KV
	deletes atomic.Int32
}

func (c *countingKV) Delete(ctx context.Context, keys ...string) error {
	c.deletes.Add(1)
	return c.KV.Delete(ctx, keys...)
}

func newStagedKV(t *testing.T, populated bool) (*store.MemoryStore, *countingKV) {
	t.Helper()
	mem := store.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = mem.Close() })
	kv := &countingKV{KV: store.ForSession(mem, "flow-1")}
	if populated {
		ctx := context.Background()
		_ = kv.Set(ctx, core.KeyClientID, "abc")
		_ = kv.Set(ctx, core.KeyClientSecret, "xyz")
	}
	return mem, kv
}

func assertPurged(t *testing.T, mem *store.MemoryStore, kv *countingKV) {
	t.Helper()
	if n := mem.Len("flow-1"); n != 0 {
		t.Errorf("store still holds %d keys after the exchange", n)
	}
	if n := kv.deletes.Load(); n != 1 {
		t.Errorf("Delete called %d times, want exactly 1", n)
	}
}

func TestExchange_Success(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"AT1","refresh_token":"RT1","token_type":"Bearer","expires_in":3599}`)
	mem, kv := newStagedKV(t, true)

	cb := NewHandler(te.provider(), nil).NewCallback(kv, testOrigin)
	out := cb.Mount(context.Background(), url.Values{"code": {"GOODCODE"}})

	if out.State != StateSuccess {
		t.Fatalf("State = %v (%s), want success", out.State, out.Reason)
	}
	if out.Token == nil || out.Token.AccessToken != "AT1" || out.Token.RefreshToken != "RT1" {
		t.Errorf("Token = %+v, want AT1/RT1", out.Token)
	}
	if cb.State() != StateSuccess {
		t.Errorf("Callback.State() = %v, want success", cb.State())
	}
	assertPurged(t, mem, kv)

	form := te.lastForm()
	want := map[string]string{
		"code":          "GOODCODE",
		"client_id":     "abc",
		"client_secret": "xyz",
		"redirect_uri":  testOrigin + "/callback",
		"grant_type":    "authorization_code",
	}
	for key, value := range want {
		if got := form.Get(key); got != value {
			t.Errorf("form %s = %q, want %q", key, got, value)
		}
	}
	te.mu.Lock()
	ctype := te.ctype
	te.mu.Unlock()
	if ctype != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q, want application/x-www-form-urlencoded", ctype)
	}
}

func TestExchange_RedirectURIMatchesAuthorizationRequest(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"AT1"}`)
	ctx := context.Background()
	kv := store.ForSession(store.NewMemoryStore(time.Minute), "flow-1")

	target, err := NewBuilder(te.provider()).Submit(ctx, kv, Submission{ClientID: "abc", ClientSecret: "xyz"}, testOrigin)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	u, _ := url.Parse(target)

	NewHandler(te.provider(), nil).ExchangeCodeForToken(ctx, kv, "CODE", testOrigin)

	if got, want := te.lastForm().Get("redirect_uri"), u.Query().Get("redirect_uri"); got != want {
		t.Errorf("exchange redirect_uri = %q, authorization redirect_uri = %q", got, want)
	}
}

func TestExchange_NoRefreshToken(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"AT1"}`)
	mem, kv := newStagedKV(t, true)

	out := NewHandler(te.provider(), nil).ExchangeCodeForToken(context.Background(), kv, "CODE", testOrigin)

	if out.State != StateSuccess {
		t.Fatalf("State = %v (%s), want success", out.State, out.Reason)
	}
	if out.Token.HasRefreshToken() {
		t.Errorf("RefreshToken = %q, want none", out.Token.RefreshToken)
	}
	assertPurged(t, mem, kv)
}

func TestExchange_MissingCredentials(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"AT1"}`)

	tests := []struct {
		name  string
		stage map[string]string
	}{
		{"empty store", nil},
		{"only client id", map[string]string{core.KeyClientID: "abc"}},
		{"only client secret", map[string]string{core.KeyClientSecret: "xyz"}},
		{"empty client id", map[string]string{core.KeyClientID: "", core.KeyClientSecret: "xyz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem, kv := newStagedKV(t, false)
			for key, value := range tt.stage {
				_ = kv.Set(context.Background(), key, value)
			}
			before := te.calls.Load()

			cb := NewHandler(te.provider(), nil).NewCallback(kv, testOrigin)
			out := cb.Mount(context.Background(), url.Values{"code": {"ANY"}})

			if out.State != StateFailure || out.Kind != KindMissingCredentials {
				t.Fatalf("outcome = %+v, want missing credentials failure", out)
			}
			if out.Reason != "Client ID and/or Client Secret not found in local storage" {
				t.Errorf("Reason = %q", out.Reason)
			}
			if te.calls.Load() != before {
				t.Error("no network call may be made without credentials")
			}
			assertPurged(t, mem, kv)
		})
	}
}

func TestExchange_Rejected(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Bad Request"}`)
	mem, kv := newStagedKV(t, true)

	out := NewHandler(te.provider(), nil).NewCallback(kv, testOrigin).
		Mount(context.Background(), url.Values{"code": {"BADCODE"}})

	if out.State != StateFailure || out.Kind != KindExchangeRejected {
		t.Fatalf("outcome = %+v, want exchange rejected", out)
	}
	if out.Reason != "Failed to exchange code for token" {
		t.Errorf("Reason = %q", out.Reason)
	}
	if out.ProviderError != "invalid_grant" {
		t.Errorf("ProviderError = %q, want invalid_grant", out.ProviderError)
	}
	assertPurged(t, mem, kv)
}

func TestExchange_MissingAccessToken(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"refresh_token":"RT1"}`)
	mem, kv := newStagedKV(t, true)

	out := NewHandler(te.provider(), nil).ExchangeCodeForToken(context.Background(), kv, "CODE", testOrigin)

	if out.State != StateFailure {
		t.Fatalf("State = %v, want failure", out.State)
	}
	if out.Reason == "" {
		t.Error("Reason should carry the parse error")
	}
	assertPurged(t, mem, kv)
}

func TestExchange_TransportFailure(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{}`)
	provider := te.provider()
	te.Close()

	mem, kv := newStagedKV(t, true)
	out := NewHandler(provider, nil).ExchangeCodeForToken(context.Background(), kv, "CODE", testOrigin)

	if out.State != StateFailure || out.Kind != KindTransportFailure {
		t.Fatalf("outcome = %+v, want transport failure", out)
	}
	if out.Reason == "" || out.Reason == MsgUnknownError {
		t.Errorf("Reason = %q, want the underlying error text", out.Reason)
	}
	assertPurged(t, mem, kv)
}

func TestExchange_CanceledContextStillPurges(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"AT1"}`)
	mem, kv := newStagedKV(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewHandler(te.provider(), nil).ExchangeCodeForToken(ctx, kv, "CODE", testOrigin)

	if out.State != StateFailure {
		t.Fatalf("State = %v, want failure for a canceled request", out.State)
	}
	assertPurged(t, mem, kv)
}

func TestCallback_MissingCode(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"AT1"}`)

	for _, query := range []url.Values{{}, {"code": {""}}, {"error": {"access_denied"}}} {
		mem, kv := newStagedKV(t, true)
		cb := NewHandler(te.provider(), nil).NewCallback(kv, testOrigin)

		out := cb.Mount(context.Background(), query)
		if out.State != StateFailure || out.Kind != KindMissingCode {
			t.Fatalf("outcome = %+v, want missing code", out)
		}
		if out.Reason != "No authorization code found in URL parameters" {
			t.Errorf("Reason = %q", out.Reason)
		}
		assertPurged(t, mem, kv)
	}
	if n := te.calls.Load(); n != 0 {
		t.Errorf("token endpoint called %d times, want 0", n)
	}
}

func TestCallback_MountRunsOnce(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"AT1"}`)
	_, kv := newStagedKV(t, true)

	cb := NewHandler(te.provider(), nil).NewCallback(kv, testOrigin)
	if cb.State() != StateIdle {
		t.Fatalf("initial State = %v, want idle", cb.State())
	}

	first := cb.Mount(context.Background(), url.Values{"code": {"CODE"}})
	second := cb.Mount(context.Background(), url.Values{"code": {"OTHER"}})

	if n := te.calls.Load(); n != 1 {
		t.Errorf("token endpoint called %d times, want 1", n)
	}
	if second.State != first.State || second.Token.AccessToken != first.Token.AccessToken {
		t.Errorf("second Mount = %+v, want %+v", second, first)
	}
}

func TestStateAndKindStrings(t *testing.T) {
	if StateLoading.String() != "loading" || State(42).String() != "unknown" {
		t.Error("unexpected State strings")
	}
	if KindExchangeRejected.String() != "exchange_rejected" || FailureKind(42).String() != "unknown" {
		t.Error("unexpected FailureKind strings")
	}
}

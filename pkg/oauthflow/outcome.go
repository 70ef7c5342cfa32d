package oauthflow

// State is the lifecycle position of a Callback.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// FailureKind classifies why an exchange did not produce tokens.
type FailureKind int

const (
	KindNone FailureKind = iota
	KindMissingCode
	KindMissingCredentials
	KindExchangeRejected
	KindTransportFailure
)

func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMissingCode:
		return "missing_code"
	case KindMissingCredentials:
		return "missing_credentials"
	case KindExchangeRejected:
		return "exchange_rejected"
	case KindTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// User-visible failure messages.
const (
	MsgMissingCode        = "No authorization code found in URL parameters"
	MsgMissingCredentials = "Client ID and/or Client Secret not found in local storage"
	MsgExchangeRejected   = "Failed to exchange code for token"
	MsgUnknownError       = "An unknown error occurred"
)

// TokenResponse holds the tokens returned by one successful exchange.
// An empty RefreshToken means the provider did not issue one.
type TokenResponse struct {
	AccessToken  string
	RefreshToken string
}

// HasRefreshToken reports whether the provider issued a refresh token.
func (t TokenResponse) HasRefreshToken() bool {
	return t.RefreshToken != ""
}

// Outcome is the single result a Callback renders.
type Outcome struct {
	State  State
	Token  *TokenResponse
	Reason string
	Kind   FailureKind
	// ProviderError is the provider's machine-readable error code, if any.
	// It is kept for logs and is not part of Reason.
	ProviderError string
}

// Succeeded returns a terminal success outcome.
func Succeeded(tok TokenResponse) Outcome {
	return Outcome{State: StateSuccess, Token: &tok}
}

// Failed returns a terminal failure outcome.
func Failed(kind FailureKind, reason string) Outcome {
	return Outcome{State: StateFailure, Kind: kind, Reason: reason}
}

// Package oauthflow implements the two halves of a one-shot OAuth2
// authorization code flow: staging operator credentials and redirecting to
// the provider, then exchanging the returned code for tokens.
package oauthflow

import "golang.org/x/oauth2"

const (
	// GoogleAuthURL is Google's authorization endpoint.
	GoogleAuthURL = "https://accounts.google.com/o/oauth2/auth"
	// GoogleTokenURL is Google's token endpoint.
	GoogleTokenURL = "https://oauth2.googleapis.com/token"

	callbackPath = "/callback"
)

// Provider holds the endpoints of the OAuth2 provider the flow talks to.
type Provider struct {
	AuthURL  string
	TokenURL string
}

// GoogleProvider returns the default provider endpoints.
func GoogleProvider() Provider {
	return Provider{AuthURL: GoogleAuthURL, TokenURL: GoogleTokenURL}
}

// endpoint always sends the client credentials in the form body.
func (p Provider) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   p.AuthURL,
		TokenURL:  p.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// CallbackURI returns the redirect target for a deployment origin.
// Both the authorization request and the token exchange use it, and the
// provider rejects the exchange unless the two values are byte-identical.
func CallbackURI(origin string) string {
	return origin + callbackPath
}

// MaskToken hides the middle of a token so it can be logged.
func MaskToken(token string) string {
	switch {
	case len(token) > 8:
		return token[:6] + "****" + token[len(token)-2:]
	case len(token) > 0:
		return "****"
	default:
		return ""
	}
}

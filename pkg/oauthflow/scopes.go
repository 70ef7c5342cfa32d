package oauthflow

import "strings"

// ParseScopes splits a comma-separated scope list, trims each entry and
// drops empty ones. Order is preserved and duplicates are kept.
func ParseScopes(raw string) []string {
	scopes := []string{}
	for _, part := range strings.Split(raw, ",") {
		if scope := strings.TrimSpace(part); scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

package oauthflow

import (
	"reflect"
	"testing"
)

func TestParseScopes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"trims and drops empties", "a, b ,,c", []string{"a", "b", "c"}},
		{"empty string", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"only separators", " , ,, ", []string{}},
		{"keeps order", "z,a,m", []string{"z", "a", "m"}},
		{"keeps duplicates", "email, email", []string{"email", "email"}},
		{
			"google scopes",
			"https://www.googleapis.com/auth/userinfo.email,\n https://www.googleapis.com/auth/userinfo.profile",
			[]string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseScopes(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseScopes(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", ""},
		{"short", "****"},
		{"ya29.a0AfH6SMBx", "ya29.a****Bx"},
	}
	for _, tt := range tests {
		if got := MaskToken(tt.token); got != tt.want {
			t.Errorf("MaskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

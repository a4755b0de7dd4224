package server_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-middleware/server"
)

func TestChallengeRendering(t *testing.T) {
	tests := []struct {
		name      string
		challenge server.BearerChallenge
		want      string
	}{
		{
			name:      "bare",
			challenge: server.BearerChallenge{},
			want:      "Bearer",
		},
		{
			name:      "error only",
			challenge: server.BearerChallenge{Error: "invalid_token"},
			want:      `Bearer error="invalid_token"`,
		},
		{
			name: "full",
			challenge: server.BearerChallenge{
				Error:            "invalid_request",
				ErrorDescription: "state mismatch",
				ErrorURI:         "https://tools.ietf.org/html/rfc6750",
			},
			want: `Bearer error="invalid_request", error_description="state mismatch", error_uri="https://tools.ietf.org/html/rfc6750"`,
		},
		{
			name:      "insufficient scope",
			challenge: server.BearerChallenge{Error: "insufficient_scope", Scope: "profile"},
			want:      `Bearer error="insufficient_scope", scope="profile"`,
		},
		{
			name:      "quotes escaped",
			challenge: server.BearerChallenge{Error: "bad", ErrorDescription: `say "hi" \ bye`},
			want:      `Bearer error="bad", error_description="say \"hi\" \\ bye"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.challenge.String())
		})
	}
}

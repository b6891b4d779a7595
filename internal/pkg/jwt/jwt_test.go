package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret")

	tokenString, err := svc.IssueAccessToken("user-1", time.Hour)
	require.NoError(t, err)

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)

	actor, err := svc.ActorFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor)
}

func TestJWTService_ActorFromClaims(t *testing.T) {
	svc := NewJWTService("test-secret")

	tests := []struct {
		name    string
		claims  map[string]any
		want    string
		wantErr bool
	}{
		{"access token", map[string]any{"user_id": "u", "type": "access"}, "u", false},
		{"untyped token", map[string]any{"user_id": "u"}, "u", false},
		{"refresh token", map[string]any{"user_id": "u", "type": "refresh"}, "", true},
		{"missing user", map[string]any{"type": "access"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ActorFromClaims(tt.claims)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingActor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuer := NewJWTService("secret-a")
	verifier := NewJWTService("secret-b")

	tokenString, err := issuer.IssueAccessToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(verifier.JWTAuth(), tokenString)
	assert.Error(t, err)
}

package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ClaimUserID carries the acting user on every access token.
const ClaimUserID = "user_id"

var ErrMissingActor = errors.New("token has no user_id claim")

// Service verifies the HS256 access tokens issued by the identity service.
// IssueAccessToken exists for local tooling and tests.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	IssueAccessToken(userID string, ttl time.Duration) (token string, err error)
	ActorFromClaims(claims map[string]any) (string, error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) IssueAccessToken(userID string, ttl time.Duration) (string, error) {
	claims := map[string]any{
		ClaimUserID: userID,
		"type":      "access",
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func (j *JWTService) ActorFromClaims(claims map[string]any) (string, error) {
	if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
		return "", ErrMissingActor
	}
	userID, ok := claims[ClaimUserID].(string)
	if !ok || userID == "" {
		return "", ErrMissingActor
	}
	return userID, nil
}

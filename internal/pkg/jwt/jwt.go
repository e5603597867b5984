package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

var ErrMissingClaims = errors.New("token is missing required claims")

// Claims is the identity the core trusts for a request.
type Claims struct {
	UserID         string
	Email          string
	OrganizationID string
	Type           string
}

type Service interface {
	GenerateAccessToken(userID string, email string, organizationID string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken signs an access token. Login lives in the identity
// service; this is used by tests and local tooling.
func (j *JWTService) GenerateAccessToken(userID string, email string, organizationID string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":         userID,
		"email":           email,
		"organization_id": organizationID,
		"type":            TokenTypeAccess,
		"exp":             expiresAt,
	})
	return tokenString, expiresAt, err
}

// ClaimsFromContext reads the verified token claims placed by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}

	claims := Claims{
		UserID:         stringClaim(raw, "user_id"),
		Email:          stringClaim(raw, "email"),
		OrganizationID: stringClaim(raw, "organization_id"),
		Type:           stringClaim(raw, "type"),
	}
	if claims.UserID == "" {
		return Claims{}, ErrMissingClaims
	}
	return claims, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, ok := claims[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

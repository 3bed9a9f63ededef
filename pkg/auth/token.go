package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/visionhut/optica-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ErrInvalidToken is returned for any verification failure: bad signature,
// expired, wrong issuer or audience. Callers never learn which check failed.
var ErrInvalidToken = fmt.Errorf("invalid token")

// MintPair issues an access/refresh token pair for the payload. The two
// tokens are signed with independent secrets and independently configured
// lifetimes; both embed issuer and audience.
func MintPair(cfg config.JWTConfig, now time.Time, payload TokenPayload) (*TokenPair, error) {
	if err := validateMintConfig(cfg); err != nil {
		return nil, err
	}
	if !payload.Role.IsValid() {
		return nil, fmt.Errorf("invalid user role %q", payload.Role)
	}

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	accessToken, accessClaims, err := mint(cfg.AccessSecret, cfg, now, cfg.AccessTokenTTL(), payload, sessionID)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, _, err := mint(cfg.RefreshSecret, cfg, now, cfg.RefreshTokenTTL(), payload, sessionID)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresInSeconds: ExpiresIn(accessClaims),
	}, nil
}

// MintAccess issues only a new access token. The refresh flow uses this so
// the refresh token itself is left untouched.
func MintAccess(cfg config.JWTConfig, now time.Time, payload TokenPayload) (string, int64, error) {
	if err := validateMintConfig(cfg); err != nil {
		return "", 0, err
	}
	if !payload.Role.IsValid() {
		return "", 0, fmt.Errorf("invalid user role %q", payload.Role)
	}

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	token, claims, err := mint(cfg.AccessSecret, cfg, now, cfg.AccessTokenTTL(), payload, sessionID)
	if err != nil {
		return "", 0, fmt.Errorf("signing access token: %w", err)
	}
	return token, ExpiresIn(claims), nil
}

// ParseAccess verifies an access token and returns its typed claims.
func ParseAccess(cfg config.JWTConfig, tokenString string) (*Claims, error) {
	return parse(cfg, cfg.AccessSecret, tokenString)
}

// ParseRefresh verifies a refresh token and returns its typed claims.
func ParseRefresh(cfg config.JWTConfig, tokenString string) (*Claims, error) {
	return parse(cfg, cfg.RefreshSecret, tokenString)
}

// ParseAccessAllowExpired parses without validating exp so logout can read
// the expiry of an already-expired token. Signature is still enforced.
func ParseAccessAllowExpired(cfg config.JWTConfig, tokenString string) (*Claims, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("jwt access secret is required")
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithoutClaimsValidation(),
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, keyFunc(cfg.AccessSecret))
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExpiresIn computes the remaining whole seconds of validity from the
// claims' own issued-at/expires-at rather than echoing configuration.
func ExpiresIn(claims *Claims) int64 {
	if claims == nil || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return 0
	}
	return int64(claims.ExpiresAt.Sub(claims.IssuedAt.Time).Seconds())
}

// RemainingValidity reports how long the token is still valid as of now.
func RemainingValidity(claims *Claims, now time.Time) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Sub(now)
}

func mint(secret string, cfg config.JWTConfig, now time.Time, ttl time.Duration, payload TokenPayload, sessionID string) (string, *Claims, error) {
	claims := &Claims{
		UserID:      payload.UserID,
		UserCode:    payload.UserCode,
		StoreID:     payload.StoreID,
		Role:        payload.Role,
		Permissions: payload.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			Subject:   payload.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        sessionID,
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func parse(cfg config.JWTConfig, secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		keyFunc(secret),
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtSigningMethod {
			return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
		}
		return []byte(secret), nil
	}
}

func validateMintConfig(cfg config.JWTConfig) error {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return fmt.Errorf("jwt secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return fmt.Errorf("access and refresh secrets must differ")
	}
	if cfg.Issuer == "" {
		return fmt.Errorf("jwt issuer is required")
	}
	if cfg.Audience == "" {
		return fmt.Errorf("jwt audience is required")
	}
	if cfg.AccessTokenTTL() <= 0 {
		return fmt.Errorf("access token ttl must be positive")
	}
	if cfg.RefreshTokenTTL() <= cfg.AccessTokenTTL() {
		return fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", cfg.RefreshTokenTTL(), cfg.AccessTokenTTL())
	}
	return nil
}

package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/visionhut/optica-backend/pkg/enums"
)

// TokenPayload captures the identity data embedded when minting a pair.
type TokenPayload struct {
	UserID      uuid.UUID
	UserCode    string
	StoreID     uuid.UUID
	Role        enums.UserRole
	SessionID   string
	Permissions []string
}

// Claims is the typed JWT body shared by both token classes. The class is
// enforced by the signing secret, not by a claim.
type Claims struct {
	UserID      uuid.UUID      `json:"user_id"`
	UserCode    string         `json:"user_code"`
	StoreID     uuid.UUID      `json:"store_id"`
	Role        enums.UserRole `json:"role"`
	Permissions []string       `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is the result of minting: both bearer strings plus the access
// token lifetime in seconds, computed from the embedded iat/exp.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresInSeconds int64
}

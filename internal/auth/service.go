package auth

import (
	"context"
	"crypto/subtle"
	goerrors "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/visionhut/optica-backend/internal/users"
	"github.com/visionhut/optica-backend/pkg/auth"
	"github.com/visionhut/optica-backend/pkg/config"
	"github.com/visionhut/optica-backend/pkg/db/models"
	apperrors "github.com/visionhut/optica-backend/pkg/errors"
	"github.com/visionhut/optica-backend/pkg/logger"
	"github.com/visionhut/optica-backend/pkg/metrics"
	"github.com/visionhut/optica-backend/pkg/redis"
	"github.com/visionhut/optica-backend/pkg/security"
)

const failedLoginMessage = "invalid credentials"

// userStore is the slice of the users repository the service needs.
type userStore interface {
	FindByLogin(ctx context.Context, userCode, storeCode string) (*models.User, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// sessionStore covers the refresh-slot and blacklist operations.
type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	RefreshTokenKey(userID string) string
	BlacklistKey(token string) string
}

type lockoutPolicy interface {
	RecordFailure(ctx context.Context, identifier string) (int64, error)
	IsLocked(ctx context.Context, identifier string) (bool, error)
	Reset(ctx context.Context, identifier string) error
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
}

type ServiceParams struct {
	Users    userStore
	Sessions sessionStore
	Lockout  lockoutPolicy
	JWT      config.JWTConfig
	Metrics  *metrics.AuthMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	users    userStore
	sessions sessionStore
	lockout  lockoutPolicy
	jwt      config.JWTConfig
	metrics  *metrics.AuthMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		users:    params.Users,
		sessions: params.Sessions,
		lockout:  params.Lockout,
		jwt:      params.JWT,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}
}

// Login verifies the credential triple and issues a fresh token pair. Any
// credential problem, unknown user included, is reported with the same
// generic failure so callers cannot probe for valid user codes.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	identifier := Identifier(req.StoreCode, req.UserCode)

	locked, err := s.lockout.IsLocked(ctx, identifier)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeServer, err, "checking login attempts")
	}
	if locked {
		s.metrics.IncLockoutRejection()
		return nil, apperrors.New(apperrors.CodeAccountLocked, "too many failed attempts, try again later")
	}

	user, err := s.users.FindByLogin(ctx, req.UserCode, req.StoreCode)
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.failLogin(ctx, identifier, req.StoreCode)
		}
		return nil, apperrors.Wrap(apperrors.CodeServer, err, "looking up credentials")
	}

	match, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeServer, err, "verifying password")
	}
	if !match {
		return nil, s.failLogin(ctx, identifier, req.StoreCode)
	}

	if err := s.lockout.Reset(ctx, identifier); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "resetting login attempts failed")
	}

	now := s.now()
	pair, err := auth.MintPair(s.jwt, now, tokenPayload(user))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeServer, err, "minting token pair")
	}

	refreshKey := s.sessions.RefreshTokenKey(user.ID.String())
	if err := s.sessions.Set(ctx, refreshKey, pair.RefreshToken, s.jwt.RefreshTokenTTL()); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeServer, err, "storing refresh token")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "updating last login failed")
	}
	loginAt := now
	user.LastLoginAt = &loginAt

	s.metrics.IncLoginSuccess(req.StoreCode)

	return &LoginResponse{
		User:         users.FromModel(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresInSeconds,
	}, nil
}

func (s *service) failLogin(ctx context.Context, identifier, storeCode string) error {
	if _, err := s.lockout.RecordFailure(ctx, identifier); err != nil {
		s.logg.Warn(ctx, "recording failed login attempt failed")
	}
	s.metrics.IncLoginFailure(storeCode)

	return apperrors.New(apperrors.CodeAuthFailed, failedLoginMessage)
}

// Logout revokes the presented access token and drops the caller's refresh
// slot. The access token goes on the blacklist only for its remaining
// validity; an already expired token has nothing left to revoke.
func (s *service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return apperrors.New(apperrors.CodeAuthRequired, "authentication required")
	}

	claims, err := auth.ParseAccessAllowExpired(s.jwt, accessToken)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAuthFailed, err, failedLoginMessage)
	}

	var errs error
	if remaining := auth.RemainingValidity(claims, s.now()); remaining > 0 {
		blacklistKey := s.sessions.BlacklistKey(accessToken)
		if err := s.sessions.Set(ctx, blacklistKey, "revoked", remaining); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			s.metrics.IncRevocation()
		}
	}

	refreshKey := s.sessions.RefreshTokenKey(claims.UserID.String())
	if err := s.sessions.Del(ctx, refreshKey); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return apperrors.Wrap(apperrors.CodeServer, errs, "revoking session")
	}

	return nil
}

// Refresh exchanges a valid refresh token for a new access token. The token
// must match the single stored slot for its user byte for byte, so an older
// refresh token stops working as soon as a newer login replaces it.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	if refreshToken == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "refresh_token is required")
	}

	claims, err := auth.ParseRefresh(s.jwt, refreshToken)
	if err != nil {
		s.metrics.IncRefresh("rejected")
		return nil, apperrors.Wrap(apperrors.CodeAuthFailed, err, failedLoginMessage)
	}

	stored, err := s.sessions.Get(ctx, s.sessions.RefreshTokenKey(claims.UserID.String()))
	if err != nil {
		if goerrors.Is(err, redis.Nil) {
			s.metrics.IncRefresh("rejected")
			return nil, apperrors.New(apperrors.CodeAuthFailed, failedLoginMessage)
		}
		return nil, apperrors.Wrap(apperrors.CodeServer, err, "loading refresh token")
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		s.metrics.IncRefresh("rejected")
		return nil, apperrors.New(apperrors.CodeAuthFailed, failedLoginMessage)
	}

	accessToken, expiresIn, err := auth.MintAccess(s.jwt, s.now(), payloadFromClaims(claims))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeServer, err, "minting access token")
	}

	s.metrics.IncRefresh("accepted")

	return &RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
	}, nil
}

// Me returns the current state of the authenticated principal. Users
// deactivated after their token was minted come back as not found.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.users.FindActiveByID(ctx, userID)
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeServer, err, "loading user")
	}

	return users.FromModel(user), nil
}

func tokenPayload(user *models.User) auth.TokenPayload {
	return auth.TokenPayload{
		UserID:      user.ID,
		UserCode:    user.UserCode,
		StoreID:     user.StoreID,
		Role:        user.Role,
		Permissions: append([]string(nil), []string(user.Permissions)...),
	}
}

func payloadFromClaims(claims *auth.Claims) auth.TokenPayload {
	return auth.TokenPayload{
		UserID:      claims.UserID,
		UserCode:    claims.UserCode,
		StoreID:     claims.StoreID,
		Role:        claims.Role,
		SessionID:   claims.ID,
		Permissions: append([]string(nil), claims.Permissions...),
	}
}

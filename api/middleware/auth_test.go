package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/visionhut/optica-backend/pkg/auth"
	"github.com/visionhut/optica-backend/pkg/config"
	"github.com/visionhut/optica-backend/pkg/db/models"
	"github.com/visionhut/optica-backend/pkg/enums"
)

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (s stubBlacklist) Exists(ctx context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[key], nil
}

func (s stubBlacklist) BlacklistKey(token string) string {
	return "blacklist:" + token
}

type stubPrincipals struct {
	user *models.User
	err  error
}

func (s stubPrincipals) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func middlewareJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:            "access-secret",
		RefreshSecret:           "refresh-secret",
		Issuer:                  "optica",
		Audience:                "optica-api",
		AccessExpirationMinutes: 15,
		RefreshExpirationDays:   7,
	}
}

func mintAccessToken(t *testing.T, cfg config.JWTConfig, user *models.User) string {
	t.Helper()
	pair, err := pkgAuth.MintPair(cfg, time.Now(), pkgAuth.TokenPayload{
		UserID:      user.ID,
		UserCode:    user.UserCode,
		StoreID:     user.StoreID,
		Role:        user.Role,
		Permissions: []string(user.Permissions),
	})
	if err != nil {
		t.Fatalf("mint pair: %v", err)
	}
	return pair.AccessToken
}

func testUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		UserCode: "emp042",
		Role:     enums.UserRoleStaff,
		IsActive: true,
		StoreID:  uuid.New(),
	}
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestAuthSeedsContext(t *testing.T) {
	cfg := middlewareJWTConfig()
	user := testUser()
	token := mintAccessToken(t, cfg, user)

	var gotUserID, gotRole, gotStoreID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotStoreID = StoreIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Auth(cfg, stubBlacklist{}, stubPrincipals{user: user}, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotUserID != user.ID.String() {
		t.Fatalf("expected user id %s got %s", user.ID, gotUserID)
	}
	if gotRole != string(user.Role) {
		t.Fatalf("expected role %s got %s", user.Role, gotRole)
	}
	if gotStoreID != user.StoreID.String() {
		t.Fatalf("expected store id %s got %s", user.StoreID, gotStoreID)
	}
}

func TestAuthMissingToken(t *testing.T) {
	handler := Auth(middlewareJWTConfig(), stubBlacklist{}, stubPrincipals{user: testUser()}, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != "AUTHENTICATION_REQUIRED" {
		t.Fatalf("expected AUTHENTICATION_REQUIRED got %s", code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	handler := Auth(middlewareJWTConfig(), stubBlacklist{}, stubPrincipals{user: testUser()}, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != "AUTHENTICATION_FAILED" {
		t.Fatalf("expected AUTHENTICATION_FAILED got %s", code)
	}
}

func TestAuthRevokedToken(t *testing.T) {
	cfg := middlewareJWTConfig()
	user := testUser()
	token := mintAccessToken(t, cfg, user)

	blacklist := stubBlacklist{revoked: map[string]bool{"blacklist:" + token: true}}
	handler := Auth(cfg, blacklist, stubPrincipals{user: user}, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != "TOKEN_REVOKED" {
		t.Fatalf("expected TOKEN_REVOKED got %s", code)
	}
}

func TestAuthDeactivatedUser(t *testing.T) {
	cfg := middlewareJWTConfig()
	user := testUser()
	token := mintAccessToken(t, cfg, user)

	handler := Auth(cfg, stubBlacklist{}, stubPrincipals{err: gorm.ErrRecordNotFound}, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != "USER_INACTIVE" {
		t.Fatalf("expected USER_INACTIVE got %s", code)
	}
}

func TestRequireAnyRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAnyRole(nil, "admin", "manager")(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/ping", nil)
	req = req.WithContext(WithRole(req.Context(), "manager"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/ping", nil)
	req = req.WithContext(WithRole(req.Context(), "staff"))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != "AUTHORIZATION_FAILED" {
		t.Fatalf("expected AUTHORIZATION_FAILED got %s", code)
	}
}

func TestRequirePermission(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequirePermission("inventory.write", nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req = req.WithContext(context.WithValue(req.Context(), ctxPermissions, []string{"inventory.write"}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != "PERMISSION_DENIED" {
		t.Fatalf("expected PERMISSION_DENIED got %s", code)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	if got := BearerToken(req); got != "abc123" {
		t.Fatalf("expected abc123 got %s", got)
	}

	req.Header.Set("Authorization", "abc123")
	if got := BearerToken(req); got != "abc123" {
		t.Fatalf("expected raw token passthrough got %s", got)
	}

	req.Header.Del("Authorization")
	if got := BearerToken(req); got != "" {
		t.Fatalf("expected empty token got %s", got)
	}
}

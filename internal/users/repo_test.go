package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/visionhut/optica-backend/pkg/db/models"
	"github.com/visionhut/optica-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database keeps the schema visible across pooled
	// connections while isolating each test.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	stores := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  address TEXT,
  phone TEXT,
  manager_name TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  user_code TEXT NOT NULL,
  display_name TEXT NOT NULL,
  email TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'staff',
  permissions TEXT,
  password_hash TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  store_id TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (store_id, user_code)
);`
	require.NoError(t, db.Exec(stores).Error)
	require.NoError(t, db.Exec(users).Error)

	return db
}

func seedStore(t *testing.T, db *gorm.DB, code string, active bool) *models.Store {
	t.Helper()
	store := &models.Store{
		ID:       uuid.New(),
		Code:     code,
		Name:     "VisionHut " + code,
		IsActive: active,
	}
	require.NoError(t, db.Create(store).Error)
	return store
}

func seedUser(t *testing.T, db *gorm.DB, storeID uuid.UUID, userCode string, active bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		UserCode:     userCode,
		DisplayName:  "Test User",
		Email:        userCode + "@visionhut.example",
		Role:         enums.UserRoleStaff,
		Permissions:  pq.StringArray{"sales.create"},
		PasswordHash: "hash",
		IsActive:     active,
		StoreID:      storeID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestFindByLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "hq", true)
	user := seedUser(t, db, store.ID, "emp042", true)

	found, err := repo.FindByLogin(ctx, "emp042", "hq")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, user.UserCode, found.UserCode)
	assert.Equal(t, []string{"sales.create"}, []string(found.Permissions))
}

func TestFindByLoginMisses(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	activeStore := seedStore(t, db, "hq", true)
	inactiveStore := seedStore(t, db, "closed", false)
	seedUser(t, db, activeStore.ID, "inactive-user", false)
	seedUser(t, db, inactiveStore.ID, "emp042", true)

	cases := map[string]struct {
		userCode  string
		storeCode string
	}{
		"unknown user":          {"ghost", "hq"},
		"inactive user":         {"inactive-user", "hq"},
		"store inactive":        {"emp042", "closed"},
		"unknown store":         {"emp042", "nowhere"},
		"user at another store": {"emp042", "hq"},
	}
	for name, tc := range cases {
		_, err := repo.FindByLogin(ctx, tc.userCode, tc.storeCode)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound, name)
	}
}

func TestSameUserCodeAcrossStores(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	hq := seedStore(t, db, "hq", true)
	branch := seedStore(t, db, "branch2", true)
	hqUser := seedUser(t, db, hq.ID, "emp042", true)
	branchUser := seedUser(t, db, branch.ID, "emp042", true)

	found, err := repo.FindByLogin(ctx, "emp042", "hq")
	require.NoError(t, err)
	assert.Equal(t, hqUser.ID, found.ID)

	found, err = repo.FindByLogin(ctx, "emp042", "branch2")
	require.NoError(t, err)
	assert.Equal(t, branchUser.ID, found.ID)
}

func TestFindActiveByID(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "hq", true)
	active := seedUser(t, db, store.ID, "emp042", true)
	inactive := seedUser(t, db, store.ID, "emp043", false)

	found, err := repo.FindActiveByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)

	_, err = repo.FindActiveByID(ctx, inactive.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateLastLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "hq", true)
	user := seedUser(t, db, store.ID, "emp042", true)
	require.Nil(t, user.LastLoginAt)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	reloaded, err := repo.FindActiveByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.WithinDuration(t, at, *reloaded.LastLoginAt, time.Second)
}

func TestCreateUser(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "hq", true)
	created, err := repo.Create(ctx, CreateUserDTO{
		UserCode:     "emp100",
		DisplayName:  "New Hire",
		Email:        "new@visionhut.example",
		Role:         enums.UserRoleManager,
		Permissions:  []string{"inventory.write"},
		PasswordHash: "hash",
		StoreID:      store.ID,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, enums.UserRoleManager, created.Role)

	dto := FromModel(created)
	assert.Equal(t, "emp100", dto.UserCode)
	assert.Equal(t, []string{"inventory.write"}, dto.Permissions)
}

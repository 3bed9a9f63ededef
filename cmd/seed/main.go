package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/visionhut/optica-backend/internal/stores"
	"github.com/visionhut/optica-backend/internal/users"
	"github.com/visionhut/optica-backend/pkg/config"
	"github.com/visionhut/optica-backend/pkg/db"
	"github.com/visionhut/optica-backend/pkg/db/models"
	"github.com/visionhut/optica-backend/pkg/enums"
	"github.com/visionhut/optica-backend/pkg/logger"
	"github.com/visionhut/optica-backend/pkg/security"
)

// seed bootstraps a store and its first admin user so a fresh environment
// has something to log in with.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	storeCode := flag.String("store-code", "", "store code (required)")
	storeName := flag.String("store-name", "", "store name (required)")
	userCode := flag.String("user-code", "", "admin user code (required)")
	displayName := flag.String("display-name", "", "admin display name (required)")
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")

	flag.Parse()

	for name, value := range map[string]string{
		"store-code":   *storeCode,
		"store-name":   *storeName,
		"user-code":    *userCode,
		"display-name": *displayName,
		"email":        *email,
		"password":     *password,
	} {
		if value == "" {
			fmt.Fprintf(os.Stderr, "missing -%s\n", name)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		cfg.DB.DSN = cfg.FeatureFlags.SQLitePath
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	storesRepo := stores.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())

	store, err := storesRepo.FindActiveByCode(ctx, *storeCode)
	switch {
	case err == nil:
		logg.Info(logg.WithStoreID(ctx, store.ID.String()), "store already exists, reusing")
	case errors.Is(err, gorm.ErrRecordNotFound):
		store, err = storesRepo.Create(ctx, &models.Store{
			Code:     *storeCode,
			Name:     *storeName,
			IsActive: true,
		})
		if err != nil {
			logg.Error(ctx, "failed to create store", err)
			os.Exit(1)
		}
		logg.Info(logg.WithStoreID(ctx, store.ID.String()), "store created")
	default:
		logg.Error(ctx, "failed to look up store", err)
		os.Exit(1)
	}

	hash, err := security.HashPassword(*password, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	user, err := usersRepo.Create(ctx, users.CreateUserDTO{
		UserCode:     *userCode,
		DisplayName:  *displayName,
		Email:        *email,
		Role:         enums.UserRoleAdmin,
		PasswordHash: hash,
		StoreID:      store.ID,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_users_store_user_code") {
			fmt.Fprintf(os.Stderr, "user %s already exists at store %s\n", *userCode, *storeCode)
			os.Exit(1)
		}
		logg.Error(ctx, "failed to create user", err)
		os.Exit(1)
	}

	logg.Info(logg.WithUserID(ctx, user.ID.String()), "admin user created")
}

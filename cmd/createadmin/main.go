package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/petalpost/florist-backend/internal/auth"
	"github.com/petalpost/florist-backend/pkg/config"
	"github.com/petalpost/florist-backend/pkg/db"
	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
	"github.com/petalpost/florist-backend/pkg/logger"
)

// Provisions an operator account. There is no self-serve registration:
// accounts are created by whoever runs the deployment.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "createadmin"})

	_ = godotenv.Load()

	email := flag.String("email", "", "operator email")
	password := flag.String("password", "", "operator password (min 8 chars)")
	role := flag.String("role", string(enums.AdminRoleSupport), "role: owner|manager|support")
	flag.Parse()

	if *email == "" || len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "usage: createadmin -email a@b.c -password secret123 [-role owner]")
		os.Exit(1)
	}

	parsedRole, err := enums.ParseAdminRole(*role)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	hash, err := auth.HashPassword(cfg.Password, *password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	user := &models.AdminUser{
		Email:        *email,
		PasswordHash: hash,
		Role:         parsedRole,
	}
	if err := dbClient.DB().WithContext(ctx).Create(user).Error; err != nil {
		logg.Error(ctx, "failed to create operator", err)
		os.Exit(1)
	}

	fmt.Printf("created %s operator %s (%s)\n", parsedRole, user.Email, user.ID)
}

package migrate

import (
	"context"

	"github.com/petalpost/florist-backend/pkg/config"
	"github.com/petalpost/florist-backend/pkg/db"
	"github.com/petalpost/florist-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations when the auto-migrate flag is
// set. Intended for dev environments; prod runs cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || client == nil {
		return nil
	}
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}

	if logg != nil {
		logg.Info(ctx, "running pending migrations")
	}
	return Run(ctx, sqlDB, DefaultDir, "up")
}

package cli

import (
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coursedeck-service/internal/app"
	"coursedeck-service/internal/config"
	pgstore "coursedeck-service/internal/infra/postgres"
)

// NewPurgeCmd permanently deletes courses whose recycle-bin window has
// lapsed. Intended to run from cron.
func NewPurgeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Permanently delete expired recycle-bin courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer log.Sync()

			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			service := app.NewCourseService(pgstore.NewCourseStore(pool), nil, log)
			purged, err := service.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("purge complete", zap.Int("purged", purged))
			return nil
		},
	}
}

// Command cgctl runs operational tasks against the CyberGuardian database.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cyberguardian/platform/internal/config"
	"github.com/cyberguardian/platform/internal/db"
	"github.com/cyberguardian/platform/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "cgctl",
		Short:        "CyberGuardian operations tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "configs/.env", "dotenv file to load before reading the environment")
	cmd.AddCommand(newCreateAdminCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

// connect opens the database pool from the PG_* environment.
func connect(ctx context.Context) (*pgxpool.Pool, zerolog.Logger, error) {
	logger := logging.New("cgctl", os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	pg, err := config.LoadPostgres()
	if err != nil {
		return nil, logger, err
	}
	pool, err := db.NewPostgresPool(ctx, pg, logger)
	if err != nil {
		return nil, logger, err
	}
	return pool, logger, nil
}

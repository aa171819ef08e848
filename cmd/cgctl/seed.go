package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dbassets "github.com/cyberguardian/platform/db"
	"github.com/cyberguardian/platform/internal/catalog"
	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/seed"
	"github.com/cyberguardian/platform/internal/validation"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the starter quizzes and badges; existing quiz titles are left alone",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := dbassets.SeedCatalog
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				data = raw
			}
			c, err := seed.Parse(data)
			if err != nil {
				return err
			}

			pool, logger, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			quizzes := repository.NewQuizRepository(pool)
			authoring := catalog.NewService(quizzes, repository.NewResultRepository(pool), validation.New(), logger)
			loader := seed.NewLoader(authoring, quizzes, repository.NewBadgeRepository(pool), logger)

			rep, err := loader.Load(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "badges: %d, quizzes created: %d, skipped: %d\n",
				rep.Badges, len(rep.Created), len(rep.Skipped))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "catalog YAML to load instead of the built-in one")
	return cmd
}

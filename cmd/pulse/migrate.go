package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pulsecheck/pulsecheck/internal/platform"
)

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := databaseURL
			if url == "" {
				url = os.Getenv("PULSE_DATABASE_URL")
			}
			if url == "" {
				return fmt.Errorf("no database URL; pass --database-url or set PULSE_DATABASE_URL")
			}

			db, err := sql.Open("postgres", url)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := platform.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (default: PULSE_DATABASE_URL)")
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/trogers1052/trademind/internal/config"
	"github.com/trogers1052/trademind/internal/database"
	"github.com/trogers1052/trademind/internal/rules"
)

func newMigrateCmd() *cobra.Command {
	var source string
	m := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Database settings are read from the same DB_* environment variables
(and .env file) as the server.`,
	}
	m.PersistentFlags().StringVar(&source, "source", "", "migration source (default JOURNAL_MIGRATIONS_PATH)")

	m.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			applied, err := database.Migrate(sourceOr(source, cfg), cfg.Database.ConnectionString())
			if err != nil {
				return err
			}
			if applied {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
			}
			return nil
		},
	}, &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			v, dirty, err := database.MigrationVersion(sourceOr(source, cfg), cfg.Database.ConnectionString())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
			return nil
		},
	})
	return m
}

func sourceOr(source string, cfg *config.Config) string {
	if source != "" {
		return source
	}
	return cfg.Journal.MigrationsPath
}

func newRulesCmd() *cobra.Command {
	r := &cobra.Command{
		Use:   "rules",
		Short: "Inspect or seed the default trading rules",
	}

	r.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the default rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := rules.Defaults()
			if err != nil {
				return err
			}
			for i, s := range seeds {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. [%s] %s\n", i+1, s.Category, s.Text)
			}
			return nil
		},
	})

	var user string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default rules for a user that has none",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(user); err != nil {
				return fmt.Errorf("invalid --user %q: %w", user, err)
			}
			seeds, err := rules.Defaults()
			if err != nil {
				return err
			}

			cfg := config.Load()
			db, err := database.New(cfg.Database.ConnectionString())
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.SeedDefaultRules(cmd.Context(), user, seeds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rules for %s\n", n, user)
			return nil
		},
	}
	seed.Flags().StringVarP(&user, "user", "u", "", "user ID (required)")
	seed.MarkFlagRequired("user")
	r.AddCommand(seed)
	return r
}

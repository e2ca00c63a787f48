package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ammerola/api-framework/internal/adapters/db"
)

func (a *app) newMigrateCommand() *cobra.Command {
	var forceDirty bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the harness schema",
	}
	cmd.PersistentFlags().BoolVar(&forceDirty, "force-dirty", false, "Clear a dirty schema version before migrating up")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withMigrator(cmd.Context(), forceDirty, func(m *db.Migrator) error {
					if err := m.Up(cmd.Context()); err != nil {
						return err
					}
					return a.printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withMigrator(cmd.Context(), false, func(m *db.Migrator) error {
					if err := m.Down(cmd.Context()); err != nil {
						return err
					}
					return a.printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withMigrator(cmd.Context(), false, func(m *db.Migrator) error {
					return a.printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				return a.withMigrator(cmd.Context(), false, func(m *db.Migrator) error {
					if err := m.Force(cmd.Context(), version); err != nil {
						return err
					}
					return a.printVersion(cmd, m)
				})
			},
		},
	)

	return cmd
}

func (a *app) withMigrator(ctx context.Context, forceDirty bool, fn func(*db.Migrator) error) error {
	if err := resolvePassword(ctx, a.cfg, a.log.Logger); err != nil {
		return err
	}

	m, err := db.NewMigrator(ctx, &db.MigrationConfig{
		DatabaseURL: a.cfg.GetDatabaseURL(),
		ForceDirty:  forceDirty,
	}, a.log.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			a.log.WarnContext(ctx, "failed to close migrator", slog.String("error", err.Error()))
		}
	}()

	return fn(m)
}

func (a *app) printVersion(cmd *cobra.Command, m *db.Migrator) error {
	version, dirty, err := m.Version(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}

func parseVersion(arg string) (int, error) {
	version, err := strconv.Atoi(arg)
	if err != nil || version < -1 {
		return 0, fmt.Errorf("invalid migration version %q: want an integer >= -1", arg)
	}
	return version, nil
}

package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/recordkeeper-audit/migrations"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			applied, err := migrations.Up(cmd.Context(), rt.cfg.Database.DSN)
			if err != nil {
				return err
			}
			rt.log.InfoContext(cmd.Context(), "migrations applied", slog.Int("count", len(applied)))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(applied))
			return nil
		},
	}
}

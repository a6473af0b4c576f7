package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/recordkeeper-audit/internal/app"
	"github.com/heartmarshall/recordkeeper-audit/internal/domain"
	"github.com/heartmarshall/recordkeeper-audit/internal/service/audit"
)

func newExportCommand(rt *runtime) *cobra.Command {
	var (
		ff  filterFlags
		out string
		dir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export filtered audit entries as CSV",
		Long: "Writes every entry matching the filter as CSV, newest first. " +
			"Without --out or --dir the document goes to stdout.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := ff.filter()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			p, err := app.NewPipeline(ctx, rt.cfg, rt.log, nil)
			if err != nil {
				return err
			}
			defer p.Close(ctx) //nolint:errcheck

			data, err := p.Query.Export(ctx, filter)
			if err != nil {
				return err
			}

			if _, err := p.Actions.RecordAction(ctx, audit.ActionInput{
				Kind:       domain.ActionExport,
				EntityName: "audit_logs",
				Details:    audit.FieldDetails(map[string]any{"source": "auditctl"}),
			}); err != nil {
				rt.log.WarnContext(ctx, "record export action", slog.String("error", err.Error()))
			}

			if dir != "" && out == "" {
				out = filepath.Join(dir, audit.ExportFilename(time.Now()))
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", out)
			return nil
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Write the CSV to this file")
	cmd.Flags().StringVar(&dir, "dir", "", "Write the CSV to this directory under the standard export file name")

	return cmd
}

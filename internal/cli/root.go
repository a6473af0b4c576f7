// Package cli implements the auditctl command line tool.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/recordkeeper-audit/internal/app"
	"github.com/heartmarshall/recordkeeper-audit/internal/config"
)

type runtime struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

// NewRootCommand builds the auditctl command tree. Command output goes to out;
// logs go to stderr.
func NewRootCommand(out io.Writer) *cobra.Command {
	rt := &runtime{configPath: os.Getenv("CONFIG_PATH")}

	root := &cobra.Command{
		Use:           "auditctl",
		Short:         "Query, export and migrate the audit log",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.LoadFrom(rt.configPath)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = app.NewLogger(cfg.Log)
			return nil
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file (default $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(
		newExportCommand(rt),
		newQueryCommand(rt),
		newMigrateCommand(rt),
		newVersionCommand(),
	)

	return root
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/recordkeeper-audit/internal/app"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show auditctl version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "auditctl %s\n", app.BuildVersion())
			return err
		},
	}
}

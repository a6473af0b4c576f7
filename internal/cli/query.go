package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/recordkeeper-audit/internal/app"
	"github.com/heartmarshall/recordkeeper-audit/internal/service/audit"
)

func newQueryCommand(rt *runtime) *cobra.Command {
	var (
		ff       filterFlags
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print one page of filtered audit entries as JSON",
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

			result, err := p.Query.Query(ctx, audit.QueryInput{
				Filter:   filter,
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	ff.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 50, "Entries per page")

	return cmd
}

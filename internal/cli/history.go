package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded plan runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}
			if limit <= 0 {
				return fmt.Errorf("limit must be positive")
			}
			rec := app.openRecorder()
			defer rec.Close()

			runs, err := rec.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			var b strings.Builder
			if len(runs) == 0 {
				b.WriteString("No recorded runs")
			}
			for _, r := range runs {
				id := r.ID
				if len(id) > 8 {
					id = id[:8]
				}
				b.WriteString(fmt.Sprintf("%s  %-4s %-16s scheduled %d, deferred %d, final equity $%s  (%s)\n",
					id, r.Trigger, r.Profile, r.Scheduled, r.Deferred,
					humanize.Comma(int64(r.FinalEquity)), humanize.Time(r.Timestamp)))
			}
			return app.print(cmd, runs, strings.TrimRight(b.String(), "\n"))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs")
	return cmd
}

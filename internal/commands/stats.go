package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtparse/internal/report"
	"github.com/cleared-dev/stmtparse/internal/runlog"
	"github.com/cleared-dev/stmtparse/internal/store"
)

func newStatsCommand(root *rootOptions) *cobra.Command {
	var last bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show parse totals and failure rates from the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			entries, err := runlog.Read(p.path(p.cfg.Paths.Logs))
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "no runs logged")
				return nil
			}

			if err := report.WriteStats(out, "all runs", runlog.Summarise(entries)); err != nil {
				return err
			}
			if last {
				if err := report.WriteStats(out, "last run", runlog.Summarise(runlog.LastRun(entries))); err != nil {
					return err
				}
			}

			// Only report the archive when one exists; opening would create it.
			dbPath := p.path(p.cfg.Paths.Database)
			if _, err := os.Stat(dbPath); err != nil {
				return nil
			}
			archive, err := store.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer archive.Close()

			statements, transactions, err := archive.Counts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "archive: %d statements | %d transactions\n", statements, transactions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&last, "last", false, "also show the most recent run")

	return cmd
}

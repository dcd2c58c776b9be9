package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtparse/internal/report"
	"github.com/cleared-dev/stmtparse/internal/store"
)

func newBalancesCommand(root *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "List archived statement balances and continuity breaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.load(cmd)
			if err != nil {
				return err
			}

			archive, err := store.Open(cmd.Context(), p.path(p.cfg.Paths.Database))
			if err != nil {
				return err
			}
			defer archive.Close()

			balances, err := archive.ListBalances(cmd.Context())
			if err != nil {
				return err
			}
			breaks := store.Continuity(balances)
			if err := report.WriteBalances(cmd.OutOrStdout(), balances, breaks, p.cfg.Output.Currency); err != nil {
				return err
			}

			if strict && len(breaks) > 0 {
				return fmt.Errorf("%d continuity break(s)", len(breaks))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when statements do not join up")

	return cmd
}

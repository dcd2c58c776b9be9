package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtparse/internal/extract"
)

func newTablesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <pdf>",
		Short: "Print the tables extracted from a statement PDF as CSV",
		Long: "Print every extracted table as CSV, one block per page. Use it to tune\n" +
			"the extraction settings and column separators of a new layout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.load(cmd)
			if err != nil {
				return err
			}
			return runTables(cmd.Context(), extract.NewPDFReader(p.cfg.ExtractOptions()), args[0], cmd.OutOrStdout())
		},
	}
}

func runTables(ctx context.Context, r *extract.PDFReader, path string, w io.Writer) error {
	tables, err := r.Tables(ctx, path)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		fmt.Fprintf(w, "no tables found in %s\n", path)
		return nil
	}

	for _, t := range tables {
		fmt.Fprintf(w, "# table %d, page %d, %d columns\n", t.Index, t.Page, t.NumCols())
		if err := extract.WriteTableCSV(w, t); err != nil {
			return fmt.Errorf("table %d: %w", t.Index, err)
		}
	}
	return nil
}

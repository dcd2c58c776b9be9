package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/stmtparse/internal/importer"
	"github.com/cleared-dev/stmtparse/internal/layout"
	"github.com/cleared-dev/stmtparse/internal/merge"
	"github.com/cleared-dev/stmtparse/internal/output"
	"github.com/cleared-dev/stmtparse/internal/report"
	"github.com/cleared-dev/stmtparse/internal/runlog"
	"github.com/cleared-dev/stmtparse/internal/statement"
	"github.com/cleared-dev/stmtparse/internal/store"
	"github.com/cleared-dev/stmtparse/internal/validate"
)

type parseOptions struct {
	workers int
	strict  bool
	dryRun  bool
	source  string
	dir     string
}

func newParseCommand(root *rootOptions) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse [statements...]",
		Short: "Parse statements into transactions",
		Long: "Parse every statement in the statements directory, or only the named ones.\n" +
			"Writes results, failed tables, the run log and the archive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.load(cmd)
			if err != nil {
				return err
			}
			return runParse(cmd.Context(), p, args, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.workers, "workers", 0, "statements parsed in parallel (default from config)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a statement breaks an invariant")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and report without writing anything")
	cmd.Flags().StringVar(&opts.source, "source", "pdf", "input format: pdf, or csv to replay saved tables")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "input directory (default paths.statements)")

	return cmd
}

func runParse(ctx context.Context, p *project, names []string, opts parseOptions, stdout io.Writer) error {
	cfg := p.cfg

	l := layout.DefaultRegistry().Get(cfg.Layout)
	if l == nil {
		return fmt.Errorf("unknown layout %q", cfg.Layout)
	}
	strategy, err := merge.ParseStrategy(cfg.Merge.Strategy)
	if err != nil {
		return err
	}
	formats, err := output.ParseFormats(cfg.Output.Formats)
	if err != nil {
		return err
	}
	src := importer.DefaultRegistry(cfg.ExtractOptions()).Get(opts.source)
	if src == nil {
		return fmt.Errorf("unknown source %q", opts.source)
	}

	dir := p.path(cfg.Paths.Statements)
	if opts.dir != "" {
		dir = p.path(opts.dir)
	}
	files, err := src.Scan(dir)
	if err != nil {
		return err
	}
	files, err = importer.Select(files, names)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(stdout, "no statements found in %s\n", dir)
		return nil
	}

	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Workers
	}

	parser := statement.NewParser(l, merge.Resolver{Strategy: strategy}, p.log)
	results := make([]*statement.Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			p.log.WithFields(logrus.Fields{"statement": f.Name, "size": f.Size}).Debug("reading statement")
			tables, err := src.Tables(gctx, f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", f.Name, err)
			}
			res, err := parser.Parse(gctx, f.Name, tables)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", f.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var archive *store.Store
	if !opts.dryRun {
		archive, err = store.Open(ctx, p.path(cfg.Paths.Database))
		if err != nil {
			return err
		}
		defer archive.Close()
	}

	writer := output.Writer{
		Dir:     p.path(cfg.Paths.Results),
		Formats: formats,
		Header:  cfg.Output.CSVHeader,
	}
	runID := uuid.New()
	now := time.Now().UTC()

	var total report.Counts
	var entries []runlog.Entry
	invalid := 0
	for _, res := range results {
		st := res.Statement
		log := p.log.WithField("statement", st.Name)

		counts := report.Counts{Success: res.Success, Failure: res.Failure, Ignore: res.Ignore}
		fmt.Fprintln(stdout, report.StatementLine(st.Name, counts))
		total.Add(counts)

		violations := validate.Statement(st)
		for _, v := range violations {
			log.Warn(v.Error())
		}
		if len(violations) > 0 {
			invalid++
		}

		entries = append(entries, runlog.Entry{
			RunID:        runID,
			Timestamp:    now,
			Statement:    st.Name,
			Success:      res.Success,
			Failure:      res.Failure,
			Ignore:       res.Ignore,
			Transactions: len(st.Transactions),
			RowErrors:    len(res.RowErrors),
			Invalid:      len(violations),
		})

		if opts.dryRun {
			continue
		}
		if err := saveResult(ctx, p, writer, archive, runID, res); err != nil {
			return err
		}
	}
	fmt.Fprintln(stdout, report.TotalLine(total))

	if !opts.dryRun {
		if err := runlog.Append(p.path(cfg.Paths.Logs), entries); err != nil {
			return fmt.Errorf("writing run log: %w", err)
		}
	}

	if opts.strict && invalid > 0 {
		return fmt.Errorf("%d statement(s) failed validation", invalid)
	}
	return nil
}

func saveResult(ctx context.Context, p *project, w output.Writer, archive *store.Store, runID uuid.UUID, res *statement.Result) error {
	st := res.Statement

	paths, err := w.Write(st)
	if err != nil {
		return fmt.Errorf("writing results of %s: %w", st.Name, err)
	}
	for _, path := range paths {
		p.log.WithField("statement", st.Name).Debugf("wrote %s", path)
	}

	for _, t := range res.Failures() {
		path, err := output.SaveFailure(p.path(p.cfg.Paths.Failures), st.Name, t)
		if err != nil {
			return err
		}
		p.log.WithFields(logrus.Fields{"statement": st.Name, "table": t.Index}).Infof("failed table saved to %s", path)
	}

	if err := archive.SaveStatement(ctx, runID, st); err != nil {
		return fmt.Errorf("archiving %s: %w", st.Name, err)
	}
	return nil
}

package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtparse/internal/buildinfo"
	"github.com/cleared-dev/stmtparse/internal/config"
)

type rootOptions struct {
	repo     string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "stmtparse",
		Short:   "Parse bank statement PDFs into transactions",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides log_level in "+config.FileName)

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newParseCommand(opts))
	rootCmd.AddCommand(newTablesCommand(opts))
	rootCmd.AddCommand(newBalancesCommand(opts))
	rootCmd.AddCommand(newStatsCommand(opts))

	return rootCmd
}

// project is a loaded project directory.
type project struct {
	root string
	cfg  *config.Config
	log  *logrus.Logger
}

func (p *project) path(rel string) string {
	return config.Resolve(p.root, rel)
}

// load reads the project config, applies environment overrides and builds
// the logger. A missing config file means defaults.
func (o *rootOptions) load(cmd *cobra.Command) (*project, error) {
	root, err := filepath.Abs(o.repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return &project{root: root, cfg: cfg, log: log}, nil
}

func newLogger(level, format string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return log, nil
}

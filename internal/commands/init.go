package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtparse/internal/config"
	"github.com/cleared-dev/stmtparse/internal/layout"
)

func newInitCommand() *cobra.Command {
	var layoutName string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new statement parsing project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, layoutName); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized stmtparse project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&layoutName, "layout", "ocbc", "statement layout")

	return cmd
}

func runInit(dir, layoutName string) error {
	if layout.DefaultRegistry().Get(layoutName) == nil {
		return fmt.Errorf("unknown layout %q", layoutName)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default()
	cfg.Layout = layoutName

	// Create directory structure.
	dirs := []string{
		cfg.Paths.Statements,
		cfg.Paths.Results,
		cfg.Paths.Failures,
		cfg.Paths.Logs,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Statements hold personal data and stay out of version control.
	gitignore := cfg.Paths.Statements + "/\n" + cfg.Paths.Results + "/\n" +
		cfg.Paths.Failures + "/\n" + cfg.Paths.Database + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, cfg.Paths.Statements, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	return nil
}

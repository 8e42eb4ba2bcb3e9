package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerdash/ledgerdash/internal/config"
	"github.com/ledgerdash/ledgerdash/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a default ledgerdash.json",
		Long: `Create ledgerdash.json with the default settings in dir, or the
working directory when dir is omitted.

Examples:
  ledgerdash init
  ledgerdash init ./dashboard --name=household`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := runInit(dir, name, force)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing ledgerdash.json")

	return cmd
}

func runInit(dir, name string, force bool) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", errors.Newf(errors.CategoryCLI, "create %s: %v", abs, err)
	}

	path := filepath.Join(abs, config.ConfigFileName)
	if !force && config.Exists(abs) {
		return "", errors.Newf(errors.CategoryCLI, "%s already exists", path).
			WithSuggestion("Pass --force to overwrite it")
	}

	cfg := config.New()
	cfg.Name = name
	if cfg.Name == "" {
		cfg.Name = filepath.Base(abs)
	}
	if err := cfg.SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}

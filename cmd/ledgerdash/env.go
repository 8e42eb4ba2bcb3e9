package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ledgerdash/ledgerdash/internal/clientenv"
	"github.com/ledgerdash/ledgerdash/internal/config"
)

func envCmd() *cobra.Command {
	var (
		mode   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Show the variables exposed to the client",
		Long: `Show the environment variables the dev server exposes to the client.

Variables are read from .env, .env.local, .env.<mode> and
.env.<mode>.local, then the process environment, and kept only when
their name starts with one of the configured prefixes.

Examples:
  ledgerdash env
  ledgerdash env --mode=production --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.Mode = mode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runEnv(cmd.OutOrStdout(), cfg, nil, asJSON)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Mode selecting the .env.<mode> files")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the values as the client sees them")

	return cmd
}

func runEnv(out io.Writer, cfg *config.Config, environ []string, asJSON bool) error {
	env, err := clientenv.Collect(clientenv.Options{
		Dir:      cfg.Dir(),
		Mode:     cfg.Mode,
		Prefixes: cfg.EnvPrefix,
		Environ:  environ,
	})
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, env.Values())
	}

	fmt.Fprintf(out, "Mode: %s\n", env.Mode())
	if env.Len() == 0 {
		fmt.Fprintf(out, "No variables with prefix %v\n", cfg.EnvPrefix)
		return nil
	}
	for _, key := range env.Keys() {
		value, _ := env.Get(key)
		fmt.Fprintf(out, "%s=%s  %s\n", key, value, paint("90", "("+env.Source(key)+")"))
	}
	return nil
}

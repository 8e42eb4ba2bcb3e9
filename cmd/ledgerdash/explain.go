package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerdash/ledgerdash/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Explain an error code",
		Long: `Explain an error code, or list every code when none is given.

Examples:
  ledgerdash explain
  ledgerdash explain E301`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listCodes(cmd.OutOrStdout())
				return nil
			}
			return explainCode(cmd.OutOrStdout(), args[0])
		},
	}
}

func listCodes(out io.Writer) {
	for _, code := range errors.GetAllCodes() {
		t, _ := errors.GetTemplate(code)
		fmt.Fprintf(out, "%s  %-8s %s\n", code, t.Category, t.Message)
	}
}

func explainCode(out io.Writer, code string) error {
	code = strings.ToUpper(code)
	t, ok := errors.GetTemplate(code)
	if !ok {
		return errors.Newf(errors.CategoryCLI, "unknown error code %q", code).
			WithSuggestion("Run `ledgerdash explain` to list the codes")
	}

	fmt.Fprintf(out, "%s: %s\n", code, t.Message)
	fmt.Fprintf(out, "Category: %s\n", t.Category)
	if t.Detail != "" {
		fmt.Fprintf(out, "\n%s\n", t.Detail)
	}
	return nil
}

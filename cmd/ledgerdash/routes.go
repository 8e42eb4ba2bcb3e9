package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerdash/ledgerdash/internal/app"
	"github.com/ledgerdash/ledgerdash/internal/errors"
	"github.com/ledgerdash/ledgerdash/pkg/router"
)

func routesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long: `List the dashboard's routes in registration order.

Examples:
  ledgerdash routes
  ledgerdash routes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(cmd.OutOrStdout(), app.Table(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func runRoutes(out io.Writer, table *router.Table, asJSON bool) error {
	routes := table.Routes()
	if asJSON {
		return writeJSON(out, routes)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATH\tVIEW\tPROPS")
	for _, route := range routes {
		props := "-"
		if route.PropsFromParams {
			props = "params"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", route.Name, route.Path, route.View, props)
	}
	return tw.Flush()
}

func resolveCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a path against the route table",
		Long: `Resolve a URL path and print the matched route and parameters.

Exits with an error when no route matches.

Examples:
  ledgerdash resolve /account/42
  ledgerdash resolve "/accounts/?archived=true" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.OutOrStdout(), app.Table(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

// resolveResult is the JSON form of a resolution.
type resolveResult struct {
	Match      router.Match `json:"match"`
	Props      any          `json:"props,omitempty"`
	PropsError string       `json:"propsError,omitempty"`
}

func runResolve(out io.Writer, table *router.Table, path string, asJSON bool) error {
	match, ok := table.Resolve(path)
	if !ok {
		return errors.FromRouteError(&router.NotFoundError{Path: path}).
			WithSuggestion("Run `ledgerdash routes` to list the registered paths")
	}

	result := resolveResult{Match: match}
	props, err := app.Props(match)
	if err != nil {
		result.PropsError = err.Error()
	} else {
		result.Props = props
	}

	if asJSON {
		return writeJSON(out, result)
	}

	fmt.Fprintf(out, "Route:  %s\n", match.Name)
	fmt.Fprintf(out, "View:   %s\n", match.View)
	for _, key := range sortedKeys(match.Params) {
		fmt.Fprintf(out, "Param:  %s=%s\n", key, match.Params[key])
	}
	switch {
	case result.PropsError != "":
		fmt.Fprintf(out, "Props:  %s\n", paint("33", "invalid: "+result.PropsError))
	case result.Props != nil:
		data, err := json.Marshal(result.Props)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Props:  %s\n", data)
	}
	return nil
}

func pathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path <name> [key=value...]",
		Short: "Build the path of a named route",
		Long: `Build the URL path for a named route from parameter values.

Examples:
  ledgerdash path Dashboard
  ledgerdash path AccountDetail id=42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			return runPath(cmd.OutOrStdout(), app.Table(), args[0], params)
		},
	}

	return cmd
}

func runPath(out io.Writer, table *router.Table, name string, params map[string]string) error {
	path, err := table.BuildPath(name, params)
	if err != nil {
		return errors.FromRouteError(err)
	}
	fmt.Fprintln(out, path)
	return nil
}

// parseParams parses key=value arguments.
func parseParams(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.Newf(errors.CategoryCLI, "invalid parameter %q", arg).
				WithSuggestion("Pass parameters as key=value, e.g. id=42")
		}
		params[key] = value
	}
	return params, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

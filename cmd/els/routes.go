package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/elysium/pkg/autorouter"
)

type routeRow struct {
	Method  string   `json:"method" yaml:"method"`
	Pattern string   `json:"pattern" yaml:"pattern"`
	Kind    string   `json:"kind" yaml:"kind"`
	File    string   `json:"file" yaml:"file"`
	Layouts []string `json:"layouts,omitempty" yaml:"layouts,omitempty"`
	Params  []string `json:"params,omitempty" yaml:"params,omitempty"`
}

func newRoutesCmd(v *viper.Viper) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes [dir]",
		Short: "List the routes derived from a routes directory",
		Long: `Routes scans the routes directory and prints one line per routable file.
Modules register their own methods at runtime and are listed with method *.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
			}
			dir := routesDir(v)
			if len(args) == 1 {
				dir = args[0]
			}
			cmd.SilenceUsage = true

			descs, err := autorouter.Scan(dir)
			if err != nil {
				return err
			}
			return printRoutes(cmd.OutOrStdout(), format, rows(descs))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "table", "output format: table, json or yaml")
	return cmd
}

func rows(descs []autorouter.Descriptor) []routeRow {
	out := make([]routeRow, 0, len(descs))
	for _, d := range descs {
		method := "*"
		if len(d.Methods) > 0 {
			method = strings.Join(d.Methods, ",")
		}
		out = append(out, routeRow{
			Method:  method,
			Pattern: d.Pattern,
			Kind:    d.Kind.String(),
			File:    d.File,
			Layouts: d.Layouts,
			Params:  d.Params,
		})
	}
	return out
}

func printRoutes(w io.Writer, format string, routes []routeRow) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(routes)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(routes); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATTERN\tKIND\tFILE")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Method, r.Pattern, r.Kind, r.File)
	}
	return tw.Flush()
}

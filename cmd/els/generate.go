package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmitrymomot/elysium/pkg/scaffold"
)

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "generate <type> <name>",
		Aliases: []string{"g"},
		Short:   "Generate a page, api module, model or resource",
		Long: `Generate writes scaffold files below the project root.

Types:
  page, p      routes/<names>/+page.els
  api, a       routes/api/<names>/+server.go
  model, m     models/<name>.go
  resource, r  model, api module over a store, and page`,
		Example: `  els generate page about
  els g r post`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"page", "api", "model", "resource"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := scaffold.ParseKind(args[0])
			if err != nil {
				return err
			}
			if _, err := scaffold.NewNames(args[1]); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			gen := scaffold.Generator{
				Root:      v.GetString("root"),
				RoutesDir: v.GetString("routes"),
				Force:     force,
				Out:       cmd.OutOrStdout(),
			}
			_, err = gen.Generate(kind, args[1])
			if errors.Is(err, scaffold.ErrExists) {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")
	return cmd
}

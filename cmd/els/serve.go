package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmitrymomot/elysium"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routes directory",
		Long: `Serve loads the .env files from the project root and serves the pages of
the routes directory (ROUTES_DIR unless --routes is given). Go modules and loaders need a compiled manifest, so
they are skipped here; run your own main for the full application.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root := v.GetString("root")
			cfg, env, err := elysium.LoadConfig(root)
			if err != nil {
				return err
			}
			if v.IsSet("routes") || cfg.RoutesDir == "" {
				cfg.RoutesDir = routesDir(v)
			} else if !filepath.IsAbs(cfg.RoutesDir) {
				cfg.RoutesDir = filepath.Join(root, cfg.RoutesDir)
			}
			if addr := v.GetString("addr"); addr != "" {
				cfg.HTTP.Addr = addr
			}
			if v.IsSet("watch") {
				watch := v.GetBool("watch")
				cfg.Watch = &watch
			}
			cmd.SilenceUsage = true

			app, err := elysium.New(cfg, elysium.WithEnv(env))
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address (default HTTP_ADDR or :8080)")
	cmd.Flags().Bool("watch", false, "recompile templates on change (default on in development)")
	_ = v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("watch", cmd.Flags().Lookup("watch"))
	return cmd
}

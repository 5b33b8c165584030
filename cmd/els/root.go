package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// newRootCmd builds the command tree with its own viper instance so tests
// can run commands side by side.
//
// Settings come from flags, then ELS_* environment variables, then
// els.yaml in the project root:
//
//	root: .
//	routes: routes
//	addr: :8080
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:     "els",
		Short:   "Elysium project tool",
		Long:    "els generates pages, API modules, models and resources, lists the routes derived from a routes directory and serves it.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is els.yaml in the project root)")
	cmd.PersistentFlags().String("root", ".", "project root")
	cmd.PersistentFlags().String("routes", "routes", "routes directory, relative to the project root")
	_ = v.BindPFlag("root", cmd.PersistentFlags().Lookup("root"))
	_ = v.BindPFlag("routes", cmd.PersistentFlags().Lookup("routes"))

	cmd.AddCommand(
		newGenerateCmd(v),
		newRoutesCmd(v),
		newServeCmd(v),
	)
	return cmd
}

func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("ELS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("els")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("root"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// routesDir resolves the routes setting against the project root.
func routesDir(v *viper.Viper) string {
	routes := v.GetString("routes")
	if filepath.IsAbs(routes) {
		return routes
	}
	return filepath.Join(v.GetString("root"), routes)
}

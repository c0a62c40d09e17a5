package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"Community_Feed/internal/config"
	"Community_Feed/internal/pkg"
)

var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "feed",
		Short:        "Community feed backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (yaml, json or toml)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newDBCommand())
	return root
}

// loadConfig 读取配置并按配置构造 logger
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := pkg.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	return cfg, log, nil
}

package main

import (
	"github.com/spf13/cobra"

	"Community_Feed/internal/pkg"
	"Community_Feed/internal/repository/rdb"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := rdb.Open(cfg.Database.Driver, cfg.Database.DSN, pkg.NewRealClock())
			if err != nil {
				return err
			}
			defer rdb.Close(db)

			// 自动建表
			if err := rdb.AutoMigrate(db); err != nil {
				return err
			}
			log.Info("migration complete", "driver", cfg.Database.Driver)
			return nil
		},
	}
}

func newDBCommand() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance commands",
	}
	dbCmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create the configured database if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			return rdb.CreateDatabase(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN, log)
		},
	})
	return dbCmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
)

func newMigrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新数据表",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			cfg.Database.AutoMigrate = false
			db, cleanup, err := provideDB(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := rdb.AutoMigrate(db); err != nil {
				return err
			}
			log.Info("数据库迁移完成")
			return nil
		},
	}
}

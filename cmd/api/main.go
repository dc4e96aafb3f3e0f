// librarydesk 图书馆借阅管理服务
//
//	librarydesk serve         启动HTTP服务(默认)
//	librarydesk migrate       执行数据库迁移
//	librarydesk create-admin  创建管理员账号
//	librarydesk seed          从CSV导入图书
//	librarydesk consume       消费借还事件
//
// @title                       LibraryDesk API
// @version                     1.0
// @description                 图书馆借阅管理:图书、会员、借还与逾期罚金
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/xiebiao/librarydesk/docs"
	"github.com/xiebiao/librarydesk/internal/infrastructure/config"
	"github.com/xiebiao/librarydesk/pkg/logger"
	"github.com/xiebiao/librarydesk/pkg/response"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "librarydesk",
		Short:         "图书馆借阅管理服务",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径(默认查找./config/config.yaml)")

	root.AddCommand(
		newServeCmd(&configFile),
		newMigrateCmd(&configFile),
		newCreateAdminCmd(&configFile),
		newSeedCmd(&configFile),
		newConsumeCmd(&configFile),
	)
	return root
}

// bootstrap 加载配置并创建logger,所有子命令共用
func bootstrap(configFile string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	response.SetLogger(log)
	return cfg, log, nil
}

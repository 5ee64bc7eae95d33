package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akselna/utveksle.no-sub001/config"
	"github.com/akselna/utveksle.no-sub001/internal/repository"
	"github.com/akselna/utveksle.no-sub001/internal/service"
	"github.com/akselna/utveksle.no-sub001/pkg/database"
	"github.com/akselna/utveksle.no-sub001/pkg/jwt"
	applogger "github.com/akselna/utveksle.no-sub001/pkg/logger"
)

// operator 命令行以管理员视角访问课程库，不绑定具体用户
var operator = repository.Viewer{Privileged: true}

// cli 子命令共享的运行时依赖，在 PersistentPreRunE 中按 --config 初始化
type cli struct {
	configPath string

	cfg    *config.Config
	svc    *service.Service
	logger *zap.Logger
	db     *gorm.DB
}

func newRootCmd(app *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "coursebank",
		Short: "课程库运维命令行",
		Long: `coursebank 直接连接课程库数据库，以管理员身份执行运维操作：
检索课程对照、查看待审核队列、批量审核、导出 Excel 以及开通管理员。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.svc != nil {
				return nil
			}
			return app.connect()
		},
	}
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "配置文件路径（默认查找 ./config/config.yaml）")

	root.AddCommand(
		newSearchCmd(app),
		newPendingCmd(app),
		newApproveCmd(app),
		newExportCmd(app),
		newPromoteCmd(app),
	)
	return root
}

// connect 加载配置、连接数据库并组装 Service
func (a *cli) connect() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	// 只输出警告以上级别，避免干扰表格
	logCfg := cfg.Log
	logCfg.Level = "warn"
	logger, err := applogger.NewLogger(&logCfg, "utveksle-coursebank")
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, logCfg.Level, logger)
	if err != nil {
		_ = logger.Sync()
		return fmt.Errorf("数据库连接失败: %w", err)
	}

	// 不连接 Redis：筛选项缓存不刷新，角色变更也不吊销旧 Token
	repo := repository.NewRepository(db)
	a.cfg = cfg
	a.logger = logger
	a.db = db
	a.svc = service.NewService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, logger)
	return nil
}

func (a *cli) close() {
	if a.db != nil {
		if err := database.Close(a.db); err != nil && a.logger != nil {
			a.logger.Warn("关闭数据库连接失败", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

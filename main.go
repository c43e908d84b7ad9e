// @title Study Assistant 测验个性化 API
// @version 1.0
// @description 学习助手的测验偏好、表现分析、个性化生成与会话状态服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"fmt"
	"log"
	"study_assistant_backend/internal/app"
	"study_assistant_backend/internal/config"
	"study_assistant_backend/internal/util"
	"study_assistant_backend/pkg/database"
	"study_assistant_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	issueToken := flag.Uint("issue-token", 0, "为指定用户签发 JWT 并输出，用于本地调试")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *issueToken > 0 {
		token, err := util.GenerateJWT(*issueToken, "", cfg.JWT.Secret, cfg.JWT.ExpireTime)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.InitLogger(cfg)
		defer logger.Log.Sync()

		db, err := database.InitDB(&cfg.Database, false)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		return
	}

	app.NewApp(cfg, *configDir).Run()
}

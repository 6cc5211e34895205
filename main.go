// @title NARRAPREP API
// @version 1.0
// @description Backend for the NARRAPREP test-prep application.

// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"
	"narraprep_backend/internal/app"
	"narraprep_backend/internal/config"
	"narraprep_backend/pkg/configwatcher"
	"narraprep_backend/pkg/database"
	"narraprep_backend/pkg/logger"
	"path/filepath"

	"go.uber.org/zap"
)

const configDir = "configs"

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "run schema migration and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	if cfg.MigrateOnly {
		logger.InitLogger(cfg)
		defer logger.Log.Sync()
		store := database.NewHandle(&cfg.Database, cfg.Server.Mode)
		if _, err := store.DB(context.Background()); err != nil {
			logger.Log.Fatal("Migration failed", zap.Error(err))
		}
		store.Close()
		logger.Log.Info("Migration finished")
		return
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := configwatcher.WatchConfig(ctx, filepath.Join(configDir, "config.yaml"), application.ReloadConfig); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	application.Run()
}

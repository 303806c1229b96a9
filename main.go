package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"travelgo/internal/agent"
	"travelgo/internal/api"
	"travelgo/internal/config"
	"travelgo/internal/logger"
	"travelgo/internal/redis"
	"travelgo/internal/service/ai"
	"travelgo/internal/storage"
	"travelgo/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("TRAVELGO_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if cfgPath == "" && errors.Is(err, os.ErrNotExist) {
			// Env-only setup; everything has a usable default.
			cfg = &config.Config{}
			cfg.ApplyDefaults()
		} else {
			log.Fatalf("load config: %v", err)
		}
	}

	zlog := logger.New(cfg.BasicConfig.LogLevel, cfg.BasicConfig.LogFormat)
	defer zlog.Sync()

	var history *storage.History
	dbType := os.Getenv("TRAVELGO_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	if _, ok := cfg.Databases[dbType]; ok {
		db, err := storage.Open(dbType, cfg)
		if err != nil {
			zlog.Fatal("open database", zap.String("driver", dbType), zap.Error(err))
		}
		defer db.Close()
		if err := storage.Migrate(db, dbType); err != nil {
			zlog.Fatal("migrate database", zap.Error(err))
		}
		history = storage.NewHistory(db)
	} else {
		zlog.Info("query history disabled: no database configured")
	}

	rdb, err := redis.NewClient(cfg)
	if err != nil {
		zlog.Fatal("create redis client", zap.Error(err))
	}
	defer rdb.Close()

	ctx := context.Background()
	deps := &ai.ToolDeps{Cache: rdb, Logger: zlog}
	tools := ai.InitToolsChain(deps)

	provider := cfg.BasicConfig.DefaultProvider
	chatModel, err := ai.LoadModel(ctx, cfg, provider, "")
	if err != nil {
		zlog.Fatal("load chat model", zap.String("provider", provider), zap.Error(err))
	}

	planner, err := agent.New(ctx, chatModel, tools, agent.Config{
		SystemPrompt: ai.SystemPrompt,
		MaxSteps:     cfg.BasicConfig.AgentMaxSteps,
		Logger:       zlog,
	})
	if err != nil {
		zlog.Fatal("init agent", zap.Error(err))
	}

	dispatcher := worker.NewDispatcher(worker.DispatcherConfig{
		MinWorkers:        cfg.BasicConfig.MinWorkers,
		MaxWorkers:        cfg.BasicConfig.MaxWorkers,
		QueueSize:         cfg.BasicConfig.QueueSize,
		WorkerIdleTimeout: time.Duration(cfg.BasicConfig.WorkerIdleTimeout) * time.Minute,
	}, planner)

	handler := api.NewHandler(dispatcher, history, cfg, provider, zlog)

	router := gin.Default()
	handler.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	zlog.Info("starting server",
		zap.String("addr", addr),
		zap.String("provider", provider),
		zap.Int("tools", len(tools)))
	if err := router.Run(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

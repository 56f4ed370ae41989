package main

import (
	"context"

	"github.com/legendsansar/legendsansar/internal/api"
	"github.com/legendsansar/legendsansar/internal/auth"
	"github.com/legendsansar/legendsansar/internal/config"
	"github.com/legendsansar/legendsansar/internal/db"
	"github.com/legendsansar/legendsansar/internal/models"
	"github.com/legendsansar/legendsansar/internal/storage"
	"github.com/legendsansar/legendsansar/internal/storygen"
	"github.com/legendsansar/legendsansar/pkg/logger"
	"github.com/legendsansar/legendsansar/pkg/utils"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	auth.SetSecret(cfg.JWTSecret)

	log, err := logger.NewLogger()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	redisClient, err := db.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize Redis")
		panic(err)
	}
	defer redisClient.Close(log)

	gormDB, err := db.NewDB(ctx, cfg.DatabaseURL, models.RegisterModels(), db.WithLogger(log))
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize PostgreSQL database")
		panic("DB init failed")
	}
	defer db.CloseDB(gormDB, log)

	assets, err := storage.NewAssetStore(ctx, cfg)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize asset store")
		panic("Asset store init failed")
	}

	app := api.New(api.Deps{
		Config:  cfg,
		Logger:  log,
		DB:      gormDB,
		Redis:   redisClient,
		Assets:  assets,
		Stories: storygen.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel),
	})

	log.Info(ctx).WithMeta(utils.Map{"addr": cfg.ServerAddr}).Logs("Legend Sansar API listening")
	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Server stopped")
	}
}

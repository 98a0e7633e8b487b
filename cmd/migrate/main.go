package main

import (
	"context"
	"os"

	"github.com/Jeng2004/t-double-project-sub000/config"
	"github.com/Jeng2004/t-double-project-sub000/internal/migrate"
	"github.com/Jeng2004/t-double-project-sub000/pkg/database"
	"github.com/Jeng2004/t-double-project-sub000/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	if err := migrate.Run(context.Background(), db, log, migrate.DefaultOptions()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	log.Info("migration completed")
}

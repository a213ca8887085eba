package main

import (
	"context"
	"log"

	"gotally/internal"
	"gotally/internal/config"
	"gotally/internal/container"
	"gotally/internal/session"
	"gotally/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))
	internal.SetDefault(logger)
	gin.SetMode(appConfig.Server.GinMode)

	ctx := context.Background()
	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Close()

	sess := session.New()
	if restored, err := appContainer.Datasets.Restore(ctx, sess); err != nil {
		logger.Warn("Failed to restore saved dataset: %v", err)
	} else if restored {
		logger.Info("Restored saved dataset %q", sess.Filename())
	}

	server := ui.NewServer(ui.Services{
		Datasets:      appContainer.Datasets,
		Configuration: appContainer.Configuration,
		Dashboard:     appContainer.Dashboard,
		Analysis:      appContainer.Analysis,
		Query:         appContainer.Query,
	}, sess, logger)

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

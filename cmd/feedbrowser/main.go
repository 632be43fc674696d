package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andresuchdata/stockweeks/internal/config"
	"github.com/andresuchdata/stockweeks/internal/drive"
	"github.com/andresuchdata/stockweeks/pkg/logger"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	driveService, err := drive.NewService(context.Background(), cfg.Drive.CredentialsJSON)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	folderID := cfg.Drive.FolderID
	if folderID == "" && cfg.Drive.FolderPath != "" {
		if folderID, err = driveService.FindFolderByPath(ctx, cfg.Drive.FolderPath); err != nil {
			logger.Log.Fatal().Err(err).Str("path", cfg.Drive.FolderPath).Msg("Failed to resolve Drive folder")
		}
	}

	r := mux.NewRouter()
	NewHandler(driveService, folderID).RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Log.Info().Str("addr", addr).Str("folder", folderID).Msg("Feed browser starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Log.Fatal().Err(err).Msg("Feed browser stopped")
	}
}

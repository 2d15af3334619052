package cmd

import (
	"context"
	"net/http"

	"bookcart/api"
	"bookcart/config"
	"bookcart/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App Application structure
type App struct {
	config *config.Config
	router *api.Router
	server *http.Server
	db     *gorm.DB
}

// Run Start the HTTP server and block until it stops
func (a *App) Run() error {
	logger.Info("Server starting",
		zap.String("addr", a.server.Addr),
		zap.String("env", a.config.App.Env))

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown Gracefully stop the server and close resources
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server")

	if err := a.server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Error("Failed to close database", zap.Error(err))
			}
		}
	}

	logger.Info("Server stopped")
	return logger.Sync()
}

// GetEngine Get the Gin engine (used by tests)
func (a *App) GetEngine() http.Handler {
	return a.router.GetEngine()
}

package app

import (
	"io"
	"log/slog"

	"github.com/vk/swix/internal/config"
	"github.com/vk/swix/internal/hcl_adapter"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader
}

// NewApp is the constructor for the main application. It returns an App with
// its own isolated logger writing to outW. Variable files are read with the
// HCL loader.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: hcl_adapter.NewLoader(),
	}
}

// Config returns the configuration the app was built with.
func (a *App) Config() *Config {
	return a.config
}

package app

import (
	"io"
	"log/slog"
	"os"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle. The data output (the coverage vector) and the log output are
// separate writers: the vector must stay machine-readable even with
// logging enabled.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	stdin  io.Reader
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger writing to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		stdin:  os.Stdin,
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-editor/internal/application/editor"
	"github.com/garyjia/invoice-editor/internal/config"
	"github.com/garyjia/invoice-editor/internal/domain/entity"
	httpapi "github.com/garyjia/invoice-editor/internal/interfaces/http"
	"github.com/garyjia/invoice-editor/internal/render"
	"github.com/garyjia/invoice-editor/internal/snapshot"
	"github.com/garyjia/invoice-editor/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting invoice editor",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	initial, err := loadInitial(cfg.Editor.InitialSnapshot)
	if err != nil {
		logger.Fatal("Failed to load initial snapshot",
			zap.String("path", cfg.Editor.InitialSnapshot),
			zap.Error(err))
	}

	session := editor.NewSession(initial, logger.Named("editor"))
	formats := render.NewFormats(render.Options{
		FontFamily: cfg.Render.FontFamily,
		PreviewDPI: cfg.Render.PreviewDPI,
	}, logger.Named("render"))

	// Set Gin mode based on logger level
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AllowedOrigin:   cfg.Server.AllowedOrigin,
		MaxUploadBytes:  cfg.Editor.MaxUploadBytes,
	}, session, formats, logger.Named("http"))

	// Shut down on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		return
	}

	logger.Info("Server exited successfully")
}

// loadInitial reads the startup snapshot. An empty path starts from the default invoice.
func loadInitial(path string) (*entity.Invoice, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	inv, err := snapshot.Decode(f)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"reelsync/api"
	"reelsync/config"
	"reelsync/handlers"
	"reelsync/services/moviesync"
	"reelsync/services/trakt"
	"reelsync/services/users"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🎬 reelsync starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("REELSYNC_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	setupLogging(settings.Log)

	// Apply port override if specified
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	userDirectory := users.NewService()
	traktClient := trakt.NewClient(settings.Trakt)
	if !traktClient.HasCredentials() {
		slog.Warn("trakt credentials not configured; account linking and sync are unavailable until set",
			"config", configPath)
	}
	syncService := moviesync.NewService(traktClient, userDirectory)

	r := mux.NewRouter()
	api.Register(r,
		handlers.NewUsersHandler(userDirectory, traktClient),
		handlers.NewMoviesHandler(userDirectory, syncService),
		handlers.NewAuthHandler(userDirectory, traktClient, syncService),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	slog.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

// setupLogging wires slog to stdout, adding a rotating log file when one is
// configured.
func setupLogging(cfg config.LogConfig) {
	var w io.Writer = os.Stdout

	if cfg.File != "" {
		logDir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			w = io.MultiWriter(os.Stdout, fileWriter)
		}
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel(cfg.Level)})
	slog.SetDefault(slog.New(handler))
	log.SetOutput(w)
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

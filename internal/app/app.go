package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"pocketchat/internal/api"
	"pocketchat/internal/config"
	"pocketchat/internal/llm"
	"pocketchat/internal/service"
	"pocketchat/internal/store"
)

// App bundles the wired HTTP server and the resources it owns.
type App struct {
	Server *http.Server

	closeStore func() error
}

// NewApp wires the store, completion client, service, and router from the
// given configuration.
func NewApp(cfg *config.Config) (*App, error) {
	conversationStore, closeStore, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	completionClient := llm.NewGeminiClient(cfg.GeminiAPIURL, cfg.GeminiAPIKey)
	chatService := service.NewChatService(conversationStore, completionClient)

	conversationHandler := api.NewConversationHandler(chatService)
	router := api.NewRouter(conversationHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled: message sends wait on the completion endpoint.
		IdleTimeout:       120 * time.Second,
	}

	return &App{Server: server, closeStore: closeStore}, nil
}

// Close releases the resources owned by the app.
func (a *App) Close() error {
	if a.closeStore != nil {
		return a.closeStore()
	}
	return nil
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("Failed to close application resources", "error", err)
		}
	}()

	slog.Info("Starting server", "port", cfg.AppPort, "store_backend", cfg.StoreBackend)
	if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

func buildStore(cfg *config.Config) (store.ConversationStore, func() error, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		slog.Info("Using redis conversation store", "addr", cfg.RedisAddr)
		return store.NewRedisStore(rdb), rdb.Close, nil
	case config.StoreBackendBolt:
		st, closer, err := store.NewBoltStore(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize conversation store: %w", err)
		}
		slog.Info("Using bolt conversation store", "path", cfg.DatabasePath)
		return st, closer, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

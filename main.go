package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/skilltree-core-poc/server/internal/core"
	"github.com/skilltree-core-poc/server/internal/server"
	"github.com/skilltree-core-poc/server/internal/workflow"
	"github.com/skilltree-core-poc/server/internal/workflow/capability"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
	"github.com/skilltree-core-poc/server/internal/workflow/repo"
	logx "github.com/skilltree-core-poc/server/pkg/logger"
	pkgredis "github.com/skilltree-core-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Workflow configs
	Workflow  model.WorkflowConfig
	Extractor model.ExtractorModelConfig
	Question  model.QuestionModelConfig
	Architect model.ArchitectModelConfig
	Critic    model.CriticModelConfig
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	sessionTTL, err := time.ParseDuration(cfg.Workflow.SessionTTL)
	if err != nil {
		logx.Fatal().Err(err).Str("session_ttl", cfg.Workflow.SessionTTL).Msg("Invalid SESSION_TTL")
	}

	cms, err := capability.NewChatModels(ctx, capability.ChatModelConfig{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		ExtractorConfig: &cfg.Extractor,
		QuestionConfig:  &cfg.Question,
		ArchitectConfig: &cfg.Architect,
		CriticConfig:    &cfg.Critic,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build chat models")
	}

	engine := workflow.NewEngine(
		repo.NewRedisSessionRepository(rdb, sessionTTL),
		capability.NewGeminiFieldExtractor(cms.Extractor, cms.ExtractorModelName, cfg.Workflow.History.MaxTurns),
		capability.NewGeminiQuestionGenerator(cms.Question, cms.QuestionModelName),
		workflow.NewPlanningLoop(
			capability.NewGeminiBlueprintGenerator(cms.Architect, cms.Critic, cms.ArchitectModelName, cms.CriticModelName),
			cfg.Workflow.Planning.RetryCeiling,
		),
		workflow.NewStatusRegistry(),
	)

	handler := server.NewHandler(engine)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(handler, cfg.FrontendURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logx.Info().Str("port", cfg.Port).Str("environment", env.String()).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logx.Info().Msg("Server stopped")
}

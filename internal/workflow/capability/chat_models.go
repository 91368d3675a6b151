package capability

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/skilltree-core-poc/server/internal/workflow/model"
	logx "github.com/skilltree-core-poc/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	APIKey          string
	BaseURL         string
	ExtractorConfig *model.ExtractorModelConfig
	QuestionConfig  *model.QuestionModelConfig
	ArchitectConfig *model.ArchitectModelConfig
	CriticConfig    *model.CriticModelConfig
}

// ChatModels holds the models backing each workflow capability.
type ChatModels struct {
	Extractor          *gemini.ChatModel
	Question           *gemini.ChatModel
	Architect          *gemini.ChatModel
	Critic             *gemini.ChatModel
	ExtractorModelName string
	QuestionModelName  string
	ArchitectModelName string
	CriticModelName    string
}

// NewChatModels creates the extractor, questioner, architect, and
// critic chat models sharing one Gemini client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	extractor, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.ExtractorConfig.Model,
		Temperature: &config.ExtractorConfig.Temperature,
		MaxTokens:   &config.ExtractorConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating extractor model")
		return nil, fmt.Errorf("error creating extractor model: %w", err)
	}

	question, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.QuestionConfig.Model,
		Temperature: &config.QuestionConfig.Temperature,
		MaxTokens:   &config.QuestionConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating question model")
		return nil, fmt.Errorf("error creating question model: %w", err)
	}

	architect, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.ArchitectConfig.Model,
		Temperature: &config.ArchitectConfig.Temperature,
		MaxTokens:   &config.ArchitectConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating architect model")
		return nil, fmt.Errorf("error creating architect model: %w", err)
	}

	critic, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.CriticConfig.Model,
		Temperature: &config.CriticConfig.Temperature,
		MaxTokens:   &config.CriticConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating critic model")
		return nil, fmt.Errorf("error creating critic model: %w", err)
	}

	return &ChatModels{
		Extractor:          extractor,
		Question:           question,
		Architect:          architect,
		Critic:             critic,
		ExtractorModelName: config.ExtractorConfig.Model,
		QuestionModelName:  config.QuestionConfig.Model,
		ArchitectModelName: config.ArchitectConfig.Model,
		CriticModelName:    config.CriticConfig.Model,
	}, nil
}

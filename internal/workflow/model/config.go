package model

// ================ Config ================
type WorkflowConfig struct {
	SessionTTL string `envconfig:"SESSION_TTL" default:"24h"`
	Planning   struct {
		RetryCeiling int `envconfig:"PLANNING_RETRY_CEILING" default:"3"`
	}
	History struct {
		MaxTurns int `envconfig:"WORKFLOW_HISTORY_MAX_TURNS" default:"10"`
	}
}

type ExtractorModelConfig struct {
	Model       string  `envconfig:"EXTRACTOR_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"EXTRACTOR_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" default:"0.0"`
}

type QuestionModelConfig struct {
	Model       string  `envconfig:"QUESTION_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"QUESTION_MAX_TOKENS" default:"500"`
	Temperature float32 `envconfig:"QUESTION_TEMPERATURE" default:"0.6"`
}

type ArchitectModelConfig struct {
	Model       string  `envconfig:"ARCHITECT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ARCHITECT_MAX_TOKENS" default:"8000"`
	Temperature float32 `envconfig:"ARCHITECT_TEMPERATURE" default:"0.4"`
}

type CriticModelConfig struct {
	Model       string  `envconfig:"CRITIC_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CRITIC_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"CRITIC_TEMPERATURE" default:"0.1"`
}

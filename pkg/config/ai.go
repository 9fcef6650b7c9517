package config

type AIConfig struct {
	APIKey      string
	BaseURL     string
	ChatModel   string
	ImageModel  string
	Temperature float64
	MaxTokens   int
}

func loadAIConfig() AIConfig {
	return AIConfig{
		APIKey:      getEnv("AI_API_KEY", ""),
		BaseURL:     getEnv("AI_BASE_URL", ""),
		ChatModel:   getEnv("AI_CHAT_MODEL", "gpt-4o-mini"),
		ImageModel:  getEnv("AI_IMAGE_MODEL", "gpt-image-1"),
		Temperature: float64(getEnvInt("AI_TEMPERATURE_PCT", 70)) / 100,
		MaxTokens:   getEnvInt("AI_MAX_TOKENS", 0),
	}
}

package config

import "time"

// ServerConfig configura el servidor HTTP. Los orígenes CORS por defecto
// cubren el dev server de Vite y el cliente web local; los clientes de
// navegador necesitan además los headers de invitado (ver setupMiddleware).
type ServerConfig struct {
	Port            int
	Environment     string
	LogLevel        string
	BaseURL         string
	CORSOrigins     []string
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvInt("SERVER_PORT", 8080),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		CORSOrigins:     getEnvStringSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

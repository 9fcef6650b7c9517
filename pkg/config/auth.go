package config

import "time"

type AuthConfig struct {
	JWT      JWTConfig
	Password PasswordConfig
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
	Issuer         string
	Audience       []string
}

type PasswordConfig struct {
	BcryptCost int
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET_KEY", ""),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			Issuer:         getEnv("JWT_ISSUER", "siivi"),
			Audience:       getEnvStringSlice("JWT_AUDIENCE", []string{"siivi-api"}),
		},
		Password: PasswordConfig{
			BcryptCost: getEnvInt("BCRYPT_COST", 12),
		},
	}
}

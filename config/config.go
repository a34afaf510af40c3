package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the server reads from the environment.
type Config struct {
	DatabaseURL    string
	JWTSecret      string
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	Port           string
	LogLevel       string
	CORSOrigins    []string
	CookieSecure   bool
	BcryptCost     int
	DBMaxOpenConns int
	DBMaxIdleConns int
}

// Addr is the listen address built from Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Load reads envFile (if it exists) into the process environment and then
// resolves the configuration from the environment. A missing JWT_SECRET or
// database URL is an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("PORT", "5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	cfg := &Config{
		DatabaseURL:    v.GetString("DATABASE_URL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		OpenAIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIModel:    v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL:  v.GetString("OPENAI_BASE_URL"),
		Port:           v.GetString("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = v.GetString("LOCAL_DATABASE_URL")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL or LOCAL_DATABASE_URL must be set")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

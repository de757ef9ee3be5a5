package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var ErrMissingJWTSecret = errors.New("SESSION_SECRET environment variable must be set for JWT authentication")

type JWTConfig struct {
	SecretKey      string        `mapstructure:"secretKey"`
	AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
	Issuer         string        `mapstructure:"issuer"`
	Audience       string        `mapstructure:"audience"`
}

// LLMConfig selects the itinerary generation backend. An empty key for the
// selected provider keeps the process on rule-based generation.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	OpenAIKey   string        `mapstructure:"openAIKey"`
	OpenAIModel string        `mapstructure:"openAIModel"`
	GeminiKey   string        `mapstructure:"geminiKey"`
	GeminiModel string        `mapstructure:"geminiModel"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CacheTTL    time.Duration `mapstructure:"cacheTTL"`
}

// APIKey returns the credential of the configured provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiKey
	}
	return c.OpenAIKey
}

// Model returns the model name of the configured provider.
func (c LLMConfig) Model() string {
	if c.Provider == ProviderGemini {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

func (c LLMConfig) Delegated() bool {
	return c.APIKey() != ""
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
		Swagger struct {
			Enabled bool `mapstructure:"enabled"`
		} `mapstructure:"swagger"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	JWT JWTConfig `mapstructure:"jwt"`
	LLM LLMConfig `mapstructure:"llm"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string][]string{
	"mode":                           {"APP_ENV"},
	"repositories.postgres.host":     {"POSTGRES_HOST"},
	"repositories.postgres.port":     {"POSTGRES_PORT"},
	"repositories.postgres.username": {"POSTGRES_USER"},
	"repositories.postgres.password": {"POSTGRES_PASSWORD"},
	"repositories.postgres.db":       {"POSTGRES_DB"},
	"server.HTTPPort":                {"SERVER_HTTP_PORT", "PORT"},
	"jwt.secretKey":                  {"SESSION_SECRET", "JWT_SECRET"},
	"llm.provider":                   {"LLM_PROVIDER"},
	"llm.openAIKey":                  {"OPENAI_API_KEY"},
	"llm.openAIModel":                {"OPENAI_MODEL"},
	"llm.geminiKey":                  {"GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY"},
	"llm.geminiModel":                {"GEMINI_MODEL"},
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		if err = v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err = config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.JWT.SecretKey == "" {
		return ErrMissingJWTSecret
	}
	if c.JWT.AccessTokenTTL <= 0 {
		c.JWT.AccessTokenTTL = 7 * 24 * time.Hour
	}
	switch c.LLM.Provider {
	case "":
		c.LLM.Provider = ProviderOpenAI
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 60 * time.Second
	}
	return nil
}

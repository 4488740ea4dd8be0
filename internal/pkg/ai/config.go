package ai

import (
	"strings"
	"time"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// LoadConfig reads the OpenAI settings. An empty key disables completions.
func LoadConfig() Config {
	return Config{
		APIKey:  strings.TrimSpace(env.GetEnv("OPENAI_API_KEY", "")),
		Model:   env.GetEnv("OPENAI_MODEL", DefaultModel),
		BaseURL: strings.TrimRight(env.GetEnv("OPENAI_BASE_URL", DefaultBaseURL), "/"),
		Timeout: time.Duration(env.GetInt("OPENAI_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func (c Config) Available() bool {
	return c.APIKey != ""
}

// Package config loads templed configuration from a JSON file backend at
// $XDG_CONFIG_HOME/templed/config.json with TEMPLED_* environment overrides.
package config

import (
	"fmt"

	"github.com/karpagadevi/templed/internal/tavily"
)

type Config struct {
	Server ServerConfig
	Tavily TavilyConfig
	Ollama OllamaConfig
	Agent  AgentConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port    int
	MCPPort int
}

type TavilyConfig struct {
	APIKey      string
	MaxResults  int
	SearchDepth string
}

type OllamaConfig struct {
	BaseURL string
	// Model names the fine-tuned temple expert model served by Ollama.
	// Empty disables the model path: model-strategy queries return a
	// placeholder result.
	Model string
}

type AgentConfig struct {
	HistorySize int
	Verbose     bool
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    4600,
			MCPPort: 4601,
		},
		Tavily: TavilyConfig{
			MaxResults:  5,
			SearchDepth: tavily.DepthBasic,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
		},
		Agent: AgentConfig{
			HistorySize: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend and applies TEMPLED_*
// environment overrides. A missing Tavily API key is a setup error and fails
// here rather than on the first search.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Tavily.APIKey == "" {
		return Config{}, fmt.Errorf(
			"missing required config: Tavily API key. Set TEMPLED_TAVILY_API_KEY " +
				"or run `templed config set tavily.api_key <key>`; get a free key at https://tavily.com/")
	}

	return cfg, nil
}

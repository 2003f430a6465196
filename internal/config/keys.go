package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "TEMPLED_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.mcp_port", typ: kInt, env: "TEMPLED_SERVER_MCP_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.MCPPort = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.MCPPort },
	},
	{
		key: "tavily.api_key", typ: kString, env: "TEMPLED_TAVILY_API_KEY",
		apply:   func(cfg *Config, v any) { cfg.Tavily.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Tavily.APIKey },
	},
	{
		key: "tavily.max_results", typ: kInt, env: "TEMPLED_TAVILY_MAX_RESULTS",
		apply:   func(cfg *Config, v any) { cfg.Tavily.MaxResults = v.(int) },
		extract: func(cfg Config) any { return cfg.Tavily.MaxResults },
	},
	{
		key: "tavily.search_depth", typ: kString, env: "TEMPLED_TAVILY_SEARCH_DEPTH",
		apply:   func(cfg *Config, v any) { cfg.Tavily.SearchDepth = v.(string) },
		extract: func(cfg Config) any { return cfg.Tavily.SearchDepth },
	},
	{
		key: "ollama.base_url", typ: kString, env: "TEMPLED_OLLAMA_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.BaseURL },
	},
	{
		key: "ollama.model", typ: kString, env: "TEMPLED_OLLAMA_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.Model },
	},
	{
		key: "agent.history_size", typ: kInt, env: "TEMPLED_AGENT_HISTORY_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Agent.HistorySize = v.(int) },
		extract: func(cfg Config) any { return cfg.Agent.HistorySize },
	},
	{
		key: "agent.verbose", typ: kBool, env: "TEMPLED_AGENT_VERBOSE",
		apply:   func(cfg *Config, v any) { cfg.Agent.Verbose = v.(bool) },
		extract: func(cfg Config) any { return cfg.Agent.Verbose },
	},
	{
		key: "log.level", typ: kString, env: "TEMPLED_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetBool(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw, ok := os.LookupEnv(s.env)
		if !ok || raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if v, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, v)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] ignoring invalid integer in %s: %q\n", s.env, raw)
			}
		case kBool:
			if v, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, v)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] ignoring invalid boolean in %s: %q\n", s.env, raw)
			}
		}
	}
}

package config

import (
	"os"

	"github.com/zeromicro/go-zero/core/conf"
)

// Config is the full service configuration, loaded from YAML with
// environment expansion so secrets stay out of the file.
type Config struct {
	Host string `json:",default=127.0.0.1"`
	Port int    `json:",default=27411"`

	Agent      AgentConf      `json:",optional"`
	Automation AutomationConf `json:",optional"`
	Status     StatusConf     `json:",optional"`
	Log        LogConf        `json:",optional"`
}

// AgentConf selects and tunes the conversational responder.
type AgentConf struct {
	// Provider is one of auto, anthropic, openai, ollama, echo. Auto picks
	// by available API keys and falls back to the offline echo responder.
	Provider string `json:",default=auto,options=auto|anthropic|openai|ollama|echo"`
	Model    string `json:",optional"`
	APIKey   string `json:",optional"`
	BaseURL  string `json:",optional"`

	SystemPrompt   string `json:",optional"`
	HistoryWindow  int    `json:",default=40"`
	TimeoutSeconds int    `json:",default=120"`
}

// AutomationConf tunes the native input layer.
type AutomationConf struct {
	TimeoutSeconds int `json:",default=15"`
	QueueSize      int `json:",default=32"`
}

// StatusConf tunes health probing.
type StatusConf struct {
	ProbeTimeoutMS int `json:",default=1500"`
	FreshnessMS    int `json:",default=2000"`
}

// LogConf tunes request logging.
type LogConf struct {
	Level    string `json:",default=info,options=debug|info|error"`
	Requests bool   `json:",default=true"`
}

// Load reads the YAML config at path, expanding ${VAR} references from the
// environment first. A missing file yields the zero config plus defaults.
func Load(path string) (Config, error) {
	var c Config
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = conf.LoadFromYamlBytes([]byte("{}"), &c)
		}
		return c, err
	}
	expanded := []byte(os.ExpandEnv(string(raw)))
	if err := conf.LoadFromYamlBytes(expanded, &c); err != nil {
		return c, err
	}
	return c, nil
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ModelSettings struct {
		Temperature float64 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"model_settings"`
	Backend struct {
		RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	} `yaml:"backend"`
	History struct {
		MaxMessages int `yaml:"max_messages"`
	} `yaml:"history"`
}

// LoadConfig reads config.yml. A missing file yields the defaults; a file
// that exists but does not parse is an error.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		setDefaults(config)
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	setDefaults(config)
	return config, nil
}

func setDefaults(c *Config) {
	if c.ModelSettings.Temperature == 0 {
		c.ModelSettings.Temperature = 1
	}
	if c.ModelSettings.MaxTokens == 0 {
		c.ModelSettings.MaxTokens = 2048
	}
	if c.Backend.RequestTimeoutSeconds == 0 {
		c.Backend.RequestTimeoutSeconds = 120
	}
	if c.History.MaxMessages == 0 {
		c.History.MaxMessages = 15
	}
}

package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultChatUrl = "wss://irc-ws.chat.twitch.tv:443"

type Config struct {
	Url  string `yaml:"url"`
	Nick string `yaml:"nick"`
	Room string `yaml:"room"`

	DatabasePath string `yaml:"database_path"`
	MetricsPort  int    `yaml:"metrics_port"`

	Operators []string `yaml:"operators"`

	Segue struct {
		DecaySeconds float64 `yaml:"decay_seconds"`
		MinCount     int64   `yaml:"min_count"`
	} `yaml:"segue"`

	Roleplay struct {
		DecaySeconds float64 `yaml:"decay_seconds"`
		MinCount     int64   `yaml:"min_count"`
	} `yaml:"roleplay"`
}

// LoadConfig reads a YAML config file, expands environment variables, and
// unmarshals it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	if config.Url == "" {
		config.Url = DefaultChatUrl
	}
	if config.Nick == "" {
		return nil, fmt.Errorf("config %s: nick is required", path)
	}
	if config.Room == "" {
		return nil, fmt.Errorf("config %s: room is required", path)
	}
	if config.DatabasePath == "" {
		config.DatabasePath = "hourbot.db"
	}
	return &config, nil
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}

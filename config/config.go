package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Audio      AudioConfig      `yaml:"audio"`
	Fitbit     FitbitConfig     `yaml:"fitbit"`
	AssemblyAI AssemblyAIConfig `yaml:"assemblyai"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Pushover   PushoverConfig   `yaml:"pushover"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type AudioConfig struct {
	SampleRate      int    `yaml:"sample_rate"`
	FramesPerBuffer int    `yaml:"frames_per_buffer"`
	OutputFile      string `yaml:"output_file"`
}

type FitbitConfig struct {
	AccessToken string `yaml:"access_token"`
	Timeout     string `yaml:"timeout"`
}

type AssemblyAIConfig struct {
	APIKey string `yaml:"api_key"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.FramesPerBuffer == 0 {
		c.Audio.FramesPerBuffer = 1024
	}
	if c.Audio.OutputFile == "" {
		c.Audio.OutputFile = "output.wav"
	}
	if c.Fitbit.Timeout == "" {
		c.Fitbit.Timeout = "30s"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-3.5-turbo"
	}
	if c.OpenAI.Timeout == "" {
		c.OpenAI.Timeout = "60s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

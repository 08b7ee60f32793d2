package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`

	SegmentDir     string        `mapstructure:"segment_dir"`
	SegmentTimeout time.Duration `mapstructure:"segment_timeout"`

	OpenAIKey       string `mapstructure:"openai_key"`
	OpenAIBaseURL   string `mapstructure:"openai_base_url"`
	TranscribeModel string `mapstructure:"transcribe_model"`
	ChatModel       string `mapstructure:"chat_model"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 1<<20) // base64 audio segments get large
	v.SetDefault("ping_period", "54s")
	v.SetDefault("segment_dir", "./uploads")
	v.SetDefault("segment_timeout", "10s")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("transcribe_model", "whisper-1")
	v.SetDefault("chat_model", "gpt-4o-mini")

	// The key never belongs in a config file.
	_ = v.BindEnv("openai_key", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

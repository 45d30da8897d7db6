// Package config loads speechtxt settings from a YAML file and the
// environment. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EngineLocal  = "local"
	EngineOpenAI = "openai"

	DefaultGUIAddr = "127.0.0.1:7860"
)

type Config struct {
	Model    string `yaml:"model" env:"SPEECHTXT_MODEL" env-default:"base"`
	ModelDir string `yaml:"model_dir" env:"SPEECHTXT_MODEL_DIR"`
	Language string `yaml:"language" env:"SPEECHTXT_LANGUAGE" env-default:"auto"`
	Engine   string `yaml:"engine" env:"SPEECHTXT_ENGINE" env-default:"local"`

	GUI struct {
		Addr string `yaml:"addr" env:"SPEECHTXT_GUI_ADDR" env-default:"127.0.0.1:7860"`
	} `yaml:"gui"`

	OpenAI struct {
		APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
		BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`
		Model   string `yaml:"model" env:"SPEECHTXT_OPENAI_MODEL" env-default:"whisper-1"`
	} `yaml:"openai"`
}

type LoadOptions struct {
	// Path is the YAML file to read. A missing file is only an error when
	// Explicit is set.
	Path     string
	Explicit bool
	// DotEnv lists .env files to load into the process environment first.
	DotEnv []string
}

func Load(opts LoadOptions) (*Config, error) {
	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}

	var cfg Config
	if opts.Path != "" {
		_, statErr := os.Stat(opts.Path)
		switch {
		case statErr == nil:
			if err := cleanenv.ReadConfig(opts.Path, &cfg); err != nil {
				return nil, fmt.Errorf("read config %s: %w", opts.Path, err)
			}
			return &cfg, cfg.Validate()
		case !errors.Is(statErr, fs.ErrNotExist) || opts.Explicit:
			return nil, fmt.Errorf("read config %s: %w", opts.Path, statErr)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Engine {
	case EngineLocal, EngineOpenAI:
		return nil
	default:
		return fmt.Errorf("unknown engine %q (expected %s or %s)", c.Engine, EngineLocal, EngineOpenAI)
	}
}

// Dump writes the effective configuration as YAML. Secrets are masked.
func (c Config) Dump(w io.Writer) error {
	if c.OpenAI.APIKey != "" {
		c.OpenAI.APIKey = "********"
	}
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// Usage describes every environment variable the config understands.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

func loadDotEnv(files []string) error {
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

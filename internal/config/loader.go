package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "SCORECARD_"
	envConfig  = envPrefix + "CONFIG"
	dotenvFile = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SCORECARD_CONFIG is set
//  3. env (prefix SCORECARD_)
//
// Variables from dotenv files (".env" when none are given) are added to the
// environment first; they never override variables that are already set.
func Load(_ context.Context, dotenv ...string) (*Config, error) {
	if err := loadDotenv(dotenv); err != nil {
		return nil, err
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// SCORECARD_SNAPSHOT_DIR -> snapshot_dir, keeping underscores to match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv(files []string) error {
	explicit := len(files) > 0
	if !explicit {
		files = []string{dotenvFile}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil {
			continue
		}
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("%w: %s: %v", ErrLoadConfig, f, err)
	}
	return nil
}

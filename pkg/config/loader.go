package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadEnv loads .env files into the process environment. Variables that
// are already set keep their value, and earlier files win over later ones.
// Without paths it loads ./.env and ignores a missing file.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrLoadingEnvFile, err)
		}
		return nil
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses the environment into a new T using its env struct tags.
//
//	type Config struct {
//		HTTP   httpserver.Config
//		Notify notifications.Config
//	}
//	cfg, err := config.Load[Config]()
func Load[T any]() (T, error) {
	cfg, err := env.ParseAs[T]()
	if err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is Load for startup code that cannot continue without config.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

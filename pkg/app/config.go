package app

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/money-manager/config"
)

type loadCfg struct {
	envFiles []string
}

// LoadOpt is an option of the config loading
type LoadOpt func(cfg *loadCfg)

// WithEnvFiles sets .env files to load variables from. Missing files are skipped
func WithEnvFiles(files ...string) LoadOpt {
	return func(cfg *loadCfg) {
		cfg.envFiles = files
	}
}

// LoadConfig will load variables from .env files and initialize the config.
// Variables already set in the environment are not overridden
func LoadConfig(opts ...LoadOpt) (*config.AppConfig, error) {
	cfg := loadCfg{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, file := range cfg.envFiles {
		if err := godotenv.Load(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "Failed to load %v", file)
		}
	}
	return config.LoadAppConfig()
}

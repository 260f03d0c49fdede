package internal

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Cadence/internal/api"
	"github.com/hbomb79/Cadence/internal/convert"
	"github.com/hbomb79/Cadence/internal/ytdlp"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

// CadenceConfig is the struct used to contain the
// various user config supplied by file or environment.
type CadenceConfig struct {
	RestConfig    api.RestConfig `yaml:"api" toml:"api"`
	ConvertConfig convert.Config `yaml:"conversion" toml:"conversion"`
	ToolConfig    ytdlp.Config   `yaml:"yt_dlp" toml:"yt_dlp"`
	LogLevel      string         `yaml:"log_level" toml:"log_level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=verbose debug info warn warning error"`
}

// LoadFromFile loads a configuration file (YAML, TOML or JSON, chosen by
// extension) in to the config. Environment variables take precedence over
// values in the file. A leading '~' in the path is expanded to the user's
// home directory.
func (config *CadenceConfig) LoadFromFile(configPath string) error {
	path, err := homedir.Expand(configPath)
	if err != nil {
		return fmt.Errorf("failed to expand config path %s: %w", configPath, err)
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}

	return config.validate()
}

// LoadFromEnv populates the config using only the environment, applying
// defaults for anything not set.
func (config *CadenceConfig) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return config.validate()
}

func (config *CadenceConfig) validate() error {
	var validationErrs validator.ValidationErrors
	if err := validator.New().Struct(config); err != nil {
		if errors.As(err, &validationErrs) {
			return fmt.Errorf("configuration invalid: %w", validationErrs)
		}

		return err
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Form FormConfig `mapstructure:"form"`
	Log  LogConfig  `mapstructure:"log"`
}

// FormConfig holds form defaults.
type FormConfig struct {
	DefaultTarget string        `mapstructure:"default_target" validate:"required"`
	NoticeTTL     time.Duration `mapstructure:"notice_ttl" validate:"gt=0,lte=1m"`
}

// LogConfig holds diagnostic log settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	File  string `mapstructure:"file"`
}

// Load reads configuration from file and env. Env var overrides use prefix CONFIRMFORM_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("form.default_target", "redirect")
	v.SetDefault("form.notice_ttl", 3*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(stateDir(), "confirmform", "confirmform.log"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CONFIRMFORM_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "confirmform"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CONFIRMFORM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit config path must exist, the default location is optional
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

var validate = validator.New()

// Validate checks value ranges. The target type is resolved by the form
// package, which also suggests close matches.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}

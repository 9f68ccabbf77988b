package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mariposa-trails/trailhead/errors"
)

// Load reads the Trailhead configuration: defaults, then an optional
// trailhead.toml in the working directory, then environment variables.
// Each call builds a fresh Config so callers own their copy.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("TRAILHEAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindSensitiveEnvVars(v)
	SetDefaults(v)

	if _, err := os.Stat("trailhead.toml"); err == nil {
		v.SetConfigFile("trailhead.toml")
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read trailhead.toml")
		}
	}

	return LoadWithViper(v)
}

// LoadWithViper loads configuration from a provided Viper instance.
// Used by tests to build isolated configurations.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific TOML file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	return LoadWithViper(v)
}

// Validate checks configuration values for internal consistency
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port %d out of range", c.Server.Port)
	}
	if c.Store.Path == "" {
		return errors.New("store.path must not be empty")
	}
	if c.Store.DataFile == "" || c.Store.VersionFile == "" {
		return errors.New("store.data_file and store.version_file must not be empty")
	}
	return nil
}

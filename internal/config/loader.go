package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfig reads the JSON config file at configFile. An empty path is
// not an error: every option falls back to its default, which matches
// running without a config file at all.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("json")

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("delimiter", ",")
	v.SetDefault("quotechar", `"`)
	v.SetDefault("destination_path", "")
	v.SetDefault("flatten_records", false)
	v.SetDefault("disable_collection", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("sftp_port", 22)
}

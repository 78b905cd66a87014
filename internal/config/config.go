package config

type Config struct {
	Delimiter         string              `mapstructure:"delimiter"`
	QuoteChar         string              `mapstructure:"quotechar"`
	DestinationPath   string              `mapstructure:"destination_path"`
	FixedHeaders      map[string][]string `mapstructure:"fixed_headers"`
	FlattenRecords    bool                `mapstructure:"flatten_records"`
	DisableCollection bool                `mapstructure:"disable_collection"`
	LogLevel          string              `mapstructure:"log_level"`
	SFTP              SFTPConfig          `mapstructure:",squash"`
}

type SFTPConfig struct {
	Host            string `mapstructure:"sftp_host"`
	Username        string `mapstructure:"sftp_username"`
	Password        string `mapstructure:"sftp_password"`
	Port            int    `mapstructure:"sftp_port"`
	PublicKey       string `mapstructure:"sftp_public_key"`
	PublicKeyFormat string `mapstructure:"sftp_public_key_format"`
}

// Enabled reports whether the full credential set is present. Anything
// less than all five disables transfer entirely; the port is optional
// and defaults to 22.
func (c SFTPConfig) Enabled() bool {
	return c.Host != "" &&
		c.Username != "" &&
		c.Password != "" &&
		c.PublicKey != "" &&
		c.PublicKeyFormat != ""
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}

package config

import (
	"fmt"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateCSV(cfg); err != nil {
		errors = append(errors, err)
	}

	if err := validateSFTP(cfg.SFTP); err != nil {
		errors = append(errors, err)
	}

	if err := validateLogging(cfg); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateCSV(cfg *Config) error {
	if utf8.RuneCountInString(cfg.Delimiter) != 1 {
		return &ValidationError{
			Field:   "delimiter",
			Message: fmt.Sprintf("delimiter must be a single character, got %q", cfg.Delimiter),
		}
	}

	if utf8.RuneCountInString(cfg.QuoteChar) != 1 {
		return &ValidationError{
			Field:   "quotechar",
			Message: fmt.Sprintf("quotechar must be a single character, got %q", cfg.QuoteChar),
		}
	}

	if cfg.Delimiter == cfg.QuoteChar {
		return &ValidationError{
			Field:   "quotechar",
			Message: "quotechar must differ from delimiter",
		}
	}

	for stream, headers := range cfg.FixedHeaders {
		if len(headers) == 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("fixed_headers.%s", stream),
				Message: "fixed header list cannot be empty",
			}
		}
	}

	return nil
}

func validateSFTP(cfg SFTPConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "sftp_port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateLogging(cfg *Config) error {
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return &ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("unknown log level: %s (valid: debug, info, warn, error)", cfg.LogLevel),
		}
	}
}

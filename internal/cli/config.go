package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config holds defaults that may be overridden by flags.
type Config struct {
	Format   string
	LogLevel string
}

// LoadConfig reads defaults from the environment.
func LoadConfig() Config {
	return Config{
		Format:   getEnv("NAIPNG_FORMAT", formatJSON),
		LogLevel: getEnv("NAIPNG_LOG_LEVEL", "warn"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c Config) Validate() error {
	if !validFormat(c.Format) {
		return fmt.Errorf("unknown output format %q (want json, yaml or cbor)", c.Format)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

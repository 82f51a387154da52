package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/master-budget/internal/config"
	"github.com/iwvelando/master-budget/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings for the budget preview server.
// MaxUploadSize bounds the assumptions document accepted by the budget
// endpoints and takes a unit suffix ("256K", "2M").
type Config struct {
	Address       string               `yaml:"address"`
	MaxUploadSize string               `yaml:"maxUploadSize"`
	Logging       config.LoggingConfig `yaml:"logging"`

	uploadSizeBytes int64
}

// DefaultConfig returns the settings used when no server config file is
// present.
func DefaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
	}
}

// LoadConfig loads the server configuration from a YAML file. A missing
// file is not an error; the defaults are returned instead.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading server config file, %v", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to decode server config, %v", err)
	}

	if cfg.Address == "" {
		cfg.Address = constants.DefaultServerAddress
	}
	size, err := ParseSize(cfg.MaxUploadSize)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	cfg.uploadSizeBytes = size

	return cfg, nil
}

// UploadSizeBytes returns the configured upload limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize converts a size such as "256K" or "10MB" into bytes. A bare
// number is taken as bytes; an empty string yields the default limit.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	split := strings.LastIndexFunc(trimmed, unicode.IsDigit)
	if split < 0 {
		return 0, fmt.Errorf("upload size %q has no numeric part", value)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(trimmed[:split+1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid upload size %q: %w", value, err)
	}

	unit := strings.ToUpper(strings.TrimSpace(trimmed[split+1:]))
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("upload size %q has unsupported unit %q", value, unit)
	}
	if n < 0 || n > (1<<62)/multiplier {
		return 0, fmt.Errorf("upload size %q out of range", value)
	}

	return n * multiplier, nil
}

package mockjira

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed defaults
var defaultsFS embed.FS

// Default returns the built-in configuration and its data set.
func Default() (Config, fs.FS, error) {
	raw, err := defaultsFS.ReadFile("defaults/mock.yaml")
	if err != nil {
		return Config{}, nil, fmt.Errorf("read default config: %w", err)
	}
	cfg, err := ParseConfig(raw)
	if err != nil {
		return Config{}, nil, fmt.Errorf("parse default config: %w", err)
	}
	data, err := fs.Sub(defaultsFS, "defaults/data")
	if err != nil {
		return Config{}, nil, fmt.Errorf("open default data: %w", err)
	}
	return cfg, data, nil
}

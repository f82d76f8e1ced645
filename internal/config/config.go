package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ENGEAI_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: ENGEAI_PORT -> port,
	// ENGEAI_VIEWPORT_MIN_ZOOM -> viewport.min_zoom, etc.
	if err := k.Load(env.Provider("ENGEAI_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "ENGEAI_"))
		for _, section := range []string{"viewport", "panel", "cors"} {
			if strings.HasPrefix(s, section+"_") {
				return section + "." + strings.TrimPrefix(s, section+"_")
			}
		}
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.DownloadsDir == "" {
		return fmt.Errorf("downloads_dir is required")
	}

	if c.Viewport.MinZoom <= 0 {
		return fmt.Errorf("viewport.min_zoom must be positive, got %g", c.Viewport.MinZoom)
	}
	if c.Viewport.MaxZoom < c.Viewport.MinZoom {
		return fmt.Errorf("viewport.max_zoom %g is below min_zoom %g", c.Viewport.MaxZoom, c.Viewport.MinZoom)
	}

	if c.Panel.CloseAnimationMS < 0 {
		return fmt.Errorf("panel.close_animation_ms must be non-negative")
	}
	if c.Panel.VisibilityTimeoutMS <= 0 {
		return fmt.Errorf("panel.visibility_timeout_ms must be positive")
	}
	if c.Panel.VisibilityPollMS <= 0 {
		return fmt.Errorf("panel.visibility_poll_ms must be positive")
	}

	if !c.CORS.AllowAll && len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("cors.allowed_origins is required when cors.allow_all is false")
	}

	return nil
}

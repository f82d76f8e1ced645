package config

import "time"

// Zoom bounds applied when the config leaves them unset.
const (
	DefaultMinZoom = 0.5
	DefaultMaxZoom = 4.0
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		DataDir:      "data",
		DownloadsDir: "downloads",
		MermaidCLI:   "mmdc",
		DemoArtifact: true,
		Viewport: ViewportConfig{
			MinZoom: DefaultMinZoom,
			MaxZoom: DefaultMaxZoom,
		},
		Panel: PanelConfig{
			CloseAnimationMS:    300,
			VisibilityTimeoutMS: 3000,
			VisibilityPollMS:    100,
		},
		CORS: CORSConfig{
			AllowAll: true,
		},
	}
}

// CloseAnimation returns the panel close delay as a duration.
func (c *Config) CloseAnimation() time.Duration {
	return time.Duration(c.Panel.CloseAnimationMS) * time.Millisecond
}

// VisibilityTimeout returns how long to wait for the panel to become visible.
func (c *Config) VisibilityTimeout() time.Duration {
	return time.Duration(c.Panel.VisibilityTimeoutMS) * time.Millisecond
}

// VisibilityPoll returns the polling interval for visibility checks.
func (c *Config) VisibilityPoll() time.Duration {
	return time.Duration(c.Panel.VisibilityPollMS) * time.Millisecond
}

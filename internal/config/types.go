package config

// Config is the top-level engeai configuration, corresponding to engeai.yml.
type Config struct {
	Port         int            `yaml:"port" koanf:"port"`
	DataDir      string         `yaml:"data_dir" koanf:"data_dir"`
	DownloadsDir string         `yaml:"downloads_dir" koanf:"downloads_dir"`
	MermaidCLI   string         `yaml:"mermaid_cli" koanf:"mermaid_cli"`
	DemoArtifact bool           `yaml:"demo_artifact" koanf:"demo_artifact"`
	Viewport     ViewportConfig `yaml:"viewport" koanf:"viewport"`
	Panel        PanelConfig    `yaml:"panel" koanf:"panel"`
	CORS         CORSConfig     `yaml:"cors" koanf:"cors"`
}

// ViewportConfig bounds the zoom range of the artefact viewer.
type ViewportConfig struct {
	MinZoom float64 `yaml:"min_zoom" koanf:"min_zoom"`
	MaxZoom float64 `yaml:"max_zoom" koanf:"max_zoom"`
}

// PanelConfig holds the panel lifecycle timings, in milliseconds.
type PanelConfig struct {
	CloseAnimationMS    int `yaml:"close_animation_ms" koanf:"close_animation_ms"`
	VisibilityTimeoutMS int `yaml:"visibility_timeout_ms" koanf:"visibility_timeout_ms"`
	VisibilityPollMS    int `yaml:"visibility_poll_ms" koanf:"visibility_poll_ms"`
}

// CORSConfig holds cross-origin settings for the HTTP server.
type CORSConfig struct {
	AllowAll       bool     `yaml:"allow_all" koanf:"allow_all"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

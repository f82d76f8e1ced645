package config

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/manifoldco/promptui"
)

// detectMermaidCLI looks for a mermaid renderer on PATH. The name is
// returned even when nothing is found so the config still records the
// conventional binary name.
func detectMermaidCLI() (path string, found bool) {
	for _, name := range []string{"mmdc", "mermaid-cli"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, true
		}
	}
	return "mmdc", false
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to engeai.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to engeai! Let's configure your tutor instance.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (SQLite database)",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Downloads directory.
	downloadsPrompt := promptui.Prompt{
		Label:   "Downloads directory (exported diagrams)",
		Default: cfg.DownloadsDir,
	}
	if cfg.DownloadsDir, err = downloadsPrompt.Run(); err != nil {
		return nil, fmt.Errorf("downloads dir: %w", err)
	}

	// 4. Mermaid renderer.
	detected, found := detectMermaidCLI()
	if found {
		fmt.Printf("Detected mermaid renderer: %s\n", detected)
	}
	mermaidPrompt := promptui.Prompt{
		Label:   "Mermaid CLI path",
		Default: detected,
	}
	if cfg.MermaidCLI, err = mermaidPrompt.Run(); err != nil {
		return nil, fmt.Errorf("mermaid cli: %w", err)
	}

	// 5. Demo artefact.
	demoPrompt := promptui.Select{
		Label: "Seed a demo artefact on startup",
		Items: []string{"yes", "no"},
	}
	demoIdx, _, err := demoPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("demo artefact: %w", err)
	}
	cfg.DemoArtifact = demoIdx == 0

	if !found {
		fmt.Println("\nNote: no mermaid renderer found on PATH. Install @mermaid-js/mermaid-cli")
		fmt.Println("or artefact panels will fall back to a diagnostic view.")
	}

	// Save to engeai.yml.
	configPath := "engeai.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

package diagrams

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Renderer converts Mermaid source into SVG. The actual diagram engine
// is an external collaborator; implementations wrap it as a black box.
type Renderer interface {
	Render(ctx context.Context, source string) ([]byte, error)
}

// CLIRenderer renders diagrams by invoking the Mermaid CLI (mmdc).
type CLIRenderer struct {
	// Binary is the mmdc executable path. Defaults to "mmdc" on PATH.
	Binary string
}

// NewCLIRenderer creates a CLIRenderer for the given binary path.
// An empty path means "mmdc" resolved from PATH.
func NewCLIRenderer(binary string) *CLIRenderer {
	if binary == "" {
		binary = "mmdc"
	}
	return &CLIRenderer{Binary: binary}
}

// Available reports whether the renderer binary can be found, polling at
// a fixed interval until the context expires. It never blocks past the
// context deadline; callers proceed with best-effort results on timeout.
func (r *CLIRenderer) Available(ctx context.Context, interval time.Duration) bool {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	for {
		if _, err := exec.LookPath(r.Binary); err == nil {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}

// Render writes the source to a temp file, runs mmdc, and returns the
// produced SVG bytes.
func (r *CLIRenderer) Render(ctx context.Context, source string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "engeai-mermaid-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "diagram.mmd")
	outPath := filepath.Join(dir, "diagram.svg")
	if err := os.WriteFile(inPath, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("writing diagram source: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.Binary, "-i", inPath, "-o", outPath, "--backgroundColor", "transparent")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("mermaid render failed: %v: %s", err, stderr.String())
	}

	svg, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading rendered SVG: %w", err)
	}
	return svg, nil
}

// ErrorPanel builds the inline diagnostic markup shown in place of a
// diagram when rendering fails. It carries the failure text, the raw
// source, and the diagnostic flags the UI surfaces for debugging.
func ErrorPanel(renderErr error, source string, rendererLoaded bool, elementID string) string {
	var b bytes.Buffer
	b.WriteString(`<div class="artefact-error">`)
	fmt.Fprintf(&b, `<p class="artefact-error-message">Diagram could not be rendered: %s</p>`,
		html.EscapeString(renderErr.Error()))
	fmt.Fprintf(&b, `<pre class="artefact-error-source">%s</pre>`, html.EscapeString(source))
	fmt.Fprintf(&b, `<p class="artefact-error-flags">renderer=%t element=%t</p>`,
		rendererLoaded, elementID != "")
	b.WriteString(`</div>`)
	return b.String()
}

// Package panel owns the on-screen artifact panel: its construction,
// the open/close lifecycle, and the wiring between the artifact
// registry, the diagram renderer, and the interactive viewport.
package panel

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ubc/tlef-engeai-sub007/internal/viewport"
)

// Host is a container surface a panel can attach to. Two surfaces are
// recognized in practice (the onboarding view and the normal chat view);
// the controller attaches to whichever reports itself active. Bounds
// returns the currently visible panel dimensions, (0, 0) until layout
// has happened.
type Host interface {
	Active() bool
	Bounds() (width, height float64)
	Attach(markup string)
	Detach()
}

// Panel is the single on-screen diagram panel. One exists at a time by
// construction; it owns the viewport transform state, which dies with
// the panel.
type Panel struct {
	ArtifactID string
	Markup     string
	Diagram    string // rendered SVG, or diagnostic markup on failure
	SVG        []byte // raw renderer output, empty when rendering failed
	Viewport   *viewport.Viewport

	host       Host
	generation int
}

// panelTemplate builds the panel chrome: header with title, export and
// close controls, and the content area that hosts the viewport.
var panelTemplate = template.Must(template.New("panel").Parse(`<div class="artefact-panel" data-artefact-id="{{.ArtifactID}}">
  <div class="artefact-panel-header">
    <span class="artefact-panel-title">{{.Title}}</span>
    <button type="button" class="artefact-export" data-artefact-id="{{.ArtifactID}}">Export</button>
    <button type="button" class="artefact-close" data-artefact-id="{{.ArtifactID}}">Close</button>
  </div>
  <div class="artefact-panel-content" id="artefact-content-{{.ArtifactID}}"></div>
</div>`))

// buildMarkup renders the panel chrome for an artifact.
func buildMarkup(artifactID string) (string, error) {
	var buf bytes.Buffer
	err := panelTemplate.Execute(&buf, struct {
		ArtifactID string
		Title      string
	}{ArtifactID: artifactID, Title: "Diagram"})
	if err != nil {
		return "", fmt.Errorf("building panel markup: %w", err)
	}
	return buf.String(), nil
}

package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
)

// Tag grammar produced by the tutor prompt. The artifact pair wraps
// Mermaid source; the confidence tag is self-closing with a topic
// attribute.
const (
	artefactOpenTag  = "<Artefact>"
	artefactCloseTag = "</Artefact>"
)

// Renderer runs the transform chain for one chat surface. It owns the
// goldmark instance and registers extracted diagrams with the shared
// artifact registry.
type Renderer struct {
	registry *artifact.Registry
	md       goldmark.Markdown
	logger   *slog.Logger
}

// New creates a Renderer bound to the given registry.
func New(registry *artifact.Registry, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		registry: registry,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
				html.WithHardWraps(),
			),
		),
		logger: logger,
	}
}

// doc is the intermediate representation passed between passes: the
// working text plus the ordered side table of protected fragments.
// Passes take a doc and return a new doc; none mutates its input.
type doc struct {
	text         string
	marker       string // per-render marker prefix for protected fragments
	placeholders []placeholder
}

// placeholder maps a unique marker token to the finished markup fragment
// it stands in for. Every marker inserted by the protection pass must be
// replaced during restoration before the final markup is returned.
type placeholder struct {
	marker string
	markup string
}

// RenderText converts one complete message into HTML markup. Diagram
// tags become clickable placeholder buttons registered with the
// registry; code blocks survive untouched; everything else is markdown.
// Failures inside a single artifact degrade to its raw source and never
// abort the message.
func (r *Renderer) RenderText(text, messageID string) (string, error) {
	d := doc{text: text, marker: newMarkerPrefix()}

	d = r.protectCode(d)
	d = r.extractArtifacts(d, messageID)
	d = injectConfidenceChecks(d)

	out, err := r.markdown(d.text)
	if err != nil {
		return "", fmt.Errorf("markdown conversion: %w", err)
	}
	out = structuralTouchups(out)

	out, err = restore(out, d.placeholders, d.marker)
	if err != nil {
		return "", err
	}
	return out, nil
}

// markdown runs the goldmark conversion.
func (r *Renderer) markdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// structuralTouchups adds styling hooks to list containers in the
// rendered HTML.
func structuralTouchups(html string) string {
	html = strings.ReplaceAll(html, "<ul>", `<ul class="message-list">`)
	html = strings.ReplaceAll(html, "<ol>", `<ol class="message-list">`)
	return html
}

// restore substitutes every placeholder marker back with its stored
// markup, in discovery order. A marker that was wrapped in a paragraph
// by the markdown pass is unwrapped along the way. A marker left in the
// output afterwards is a pipeline bug, reported as an error rather than
// leaked to the caller; only the nonce-carrying prefix of this render
// trips the check, never look-alike text from the message itself.
func restore(html string, placeholders []placeholder, marker string) (string, error) {
	for _, ph := range placeholders {
		wrapped := "<p>" + ph.marker + "</p>"
		if strings.Contains(html, wrapped) {
			html = strings.Replace(html, wrapped, ph.markup, 1)
			continue
		}
		html = strings.Replace(html, ph.marker, ph.markup, 1)
	}
	if marker != "" && strings.Contains(html, marker) {
		return "", fmt.Errorf("unreplaced placeholder marker in rendered output")
	}
	return html, nil
}

// placeholderButton is the inert, clickable stand-in inserted where an
// artifact tag pair was found. It carries the stable artifact id; the
// lifecycle controller dispatches activation by that attribute.
func placeholderButton(id string) string {
	return fmt.Sprintf(
		`<br><button type="button" class="artefact-button" data-artefact-id="%s">View diagram</button><br>`,
		id)
}

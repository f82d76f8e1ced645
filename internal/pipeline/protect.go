package pipeline

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// markerStem starts every placeholder marker. A per-render nonce
// follows it, so message text containing the stem itself cannot
// collide with a live marker. The full token must survive the markdown
// pass byte-for-byte, so it uses only characters markdown treats as
// plain text.
const markerStem = "@@ENGEAI"

// newMarkerPrefix mints the marker prefix for one render.
func newMarkerPrefix() string {
	return markerStem + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

var (
	fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_+.-]*\\n.*?```")
	inlineCode  = regexp.MustCompile("`[^`\n]+`")
	blockMath   = regexp.MustCompile(`(?s)\$\$.*?\$\$`)
)

// protectCode replaces fenced code blocks, inline code spans, and block
// math regions with placeholder markers, storing the finished rendering
// of each in the side table in discovery order. It runs before every
// other pass so nothing ever rewrites code or math content — not the
// markdown pass, not artifact extraction.
func (r *Renderer) protectCode(d doc) doc {
	text := d.text
	placeholders := append([]placeholder(nil), d.placeholders...)

	protect := func(re *regexp.Regexp, render func(string) string) {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			marker := fmt.Sprintf("%s-%d@@", d.marker, len(placeholders))
			placeholders = append(placeholders, placeholder{marker: marker, markup: render(match)})
			return marker
		})
	}

	protect(fencedBlock, r.renderFence)
	protect(inlineCode, renderInlineCode)
	protect(blockMath, renderBlockMath)

	return doc{text: text, marker: d.marker, placeholders: placeholders}
}

// renderFence converts one fenced block to highlighted HTML by running
// it through the markdown engine in isolation. Falls back to an escaped
// <pre><code> wrapper if conversion fails.
func (r *Renderer) renderFence(fence string) string {
	out, err := r.markdown(fence)
	if err == nil {
		return strings.TrimSpace(out)
	}

	body := fence
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	}
	body = strings.TrimSuffix(strings.TrimSuffix(body, "```"), "\n")
	return "<pre><code>" + html.EscapeString(body) + "</code></pre>"
}

// renderInlineCode wraps a single-backtick span in a <code> tag.
func renderInlineCode(span string) string {
	return "<code>" + html.EscapeString(strings.Trim(span, "`")) + "</code>"
}

// renderBlockMath preserves a $$…$$ region with its original line
// breaks. The downstream math renderer is sensitive to them, so the
// region must never pass through newline-to-break conversion.
func renderBlockMath(math string) string {
	return `<div class="math-block">` + html.EscapeString(math) + `</div>`
}

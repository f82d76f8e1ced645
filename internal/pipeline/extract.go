package pipeline

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/ubc/tlef-engeai-sub007/internal/diagrams"
)

// extractArtifacts scans left-to-right for artifact tag pairs. Each
// complete pair is normalized, registered, and replaced by a clickable
// placeholder carrying the artifact id. A start tag without a matching
// end tag degrades to ordinary text: no artifact is created and the
// remaining text is left for the later passes.
func (r *Renderer) extractArtifacts(d doc, messageID string) doc {
	var b strings.Builder
	text := d.text
	index := 0

	for {
		start := strings.Index(text, artefactOpenTag)
		if start == -1 {
			b.WriteString(text)
			break
		}
		rest := text[start+len(artefactOpenTag):]
		end := strings.Index(rest, artefactCloseTag)
		if end == -1 {
			b.WriteString(text)
			break
		}

		source := diagrams.Normalize(strings.TrimSpace(rest[:end]))
		a := r.registry.Ensure(messageID, index, source)
		index++
		r.logger.Debug("extracted artifact", "id", a.ID, "message_id", messageID)

		b.WriteString(text[:start])
		b.WriteString(placeholderButton(a.ID))
		text = rest[end+len(artefactCloseTag):]
	}

	return doc{text: b.String(), marker: d.marker, placeholders: d.placeholders}
}

// confidenceTag matches the self-closing, topic-scoped confidence-check
// tag.
var confidenceTag = regexp.MustCompile(`<ConfidenceCheck\s+topic="([^"]*)"\s*/>`)

// injectConfidenceChecks replaces each confidence-check tag with a small
// interactive block offering two response affordances. This is textual
// substitution only — no registry interaction. It runs after code
// protection so a tag inside a code block is never matched.
func injectConfidenceChecks(d doc) doc {
	text := confidenceTag.ReplaceAllStringFunc(d.text, func(match string) string {
		topic := confidenceTag.FindStringSubmatch(match)[1]
		return confidenceBlock(topic)
	})
	return doc{text: text, marker: d.marker, placeholders: d.placeholders}
}

// confidenceBlock builds the two-button check-in markup for a topic.
func confidenceBlock(topic string) string {
	escaped := html.EscapeString(topic)
	return fmt.Sprintf(`<div class="confidence-check" data-topic="%s">`+
		`<span class="confidence-question">How confident are you with %s?</span>`+
		`<button type="button" class="confidence-yes" data-topic="%s">I&#39;ve got this</button>`+
		`<button type="button" class="confidence-no" data-topic="%s">Still unsure</button>`+
		`</div>`,
		escaped, escaped, escaped, escaped)
}

package pipeline

import (
	"strings"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
	"github.com/ubc/tlef-engeai-sub007/internal/diagrams"
)

// StreamResult is the outcome of one streaming pass over a growing
// message buffer.
type StreamResult struct {
	ProcessedText string
	HasArtifacts  bool
}

// ProcessChunk applies artifact detection to the in-flight buffer of one
// bot message. It looks for the last start and last end delimiter; when
// a complete pair exists, exactly one artifact — the most recently
// completed — is extracted, its tag pair swapped for a placeholder
// button, and onDetected fired so the host UI can react. With no
// complete pair the buffer is returned unmodified, and the caller
// re-invokes as more tokens arrive.
//
// The substitution is idempotent: placeholder markup contains no
// artifact delimiters, so re-processing an already-substituted buffer
// never re-matches it, and the registry deduplicates a replayed source.
func (r *Renderer) ProcessChunk(buffer, messageID string, onDetected func(*artifact.Artifact)) StreamResult {
	start := strings.LastIndex(buffer, artefactOpenTag)
	end := strings.LastIndex(buffer, artefactCloseTag)

	if start == -1 || end <= start {
		return StreamResult{
			ProcessedText: buffer,
			HasArtifacts:  containsPlaceholder(buffer),
		}
	}

	source := diagrams.Normalize(strings.TrimSpace(buffer[start+len(artefactOpenTag) : end]))
	a := r.registry.EnsureStreaming(messageID, source)
	r.logger.Debug("extracted streaming artifact", "id", a.ID, "message_id", messageID)

	processed := buffer[:start] + placeholderButton(a.ID) + buffer[end+len(artefactCloseTag):]
	if onDetected != nil {
		onDetected(a)
	}

	return StreamResult{ProcessedText: processed, HasArtifacts: true}
}

// containsPlaceholder reports whether the buffer already carries a
// substituted placeholder from an earlier pass.
func containsPlaceholder(buffer string) bool {
	return strings.Contains(buffer, `data-artefact-id="`)
}

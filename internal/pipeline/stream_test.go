package pipeline

import (
	"strings"
	"testing"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
)

func TestProcessChunkIncompletePair(t *testing.T) {
	r, reg := newTestRenderer()

	buffer := "The tutor says <Artefact>graph TD\nA--"
	res := r.ProcessChunk(buffer, "m1", nil)

	if res.ProcessedText != buffer {
		t.Errorf("incomplete pair should leave the buffer unmodified, got: %s", res.ProcessedText)
	}
	if res.HasArtifacts {
		t.Error("HasArtifacts should be false with no complete pair")
	}
	if got := len(reg.ByMessage("m1")); got != 0 {
		t.Errorf("partial artifact created: %d", got)
	}
}

func TestProcessChunkCompletePair(t *testing.T) {
	r, reg := newTestRenderer()

	var detected *artifact.Artifact
	buffer := "Intro <Artefact>graph TD\nA-->B</Artefact> more tokens"
	res := r.ProcessChunk(buffer, "m1", func(a *artifact.Artifact) { detected = a })

	if !res.HasArtifacts {
		t.Fatal("HasArtifacts should be true")
	}
	if detected == nil {
		t.Fatal("detection callback did not fire")
	}
	if detected.ID != "artefact-m1-s0" {
		t.Errorf("id = %q, want artefact-m1-s0", detected.ID)
	}
	if strings.Contains(res.ProcessedText, "<Artefact>") {
		t.Errorf("tag pair should be substituted, got: %s", res.ProcessedText)
	}
	if !strings.Contains(res.ProcessedText, `data-artefact-id="artefact-m1-s0"`) {
		t.Errorf("placeholder missing, got: %s", res.ProcessedText)
	}
	if !strings.Contains(res.ProcessedText, "Intro ") || !strings.Contains(res.ProcessedText, " more tokens") {
		t.Errorf("surrounding buffer text lost, got: %s", res.ProcessedText)
	}
	if got := len(reg.ByMessage("m1")); got != 1 {
		t.Errorf("artifacts = %d, want 1", got)
	}
}

func TestProcessChunkIdempotentOnSameBuffer(t *testing.T) {
	r, reg := newTestRenderer()

	buffer := "x <Artefact>graph TD\nA-->B</Artefact> y"
	r.ProcessChunk(buffer, "m1", nil)
	r.ProcessChunk(buffer, "m1", nil)

	if got := len(reg.ByMessage("m1")); got != 1 {
		t.Errorf("same completed buffer processed twice created %d artifacts, want 1", got)
	}
}

func TestProcessChunkDoesNotRematchPlaceholder(t *testing.T) {
	r, reg := newTestRenderer()

	buffer := "x <Artefact>graph TD\nA-->B</Artefact> y"
	first := r.ProcessChunk(buffer, "m1", nil)

	// The caller keeps the processed buffer and more tokens arrive.
	second := r.ProcessChunk(first.ProcessedText+" trailing", "m1", nil)

	if !second.HasArtifacts {
		t.Error("placeholder already in buffer should keep HasArtifacts true")
	}
	if got := len(reg.ByMessage("m1")); got != 1 {
		t.Errorf("placeholder re-matched as a new artifact: %d artifacts", got)
	}
	if strings.Count(second.ProcessedText, "artefact-button") != 1 {
		t.Errorf("placeholder duplicated, got: %s", second.ProcessedText)
	}
}

func TestProcessChunkExtractsMostRecentPair(t *testing.T) {
	r, _ := newTestRenderer()

	// Two pairs completed between polls: only the most recently
	// completed one is extracted on this call.
	buffer := "<Artefact>graph TD\nA-->B</Artefact> mid <Artefact>graph LR\nC-->D</Artefact>"
	res := r.ProcessChunk(buffer, "m1", nil)

	if !strings.Contains(res.ProcessedText, `data-artefact-id="artefact-m1-s0"`) {
		t.Errorf("expected placeholder for the last pair, got: %s", res.ProcessedText)
	}
	// Everything from the last start tag back is replaced in one span;
	// the earlier pair is picked up by the full render at end of stream.
	if strings.Contains(res.ProcessedText, "</Artefact>") && strings.Contains(res.ProcessedText, "C-->D") {
		t.Errorf("last pair not substituted, got: %s", res.ProcessedText)
	}
}

func TestProcessChunkWithCallbackNilSafe(t *testing.T) {
	r, _ := newTestRenderer()
	res := r.ProcessChunk("<Artefact>graph TD\nA-->B</Artefact>", "m1", nil)
	if !res.HasArtifacts {
		t.Error("nil callback should not prevent extraction")
	}
}

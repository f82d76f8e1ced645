package artifact

import (
	"errors"
	"testing"
)

func TestEnsureAssignsOrdinalIDs(t *testing.T) {
	r := NewRegistry(nil)

	a := r.Ensure("m1", 0, "graph TD\nA-->B")
	b := r.Ensure("m1", 1, "graph TD\nC-->D")

	if a.ID != "artefact-m1-0" {
		t.Errorf("first id = %q, want artefact-m1-0", a.ID)
	}
	if b.ID != "artefact-m1-1" {
		t.Errorf("second id = %q, want artefact-m1-1", b.ID)
	}
}

func TestEnsureIdempotentReplay(t *testing.T) {
	r := NewRegistry(nil)

	a := r.Ensure("m1", 0, "graph TD\nA-->B")
	again := r.Ensure("m1", 0, "graph TD\nA-->B")

	if a != again {
		t.Error("replaying the same content should return the existing artifact")
	}
	if got := len(r.ByMessage("m1")); got != 1 {
		t.Errorf("artifact count = %d, want 1", got)
	}
}

func TestEnsureStreamingDeduplicates(t *testing.T) {
	r := NewRegistry(nil)

	a := r.EnsureStreaming("m1", "graph TD\nA-->B")
	again := r.EnsureStreaming("m1", "graph TD\nA-->B")
	other := r.EnsureStreaming("m1", "graph TD\nC-->D")

	if a != again {
		t.Error("same source mid-stream must not create a second artifact")
	}
	if a.ID != "artefact-m1-s0" {
		t.Errorf("streaming id = %q, want artefact-m1-s0", a.ID)
	}
	if other.ID != "artefact-m1-s1" {
		t.Errorf("second streaming id = %q, want artefact-m1-s1", other.ID)
	}
}

func TestGetUnknown(t *testing.T) {
	r := NewRegistry(nil)
	if _, err := r.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleRoundTrip(t *testing.T) {
	r := NewRegistry(nil)
	a := r.Ensure("m1", 0, "graph TD\nA-->B")

	if _, open := r.Toggle(a.ID); !open {
		t.Fatal("first toggle should open")
	}
	if !a.IsOpen {
		t.Error("artifact should be open after first toggle")
	}
	if _, open := r.Toggle(a.ID); open {
		t.Fatal("second toggle should close")
	}
	if a.IsOpen {
		t.Error("artifact should be closed after second toggle")
	}
	if r.OpenID() != "" {
		t.Errorf("open slot = %q, want empty", r.OpenID())
	}
}

func TestSingleOpenInvariant(t *testing.T) {
	r := NewRegistry(nil)
	a := r.Ensure("m1", 0, "graph TD\nA-->B")
	b := r.Ensure("m2", 0, "graph TD\nC-->D")

	r.Toggle(a.ID)
	r.Toggle(b.ID)

	openCount := 0
	for _, art := range r.All() {
		if art.IsOpen {
			openCount++
		}
	}
	if openCount != 1 {
		t.Fatalf("open artifacts = %d, want 1", openCount)
	}
	if a.IsOpen {
		t.Error("previously-open artifact should have been closed")
	}
	if !b.IsOpen {
		t.Error("requested artifact should be open")
	}
}

func TestOpenUnknownIsNoop(t *testing.T) {
	r := NewRegistry(nil)
	if _, ok := r.Open("artefact-m9-0"); ok {
		t.Error("opening an unknown id should be a no-op")
	}
	if r.OpenID() != "" {
		t.Error("open slot should stay empty")
	}
}

func TestOpenDemoSynthesizes(t *testing.T) {
	r := NewRegistry(nil)

	a, ok := r.Open(DemoID)
	if !ok || a == nil {
		t.Fatal("demo id should synthesize an artifact")
	}
	if a.SourceCode == "" {
		t.Error("demo artifact should carry a diagram")
	}

	// Second open reuses the synthesized record.
	b, _ := r.Open(DemoID)
	if a != b {
		t.Error("demo artifact should be created once")
	}
}

func TestCloseWithNothingOpen(t *testing.T) {
	r := NewRegistry(nil)
	if got := r.Close(); got != nil {
		t.Errorf("close with nothing open = %v, want nil", got)
	}
}

func TestDeleteByMessage(t *testing.T) {
	r := NewRegistry(nil)
	a := r.Ensure("m1", 0, "graph TD\nA-->B")
	r.Ensure("m2", 0, "graph TD\nC-->D")
	r.Toggle(a.ID)

	r.DeleteByMessage("m1")

	if _, err := r.Get(a.ID); !errors.Is(err, ErrNotFound) {
		t.Error("deleted artifact should be gone")
	}
	if r.OpenID() != "" {
		t.Error("deleting the open artifact should clear the open slot")
	}
	if got := len(r.ByMessage("m2")); got != 1 {
		t.Errorf("other message's artifacts = %d, want 1", got)
	}
}

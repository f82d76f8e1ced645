package artifact

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry is the canonical store of artifacts for one chat surface.
// It mediates the single-open invariant: Open, Close and Toggle are the
// only mutations of an artifact's IsOpen field, and across the whole
// registry at most one artifact is open at any time.
type Registry struct {
	mu        sync.Mutex
	artifacts map[string]*Artifact
	byMessage map[string][]string // creation-ordered ids per message
	streamSeq map[string]int      // next streaming ordinal per message
	openID    string
	logger    *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		artifacts: make(map[string]*Artifact),
		byMessage: make(map[string][]string),
		streamSeq: make(map[string]int),
		logger:    logger,
	}
}

// Ensure registers the diagram at the given ordinal position within a
// message and returns it. Replaying already-parsed content is
// idempotent: if the artifact exists with the same source, the existing
// record is returned untouched. A changed source for the same slot
// replaces the source but keeps the record.
func (r *Registry) Ensure(messageID string, index int, source string) *Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := fmt.Sprintf("artefact-%s-%d", messageID, index)
	if a, ok := r.artifacts[id]; ok {
		if a.SourceCode != source {
			a.SourceCode = source
		}
		return a
	}
	return r.register(&Artifact{ID: id, MessageID: messageID, SourceCode: source})
}

// EnsureStreaming registers a diagram detected mid-stream. Calling it
// again with a source already registered for the message returns the
// existing artifact instead of creating a duplicate, so re-processing
// the same buffer never doubles up.
func (r *Registry) EnsureStreaming(messageID, source string) *Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.byMessage[messageID] {
		a := r.artifacts[id]
		if a.Streaming && a.SourceCode == source {
			return a
		}
	}
	seq := r.streamSeq[messageID]
	r.streamSeq[messageID] = seq + 1
	id := fmt.Sprintf("artefact-%s-s%d", messageID, seq)
	return r.register(&Artifact{ID: id, MessageID: messageID, SourceCode: source, Streaming: true})
}

// register adds a new artifact. Caller must hold r.mu.
func (r *Registry) register(a *Artifact) *Artifact {
	a.CreatedAt = time.Now()
	r.artifacts[a.ID] = a
	r.byMessage[a.MessageID] = append(r.byMessage[a.MessageID], a.ID)
	r.logger.Debug("registered artifact", "id", a.ID, "message_id", a.MessageID, "streaming", a.Streaming)
	return a
}

// Get returns the artifact with the given id, or ErrNotFound.
func (r *Registry) Get(id string) (*Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.artifacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// ByMessage returns the message's artifacts in creation order.
func (r *Registry) ByMessage(messageID string) []*Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byMessage[messageID]
	out := make([]*Artifact, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.artifacts[id])
	}
	return out
}

// All returns every artifact in the registry, grouped by message in
// creation order.
func (r *Registry) All() []*Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Artifact
	for _, ids := range r.byMessage {
		for _, id := range ids {
			out = append(out, r.artifacts[id])
		}
	}
	return out
}

// DeleteByMessage removes all artifacts belonging to the message. If
// the currently-open artifact is among them, the open slot is cleared.
func (r *Registry) DeleteByMessage(messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.byMessage[messageID] {
		if r.openID == id {
			r.openID = ""
		}
		delete(r.artifacts, id)
	}
	delete(r.byMessage, messageID)
	delete(r.streamSeq, messageID)
}

// Open marks the artifact with the given id open, closing whatever was
// open before. The close of the previous artifact fully completes its
// state flip before the new one opens. Unknown ids are a no-op and
// return false, with one exception: DemoID synthesizes the fixed
// demonstration artifact on first use.
func (r *Registry) Open(id string) (*Artifact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.artifacts[id]
	if !ok {
		if id != DemoID {
			return nil, false
		}
		a = r.register(&Artifact{ID: DemoID, MessageID: "demo", SourceCode: demoSource})
	}

	if r.openID != "" && r.openID != id {
		if prev, ok := r.artifacts[r.openID]; ok {
			prev.IsOpen = false
		}
	}
	a.IsOpen = true
	r.openID = id
	r.logger.Debug("opened artifact", "id", id)
	return a, true
}

// Close marks the currently-open artifact closed and clears the open
// slot. It returns the artifact that was closed, or nil if none was
// open.
func (r *Registry) Close() *Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.openID == "" {
		return nil
	}
	a := r.artifacts[r.openID]
	if a != nil {
		a.IsOpen = false
	}
	r.logger.Debug("closed artifact", "id", r.openID)
	r.openID = ""
	return a
}

// Toggle opens the artifact if it is not the currently-open one, and
// closes it if it is. The returned bool reports whether the artifact is
// open after the call.
func (r *Registry) Toggle(id string) (*Artifact, bool) {
	r.mu.Lock()
	open := r.openID == id
	r.mu.Unlock()

	if open {
		return r.Close(), false
	}
	a, ok := r.Open(id)
	return a, ok
}

// OpenID returns the id of the currently-open artifact, or "".
func (r *Registry) OpenID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openID
}

// Package artifact manages the diagram artifacts extracted from tutor
// messages.
//
// An artifact is one Mermaid diagram pulled out of a message by the text
// pipeline. Artifacts live in a Registry, which owns the invariant that
// at most one artifact is open at any time. The Registry is an explicit
// constructed instance, not package state, so independent chat surfaces
// (and tests) never collide.
//
// Thread safety: all Registry operations are safe for concurrent use.
//
// Lifecycle: artifacts are created when a complete tag pair is seen and
// are only removed when a collaborator explicitly deletes them by
// message; the registry never garbage-collects on its own.
package artifact

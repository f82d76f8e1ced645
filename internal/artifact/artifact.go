package artifact

import "time"

// Artifact represents one extracted diagram.
//
// Zero values:
//   - ID: "" (invalid, assigned by the Registry)
//   - MessageID: "" (weak back-reference to the owning message)
//   - SourceCode: "" (Mermaid source, post-normalization)
//   - IsOpen: false (mutated only through Registry operations)
type Artifact struct {
	ID         string
	MessageID  string
	SourceCode string
	IsOpen     bool
	Streaming  bool // created mid-stream rather than from a complete message
	CreatedAt  time.Time
}

// DemoID is the reserved identifier for the demonstration artifact. The
// registry synthesizes it on first open so the onboarding flow has a
// diagram to show before the tutor has produced one.
const DemoID = "artefact-demo"

// demoSource is the fixed demonstration diagram.
const demoSource = `graph TD
    A[Ask a question] --> B[Tutor responds]
    B --> C{Diagram included?}
    C -->|Yes| D[Open the artefact panel]
    C -->|No| A
    D --> E[Pan, zoom, export]`

// Package pipeline converts raw tutor message text into safe, structured
// HTML markup.
//
// Rendering runs a fixed, ordered chain of passes. Code blocks and block
// math are protected behind placeholder markers first, so no later pass
// can corrupt their contents; artifact tags and confidence-check tags
// are substituted next; markdown conversion and structural touch-ups
// follow; finally every protected fragment is restored in discovery
// order. Each pass is a pure function over an intermediate value (text
// plus a side table of protected fragments), so passes can be tested in
// isolation and a failure in one artifact never aborts the message.
//
// The streaming variant applies the same artifact detection to a growing
// buffer as tokens arrive, registering an artifact the moment a complete
// tag pair is seen.
package pipeline

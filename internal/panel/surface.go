package panel

import "sync"

// Surface is a headless Host for server-driven panels. It is always
// active and reports fixed nominal dimensions, so the controller's
// visibility wait resolves immediately. API handlers read the attached
// markup back out of the lifecycle responses.
type Surface struct {
	mu       sync.Mutex
	width    float64
	height   float64
	markup   string
	attached bool
}

// NewSurface creates a Surface with the given nominal dimensions.
// Non-positive dimensions fall back to 800x600.
func NewSurface(width, height float64) *Surface {
	if width <= 0 || height <= 0 {
		width, height = 800, 600
	}
	return &Surface{width: width, height: height}
}

func (s *Surface) Active() bool { return true }

func (s *Surface) Bounds() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Surface) Attach(markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markup = markup
	s.attached = true
}

func (s *Surface) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markup = ""
	s.attached = false
}

// Attached reports whether a panel is currently attached, and its
// markup.
func (s *Surface) Attached() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markup, s.attached
}

package panel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
	"github.com/ubc/tlef-engeai-sub007/internal/viewport"
)

// fakeHost is a test surface with controllable visibility.
type fakeHost struct {
	mu       sync.Mutex
	active   bool
	w, h     float64
	attached string
	detached int
}

func (f *fakeHost) Active() bool { f.mu.Lock(); defer f.mu.Unlock(); return f.active }
func (f *fakeHost) Bounds() (float64, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w, f.h
}
func (f *fakeHost) Attach(markup string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = markup
}
func (f *fakeHost) Detach() { f.mu.Lock(); defer f.mu.Unlock(); f.detached++ }

// fakeRenderer returns canned SVG or a canned error.
type fakeRenderer struct {
	svg []byte
	err error
}

func (f *fakeRenderer) Render(_ context.Context, _ string) ([]byte, error) {
	return f.svg, f.err
}

func fastTimings() Timings {
	return Timings{
		VisibilityTimeout: 50 * time.Millisecond,
		PollInterval:      time.Millisecond,
		CloseDelay:        5 * time.Millisecond,
	}
}

func newTestController(r *fakeRenderer) (*Controller, *artifact.Registry, *fakeHost) {
	reg := artifact.NewRegistry(nil)
	host := &fakeHost{active: true, w: 800, h: 600}
	c := NewController(reg, r, []Host{host}, Config{Timings: fastTimings()}, nil)
	return c, reg, host
}

func waitPhase(t *testing.T, c *Controller, want Phase) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.Phase() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("phase = %s, want %s", c.Phase(), want)
}

func TestOpenBuildsPanel(t *testing.T) {
	c, reg, host := newTestController(&fakeRenderer{svg: []byte("<svg>ok</svg>")})
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	p := c.Open(context.Background(), a.ID)
	if p == nil {
		t.Fatal("expected a panel")
	}
	if c.Phase() != PhaseOpen {
		t.Errorf("phase = %s, want open", c.Phase())
	}
	if !strings.Contains(host.attached, `data-artefact-id="artefact-m1-0"`) {
		t.Errorf("panel markup not attached to host: %q", host.attached)
	}
	if !strings.Contains(host.attached, "artefact-export") || !strings.Contains(host.attached, "artefact-close") {
		t.Errorf("panel header controls missing: %q", host.attached)
	}
	if p.Diagram != "<svg>ok</svg>" {
		t.Errorf("diagram = %q", p.Diagram)
	}
	if p.Viewport == nil || p.Viewport.Width != 800 {
		t.Errorf("viewport not wired to host bounds: %+v", p.Viewport)
	}
	if !a.IsOpen {
		t.Error("artifact should be marked open")
	}
}

func TestOpenUnknownIsNoop(t *testing.T) {
	c, _, host := newTestController(&fakeRenderer{svg: []byte("<svg/>")})

	if p := c.Open(context.Background(), "artefact-zzz-0"); p != nil {
		t.Error("unknown id should be a no-op")
	}
	if host.attached != "" {
		t.Error("no panel should have been attached")
	}
	if c.Phase() != PhaseClosed {
		t.Errorf("phase = %s, want closed", c.Phase())
	}
}

func TestOpenDemoArtifact(t *testing.T) {
	c, _, _ := newTestController(&fakeRenderer{svg: []byte("<svg/>")})

	p := c.Open(context.Background(), artifact.DemoID)
	if p == nil {
		t.Fatal("demo id should open a synthesized artifact")
	}
	if p.ArtifactID != artifact.DemoID {
		t.Errorf("panel artifact = %q", p.ArtifactID)
	}
}

func TestRenderFailureShowsDiagnosticPanel(t *testing.T) {
	c, reg, _ := newTestController(&fakeRenderer{err: errors.New("syntax rejected")})
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	p := c.Open(context.Background(), a.ID)
	if p == nil {
		t.Fatal("render failure must not abort the open")
	}
	if !strings.Contains(p.Diagram, "artefact-error") {
		t.Errorf("expected diagnostic panel, got: %q", p.Diagram)
	}
	if !strings.Contains(p.Diagram, "syntax rejected") {
		t.Errorf("diagnostic should carry the failure text, got: %q", p.Diagram)
	}
	if c.Phase() != PhaseOpen {
		t.Errorf("phase = %s, want open despite render failure", c.Phase())
	}
}

func TestVisibilityTimeoutProceeds(t *testing.T) {
	c, reg, host := newTestController(&fakeRenderer{svg: []byte("<svg/>")})
	host.mu.Lock()
	host.w, host.h = 0, 0 // never becomes visible
	host.mu.Unlock()
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	start := time.Now()
	p := c.Open(context.Background(), a.ID)
	if p == nil {
		t.Fatal("open must proceed after the visibility timeout")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("open hung for %s", elapsed)
	}
	if c.Phase() != PhaseOpen {
		t.Errorf("phase = %s, want open", c.Phase())
	}
}

func TestActivateToggles(t *testing.T) {
	c, reg, host := newTestController(&fakeRenderer{svg: []byte("<svg/>")})
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	c.Activate(context.Background(), a.ID)
	if !a.IsOpen {
		t.Fatal("first activate should open")
	}

	c.Activate(context.Background(), a.ID)
	if a.IsOpen {
		t.Fatal("second activate should close")
	}
	waitPhase(t, c, PhaseClosed)

	deadline := time.Now().Add(time.Second)
	for {
		host.mu.Lock()
		detached := host.detached
		host.mu.Unlock()
		if detached == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("host detached %d times, want 1", detached)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestActivateSwitchesArtifacts(t *testing.T) {
	c, reg, _ := newTestController(&fakeRenderer{svg: []byte("<svg/>")})
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")
	b := reg.Ensure("m2", 0, "graph LR\nC-->D")

	c.Activate(context.Background(), a.ID)
	c.Activate(context.Background(), b.ID)

	if a.IsOpen {
		t.Error("first artifact should have closed")
	}
	if !b.IsOpen {
		t.Error("second artifact should be open")
	}
	if got := c.Panel().ArtifactID; got != b.ID {
		t.Errorf("panel shows %q, want %q", got, b.ID)
	}
}

func TestRapidReopenSupersedesStaleClose(t *testing.T) {
	c, reg, host := newTestController(&fakeRenderer{svg: []byte("<svg/>")})
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	c.Open(context.Background(), a.ID)
	c.Close()
	// Reopen before the close animation completes.
	c.Open(context.Background(), a.ID)

	time.Sleep(30 * time.Millisecond) // let any stale teardown fire

	if c.Phase() != PhaseOpen {
		t.Errorf("phase = %s, want open (stale close must not tear down the new panel)", c.Phase())
	}
	if c.Panel() == nil {
		t.Error("panel was torn down by a stale close")
	}
	host.mu.Lock()
	detached := host.detached
	host.mu.Unlock()
	if detached != 0 {
		t.Errorf("host detached %d times, want 0", detached)
	}
}

func TestCloseWithNothingOpen(t *testing.T) {
	c, _, _ := newTestController(&fakeRenderer{svg: []byte("<svg/>")})
	c.Close() // must not panic or change phase
	if c.Phase() != PhaseClosed {
		t.Errorf("phase = %s, want closed", c.Phase())
	}
}

func TestEscapeSingleShot(t *testing.T) {
	c, reg, _ := newTestController(&fakeRenderer{svg: []byte("<svg/>")})
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	if c.HandleEscape() {
		t.Error("escape before any open should not be consumed")
	}

	c.Open(context.Background(), a.ID)
	if !c.HandleEscape() {
		t.Error("escape while open should close")
	}
	if a.IsOpen {
		t.Error("artifact should be closed after escape")
	}
	if c.HandleEscape() {
		t.Error("escape handler must deregister after firing")
	}
}

func TestConfiguredZoomBoundsReachViewport(t *testing.T) {
	reg := artifact.NewRegistry(nil)
	host := &fakeHost{active: true, w: 800, h: 600}
	cfg := Config{Timings: fastTimings(), MinZoom: 0.25, MaxZoom: 8}
	c := NewController(reg, &fakeRenderer{svg: []byte("<svg/>")}, []Host{host}, cfg, nil)
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	p := c.Open(context.Background(), a.ID)
	if p == nil || p.Viewport == nil {
		t.Fatal("expected a panel with a viewport")
	}
	if p.Viewport.MinZoom != 0.25 || p.Viewport.MaxZoom != 8 {
		t.Errorf("viewport zoom bounds = [%v, %v], want [0.25, 8]",
			p.Viewport.MinZoom, p.Viewport.MaxZoom)
	}
}

func TestZeroZoomBoundsKeepDefaults(t *testing.T) {
	c, reg, _ := newTestController(&fakeRenderer{svg: []byte("<svg/>")})
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	p := c.Open(context.Background(), a.ID)
	if p.Viewport.MinZoom != viewport.DefaultMinZoom || p.Viewport.MaxZoom != viewport.DefaultMaxZoom {
		t.Errorf("viewport zoom bounds = [%v, %v], want defaults",
			p.Viewport.MinZoom, p.Viewport.MaxZoom)
	}
}

func TestSurfaceHostsPanel(t *testing.T) {
	reg := artifact.NewRegistry(nil)
	surface := NewSurface(1024, 768)
	c := NewController(reg, &fakeRenderer{svg: []byte("<svg/>")}, []Host{surface}, Config{Timings: fastTimings()}, nil)
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	p := c.Open(context.Background(), a.ID)
	if p == nil {
		t.Fatal("expected a panel")
	}
	if p.Viewport.Width != 1024 || p.Viewport.Height != 768 {
		t.Errorf("viewport = %vx%v, want surface bounds", p.Viewport.Width, p.Viewport.Height)
	}
	markup, attached := surface.Attached()
	if !attached || !strings.Contains(markup, a.ID) {
		t.Errorf("surface attached = %v, markup = %q", attached, markup)
	}

	c.Close()
	waitPhase(t, c, PhaseClosed)
	deadline := time.Now().Add(time.Second)
	for {
		if _, still := surface.Attached(); !still {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("surface still attached after close")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNilRendererDegrades(t *testing.T) {
	reg := artifact.NewRegistry(nil)
	host := &fakeHost{active: true, w: 800, h: 600}
	c := NewController(reg, nil, []Host{host}, Config{Timings: fastTimings()}, nil)
	a := reg.Ensure("m1", 0, "graph TD\nA-->B")

	p := c.Open(context.Background(), a.ID)
	if p == nil {
		t.Fatal("missing renderer must not abort the open")
	}
	if !strings.Contains(p.Diagram, "renderer=false") {
		t.Errorf("diagnostic should flag the missing renderer, got: %q", p.Diagram)
	}
}

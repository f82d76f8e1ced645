package panel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ubc/tlef-engeai-sub007/internal/artifact"
	"github.com/ubc/tlef-engeai-sub007/internal/diagrams"
	"github.com/ubc/tlef-engeai-sub007/internal/viewport"
)

// Phase is the lifecycle state of the panel.
type Phase string

const (
	PhaseClosed  Phase = "closed"
	PhaseOpening Phase = "opening"
	PhaseOpen    Phase = "open"
	PhaseClosing Phase = "closing"
)

// Timings bound the controller's waits. Every wait resolves — polling
// gives up and proceeds rather than hanging.
type Timings struct {
	VisibilityTimeout time.Duration // max wait for nonzero panel bounds
	PollInterval      time.Duration // visibility poll step
	CloseDelay        time.Duration // animation time before teardown
}

// DefaultTimings matches the UI's animation and layout behavior.
func DefaultTimings() Timings {
	return Timings{
		VisibilityTimeout: 3 * time.Second,
		PollInterval:      100 * time.Millisecond,
		CloseDelay:        300 * time.Millisecond,
	}
}

// Config holds the controller's tunables. Zero zoom bounds fall back
// to the viewport defaults.
type Config struct {
	Timings Timings
	MinZoom float64
	MaxZoom float64
}

// DefaultConfig returns a Config with the default timings and zoom
// bounds.
func DefaultConfig() Config {
	return Config{Timings: DefaultTimings()}
}

// Controller drives the panel lifecycle. It is the explicit dispatch
// point for placeholder activation: the UI calls Activate with the id
// carried by the clicked placeholder, and the controller decides what
// opening, closing, or switching means.
type Controller struct {
	mu          sync.Mutex
	registry    *artifact.Registry
	renderer    diagrams.Renderer
	hosts       []Host
	cfg         Config
	logger      *slog.Logger
	phase       Phase
	panel       *Panel
	generation  int
	escapeArmed bool
}

// NewController creates a Controller over the registry and renderer,
// attaching panels to the first active host.
func NewController(registry *artifact.Registry, renderer diagrams.Renderer, hosts []Host, cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		registry: registry,
		renderer: renderer,
		hosts:    hosts,
		cfg:      cfg,
		logger:   logger,
		phase:    PhaseClosed,
	}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Panel returns the current panel, or nil when closed.
func (c *Controller) Panel() *Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel
}

// Activate toggles the artifact with the given id: activating the open
// artifact closes it, activating any other closes the current one (if
// any) and opens the requested one. Unknown ids are a no-op, except the
// reserved demo id.
func (c *Controller) Activate(ctx context.Context, id string) *Panel {
	if c.registry.OpenID() == id {
		c.Close()
		return nil
	}
	return c.Open(ctx, id)
}

// Open opens the artifact with the given id and builds the panel. The
// registry completes the close of any previously-open artifact before
// the new open begins. After a bounded wait for the host to report
// visible dimensions (proceeding anyway on timeout), the diagram render
// is attempted exactly once; render failure degrades to an inline
// diagnostic panel. Returns nil when the id is unknown.
func (c *Controller) Open(ctx context.Context, id string) *Panel {
	a, ok := c.registry.Open(id)
	if !ok {
		return nil
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.phase = PhaseOpening
	host := c.activeHost()

	markup, err := buildMarkup(a.ID)
	if err != nil {
		// Template execution over a fixed template cannot fail in
		// practice; degrade to an empty shell if it somehow does.
		c.logger.Error("panel markup", "error", err)
		markup = ""
	}
	p := &Panel{ArtifactID: a.ID, Markup: markup, host: host, generation: gen}
	c.panel = p
	c.mu.Unlock()

	if host != nil {
		host.Attach(markup)
	}

	w, h := c.waitVisible(ctx, host)
	vp := viewport.New(w, h)
	if c.cfg.MinZoom > 0 {
		vp.MinZoom = c.cfg.MinZoom
	}
	if c.cfg.MaxZoom > 0 {
		vp.MaxZoom = c.cfg.MaxZoom
	}
	p.Viewport = vp

	// Exactly one render attempt per open, after the wait resolves.
	svg, renderErr := c.render(ctx, a.SourceCode)
	if renderErr != nil {
		c.logger.Warn("diagram render failed", "artifact", a.ID, "error", renderErr)
		p.Diagram = diagrams.ErrorPanel(renderErr, a.SourceCode, c.renderer != nil, a.ID)
	} else {
		p.SVG = svg
		p.Diagram = string(svg)
	}

	c.mu.Lock()
	if c.generation == gen {
		c.phase = PhaseOpen
		c.escapeArmed = true
	}
	c.mu.Unlock()

	c.logger.Debug("opened panel", "artifact", a.ID)
	return p
}

// Close closes the currently-open artifact. The state flip happens
// immediately; panel teardown follows after the closing animation delay.
// A stale teardown is superseded when a newer open has rebuilt the panel
// before the delay fires. No-op when nothing is open.
func (c *Controller) Close() {
	if c.registry.Close() == nil {
		return
	}

	c.mu.Lock()
	c.phase = PhaseClosing
	c.escapeArmed = false
	gen := c.generation
	delay := c.cfg.Timings.CloseDelay
	c.mu.Unlock()

	time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.generation != gen {
			// A newer open rebuilt the panel; this teardown is stale.
			c.mu.Unlock()
			return
		}
		p := c.panel
		c.panel = nil
		c.phase = PhaseClosed
		c.mu.Unlock()

		if p != nil && p.host != nil {
			p.host.Detach()
		}
	})
}

// HandleEscape closes the panel on an escape key press. The handler is
// single-shot: it arms on open and deregisters itself after firing.
// Returns whether the press was consumed.
func (c *Controller) HandleEscape() bool {
	c.mu.Lock()
	armed := c.escapeArmed
	c.escapeArmed = false
	c.mu.Unlock()

	if !armed {
		return false
	}
	c.Close()
	return true
}

// activeHost picks the surface the panel should attach to. Caller holds
// c.mu.
func (c *Controller) activeHost() Host {
	for _, h := range c.hosts {
		if h.Active() {
			return h
		}
	}
	if len(c.hosts) > 0 {
		return c.hosts[0]
	}
	return nil
}

// waitVisible polls the host until it reports nonzero dimensions, the
// timeout elapses, or the context is canceled. It always resolves with
// the best bounds seen; a timeout proceeds rather than hanging.
func (c *Controller) waitVisible(ctx context.Context, host Host) (float64, float64) {
	if host == nil {
		return 0, 0
	}
	deadline := time.Now().Add(c.cfg.Timings.VisibilityTimeout)
	for {
		w, h := host.Bounds()
		if w > 0 && h > 0 {
			return w, h
		}
		if time.Now().After(deadline) {
			c.logger.Warn("panel visibility wait timed out, proceeding")
			return w, h
		}
		select {
		case <-ctx.Done():
			w, h := host.Bounds()
			return w, h
		case <-time.After(c.cfg.Timings.PollInterval):
		}
	}
}

// render invokes the black-box diagram renderer.
func (c *Controller) render(ctx context.Context, source string) ([]byte, error) {
	if c.renderer == nil {
		return nil, errRendererUnavailable
	}
	return c.renderer.Render(ctx, source)
}

type controllerError string

func (e controllerError) Error() string { return string(e) }

const errRendererUnavailable = controllerError("diagram renderer unavailable")

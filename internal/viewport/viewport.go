// Package viewport implements the 2-D pan/zoom transform math for the
// artifact panel. One Viewport exists per rendered panel; it is pure
// state plus arithmetic, with no event loop and no suspension — every
// input event synchronously recomputes the transform.
package viewport

import (
	"fmt"
	"math"
)

// Default zoom bounds and input sensitivities.
const (
	DefaultMinZoom = 0.5
	DefaultMaxZoom = 4.0

	wheelSensitivity = 0.001 // scale change per wheel delta unit
	pinchSensitivity = 0.005 // scale change per pixel of distance change
)

// Point is a pointer or touch position in panel coordinates.
type Point struct {
	X, Y float64
}

// Viewport holds the transform applied to the diagram element.
type Viewport struct {
	Scale      float64
	TranslateX float64
	TranslateY float64

	MinZoom float64
	MaxZoom float64

	// Panel dimensions, used to anchor zoom relative to the center.
	Width  float64
	Height float64

	dragging  bool
	lastDrag  Point
	pinching  bool
	lastPinch float64
}

// New creates a Viewport at identity transform for a panel of the given
// size.
func New(width, height float64) *Viewport {
	return &Viewport{
		Scale:   1,
		MinZoom: DefaultMinZoom,
		MaxZoom: DefaultMaxZoom,
		Width:   width,
		Height:  height,
	}
}

// Wheel applies a zoom step anchored at the pointer position (x, y).
// The translation is adjusted by the scale delta times the pointer's
// offset from the panel center, so the point under the cursor stays
// fixed. A positive delta (scroll down) zooms out.
func (v *Viewport) Wheel(x, y, delta float64) {
	oldScale := v.Scale
	newScale := v.clamp(oldScale * (1 - delta*wheelSensitivity))
	if newScale == oldScale {
		return
	}

	offsetX := x - v.Width/2 - v.TranslateX
	offsetY := y - v.Height/2 - v.TranslateY
	ratio := newScale/oldScale - 1

	v.TranslateX -= offsetX * ratio
	v.TranslateY -= offsetY * ratio
	v.Scale = newScale
}

// DragStart begins a primary-button (or single-touch) pan.
func (v *Viewport) DragStart(x, y float64) {
	v.dragging = true
	v.lastDrag = Point{X: x, Y: y}
}

// DragMove pans by the pointer movement since the last event. It is a
// no-op unless a drag is in progress.
func (v *Viewport) DragMove(x, y float64) {
	if !v.dragging {
		return
	}
	v.TranslateX += x - v.lastDrag.X
	v.TranslateY += y - v.lastDrag.Y
	v.lastDrag = Point{X: x, Y: y}
}

// DragEnd finishes a pan.
func (v *Viewport) DragEnd() {
	v.dragging = false
}

// Reset restores the identity transform. Bound to double-click.
func (v *Viewport) Reset() {
	v.Scale = 1
	v.TranslateX = 0
	v.TranslateY = 0
}

// TouchStart begins a touch gesture: one point pans, two points pinch.
func (v *Viewport) TouchStart(points []Point) {
	switch len(points) {
	case 1:
		v.pinching = false
		v.DragStart(points[0].X, points[0].Y)
	case 2:
		v.dragging = false
		v.pinching = true
		v.lastPinch = distance(points[0], points[1])
	}
}

// TouchMove continues the active touch gesture. Pinch zoom is scaled by
// the change in inter-touch distance and clamped to the zoom bounds.
func (v *Viewport) TouchMove(points []Point) {
	switch len(points) {
	case 1:
		v.DragMove(points[0].X, points[0].Y)
	case 2:
		if !v.pinching {
			v.pinching = true
			v.lastPinch = distance(points[0], points[1])
			return
		}
		d := distance(points[0], points[1])
		v.Scale = v.clamp(v.Scale + (d-v.lastPinch)*pinchSensitivity)
		v.lastPinch = d
	}
}

// TouchEnd finishes the active touch gesture.
func (v *Viewport) TouchEnd() {
	v.dragging = false
	v.pinching = false
}

// Transform returns the CSS transform string for the diagram element.
func (v *Viewport) Transform() string {
	return fmt.Sprintf("translate(%.4gpx, %.4gpx) scale(%.4g)", v.TranslateX, v.TranslateY, v.Scale)
}

func (v *Viewport) clamp(scale float64) float64 {
	return math.Min(v.MaxZoom, math.Max(v.MinZoom, scale))
}

func distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

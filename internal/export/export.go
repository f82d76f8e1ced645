// Package export saves a rendered diagram to an image file. PNG export
// is attempted first by rasterizing the SVG at a supersampled size; any
// failure along that path falls back to writing the SVG itself with
// explicit namespaces and a white background.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// superSample is the fixed raster oversampling factor for sharper output.
const superSample = 2

// Exporter writes diagram files into a downloads directory. File names
// derive deterministically from the artifact id, with the extension
// reporting which path succeeded.
type Exporter struct {
	dir    string
	logger *slog.Logger
}

// New creates an Exporter writing into dir.
func New(dir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{dir: dir, logger: logger}
}

// Export saves the rendered SVG for the artifact and returns the written
// file path. PNG first; SVG fallback on any PNG failure. Only when both
// paths fail does Export return an error.
func (e *Exporter) Export(svg []byte, artifactID string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating downloads dir: %w", err)
	}

	path, err := e.exportPNG(svg, artifactID)
	if err == nil {
		return path, nil
	}
	e.logger.Warn("png export failed, falling back to svg", "artifact", artifactID, "error", err)

	path, err = e.exportSVG(svg, artifactID)
	if err != nil {
		return "", fmt.Errorf("exporting %s: %w", artifactID, err)
	}
	return path, nil
}

// ExportSVG saves the diagram as a standalone SVG, skipping the raster
// path. Used when the caller asks for vector output explicitly.
func (e *Exporter) ExportSVG(svg []byte, artifactID string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating downloads dir: %w", err)
	}
	return e.exportSVG(svg, artifactID)
}

// exportPNG rasterizes the SVG onto a white surface at the supersampled
// size and encodes it.
func (e *Exporter) exportPNG(svg []byte, artifactID string) (string, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(string(svg)))
	if err != nil {
		return "", fmt.Errorf("parsing svg: %w", err)
	}

	w := icon.ViewBox.W
	h := icon.ViewBox.H
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("svg has no measurable bounding box")
	}

	iw := int(w * superSample)
	ih := int(h * superSample)
	img := image.NewRGBA(image.Rect(0, 0, iw, ih))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	icon.SetTarget(0, 0, float64(iw), float64(ih))
	scanner := rasterx.NewScannerGV(iw, ih, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(iw, ih, scanner), 1)

	path := filepath.Join(e.dir, artifactID+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encoding png: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// exportSVG writes the vector source itself, forcing explicit namespace
// declarations and injecting a white background rectangle as the first
// child so viewers do not show a transparent canvas.
func (e *Exporter) exportSVG(svg []byte, artifactID string) (string, error) {
	out := withNamespaces(string(svg))
	out = withBackground(out)

	path := filepath.Join(e.dir, artifactID+".svg")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// withNamespaces ensures the root element declares the SVG and xlink
// namespaces.
func withNamespaces(svg string) string {
	start := strings.Index(svg, "<svg")
	if start == -1 {
		return svg
	}
	end := strings.Index(svg[start:], ">")
	if end == -1 {
		return svg
	}
	openTag := svg[start : start+end]

	var add strings.Builder
	if !strings.Contains(openTag, "xmlns=") {
		add.WriteString(` xmlns="http://www.w3.org/2000/svg"`)
	}
	if !strings.Contains(openTag, "xmlns:xlink=") {
		add.WriteString(` xmlns:xlink="http://www.w3.org/1999/xlink"`)
	}
	if add.Len() == 0 {
		return svg
	}
	return svg[:start+end] + add.String() + svg[start+end:]
}

// withBackground injects a white rect as the first child of the root
// element.
func withBackground(svg string) string {
	start := strings.Index(svg, "<svg")
	if start == -1 {
		return svg
	}
	end := strings.Index(svg[start:], ">")
	if end == -1 {
		return svg
	}
	insert := start + end + 1
	return svg[:insert] + `<rect width="100%" height="100%" fill="white"/>` + svg[insert:]
}

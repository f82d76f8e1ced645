package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const simpleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20" width="40" height="20"><rect x="0" y="0" width="40" height="20" fill="blue"/></svg>`

func TestExportPNG(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, nil)

	path, err := e.Export([]byte(simpleSVG), "artefact-m1-0")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Errorf("expected png path, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	// PNG magic bytes.
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Errorf("file is not a PNG (%d bytes)", len(data))
	}
}

func TestExportSVGDirect(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, nil)

	path, err := e.ExportSVG([]byte(simpleSVG), "artefact-m1-0")
	if err != nil {
		t.Fatalf("ExportSVG: %v", err)
	}
	if filepath.Ext(path) != ".svg" {
		t.Errorf("expected svg path, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), `fill="white"`) {
		t.Error("expected white background in direct SVG export")
	}
}

func TestExportFallsBackToSVG(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, nil)

	// No parsable bounding box: the PNG path fails and SVG is written.
	broken := `<svg><circle r="5"/></svg>`
	path, err := e.Export([]byte(broken), "artefact-m1-1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Ext(path) != ".svg" {
		t.Errorf("expected svg fallback, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `xmlns="http://www.w3.org/2000/svg"`) {
		t.Errorf("namespace not forced, got: %s", out)
	}
	if !strings.Contains(out, `xmlns:xlink=`) {
		t.Errorf("xlink namespace not forced, got: %s", out)
	}
}

func TestSVGBackgroundIsFirstChild(t *testing.T) {
	out := withBackground(`<svg viewBox="0 0 10 10"><g id="content"/></svg>`)

	rectIdx := strings.Index(out, "<rect")
	contentIdx := strings.Index(out, `<g id="content"`)
	if rectIdx == -1 {
		t.Fatalf("background rect missing: %s", out)
	}
	if rectIdx > contentIdx {
		t.Errorf("background rect must come before content: %s", out)
	}
	if !strings.Contains(out, `fill="white"`) {
		t.Errorf("background must be white: %s", out)
	}
}

func TestWithNamespacesIdempotent(t *testing.T) {
	once := withNamespaces(`<svg viewBox="0 0 1 1"></svg>`)
	twice := withNamespaces(once)
	if once != twice {
		t.Errorf("namespace injection is not idempotent:\nonce:  %s\ntwice: %s", once, twice)
	}
	if strings.Count(twice, `xmlns="http://www.w3.org/2000/svg"`) != 1 {
		t.Errorf("namespace duplicated: %s", twice)
	}
}

func TestExportFileNamesFromArtifactID(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, nil)

	path, err := e.Export([]byte(simpleSVG), "artefact-m9-s0")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(path) != "artefact-m9-s0.png" {
		t.Errorf("file name = %s, want artefact-m9-s0.png", filepath.Base(path))
	}
}

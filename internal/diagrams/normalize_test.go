package diagrams

import (
	"strings"
	"testing"
)

func TestNormalizeQuotesParenLabels(t *testing.T) {
	got := Normalize("graph TD\n    A[Load f(x)] --> B[Done]")
	if !strings.Contains(got, `A["Load f(x)"]`) {
		t.Errorf("expected quoted paren label, got: %s", got)
	}
	if !strings.Contains(got, "B[Done]") {
		t.Errorf("plain label should be untouched, got: %s", got)
	}
}

func TestNormalizeLeavesQuotedLabels(t *testing.T) {
	in := "graph TD\n    A[\"f(x)\"] --> B"
	got := Normalize(in)
	if got != in {
		t.Errorf("already-quoted label changed:\nin:  %s\ngot: %s", in, got)
	}
}

func TestNormalizeMultilinePassthrough(t *testing.T) {
	in := "graph TD\nA-->B"
	got := Normalize(in)
	if got != in {
		t.Errorf("multi-line input should pass through, got: %s", got)
	}
}

func TestNormalizeSplitsSingleLine(t *testing.T) {
	got := Normalize("graph TD A[Start] --> B[End] style A fill:#f9f")

	lines := strings.Split(got, "\n")
	if len(lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "graph TD" {
		t.Errorf("first line = %q, want graph TD", lines[0])
	}
	if !strings.Contains(got, "\n    -->") {
		t.Errorf("expected break before arrow, got: %q", got)
	}
	if !strings.Contains(got, "\n    style ") {
		t.Errorf("expected break before style declaration, got: %q", got)
	}
}

func TestNormalizeAdjacentNodes(t *testing.T) {
	got := Normalize("graph LR A[One] B[Two]")
	if !strings.Contains(got, "A[One]\n") {
		t.Errorf("expected break between adjacent node definitions, got: %q", got)
	}
	if !strings.Contains(got, "B[Two]") {
		t.Errorf("second node lost, got: %q", got)
	}
}

func TestNormalizeTotal(t *testing.T) {
	// Must return a string and never panic, whatever the input.
	inputs := []string{
		"",
		"   ",
		"not a diagram at all",
		"graph TD A[unbalanced",
		"]]]][[[[",
		"A(((B",
		strings.Repeat("[", 1000),
	}
	for _, in := range inputs {
		got := Normalize(in)
		_ = got
	}
}

func TestErrorPanelEscapesSource(t *testing.T) {
	panel := ErrorPanel(errFake("boom"), `graph TD A["<script>"]`, false, "panel-1")
	if strings.Contains(panel, "<script>") {
		t.Errorf("raw source must be escaped, got: %s", panel)
	}
	if !strings.Contains(panel, "boom") {
		t.Errorf("error text missing, got: %s", panel)
	}
	if !strings.Contains(panel, "renderer=false") {
		t.Errorf("diagnostic flags missing, got: %s", panel)
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }

package diagrams

import (
	"regexp"
	"strings"
)

// Normalize repairs common issues in AI-generated Mermaid source so the
// downstream renderer accepts it. It quotes node labels that contain
// parentheses, and when the whole diagram arrives on a single line it
// inserts line breaks at conventional points (after the graph header,
// before arrows, before style declarations, between adjacent node
// definitions).
//
// Normalize is total: it never panics, and on any internal failure it
// returns the input unchanged. It is heuristic text surgery, not a
// parser — unrecognized input passes through as-is.
func Normalize(src string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = src
		}
	}()

	out = quoteParenLabels(src)

	// Already multi-line: quoting is all the repair we attempt.
	if strings.Contains(strings.TrimSpace(out), "\n") {
		return out
	}

	return splitSingleLine(out)
}

// parenLabel matches an unquoted bracketed label containing parentheses,
// e.g. A[f(x)] but not A["f(x)"].
var parenLabel = regexp.MustCompile(`\[([^\["\]]*\([^\[\]]*\)[^\["\]]*)\]`)

// quoteParenLabels wraps node labels containing parentheses in quotes.
// Unquoted parentheses inside [...] are ambiguous to Mermaid's parser,
// which also uses (...) as a node shape.
func quoteParenLabels(src string) string {
	return parenLabel.ReplaceAllString(src, `["$1"]`)
}

var (
	// graphHeader matches a leading graph-type declaration and its direction.
	graphHeader = regexp.MustCompile(`^\s*((?:graph|flowchart)\s+(?:TD|TB|BT|LR|RL))\s+`)

	// arrowToken matches the start of an edge: optional link text follows.
	arrowToken = regexp.MustCompile(`\s+(-->|---|-\.->|==>)`)

	// styleDecl matches an inline style/class declaration.
	styleDecl = regexp.MustCompile(`\s+(style\s|classDef\s|linkStyle\s|class\s)`)

	// adjacentNodes matches two bracketed node definitions separated by
	// whitespace only, e.g. `A[One] B[Two]`.
	adjacentNodes = regexp.MustCompile(`(\])\s+([A-Za-z0-9_]+[\[\(])`)
)

// splitSingleLine converts a one-line diagram description into a
// conventionally formatted multi-line one.
func splitSingleLine(src string) string {
	s := strings.TrimSpace(src)

	if m := graphHeader.FindStringSubmatch(s); m != nil {
		s = m[1] + "\n" + strings.TrimSpace(s[len(m[0]):])
	}

	s = arrowToken.ReplaceAllString(s, "\n$1")
	s = styleDecl.ReplaceAllString(s, "\n$1")
	s = adjacentNodes.ReplaceAllString(s, "$1\n$2")

	// Re-indent everything below the header.
	lines := strings.Split(s, "\n")
	if len(lines) <= 1 {
		return s
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(lines[0]))
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("\n    ")
		b.WriteString(line)
	}
	return b.String()
}

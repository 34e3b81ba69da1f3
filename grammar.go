package peg

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Grammar is an immutable, ordered mapping of rule name to rule. It is
// safe for concurrent use: every Parse call builds its own cache and never
// mutates the Grammar.
type Grammar struct {
	rules            map[string]Rule
	order            []string
	lineSeparator    *string
	lineSeparatorSet bool
	config           Config
}

// Rules returns the grammar's rule names in declaration order.
func (g *Grammar) Rules() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// String renders the grammar back into its textual surface syntax, one
// "name <- expression" line per rule in declaration order. Parsing the
// result with ParseGrammar reproduces an equivalent grammar.
func (g *Grammar) String() string {
	var w strings.Builder
	for i, name := range g.order {
		if i > 0 {
			w.WriteByte('\n')
		}
		w.WriteString(name)
		w.WriteString(" <- ")
		w.WriteString(ExprString(g.rules[name].Expression()))
	}
	return w.String()
}

// ParseGrammar parses a textual grammar definition against the bootstrapped
// meta-grammar and lifts its parse tree into a validated Grammar.
func ParseGrammar(text string) (*Grammar, error) {
	match, err := metaGrammar().Parse(text, metaRuleGrammar)
	if err != nil {
		return nil, err
	}
	gb := NewGrammarBuilder()
	l := newLifter(gb)
	if err := l.visit(match); err != nil {
		return nil, err
	}
	return gb.Build()
}

// Parse evaluates startRule against text from position 0. On success it
// returns the top-level match. On failure it returns a *ParseError; if the
// match does not consume the entire input it returns errorUnprocessedSuffix.
func (g *Grammar) Parse(text string, startRule string) (match Match, err error) {
	rule, ok := g.rules[startRule]
	if !ok {
		return nil, errorUnknownRuleReference(startRule)
	}

	defer func() {
		if r := recover(); r != nil {
			if r == errorCallstackOverflow {
				err = errorCallstackOverflow
				return
			}
			panic(r)
		}
	}()

	cache := newParseCache(g.config.CallstackLimit)
	result := rule.Parse(text, 0, cache, nil)

	if !result.Matched {
		return nil, g.buildParseError(text, startRule, result.Mismatch)
	}
	if result.Match.CharactersCount() != len(text) {
		return nil, errorUnprocessedSuffix
	}
	return result.Match, nil
}

// mismatchEntry is one unpacked leaf: its span, the origin path from root
// to leaf, and the expected message.
type mismatchEntry struct {
	start, stop int
	path        []string
	expected    string
}

func (g *Grammar) buildParseError(text, startRule string, m Mismatch) *ParseError {
	entries := unpackMismatches(m, nil)

	grouped := make(map[[2]int][]mismatchEntry)
	var spanOrder [][2]int
	for _, e := range entries {
		span := [2]int{e.start, e.stop}
		if _, ok := grouped[span]; !ok {
			spanOrder = append(spanOrder, span)
		}
		grouped[span] = append(grouped[span], e)
	}

	sort.Slice(spanOrder, func(i, j int) bool {
		if spanOrder[i][0] != spanOrder[j][0] {
			return spanOrder[i][0] < spanOrder[j][0]
		}
		return spanOrder[i][1] < spanOrder[j][1]
	})

	calc := &positionCalculator{text: text, sep: g.effectiveLineSeparator()}
	lines := strings.Split(text, "\n")
	children := make([]*spanError, 0, len(spanOrder))
	for _, span := range spanOrder {
		children = append(children, g.buildSpanError(calc, lines, span, grouped[span]))
	}

	return &ParseError{StartRule: startRule, Children: children}
}

// unpackMismatches flattens a Mismatch tree into leaf entries, recording
// the origin-path trail from the root down to each leaf in the order
// encountered; entries sharing a span keep that encounter order.
func unpackMismatches(m Mismatch, path []string) []mismatchEntry {
	switch t := m.(type) {
	case *MismatchLeaf:
		full := append(append([]string{}, path...), t.Origin)
		return []mismatchEntry{{start: t.Start, stop: t.Stop, path: full, expected: t.ExpectedMessage}}
	case *MismatchTree:
		var out []mismatchEntry
		childPath := append(append([]string{}, path...), t.Origin)
		for _, c := range t.Children {
			out = append(out, unpackMismatches(c, childPath)...)
		}
		return out
	default:
		return nil
	}
}

// spanError is one grouped failure at a single (start, stop) span.
type spanError struct {
	start, stop Position
	lines       []string
	entries     []mismatchEntry
}

func (g *Grammar) buildSpanError(calc *positionCalculator, lines []string, span [2]int, entries []mismatchEntry) *spanError {
	start := calc.calculate(span[0])
	stop := calc.calculate(span[1])
	return &spanError{start: start, stop: stop, lines: lines, entries: entries}
}

// effectiveLineSeparator returns the separator to feed a positionCalculator:
// the configured separator, "\n" if none was ever configured, or "" (line
// detection disabled, every offset resolves to line 0) if SetLineSeparator
// was explicitly called with nil.
func (g *Grammar) effectiveLineSeparator() string {
	if !g.lineSeparatorSet {
		return "\n"
	}
	if g.lineSeparator == nil {
		return ""
	}
	return *g.lineSeparator
}

// ParseError is the structured, grouped parse-failure report: one child
// per unique (start, stop) span, sorted by span, each listing every
// (origin path, expected message) pair observed at that span.
type ParseError struct {
	StartRule string
	Children  []*spanError
}

func (e *ParseError) Error() string {
	var w strings.Builder
	fmt.Fprintf(&w, "Failed to parse the input starting with rule '%s'.\n", e.StartRule)
	for _, c := range e.Children {
		w.WriteString(c.String())
		w.WriteByte('\n')
	}
	return w.String()
}

// String renders one grouped span failure: the line range header, the
// failing source line(s) with a caret underline (extended to end-of-line
// for every fully-enclosed intermediate line when the span crosses lines),
// an optional bracket pointing at the stop column, and every (origin path,
// expected message) pair observed at this span, repeated pairs included.
func (s *spanError) String() string {
	startLine, startCol := s.start.Line+1, s.start.Column+1
	stopLine, stopCol := s.stop.Line+1, s.stop.Column+1

	var w strings.Builder
	fmt.Fprintf(&w, "at %d:%d-%d:%d\n", startLine, startCol, stopLine, stopCol)

	failedLines := s.lines[startLine-1 : stopLine]
	if len(failedLines) == 1 {
		w.WriteString(failedLines[0])
		w.WriteByte('\n')
		w.WriteString(strings.Repeat(" ", startCol-1))
		w.WriteString(strings.Repeat("^", stopCol-startCol))
		w.WriteByte('\n')
	} else {
		w.WriteString(failedLines[0])
		w.WriteByte('\n')
		w.WriteString(strings.Repeat(" ", startCol))
		w.WriteString(strings.Repeat("^", max(0, utf8.RuneCountInString(failedLines[0])-startCol)))
		w.WriteByte('\n')
		for _, line := range failedLines[1 : len(failedLines)-1] {
			w.WriteString(line)
			w.WriteByte('\n')
			w.WriteString(strings.Repeat("^", utf8.RuneCountInString(line)+1))
			w.WriteByte('\n')
		}
		last := failedLines[len(failedLines)-1]
		w.WriteString(last)
		w.WriteByte('\n')
		w.WriteString(strings.Repeat("^", max(0, stopCol-1)))
		w.WriteByte('\n')
	}

	if stopCol > 2 {
		w.WriteString(strings.Repeat(" ", stopCol-2))
		w.WriteString("|\n")
		w.WriteString("+")
		w.WriteString(strings.Repeat("-", max(0, stopCol-3)))
		w.WriteString("+\n")
	}

	parts := make([]string, len(s.entries))
	for i, e := range s.entries {
		parts[i] = formatExpectedMessage(e.expected, e.path)
	}
	w.WriteString(strings.Join(parts, "\n"))
	return w.String()
}

// formatExpectedMessage renders one (expected message, origin path) pair
// as a bare "|" line followed by "+- expected ... (from leaf <- ... <-
// root)", keeping the leaf (most specific origin) always, then walking
// back toward the root while the line fits an 79-character budget,
// collapsing whatever didn't fit into a trailing "...".
func formatExpectedMessage(expected string, path []string) string {
	const maxLineLength = 79
	const sep = " <- "
	const suffix = ")"

	prefix := "+- expected " + expected + " (from "
	leaf := path[len(path)-1]
	charactersLeft := maxLineLength - (utf8.RuneCountInString(prefix) + len(suffix) + utf8.RuneCountInString(leaf))
	fitting := []string{leaf}

	for i := len(path) - 2; i >= 0; i-- {
		candidate := path[i]
		candidateLength := utf8.RuneCountInString(sep) + utf8.RuneCountInString(candidate)
		if charactersLeft >= candidateLength {
			charactersLeft -= candidateLength
			fitting = append(fitting, candidate)
			continue
		}
		if charactersLeft >= utf8.RuneCountInString(sep)+len("...") || len(fitting) == 1 {
			fitting = append(fitting, "...")
		} else {
			fitting[len(fitting)-1] = "..."
		}
		break
	}

	return "|\n" + prefix + strings.Join(fitting, sep) + suffix
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

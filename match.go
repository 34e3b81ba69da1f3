package peg

import "strings"

// Match is a successful evaluation result: a MatchLeaf, a MatchTree, or a
// LookaheadMatch (zero-width success).
type Match interface {
	RuleName() *string
	CharactersCount() int
	isMatch()
}

// MatchLeaf is a terminal success: the characters consumed by a single
// character-level or literal expression.
type MatchLeaf struct {
	Name       *string
	Characters string
}

func (m *MatchLeaf) RuleName() *string    { return m.Name }
func (m *MatchLeaf) CharactersCount() int { return len(m.Characters) }
func (m *MatchLeaf) isMatch()             {}

// MatchTree is a non-leaf success: an ordered, non-empty sequence of child
// matches (lookahead children are dropped by the producing expression).
type MatchTree struct {
	Name     *string
	Children []Match
}

func (m *MatchTree) RuleName() *string { return m.Name }

func (m *MatchTree) CharactersCount() int {
	total := 0
	for _, c := range m.Children {
		total += c.CharactersCount()
	}
	return total
}

func (m *MatchTree) isMatch() {}

// LookaheadMatch is a zero-width success produced by lookaheads, optionals,
// and empty zero-or-more loops.
type LookaheadMatch struct {
	Name *string
}

func (m *LookaheadMatch) RuleName() *string    { return m.Name }
func (m *LookaheadMatch) CharactersCount() int { return 0 }
func (m *LookaheadMatch) isMatch()             {}

// Mismatch is a failed evaluation result: a MismatchLeaf or a MismatchTree.
type Mismatch interface {
	OriginName() string
	StartIndex() int
	StopIndex() int
	String() string
	isMismatch()
}

// MismatchLeaf records a single expectation that was not met between
// StartIndex and StopIndex. Zero-width leaves (Start == Stop) are accepted:
// end-of-input failures and left-recursion seeds have no character to span.
type MismatchLeaf struct {
	Origin          string
	ExpectedMessage string
	Start, Stop     int
}

// NewMismatchLeaf validates origin is non-empty and Start <= Stop.
func NewMismatchLeaf(origin, expected string, start, stop int) (*MismatchLeaf, error) {
	if origin == "" {
		return nil, errorEmptyMismatchOrigin
	}
	if start > stop {
		return nil, errorInvalidMismatchSpan(start, stop)
	}
	return &MismatchLeaf{Origin: origin, ExpectedMessage: expected, Start: start, Stop: stop}, nil
}

func (m *MismatchLeaf) OriginName() string { return m.Origin }
func (m *MismatchLeaf) StartIndex() int    { return m.Start }
func (m *MismatchLeaf) StopIndex() int     { return m.Stop }
func (m *MismatchLeaf) isMismatch()        {}

func (m *MismatchLeaf) String() string {
	var w strings.Builder
	w.WriteString("expected ")
	w.WriteString(m.ExpectedMessage)
	return w.String()
}

// MismatchTree wraps one or more child mismatches under a derived origin;
// its span is derived from its last child.
type MismatchTree struct {
	Origin   string
	Children []Mismatch
}

// NewMismatchTree validates origin is non-empty and children is non-empty.
func NewMismatchTree(origin string, children []Mismatch) (*MismatchTree, error) {
	if origin == "" {
		return nil, errorEmptyMismatchOrigin
	}
	if len(children) == 0 {
		return nil, errorEmptyMismatchChildren
	}
	return &MismatchTree{Origin: origin, Children: children}, nil
}

func (m *MismatchTree) OriginName() string { return m.Origin }

func (m *MismatchTree) StartIndex() int {
	return m.Children[len(m.Children)-1].StartIndex()
}

func (m *MismatchTree) StopIndex() int {
	return m.Children[len(m.Children)-1].StopIndex()
}

func (m *MismatchTree) isMismatch() {}

func (m *MismatchTree) String() string {
	parts := make([]string, len(m.Children))
	for i, c := range m.Children {
		parts[i] = c.String()
	}
	return strings.Join(parts, " or ")
}

// evalResult is the sum of EvaluationSuccess (Matched true) and
// EvaluationFailure (Matched false). A success may still carry a trailing
// Mismatch: diagnostic context a Sequence uses to surface sibling
// alternative failures sharing a stop index with a later element's failure.
type evalResult struct {
	Matched  bool
	Match    Match
	Mismatch Mismatch
}

func success(match Match, trailing Mismatch) evalResult {
	return evalResult{Matched: true, Match: match, Mismatch: trailing}
}

func failure(mismatch Mismatch) evalResult {
	return evalResult{Matched: false, Mismatch: mismatch}
}

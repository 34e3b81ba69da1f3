package peg

import (
	"strings"

	"golang.org/x/exp/slices"
)

// CharacterClassElement is one member of a character class: a contiguous
// range or a set of individual code points.
type CharacterClassElement interface {
	containsRune(r rune) bool
	format(w *strings.Builder)
	equal(other CharacterClassElement) bool
}

// CharacterRange is an inclusive range of code points, lo <= hi.
type CharacterRange struct {
	Lo, Hi rune
}

// NewCharacterRange validates lo <= hi.
func NewCharacterRange(lo, hi rune) (CharacterRange, error) {
	if lo > hi {
		return CharacterRange{}, errorInvalidCharacterRange(lo, hi)
	}
	return CharacterRange{Lo: lo, Hi: hi}, nil
}

func (r CharacterRange) containsRune(c rune) bool {
	return r.Lo <= c && c <= r.Hi
}

func (r CharacterRange) equal(other CharacterClassElement) bool {
	o, ok := other.(CharacterRange)
	return ok && o.Lo == r.Lo && o.Hi == r.Hi
}

func (r CharacterRange) format(w *strings.Builder) {
	writeEscapedClassChar(w, r.Lo)
	w.WriteByte('-')
	writeEscapedClassChar(w, r.Hi)
}

func (r CharacterRange) String() string {
	var w strings.Builder
	r.format(&w)
	return w.String()
}

// CharacterSet is a non-empty, order-preserving multiset of individual code
// points; membership is substring membership, duplicates are allowed.
type CharacterSet struct {
	Chars string
}

// NewCharacterSet validates that chars is non-empty.
func NewCharacterSet(chars string) (CharacterSet, error) {
	if chars == "" {
		return CharacterSet{}, errorEmptyCharacterSet
	}
	return CharacterSet{Chars: chars}, nil
}

func (s CharacterSet) containsRune(c rune) bool {
	return strings.ContainsRune(s.Chars, c)
}

func (s CharacterSet) equal(other CharacterClassElement) bool {
	o, ok := other.(CharacterSet)
	return ok && o.Chars == s.Chars
}

func (s CharacterSet) format(w *strings.Builder) {
	for _, c := range s.Chars {
		writeEscapedClassChar(w, c)
	}
}

func (s CharacterSet) String() string {
	var w strings.Builder
	s.format(&w)
	return w.String()
}

// normalizeClassElements merges consecutive CharacterSet neighbors into one
// by concatenation; CharacterRange elements pass through unchanged. The
// operation is idempotent and membership-preserving.
func normalizeClassElements(elements []CharacterClassElement) []CharacterClassElement {
	normalized := make([]CharacterClassElement, 0, len(elements))
	for _, elem := range elements {
		set, isSet := elem.(CharacterSet)
		if isSet && len(normalized) > 0 {
			if prevSet, prevIsSet := normalized[len(normalized)-1].(CharacterSet); prevIsSet {
				normalized[len(normalized)-1] = CharacterSet{Chars: prevSet.Chars + set.Chars}
				continue
			}
		}
		normalized = append(normalized, elem)
	}
	return normalized
}

func classElementsEqual(a, b []CharacterClassElement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}

func classContainsRune(elements []CharacterClassElement, c rune) bool {
	return slices.ContainsFunc(elements, func(e CharacterClassElement) bool {
		return e.containsRune(c)
	})
}

var classEscapes = map[rune]string{
	'\f': `\f`, '\n': `\n`, '\r': `\r`, '\t': `\t`, '\v': `\v`,
	'-': `\-`, '[': `\[`, '\\': `\\`, ']': `\]`, '^': `\^`,
}

func writeEscapedClassChar(w *strings.Builder, c rune) {
	if esc, ok := classEscapes[c]; ok {
		w.WriteString(esc)
		return
	}
	w.WriteRune(c)
}

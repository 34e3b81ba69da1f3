package peg

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// evalContext carries the per-Parse-call state an expression needs while
// evaluating: the input text and the packrat cache. It is never shared
// across Parse calls.
type evalContext struct {
	text  string
	cache *parseCache
}

// Expression is the runtime algebra: a built, immutable node that can
// evaluate itself at a text position, report the message it expects on
// failure, and seed a left-recursive rule's first cache entry.
//
// The four static analyses (is_nullable, always_matches, is_left_recursive,
// is_terminating) are a construction-time concern of ExpressionBuilder, not
// of the built Expression: by the time an Expression exists, its rule has
// already been classified and validated.
type Expression interface {
	evaluate(ctx *evalContext, index int, name *string) evalResult
	expectedMessage() string
	seedFailure(index int, name *string) Mismatch
	precedence() precedence
	format(w *strings.Builder, parent precedence)
}

// precedence governs minimal parenthesization when printing expressions.
// Ascending tightness: PrioritizedChoice < Sequence < Repetition <
// Lookahead < Term.
type precedence int

const (
	precChoice precedence = iota
	precSequence
	precRepetition
	precLookahead
	precTerm
)

// ExprString renders an expression using its own top-level precedence, with
// no enclosing parentheses.
func ExprString(e Expression) string {
	var w strings.Builder
	e.format(&w, precChoice)
	return w.String()
}

func originName(name *string, self Expression) string {
	if name != nil {
		return *name
	}
	return ExprString(self)
}

// endOfInputFailure is the zero-width failure a single-character expression
// reports when no input remains.
func endOfInputFailure(self Expression, index int, name *string) Mismatch {
	return &MismatchLeaf{
		Origin:          originName(name, self),
		ExpectedMessage: self.expectedMessage(),
		Start:           index,
		Stop:            index,
	}
}

// defaultSeedFailure is the zero-width failure a left-recursive rule plants
// in the cache before its first evaluation. The expected message stays
// empty: computing it would resolve rule references, and the one expression
// guaranteed to contain a same-position reference cycle is exactly the one
// being seeded.
func defaultSeedFailure(self Expression, index int, name *string) Mismatch {
	return &MismatchLeaf{
		Origin:          originName(name, self),
		ExpectedMessage: "",
		Start:           index,
		Stop:            index,
	}
}

// ---- terminals ----

// AnyCharacterExpression matches one code point if any remains.
type AnyCharacterExpression struct{}

func (e *AnyCharacterExpression) expectedMessage() string { return "any character" }

func (e *AnyCharacterExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}

func (e *AnyCharacterExpression) precedence() precedence { return precTerm }

func (e *AnyCharacterExpression) format(w *strings.Builder, parent precedence) {
	w.WriteByte('.')
}

func (e *AnyCharacterExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	if index >= len(ctx.text) {
		return failure(endOfInputFailure(e, index, name))
	}
	_, width := utf8.DecodeRuneInString(ctx.text[index:])
	return success(&MatchLeaf{Name: name, Characters: ctx.text[index : index+width]}, nil)
}

// CharacterClassExpression matches one code point in the union of its
// elements.
type CharacterClassExpression struct {
	Elements []CharacterClassElement
}

func (e *CharacterClassExpression) expectedMessage() string {
	return "a character from [" + elementsString(e.Elements) + "]"
}

func (e *CharacterClassExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}

func (e *CharacterClassExpression) precedence() precedence { return precTerm }

func (e *CharacterClassExpression) format(w *strings.Builder, parent precedence) {
	w.WriteByte('[')
	for _, el := range e.Elements {
		el.format(w)
	}
	w.WriteByte(']')
}

func (e *CharacterClassExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	if index >= len(ctx.text) {
		return failure(endOfInputFailure(e, index, name))
	}
	r, width := utf8.DecodeRuneInString(ctx.text[index:])
	if !classContainsRune(e.Elements, r) {
		return failure(&MismatchLeaf{Origin: originName(name, e), ExpectedMessage: e.expectedMessage(), Start: index, Stop: index + width})
	}
	return success(&MatchLeaf{Name: name, Characters: ctx.text[index : index+width]}, nil)
}

// ComplementedCharacterClassExpression matches one code point outside the
// union of its elements.
type ComplementedCharacterClassExpression struct {
	Elements []CharacterClassElement
}

func (e *ComplementedCharacterClassExpression) expectedMessage() string {
	return "a character from [^" + elementsString(e.Elements) + "]"
}

func (e *ComplementedCharacterClassExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}

func (e *ComplementedCharacterClassExpression) precedence() precedence { return precTerm }

func (e *ComplementedCharacterClassExpression) format(w *strings.Builder, parent precedence) {
	w.WriteString("[^")
	for _, el := range e.Elements {
		el.format(w)
	}
	w.WriteByte(']')
}

func (e *ComplementedCharacterClassExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	if index >= len(ctx.text) {
		return failure(endOfInputFailure(e, index, name))
	}
	r, width := utf8.DecodeRuneInString(ctx.text[index:])
	if classContainsRune(e.Elements, r) {
		return failure(&MismatchLeaf{Origin: originName(name, e), ExpectedMessage: e.expectedMessage(), Start: index, Stop: index + width})
	}
	return success(&MatchLeaf{Name: name, Characters: ctx.text[index : index+width]}, nil)
}

func elementsString(elements []CharacterClassElement) string {
	var w strings.Builder
	for _, el := range elements {
		el.format(&w)
	}
	return w.String()
}

// DoubleQuotedLiteralExpression and SingleQuotedLiteralExpression both match
// an exact, non-empty literal string; they differ only in the quote used
// when printing.
type DoubleQuotedLiteralExpression struct{ Text string }
type SingleQuotedLiteralExpression struct{ Text string }

func (e *DoubleQuotedLiteralExpression) expectedMessage() string {
	return `"` + escapeLiteral(e.Text, '"') + `"`
}
func (e *SingleQuotedLiteralExpression) expectedMessage() string {
	return `'` + escapeLiteral(e.Text, '\'') + `'`
}

func (e *DoubleQuotedLiteralExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *SingleQuotedLiteralExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}

func (e *DoubleQuotedLiteralExpression) precedence() precedence { return precTerm }
func (e *SingleQuotedLiteralExpression) precedence() precedence { return precTerm }

func (e *DoubleQuotedLiteralExpression) format(w *strings.Builder, parent precedence) {
	w.WriteByte('"')
	w.WriteString(escapeLiteral(e.Text, '"'))
	w.WriteByte('"')
}
func (e *SingleQuotedLiteralExpression) format(w *strings.Builder, parent precedence) {
	w.WriteByte('\'')
	w.WriteString(escapeLiteral(e.Text, '\''))
	w.WriteByte('\'')
}

func (e *DoubleQuotedLiteralExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	return evaluateLiteral(e, e.Text, ctx, index, name)
}
func (e *SingleQuotedLiteralExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	return evaluateLiteral(e, e.Text, ctx, index, name)
}

// evaluateLiteral matches text exactly; its failure span runs from index
// through the first differing character, so a partially-matched literal
// reports the whole region it got through before diverging.
func evaluateLiteral(self Expression, text string, ctx *evalContext, index int, name *string) evalResult {
	if strings.HasPrefix(ctx.text[index:], text) {
		return success(&MatchLeaf{Name: name, Characters: text}, nil)
	}
	prefix := commonPrefixLen(ctx.text[index:], text)
	stop := index + prefix
	if stop < len(ctx.text) {
		_, width := utf8.DecodeRuneInString(ctx.text[stop:])
		stop += width
	}
	return failure(&MismatchLeaf{Origin: originName(name, self), ExpectedMessage: self.expectedMessage(), Start: index, Stop: stop})
}

// commonPrefixLen reports the length in bytes of the longest rune-aligned
// common prefix of a and b.
func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) {
		ra, wa := utf8.DecodeRuneInString(a[n:])
		rb, wb := utf8.DecodeRuneInString(b[n:])
		if ra != rb || wa != wb {
			break
		}
		n += wa
	}
	return n
}

var literalEscapes = map[rune]string{'\f': `\f`, '\n': `\n`, '\r': `\r`, '\t': `\t`, '\v': `\v`, '\\': `\\`}

func escapeLiteral(s string, quote rune) string {
	var w strings.Builder
	for _, c := range s {
		if c == quote {
			w.WriteByte('\\')
			w.WriteRune(c)
			continue
		}
		if esc, ok := literalEscapes[c]; ok {
			w.WriteString(esc)
			continue
		}
		w.WriteRune(c)
	}
	return w.String()
}

// ---- composites ----

// SequenceExpression evaluates its elements in order, concatenating their
// matches (dropping lookahead-produced children) into a single MatchTree.
type SequenceExpression struct {
	Elements []Expression
}

func (e *SequenceExpression) expectedMessage() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.expectedMessage()
	}
	return strings.Join(parts, " followed by ")
}

func (e *SequenceExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}

func (e *SequenceExpression) precedence() precedence { return precSequence }

func (e *SequenceExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		for i, el := range e.Elements {
			if i > 0 {
				w.WriteByte(' ')
			}
			el.format(w, e.precedence())
		}
	})
}

func (e *SequenceExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	var children []Match
	var priorTrailing []Mismatch
	cursor := index
	for _, el := range e.Elements {
		res := el.evaluate(ctx, cursor, nil)
		if !res.Matched {
			// Surface every earlier element's trailing mismatch that ends
			// exactly where this failure ends, so the report lists all
			// expectations at the deepest failing position.
			mismatchChildren := make([]Mismatch, 0, len(priorTrailing)+1)
			for _, p := range priorTrailing {
				if p.StopIndex() == res.Mismatch.StopIndex() {
					mismatchChildren = append(mismatchChildren, p)
				}
			}
			mismatchChildren = append(mismatchChildren, res.Mismatch)
			return failure(&MismatchTree{Origin: originName(name, e), Children: mismatchChildren})
		}
		if res.Mismatch != nil {
			priorTrailing = append(priorTrailing, res.Mismatch)
		}
		if _, isLookahead := res.Match.(*LookaheadMatch); !isLookahead {
			children = append(children, res.Match)
		}
		cursor += res.Match.CharactersCount()
	}
	return success(&MatchTree{Name: name, Children: children}, nil)
}

// PrioritizedChoiceExpression evaluates variants in order and returns the
// first success, forwarding the caller's name into the winning variant.
type PrioritizedChoiceExpression struct {
	Variants []Expression
}

func (e *PrioritizedChoiceExpression) expectedMessage() string {
	parts := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		parts[i] = v.expectedMessage()
	}
	return strings.Join(parts, " or ")
}

func (e *PrioritizedChoiceExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}

func (e *PrioritizedChoiceExpression) precedence() precedence { return precChoice }

func (e *PrioritizedChoiceExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		for i, v := range e.Variants {
			if i > 0 {
				w.WriteString(" / ")
			}
			v.format(w, e.precedence())
		}
	})
}

func (e *PrioritizedChoiceExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	mismatches := make([]Mismatch, 0, len(e.Variants))
	for _, v := range e.Variants {
		res := v.evaluate(ctx, index, name)
		if res.Matched {
			return res
		}
		mismatches = append(mismatches, res.Mismatch)
	}
	return failure(&MismatchTree{Origin: originName(name, e), Children: mismatches})
}

// OptionalExpression succeeds always; on inner failure it yields a
// zero-width lookahead match carrying the inner mismatch as diagnostic.
type OptionalExpression struct{ Inner Expression }

func (e *OptionalExpression) expectedMessage() string {
	return e.Inner.expectedMessage() + " repeated at most once"
}
func (e *OptionalExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *OptionalExpression) precedence() precedence { return precRepetition }
func (e *OptionalExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		e.Inner.format(w, e.precedence())
		w.WriteByte('?')
	})
}

func (e *OptionalExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	res := e.Inner.evaluate(ctx, index, name)
	if res.Matched {
		return res
	}
	return success(&LookaheadMatch{Name: name}, res.Mismatch)
}

// ZeroOrMoreExpression greedily matches its inner expression zero or more
// times; it never fails.
type ZeroOrMoreExpression struct{ Inner Expression }

func (e *ZeroOrMoreExpression) expectedMessage() string {
	return e.Inner.expectedMessage() + " repeated any amount of times or none at all"
}
func (e *ZeroOrMoreExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *ZeroOrMoreExpression) precedence() precedence { return precRepetition }
func (e *ZeroOrMoreExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		e.Inner.format(w, e.precedence())
		w.WriteByte('*')
	})
}

func (e *ZeroOrMoreExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	children, last, _ := repeatLoop(e.Inner, ctx, index, -1)
	trailing := &MismatchTree{Origin: originName(name, e), Children: []Mismatch{last}}
	if len(children) == 0 {
		return success(&LookaheadMatch{Name: name}, trailing)
	}
	return success(&MatchTree{Name: name, Children: children}, trailing)
}

// repeatLoop evaluates inner (anonymously) starting at index until it fails
// or max repetitions (max < 0 means unbounded) is reached. last is the
// mismatch that ended the loop, nil when the loop ran out of repetitions
// instead of failing.
func repeatLoop(inner Expression, ctx *evalContext, index int, max int) (children []Match, last Mismatch, cursor int) {
	cursor = index
	for max < 0 || len(children) < max {
		res := inner.evaluate(ctx, cursor, nil)
		if !res.Matched {
			last = res.Mismatch
			break
		}
		children = append(children, res.Match)
		cursor += res.Match.CharactersCount()
	}
	return children, last, cursor
}

// OneOrMoreExpression requires one match, then greedily matches more.
type OneOrMoreExpression struct{ Inner Expression }

func (e *OneOrMoreExpression) expectedMessage() string {
	return e.Inner.expectedMessage() + " repeated at least once"
}
func (e *OneOrMoreExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *OneOrMoreExpression) precedence() precedence { return precRepetition }
func (e *OneOrMoreExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		e.Inner.format(w, e.precedence())
		w.WriteByte('+')
	})
}

func (e *OneOrMoreExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	first := e.Inner.evaluate(ctx, index, nil)
	if !first.Matched {
		return failure(&MismatchTree{Origin: originName(name, e), Children: []Mismatch{first.Mismatch}})
	}
	rest, last, _ := repeatLoop(e.Inner, ctx, index+first.Match.CharactersCount(), -1)
	children := append([]Match{first.Match}, rest...)
	trailing := &MismatchTree{Origin: originName(name, e), Children: []Mismatch{last}}
	return success(&MatchTree{Name: name, Children: children}, trailing)
}

// ExactRepetitionExpression requires exactly Count consecutive matches.
type ExactRepetitionExpression struct {
	Inner Expression
	Count int
}

func (e *ExactRepetitionExpression) expectedMessage() string {
	return e.Inner.expectedMessage() + " repeated " + strconv.Itoa(e.Count) + " times"
}
func (e *ExactRepetitionExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *ExactRepetitionExpression) precedence() precedence { return precRepetition }
func (e *ExactRepetitionExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		e.Inner.format(w, e.precedence())
		w.WriteString(repetitionSuffix(e.Count, e.Count))
	})
}

func (e *ExactRepetitionExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	children, last, _ := repeatLoop(e.Inner, ctx, index, e.Count)
	if len(children) < e.Count {
		return failure(&MismatchTree{Origin: originName(name, e), Children: []Mismatch{last}})
	}
	return success(&MatchTree{Name: name, Children: children}, nil)
}

// PositiveOrMoreExpression requires at least Min (>=2) matches, then
// greedily matches more.
type PositiveOrMoreExpression struct {
	Inner Expression
	Min   int
}

func (e *PositiveOrMoreExpression) expectedMessage() string {
	return e.Inner.expectedMessage() + " repeated at least " + strconv.Itoa(e.Min) + " times"
}
func (e *PositiveOrMoreExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *PositiveOrMoreExpression) precedence() precedence { return precRepetition }
func (e *PositiveOrMoreExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		e.Inner.format(w, e.precedence())
		w.WriteString(repetitionSuffix(e.Min, -1))
	})
}

func (e *PositiveOrMoreExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	children, last, _ := repeatLoop(e.Inner, ctx, index, -1)
	if len(children) < e.Min {
		return failure(&MismatchTree{Origin: originName(name, e), Children: []Mismatch{last}})
	}
	return success(&MatchTree{Name: name, Children: children}, last)
}

// PositiveRepetitionRangeExpression requires between Min (>=1) and Max
// (>Min) matches.
type PositiveRepetitionRangeExpression struct {
	Inner    Expression
	Min, Max int
}

func (e *PositiveRepetitionRangeExpression) expectedMessage() string {
	return e.Inner.expectedMessage() + " repeated from " + strconv.Itoa(e.Min) + " to " + strconv.Itoa(e.Max) + " times"
}
func (e *PositiveRepetitionRangeExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *PositiveRepetitionRangeExpression) precedence() precedence { return precRepetition }
func (e *PositiveRepetitionRangeExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		e.Inner.format(w, e.precedence())
		w.WriteString(repetitionSuffix(e.Min, e.Max))
	})
}

func (e *PositiveRepetitionRangeExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	children, last, _ := repeatLoop(e.Inner, ctx, index, e.Max)
	if len(children) < e.Min {
		return failure(&MismatchTree{Origin: originName(name, e), Children: []Mismatch{last}})
	}
	var trailing Mismatch
	if last != nil {
		trailing = &MismatchTree{Origin: originName(name, e), Children: []Mismatch{last}}
	}
	return success(&MatchTree{Name: name, Children: children}, trailing)
}

// ZeroRepetitionRangeExpression matches between 0 and Max (>=2) times; it
// never fails.
type ZeroRepetitionRangeExpression struct {
	Inner Expression
	Max   int
}

func (e *ZeroRepetitionRangeExpression) expectedMessage() string {
	return e.Inner.expectedMessage() + " repeated at most " + strconv.Itoa(e.Max) + " times"
}
func (e *ZeroRepetitionRangeExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *ZeroRepetitionRangeExpression) precedence() precedence { return precRepetition }
func (e *ZeroRepetitionRangeExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		e.Inner.format(w, e.precedence())
		w.WriteString(repetitionSuffix(0, e.Max))
	})
}

func (e *ZeroRepetitionRangeExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	children, last, _ := repeatLoop(e.Inner, ctx, index, e.Max)
	if len(children) == 0 {
		return success(&LookaheadMatch{Name: name}, last)
	}
	var trailing Mismatch
	if last != nil {
		trailing = &MismatchTree{Origin: originName(name, e), Children: []Mismatch{last}}
	}
	return success(&MatchTree{Name: name, Children: children}, trailing)
}

func repetitionSuffix(min, max int) string {
	switch {
	case max < 0:
		return "{" + strconv.Itoa(min) + ",}"
	case min == max:
		return "{" + strconv.Itoa(min) + "}"
	case min == 0:
		return "{," + strconv.Itoa(max) + "}"
	default:
		return "{" + strconv.Itoa(min) + "," + strconv.Itoa(max) + "}"
	}
}

// PositiveLookaheadExpression succeeds iff its inner expression succeeds,
// consuming nothing.
type PositiveLookaheadExpression struct{ Inner Expression }

func (e *PositiveLookaheadExpression) expectedMessage() string {
	return e.Inner.expectedMessage()
}
func (e *PositiveLookaheadExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *PositiveLookaheadExpression) precedence() precedence { return precLookahead }
func (e *PositiveLookaheadExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		w.WriteByte('&')
		e.Inner.format(w, e.precedence())
	})
}

func (e *PositiveLookaheadExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	res := e.Inner.evaluate(ctx, index, nil)
	if res.Matched {
		return success(&LookaheadMatch{Name: name}, nil)
	}
	return failure(&MismatchLeaf{
		Origin:          originName(name, e),
		ExpectedMessage: e.expectedMessage(),
		Start:           res.Mismatch.StartIndex(),
		Stop:            res.Mismatch.StopIndex(),
	})
}

// NegativeLookaheadExpression succeeds iff its inner expression fails,
// consuming nothing.
type NegativeLookaheadExpression struct{ Inner Expression }

func (e *NegativeLookaheadExpression) expectedMessage() string {
	return "not " + e.Inner.expectedMessage()
}
func (e *NegativeLookaheadExpression) seedFailure(index int, name *string) Mismatch {
	return defaultSeedFailure(e, index, name)
}
func (e *NegativeLookaheadExpression) precedence() precedence { return precLookahead }
func (e *NegativeLookaheadExpression) format(w *strings.Builder, parent precedence) {
	maybeParen(w, e, parent, func() {
		w.WriteByte('!')
		e.Inner.format(w, e.precedence())
	})
}

func (e *NegativeLookaheadExpression) evaluate(ctx *evalContext, index int, name *string) evalResult {
	res := e.Inner.evaluate(ctx, index, nil)
	if !res.Matched {
		return success(&LookaheadMatch{Name: name}, res.Mismatch)
	}
	stop := index + res.Match.CharactersCount()
	return failure(&MismatchLeaf{
		Origin:          originName(name, e),
		ExpectedMessage: e.expectedMessage(),
		Start:           index,
		Stop:            stop,
	})
}

// RuleReference delegates evaluation to a named rule, resolved through a
// ruleCell filled in once the whole grammar has been built.
type RuleReference struct {
	Name   string
	Target *ruleCell
}

func (e *RuleReference) expectedMessage() string {
	return e.Target.rule.Expression().expectedMessage()
}

func (e *RuleReference) seedFailure(index int, name *string) Mismatch {
	return e.Target.rule.Expression().seedFailure(index, name)
}

func (e *RuleReference) precedence() precedence { return precTerm }

func (e *RuleReference) format(w *strings.Builder, parent precedence) {
	w.WriteString(e.Name)
}

// evaluate always re-grounds the call under the reference's own target name,
// discarding whatever ambient name it was evaluated with: a PrioritizedChoice
// or Optional may forward its own rule's name down to a RuleReference
// variant/operand, but the referenced rule's identity still wins once the
// call reaches it.
func (e *RuleReference) evaluate(ctx *evalContext, index int, name *string) evalResult {
	return e.Target.rule.Parse(ctx.text, index, ctx.cache, &e.Name)
}

func maybeParen(w *strings.Builder, self Expression, parent precedence, body func()) {
	if self.precedence() < parent {
		w.WriteByte('(')
		body()
		w.WriteByte(')')
		return
	}
	body()
}

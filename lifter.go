package peg

import (
	"strconv"
	"strings"
)

// matchText recursively concatenates the characters a Match consumed.
// MatchLeaf carries them directly; MatchTree concatenates its children's
// (lookahead children are never present in a built MatchTree, so no special
// casing is needed for them here).
func matchText(m Match) string {
	switch t := m.(type) {
	case *MatchLeaf:
		return t.Characters
	case *MatchTree:
		var w strings.Builder
		for _, c := range t.Children {
			w.WriteString(matchText(c))
		}
		return w.String()
	default:
		return ""
	}
}

func decodeCommonEscape(c rune) string {
	switch c {
	case 'f':
		return "\f"
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 't':
		return "\t"
	case 'v':
		return "\v"
	default:
		return string(c)
	}
}

// buildEscapeMapping maps a backslash-escaped spelling ("\-", "\n", ...) to
// the literal character it denotes, for one quoted context's special
// characters plus the shared common ones.
func buildEscapeMapping(special string) map[string]string {
	m := make(map[string]string, len(special)+len(commonSpecialCharacters))
	for _, c := range special {
		m["\\"+string(c)] = string(c)
	}
	for _, c := range commonSpecialCharacters {
		m["\\"+string(c)] = decodeCommonEscape(c)
	}
	return m
}

var (
	characterClassEscapeMapping      = buildEscapeMapping(characterClassSpecialCharacters)
	doubleQuotedLiteralEscapeMapping = buildEscapeMapping(doubleQuotedLiteralSpecialCharacters)
	singleQuotedLiteralEscapeMapping = buildEscapeMapping(singleQuotedLiteralSpecialCharacters)
)

// lifter replays GrammarBuilder factory calls from a meta-grammar parse
// tree, one depth-first visit per node. It mirrors the stack discipline of
// a hand-written recursive-descent tree walker: every composite rule pushes
// a fresh accumulator before recursing into its children and pops it
// (consuming the accumulated values) once they've all been visited.
type lifter struct {
	gb *GrammarBuilder

	characterClassCharacters [][]string
	characterClassElements   [][]CharacterClassElement
	expressionBuilderIndices [][]int
	literalCharacters        [][]string
	unsignedIntegers         [][]int
	identifiers              []string
}

func newLifter(gb *GrammarBuilder) *lifter {
	return &lifter{gb: gb}
}

func (l *lifter) pushCharacterClassCharacters() {
	l.characterClassCharacters = append(l.characterClassCharacters, []string{})
}

func (l *lifter) popCharacterClassCharacters() []string {
	n := len(l.characterClassCharacters) - 1
	top := l.characterClassCharacters[n]
	l.characterClassCharacters = l.characterClassCharacters[:n]
	return top
}

func (l *lifter) addCharacterClassCharacter(c string) {
	n := len(l.characterClassCharacters) - 1
	l.characterClassCharacters[n] = append(l.characterClassCharacters[n], c)
}

func (l *lifter) pushCharacterClassElements() {
	l.characterClassElements = append(l.characterClassElements, []CharacterClassElement{})
}

func (l *lifter) popCharacterClassElements() []CharacterClassElement {
	n := len(l.characterClassElements) - 1
	top := l.characterClassElements[n]
	l.characterClassElements = l.characterClassElements[:n]
	return top
}

func (l *lifter) addCharacterClassElement(e CharacterClassElement) {
	n := len(l.characterClassElements) - 1
	l.characterClassElements[n] = append(l.characterClassElements[n], e)
}

func (l *lifter) pushExpressionBuilderIndices() {
	l.expressionBuilderIndices = append(l.expressionBuilderIndices, []int{})
}

func (l *lifter) popExpressionBuilderIndices() []int {
	n := len(l.expressionBuilderIndices) - 1
	top := l.expressionBuilderIndices[n]
	l.expressionBuilderIndices = l.expressionBuilderIndices[:n]
	return top
}

func (l *lifter) addExpressionBuilderIndex(idx int) {
	n := len(l.expressionBuilderIndices) - 1
	l.expressionBuilderIndices[n] = append(l.expressionBuilderIndices[n], idx)
}

func (l *lifter) pushLiteralCharacters() {
	l.literalCharacters = append(l.literalCharacters, []string{})
}

func (l *lifter) popLiteralCharacters() []string {
	n := len(l.literalCharacters) - 1
	top := l.literalCharacters[n]
	l.literalCharacters = l.literalCharacters[:n]
	return top
}

func (l *lifter) addLiteralCharacter(c string) {
	n := len(l.literalCharacters) - 1
	l.literalCharacters[n] = append(l.literalCharacters[n], c)
}

func (l *lifter) pushUnsignedIntegers() {
	l.unsignedIntegers = append(l.unsignedIntegers, []int{})
}

func (l *lifter) popUnsignedIntegers() []int {
	n := len(l.unsignedIntegers) - 1
	top := l.unsignedIntegers[n]
	l.unsignedIntegers = l.unsignedIntegers[:n]
	return top
}

func (l *lifter) addUnsignedInteger(v int) {
	n := len(l.unsignedIntegers) - 1
	l.unsignedIntegers[n] = append(l.unsignedIntegers[n], v)
}

func (l *lifter) popIdentifier() string {
	n := len(l.identifiers) - 1
	name := l.identifiers[n]
	l.identifiers = l.identifiers[:n]
	return name
}

// visit dispatches on the match's rule name, falling back to genericVisit
// for unnamed matches and for named matches that aren't an expression
// variant, a RuleReference, a Rule, or one of their parts (character-class
// ranges, sets and elements, literal characters, identifiers, unsigned
// integers): pure syntax scaffolding such as Filler, Space, or LEFT_ARROW.
func (l *lifter) visit(m Match) error {
	name := m.RuleName()
	if name == nil {
		return l.genericVisit(m)
	}
	switch *name {
	case metaRuleAnyCharacter:
		return l.visitAnyCharacter(m)
	case metaRuleCharacterClass:
		return l.visitCharacterClass(m)
	case metaRuleComplementedCharacterClass:
		return l.visitComplementedCharacterClass(m)
	case metaRuleCharacterContainerElement:
		return l.visitCharacterContainerElement(m)
	case metaRuleCharacterRange:
		return l.visitCharacterRange(m)
	case metaRuleCharacterSet:
		return l.visitCharacterSet(m)
	case metaRuleDoubleQuotedLiteral:
		return l.visitDoubleQuotedLiteral(m)
	case metaRuleDoubleQuotedLiteralChar:
		return l.visitDoubleQuotedLiteralChar(m)
	case metaRuleExactRepetition:
		return l.visitExactRepetition(m)
	case metaRuleIdentifier:
		return l.visitIdentifier(m)
	case metaRuleNegativeLookahead:
		return l.visitNegativeLookahead(m)
	case metaRuleOneOrMore:
		return l.visitOneOrMore(m)
	case metaRuleOptional:
		return l.visitOptional(m)
	case metaRulePositiveLookahead:
		return l.visitPositiveLookahead(m)
	case metaRulePositiveOrMore:
		return l.visitPositiveOrMore(m)
	case metaRulePositiveRepetitionRange:
		return l.visitPositiveRepetitionRange(m)
	case metaRulePrioritizedChoice:
		return l.visitPrioritizedChoice(m)
	case metaRuleRule:
		return l.visitRule(m)
	case metaRuleRuleReference:
		return l.visitRuleReference(m)
	case metaRuleSequence:
		return l.visitSequence(m)
	case metaRuleSingleQuotedLiteral:
		return l.visitSingleQuotedLiteral(m)
	case metaRuleSingleQuotedLiteralChar:
		return l.visitSingleQuotedLiteralChar(m)
	case metaRuleUnsignedInteger:
		return l.visitUnsignedInteger(m)
	case metaRuleZeroOrMore:
		return l.visitZeroOrMore(m)
	case metaRuleZeroRepetitionRange:
		return l.visitZeroRepetitionRange(m)
	default:
		return l.genericVisit(m)
	}
}

func (l *lifter) genericVisit(m Match) error {
	tree, ok := m.(*MatchTree)
	if !ok {
		return nil
	}
	for _, child := range tree.Children {
		if err := l.visit(child); err != nil {
			return err
		}
	}
	return nil
}

func (l *lifter) visitChildren(m Match) error {
	tree, ok := m.(*MatchTree)
	if !ok {
		return errorMalformedParseTree("expected a non-leaf match")
	}
	for _, child := range tree.Children {
		if err := l.visit(child); err != nil {
			return err
		}
	}
	return nil
}

func exactlyOneInt(values []int, what string) (int, error) {
	if len(values) != 1 {
		return 0, errorMalformedParseTree(what)
	}
	return values[0], nil
}

func (l *lifter) visitAnyCharacter(m Match) error {
	if err := l.visitChildren(m); err != nil {
		return err
	}
	l.addExpressionBuilderIndex(l.gb.AnyCharacter())
	return nil
}

func (l *lifter) visitCharacterClass(m Match) error {
	l.pushCharacterClassElements()
	if err := l.visitChildren(m); err != nil {
		l.popCharacterClassElements()
		return err
	}
	elements := l.popCharacterClassElements()
	idx, err := l.gb.CharacterClass(elements)
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitComplementedCharacterClass(m Match) error {
	l.pushCharacterClassElements()
	if err := l.visitChildren(m); err != nil {
		l.popCharacterClassElements()
		return err
	}
	elements := l.popCharacterClassElements()
	idx, err := l.gb.ComplementedCharacterClass(elements)
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitCharacterContainerElement(m Match) error {
	text := matchText(m)
	if mapped, ok := characterClassEscapeMapping[text]; ok {
		text = mapped
	}
	l.addCharacterClassCharacter(text)
	return nil
}

func (l *lifter) visitCharacterRange(m Match) error {
	l.pushCharacterClassCharacters()
	if err := l.visitChildren(m); err != nil {
		l.popCharacterClassCharacters()
		return err
	}
	bounds := l.popCharacterClassCharacters()
	if len(bounds) != 2 {
		return errorMalformedParseTree("character range must have exactly two endpoints")
	}
	lo, _ := decodeSingleRune(bounds[0])
	hi, _ := decodeSingleRune(bounds[1])
	rangeElem, err := NewCharacterRange(lo, hi)
	if err != nil {
		return err
	}
	l.addCharacterClassElement(rangeElem)
	return nil
}

func (l *lifter) visitCharacterSet(m Match) error {
	l.pushCharacterClassCharacters()
	if err := l.visitChildren(m); err != nil {
		l.popCharacterClassCharacters()
		return err
	}
	chars := l.popCharacterClassCharacters()
	setElem, err := NewCharacterSet(strings.Join(chars, ""))
	if err != nil {
		return err
	}
	l.addCharacterClassElement(setElem)
	return nil
}

func (l *lifter) visitDoubleQuotedLiteral(m Match) error {
	l.pushLiteralCharacters()
	if err := l.visitChildren(m); err != nil {
		l.popLiteralCharacters()
		return err
	}
	chars := l.popLiteralCharacters()
	idx, err := l.gb.DoubleQuotedLiteral(strings.Join(chars, ""))
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitDoubleQuotedLiteralChar(m Match) error {
	text := matchText(m)
	if mapped, ok := doubleQuotedLiteralEscapeMapping[text]; ok {
		text = mapped
	}
	l.addLiteralCharacter(text)
	return nil
}

func (l *lifter) visitSingleQuotedLiteral(m Match) error {
	l.pushLiteralCharacters()
	if err := l.visitChildren(m); err != nil {
		l.popLiteralCharacters()
		return err
	}
	chars := l.popLiteralCharacters()
	idx, err := l.gb.SingleQuotedLiteral(strings.Join(chars, ""))
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitSingleQuotedLiteralChar(m Match) error {
	text := matchText(m)
	if mapped, ok := singleQuotedLiteralEscapeMapping[text]; ok {
		text = mapped
	}
	l.addLiteralCharacter(text)
	return nil
}

func (l *lifter) visitExactRepetition(m Match) error {
	l.pushExpressionBuilderIndices()
	l.pushUnsignedIntegers()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		l.popUnsignedIntegers()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	counts := l.popUnsignedIntegers()
	inner, err := exactlyOneInt(indices, "exact repetition must have exactly one operand")
	if err != nil {
		return err
	}
	count, err := exactlyOneInt(counts, "exact repetition must have exactly one count")
	if err != nil {
		return err
	}
	idx, err := l.gb.ExactRepetition(inner, count)
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitIdentifier(m Match) error {
	l.identifiers = append(l.identifiers, matchText(m))
	return nil
}

func (l *lifter) visitNegativeLookahead(m Match) error {
	l.pushExpressionBuilderIndices()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	inner, err := exactlyOneInt(indices, "negative lookahead must have exactly one operand")
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(l.gb.NegativeLookahead(inner))
	return nil
}

func (l *lifter) visitPositiveLookahead(m Match) error {
	l.pushExpressionBuilderIndices()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	inner, err := exactlyOneInt(indices, "positive lookahead must have exactly one operand")
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(l.gb.PositiveLookahead(inner))
	return nil
}

func (l *lifter) visitOneOrMore(m Match) error {
	l.pushExpressionBuilderIndices()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	inner, err := exactlyOneInt(indices, "one-or-more must have exactly one operand")
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(l.gb.OneOrMore(inner))
	return nil
}

func (l *lifter) visitOptional(m Match) error {
	l.pushExpressionBuilderIndices()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	inner, err := exactlyOneInt(indices, "optional must have exactly one operand")
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(l.gb.Optional(inner))
	return nil
}

func (l *lifter) visitPositiveOrMore(m Match) error {
	l.pushExpressionBuilderIndices()
	l.pushUnsignedIntegers()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		l.popUnsignedIntegers()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	mins := l.popUnsignedIntegers()
	inner, err := exactlyOneInt(indices, "positive-or-more must have exactly one operand")
	if err != nil {
		return err
	}
	min, err := exactlyOneInt(mins, "positive-or-more must have exactly one minimum")
	if err != nil {
		return err
	}
	idx, err := l.gb.PositiveOrMore(inner, min)
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitPositiveRepetitionRange(m Match) error {
	l.pushExpressionBuilderIndices()
	l.pushUnsignedIntegers()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		l.popUnsignedIntegers()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	bounds := l.popUnsignedIntegers()
	inner, err := exactlyOneInt(indices, "repetition range must have exactly one operand")
	if err != nil {
		return err
	}
	if len(bounds) != 2 {
		return errorMalformedParseTree("repetition range must have exactly two bounds")
	}
	idx, err := l.gb.PositiveRepetitionRange(inner, bounds[0], bounds[1])
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitZeroOrMore(m Match) error {
	l.pushExpressionBuilderIndices()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	inner, err := exactlyOneInt(indices, "zero-or-more must have exactly one operand")
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(l.gb.ZeroOrMore(inner))
	return nil
}

func (l *lifter) visitZeroRepetitionRange(m Match) error {
	l.pushExpressionBuilderIndices()
	l.pushUnsignedIntegers()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		l.popUnsignedIntegers()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	maxes := l.popUnsignedIntegers()
	inner, err := exactlyOneInt(indices, "zero repetition range must have exactly one operand")
	if err != nil {
		return err
	}
	max, err := exactlyOneInt(maxes, "zero repetition range must have exactly one maximum")
	if err != nil {
		return err
	}
	idx, err := l.gb.ZeroRepetitionRange(inner, max)
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitPrioritizedChoice(m Match) error {
	l.pushExpressionBuilderIndices()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		return err
	}
	variants := l.popExpressionBuilderIndices()
	idx, err := l.gb.PrioritizedChoice(variants)
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitSequence(m Match) error {
	l.pushExpressionBuilderIndices()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		return err
	}
	elements := l.popExpressionBuilderIndices()
	idx, err := l.gb.Sequence(elements)
	if err != nil {
		return err
	}
	l.addExpressionBuilderIndex(idx)
	return nil
}

func (l *lifter) visitRuleReference(m Match) error {
	if err := l.visitChildren(m); err != nil {
		return err
	}
	name := l.popIdentifier()
	l.addExpressionBuilderIndex(l.gb.RuleReference(name))
	return nil
}

func (l *lifter) visitRule(m Match) error {
	l.pushExpressionBuilderIndices()
	if err := l.visitChildren(m); err != nil {
		l.popExpressionBuilderIndices()
		return err
	}
	indices := l.popExpressionBuilderIndices()
	name := l.popIdentifier()
	idx, err := exactlyOneInt(indices, "rule body must have exactly one expression")
	if err != nil {
		return err
	}
	return l.gb.AddRule(name, idx)
}

func (l *lifter) visitUnsignedInteger(m Match) error {
	value, err := strconv.Atoi(matchText(m))
	if err != nil {
		return errorMalformedParseTree("unsigned integer literal did not parse as an integer")
	}
	l.addUnsignedInteger(value)
	return nil
}

// decodeSingleRune reads the first rune of s, reporting whether s held
// exactly one.
func decodeSingleRune(s string) (rune, bool) {
	count := 0
	var first rune
	for i, r := range s {
		if i == 0 {
			first = r
		}
		count++
		if count > 1 {
			break
		}
	}
	return first, count == 1
}

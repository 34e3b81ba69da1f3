package peg

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// nameSet is the shared, mutated-and-backtracked visited-rule-name set used
// by all four static predicates: a name is added before recursing into a
// RuleReferenceBuilder and removed after returning, so an unrelated cycle
// elsewhere in the graph can still trip a predicate's revisit default.
type nameSet map[string]struct{}

func newNameSet() nameSet { return make(nameSet) }

// ExpressionBuilder is the mutable, index-addressed intermediate
// representation used while staging a grammar. Builders reference each
// other by integer index into the owning GrammarBuilder, never by pointer,
// so the whole table can be walked and validated before any Expression is
// constructed.
type ExpressionBuilder interface {
	isNullable(gb *GrammarBuilder, visited nameSet) bool
	alwaysMatches(gb *GrammarBuilder, visited nameSet) bool
	isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool
	isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool
	childIndices(gb *GrammarBuilder) []int
	build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error)
}

// GrammarBuilder is the staging area for one grammar: every expression
// variant factory registers a builder and returns its stable index; rules
// are declared (possibly before their definition exists, for forward
// references) and filled in by AddRule.
type GrammarBuilder struct {
	builders         []ExpressionBuilder
	ruleNames        []string
	ruleIndices      []int // -1 = declared but not yet defined
	nameIndex        map[string]int
	lineSeparator    *string
	lineSeparatorSet bool
	config           Config
}

// NewGrammarBuilder creates an empty staging area.
func NewGrammarBuilder() *GrammarBuilder {
	return &GrammarBuilder{nameIndex: make(map[string]int), config: defaultConfig}
}

// SetConfig overrides the recursion-depth guard the produced Grammar's
// Parse calls enforce. The zero Config has no special meaning here; pass
// DefaultCallstackLimit explicitly to restore the default.
func (gb *GrammarBuilder) SetConfig(config Config) {
	gb.config = config
}

// SetLineSeparator configures the produced Grammar's position resolution
// separator. The default is "\n"; nil means "no separator, everything is
// line 1".
func (gb *GrammarBuilder) SetLineSeparator(sep *string) {
	gb.lineSeparator = sep
	gb.lineSeparatorSet = true
}

func (gb *GrammarBuilder) register(b ExpressionBuilder) int {
	gb.builders = append(gb.builders, b)
	return len(gb.builders) - 1
}

func (gb *GrammarBuilder) builder(index int) ExpressionBuilder {
	return gb.builders[index]
}

func (gb *GrammarBuilder) ensureDeclared(name string) {
	if _, ok := gb.nameIndex[name]; ok {
		return
	}
	gb.nameIndex[name] = len(gb.ruleNames)
	gb.ruleNames = append(gb.ruleNames, name)
	gb.ruleIndices = append(gb.ruleIndices, -1)
}

// AddRule registers name's definition. If name was previously only
// referenced (forward reference), it is filled in; redefining an already
// -defined rule is an error.
func (gb *GrammarBuilder) AddRule(name string, builderIndex int) error {
	if name == "" {
		return errorEmptyRuleName
	}
	if builderIndex < 0 || builderIndex >= len(gb.builders) {
		return errorInvalidBuilderIndex(builderIndex)
	}
	if pos, ok := gb.nameIndex[name]; ok {
		if gb.ruleIndices[pos] != -1 {
			return errorRuleRedefinition(name)
		}
		gb.ruleIndices[pos] = builderIndex
		return nil
	}
	gb.nameIndex[name] = len(gb.ruleNames)
	gb.ruleNames = append(gb.ruleNames, name)
	gb.ruleIndices = append(gb.ruleIndices, builderIndex)
	return nil
}

func (gb *GrammarBuilder) resolvedBuilderIndex(name string) (int, bool) {
	pos, ok := gb.nameIndex[name]
	if !ok {
		return 0, false
	}
	idx := gb.ruleIndices[pos]
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// ---- factory methods ----

func (gb *GrammarBuilder) AnyCharacter() int {
	return gb.register(&anyCharacterBuilder{})
}

func (gb *GrammarBuilder) CharacterClass(elements []CharacterClassElement) (int, error) {
	if len(elements) == 0 {
		return 0, errorEmptyCharacterSet
	}
	return gb.register(&characterClassBuilder{elements: normalizeClassElements(elements)}), nil
}

func (gb *GrammarBuilder) ComplementedCharacterClass(elements []CharacterClassElement) (int, error) {
	if len(elements) == 0 {
		return 0, errorEmptyCharacterSet
	}
	return gb.register(&complementedCharacterClassBuilder{elements: normalizeClassElements(elements)}), nil
}

func (gb *GrammarBuilder) DoubleQuotedLiteral(text string) (int, error) {
	if text == "" {
		return 0, errorEmptyLiteral
	}
	return gb.register(&doubleQuotedLiteralBuilder{text: text}), nil
}

func (gb *GrammarBuilder) SingleQuotedLiteral(text string) (int, error) {
	if text == "" {
		return 0, errorEmptyLiteral
	}
	return gb.register(&singleQuotedLiteralBuilder{text: text}), nil
}

func (gb *GrammarBuilder) Sequence(elements []int) (int, error) {
	if len(elements) < 2 {
		return 0, errorTooFewSequenceElements
	}
	return gb.register(&sequenceBuilder{elements: elements}), nil
}

func (gb *GrammarBuilder) PrioritizedChoice(variants []int) (int, error) {
	if len(variants) < 2 {
		return 0, errorTooFewChoiceVariants
	}
	return gb.register(&prioritizedChoiceBuilder{variants: variants}), nil
}

func (gb *GrammarBuilder) Optional(inner int) int {
	return gb.register(&optionalBuilder{inner: inner})
}

func (gb *GrammarBuilder) ZeroOrMore(inner int) int {
	return gb.register(&zeroOrMoreBuilder{inner: inner})
}

func (gb *GrammarBuilder) OneOrMore(inner int) int {
	return gb.register(&oneOrMoreBuilder{inner: inner})
}

func (gb *GrammarBuilder) ExactRepetition(inner int, count int) (int, error) {
	if count < 2 {
		return 0, errorInvalidRepetitionBound("exact repetition count must be >= 2")
	}
	return gb.register(&exactRepetitionBuilder{inner: inner, count: count}), nil
}

func (gb *GrammarBuilder) PositiveOrMore(inner int, min int) (int, error) {
	if min < 2 {
		return 0, errorInvalidRepetitionBound("positive-or-more minimum must be >= 2")
	}
	return gb.register(&positiveOrMoreBuilder{inner: inner, min: min}), nil
}

func (gb *GrammarBuilder) PositiveRepetitionRange(inner int, min, max int) (int, error) {
	if min < 1 || max <= min {
		return 0, errorInvalidRepetitionBound("repetition range must satisfy 1 <= min < max")
	}
	return gb.register(&positiveRepetitionRangeBuilder{inner: inner, min: min, max: max}), nil
}

func (gb *GrammarBuilder) ZeroRepetitionRange(inner int, max int) (int, error) {
	if max < 2 {
		return 0, errorInvalidRepetitionBound("zero repetition range maximum must be >= 2")
	}
	return gb.register(&zeroRepetitionRangeBuilder{inner: inner, max: max}), nil
}

func (gb *GrammarBuilder) PositiveLookahead(inner int) int {
	return gb.register(&positiveLookaheadBuilder{inner: inner})
}

func (gb *GrammarBuilder) NegativeLookahead(inner int) int {
	return gb.register(&negativeLookaheadBuilder{inner: inner})
}

func (gb *GrammarBuilder) RuleReference(name string) int {
	gb.ensureDeclared(name)
	return gb.register(&ruleReferenceBuilder{name: name})
}

// ---- build ----

// Build validates the staged grammar and, if valid, constructs an
// immutable Grammar. Checks run in a fixed order: unresolved rules,
// left-recursion classification, termination, reachability,
// reference-chain cycles, expression construction (with per-variant
// progression checks), then rule classification.
func (gb *GrammarBuilder) Build() (*Grammar, error) {
	for i, idx := range gb.ruleIndices {
		if idx < 0 {
			return nil, errorUnresolvedRule(gb.ruleNames[i])
		}
	}

	leftRecursive := make(map[string]bool, len(gb.ruleNames))
	for i, name := range gb.ruleNames {
		if gb.isLookaheadOnly(gb.ruleIndices[i]) {
			return nil, errorLookaheadOnlyRule(name)
		}
		leftRecursive[name] = gb.builders[gb.ruleIndices[i]].isLeftRecursive(gb, newNameSet())
	}

	for i, name := range gb.ruleNames {
		if !gb.builders[gb.ruleIndices[i]].isTerminating(gb, true, newNameSet()) {
			return nil, errorNonTerminatingRule(name)
		}
	}

	if err := gb.checkReachability(); err != nil {
		return nil, err
	}

	if err := gb.checkReferenceCycles(); err != nil {
		return nil, err
	}

	cells := make(map[string]*ruleCell, len(gb.ruleNames))
	for _, name := range gb.ruleNames {
		cells[name] = &ruleCell{}
	}

	cache := make(map[int]Expression)
	rules := make(map[string]Rule, len(gb.ruleNames))
	order := make([]string, len(gb.ruleNames))
	copy(order, gb.ruleNames)

	for i, name := range gb.ruleNames {
		expr, err := gb.buildExpr(gb.ruleIndices[i], cells, cache)
		if err != nil {
			return nil, err
		}
		var rule Rule
		if leftRecursive[name] {
			rule = &leftRecursiveRule{name: name, expr: expr}
		} else {
			rule = &nonLeftRecursiveRule{name: name, expr: expr}
		}
		cells[name].rule = rule
		rules[name] = rule
	}

	return &Grammar{rules: rules, order: order, lineSeparator: gb.lineSeparator, lineSeparatorSet: gb.lineSeparatorSet, config: gb.config}, nil
}

func (gb *GrammarBuilder) buildExpr(index int, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	if e, ok := cache[index]; ok {
		return e, nil
	}
	e, err := gb.builders[index].build(gb, cells, cache)
	if err != nil {
		return nil, err
	}
	cache[index] = e
	return e, nil
}

// isLookaheadOnly reports whether the builder can never consume input on
// success no matter what it is evaluated against: a lookahead, or a
// sequence made of nothing but lookaheads. A rule with such a body has no
// progressing element to decide its left-recursion classification and can
// never be usefully parsed on its own.
func (gb *GrammarBuilder) isLookaheadOnly(index int) bool {
	switch b := gb.builders[index].(type) {
	case *positiveLookaheadBuilder, *negativeLookaheadBuilder:
		return true
	case *sequenceBuilder:
		for _, idx := range b.elements {
			if !gb.isLookaheadOnly(idx) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (gb *GrammarBuilder) checkReachability() error {
	reachable := make(map[int]struct{})
	var stack []int
	for _, idx := range gb.ruleIndices {
		stack = append(stack, idx)
	}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := reachable[idx]; seen {
			continue
		}
		reachable[idx] = struct{}{}
		stack = append(stack, gb.builders[idx].childIndices(gb)...)
	}
	indices := maps.Keys(reachable)
	slices.Sort(indices)
	for i := range gb.builders {
		if !slices.Contains(indices, i) {
			return errorUnreachableBuilder(i)
		}
	}
	return nil
}

func (gb *GrammarBuilder) checkReferenceCycles() error {
	for _, name := range gb.ruleNames {
		idx, _ := gb.resolvedBuilderIndex(name)
		ref, ok := gb.builders[idx].(*ruleReferenceBuilder)
		if !ok {
			continue
		}
		seen := []string{name}
		cur := ref
		for {
			target := cur.name
			if slices.Contains(seen, target) {
				return errorRuleReferenceCycle(append(seen, target))
			}
			seen = append(seen, target)
			targetIdx, ok := gb.resolvedBuilderIndex(target)
			if !ok {
				break
			}
			next, isRef := gb.builders[targetIdx].(*ruleReferenceBuilder)
			if !isRef {
				break
			}
			cur = next
		}
	}
	return nil
}

// ---- builder variants ----

type anyCharacterBuilder struct{}

func (b *anyCharacterBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool      { return false }
func (b *anyCharacterBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool   { return false }
func (b *anyCharacterBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool { return false }
func (b *anyCharacterBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return true
}
func (b *anyCharacterBuilder) childIndices(gb *GrammarBuilder) []int { return nil }
func (b *anyCharacterBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	return &AnyCharacterExpression{}, nil
}

type characterClassBuilder struct{ elements []CharacterClassElement }

func (b *characterClassBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool    { return false }
func (b *characterClassBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool { return false }
func (b *characterClassBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *characterClassBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return true
}
func (b *characterClassBuilder) childIndices(gb *GrammarBuilder) []int { return nil }
func (b *characterClassBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	return &CharacterClassExpression{Elements: b.elements}, nil
}

type complementedCharacterClassBuilder struct{ elements []CharacterClassElement }

func (b *complementedCharacterClassBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *complementedCharacterClassBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *complementedCharacterClassBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *complementedCharacterClassBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return true
}
func (b *complementedCharacterClassBuilder) childIndices(gb *GrammarBuilder) []int { return nil }
func (b *complementedCharacterClassBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	return &ComplementedCharacterClassExpression{Elements: b.elements}, nil
}

type doubleQuotedLiteralBuilder struct{ text string }

func (b *doubleQuotedLiteralBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *doubleQuotedLiteralBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *doubleQuotedLiteralBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *doubleQuotedLiteralBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return true
}
func (b *doubleQuotedLiteralBuilder) childIndices(gb *GrammarBuilder) []int { return nil }
func (b *doubleQuotedLiteralBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	return &DoubleQuotedLiteralExpression{Text: b.text}, nil
}

type singleQuotedLiteralBuilder struct{ text string }

func (b *singleQuotedLiteralBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *singleQuotedLiteralBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *singleQuotedLiteralBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *singleQuotedLiteralBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return true
}
func (b *singleQuotedLiteralBuilder) childIndices(gb *GrammarBuilder) []int { return nil }
func (b *singleQuotedLiteralBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	return &SingleQuotedLiteralExpression{Text: b.text}, nil
}

type sequenceBuilder struct{ elements []int }

func (b *sequenceBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool    { return false }
func (b *sequenceBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool { return false }

func (b *sequenceBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	for _, idx := range b.elements {
		child := gb.builder(idx)
		if lookahead, ok := asLookaheadBuilder(child); ok {
			if lookahead.isLeftRecursive(gb, visited) {
				return true
			}
			continue
		}
		return child.isLeftRecursive(gb, visited)
	}
	return false
}

func (b *sequenceBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	for i, idx := range b.elements {
		lm := false
		if i == 0 {
			lm = leftmost
		}
		if !gb.builder(idx).isTerminating(gb, lm, visited) {
			return false
		}
	}
	return true
}

func (b *sequenceBuilder) childIndices(gb *GrammarBuilder) []int { return b.elements }

func (b *sequenceBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	hasProgressing := false
	for _, idx := range b.elements {
		if !gb.builder(idx).isNullable(gb, newNameSet()) {
			hasProgressing = true
		}
	}
	if !hasProgressing {
		return nil, errorNonNullableSequence
	}
	elements := make([]Expression, len(b.elements))
	for i, idx := range b.elements {
		e, err := gb.buildExpr(idx, cells, cache)
		if err != nil {
			return nil, err
		}
		elements[i] = e
	}
	return &SequenceExpression{Elements: elements}, nil
}

type prioritizedChoiceBuilder struct{ variants []int }

func (b *prioritizedChoiceBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool {
	for _, idx := range b.variants {
		if gb.builder(idx).isNullable(gb, visited) {
			return true
		}
	}
	return false
}

func (b *prioritizedChoiceBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	for _, idx := range b.variants {
		if gb.builder(idx).alwaysMatches(gb, visited) {
			return true
		}
	}
	return false
}

func (b *prioritizedChoiceBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	for _, idx := range b.variants {
		if gb.builder(idx).isLeftRecursive(gb, visited) {
			return true
		}
	}
	return false
}

func (b *prioritizedChoiceBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	for _, idx := range b.variants {
		if gb.builder(idx).isTerminating(gb, leftmost, visited) {
			return true
		}
	}
	return false
}

func (b *prioritizedChoiceBuilder) childIndices(gb *GrammarBuilder) []int { return b.variants }

func (b *prioritizedChoiceBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	for i, idx := range b.variants {
		if i == len(b.variants)-1 {
			break
		}
		if gb.builder(idx).alwaysMatches(gb, newNameSet()) {
			return nil, errorChoiceVariantAlwaysMatches(i)
		}
	}
	variants := make([]Expression, len(b.variants))
	for i, idx := range b.variants {
		e, err := gb.buildExpr(idx, cells, cache)
		if err != nil {
			return nil, err
		}
		variants[i] = e
	}
	return &PrioritizedChoiceExpression{Variants: variants}, nil
}

// requireProgressingInner and buildInnerExpr factor the common build-time
// shape shared by every single-inner quantifier/lookahead builder: reject a
// nullable operand, then recursively build it.
func requireProgressingInner(gb *GrammarBuilder, inner int) error {
	if gb.builder(inner).isNullable(gb, newNameSet()) {
		return errorNonProgressingOperand
	}
	return nil
}

func buildInnerExpr(gb *GrammarBuilder, inner int, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	if err := requireProgressingInner(gb, inner); err != nil {
		return nil, err
	}
	return gb.buildExpr(inner, cells, cache)
}

type optionalBuilder struct{ inner int }

func (b *optionalBuilder) childIndices(gb *GrammarBuilder) []int                  { return []int{b.inner} }
func (b *optionalBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool    { return true }
func (b *optionalBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool { return true }
func (b *optionalBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).isLeftRecursive(gb, visited)
}
func (b *optionalBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	if !leftmost {
		return true
	}
	return gb.builder(b.inner).isTerminating(gb, true, visited)
}
func (b *optionalBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	inner, err := buildInnerExpr(gb, b.inner, cells, cache)
	if err != nil {
		return nil, err
	}
	return &OptionalExpression{Inner: inner}, nil
}

type zeroOrMoreBuilder struct{ inner int }

func (b *zeroOrMoreBuilder) childIndices(gb *GrammarBuilder) []int { return []int{b.inner} }

func (b *zeroOrMoreBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool    { return true }
func (b *zeroOrMoreBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool { return true }
func (b *zeroOrMoreBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).isLeftRecursive(gb, visited)
}
func (b *zeroOrMoreBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	if !leftmost {
		return true
	}
	return gb.builder(b.inner).isTerminating(gb, true, visited)
}
func (b *zeroOrMoreBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	inner, err := buildInnerExpr(gb, b.inner, cells, cache)
	if err != nil {
		return nil, err
	}
	return &ZeroOrMoreExpression{Inner: inner}, nil
}

type oneOrMoreBuilder struct{ inner int }

func (b *oneOrMoreBuilder) childIndices(gb *GrammarBuilder) []int { return []int{b.inner} }

func (b *oneOrMoreBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool { return false }
func (b *oneOrMoreBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).alwaysMatches(gb, visited)
}
func (b *oneOrMoreBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).isLeftRecursive(gb, visited)
}
func (b *oneOrMoreBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return gb.builder(b.inner).isTerminating(gb, leftmost, visited)
}
func (b *oneOrMoreBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	inner, err := buildInnerExpr(gb, b.inner, cells, cache)
	if err != nil {
		return nil, err
	}
	return &OneOrMoreExpression{Inner: inner}, nil
}

type exactRepetitionBuilder struct {
	inner int
	count int
}

func (b *exactRepetitionBuilder) childIndices(gb *GrammarBuilder) []int { return []int{b.inner} }

func (b *exactRepetitionBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool { return false }
func (b *exactRepetitionBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).alwaysMatches(gb, visited)
}
func (b *exactRepetitionBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).isLeftRecursive(gb, visited)
}
func (b *exactRepetitionBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return gb.builder(b.inner).isTerminating(gb, leftmost, visited)
}
func (b *exactRepetitionBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	inner, err := buildInnerExpr(gb, b.inner, cells, cache)
	if err != nil {
		return nil, err
	}
	return &ExactRepetitionExpression{Inner: inner, Count: b.count}, nil
}

type positiveOrMoreBuilder struct {
	inner int
	min   int
}

func (b *positiveOrMoreBuilder) childIndices(gb *GrammarBuilder) []int { return []int{b.inner} }

func (b *positiveOrMoreBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool { return false }
func (b *positiveOrMoreBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).alwaysMatches(gb, visited)
}
func (b *positiveOrMoreBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).isLeftRecursive(gb, visited)
}
func (b *positiveOrMoreBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return gb.builder(b.inner).isTerminating(gb, leftmost, visited)
}
func (b *positiveOrMoreBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	inner, err := buildInnerExpr(gb, b.inner, cells, cache)
	if err != nil {
		return nil, err
	}
	return &PositiveOrMoreExpression{Inner: inner, Min: b.min}, nil
}

type positiveRepetitionRangeBuilder struct {
	inner    int
	min, max int
}

func (b *positiveRepetitionRangeBuilder) childIndices(gb *GrammarBuilder) []int {
	return []int{b.inner}
}

func (b *positiveRepetitionRangeBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool {
	return false
}
func (b *positiveRepetitionRangeBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).alwaysMatches(gb, visited)
}
func (b *positiveRepetitionRangeBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).isLeftRecursive(gb, visited)
}
func (b *positiveRepetitionRangeBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return gb.builder(b.inner).isTerminating(gb, leftmost, visited)
}
func (b *positiveRepetitionRangeBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	inner, err := buildInnerExpr(gb, b.inner, cells, cache)
	if err != nil {
		return nil, err
	}
	return &PositiveRepetitionRangeExpression{Inner: inner, Min: b.min, Max: b.max}, nil
}

type zeroRepetitionRangeBuilder struct {
	inner int
	max   int
}

func (b *zeroRepetitionRangeBuilder) childIndices(gb *GrammarBuilder) []int { return []int{b.inner} }

func (b *zeroRepetitionRangeBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool {
	return true
}
func (b *zeroRepetitionRangeBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return true
}
func (b *zeroRepetitionRangeBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).isLeftRecursive(gb, visited)
}
func (b *zeroRepetitionRangeBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	if !leftmost {
		return true
	}
	return gb.builder(b.inner).isTerminating(gb, true, visited)
}
func (b *zeroRepetitionRangeBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	inner, err := buildInnerExpr(gb, b.inner, cells, cache)
	if err != nil {
		return nil, err
	}
	return &ZeroRepetitionRangeExpression{Inner: inner, Max: b.max}, nil
}

type positiveLookaheadBuilder struct{ inner int }

func (b *positiveLookaheadBuilder) childIndices(gb *GrammarBuilder) []int { return []int{b.inner} }

func (b *positiveLookaheadBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool { return true }
func (b *positiveLookaheadBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).alwaysMatches(gb, visited)
}
func (b *positiveLookaheadBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).isLeftRecursive(gb, visited)
}
func (b *positiveLookaheadBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return gb.builder(b.inner).isTerminating(gb, leftmost, visited)
}
func (b *positiveLookaheadBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	inner, err := buildInnerExpr(gb, b.inner, cells, cache)
	if err != nil {
		return nil, err
	}
	return &PositiveLookaheadExpression{Inner: inner}, nil
}

type negativeLookaheadBuilder struct{ inner int }

func (b *negativeLookaheadBuilder) childIndices(gb *GrammarBuilder) []int { return []int{b.inner} }

func (b *negativeLookaheadBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool { return true }
func (b *negativeLookaheadBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).alwaysMatches(gb, visited)
}
func (b *negativeLookaheadBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	return gb.builder(b.inner).isLeftRecursive(gb, visited)
}
func (b *negativeLookaheadBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	return gb.builder(b.inner).isTerminating(gb, leftmost, visited)
}
func (b *negativeLookaheadBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	inner, err := buildInnerExpr(gb, b.inner, cells, cache)
	if err != nil {
		return nil, err
	}
	return &NegativeLookaheadExpression{Inner: inner}, nil
}

// lookaheadBuilder is implemented by positiveLookaheadBuilder and
// negativeLookaheadBuilder; sequenceBuilder.isLeftRecursive uses it to
// detect leading lookahead-only prefixes.
type lookaheadBuilder interface {
	ExpressionBuilder
	innerIndex() int
}

func (b *positiveLookaheadBuilder) innerIndex() int { return b.inner }
func (b *negativeLookaheadBuilder) innerIndex() int { return b.inner }

func asLookaheadBuilder(b ExpressionBuilder) (lookaheadBuilder, bool) {
	lb, ok := b.(lookaheadBuilder)
	return lb, ok
}

type ruleReferenceBuilder struct{ name string }

func (b *ruleReferenceBuilder) isNullable(gb *GrammarBuilder, visited nameSet) bool {
	if _, seen := visited[b.name]; seen {
		return false
	}
	idx, ok := gb.resolvedBuilderIndex(b.name)
	if !ok {
		return false
	}
	visited[b.name] = struct{}{}
	defer delete(visited, b.name)
	return gb.builder(idx).isNullable(gb, visited)
}

func (b *ruleReferenceBuilder) alwaysMatches(gb *GrammarBuilder, visited nameSet) bool {
	if _, seen := visited[b.name]; seen {
		return true
	}
	idx, ok := gb.resolvedBuilderIndex(b.name)
	if !ok {
		return true
	}
	visited[b.name] = struct{}{}
	defer delete(visited, b.name)
	return gb.builder(idx).alwaysMatches(gb, visited)
}

func (b *ruleReferenceBuilder) isLeftRecursive(gb *GrammarBuilder, visited nameSet) bool {
	if _, seen := visited[b.name]; seen {
		return true
	}
	idx, ok := gb.resolvedBuilderIndex(b.name)
	if !ok {
		return true
	}
	visited[b.name] = struct{}{}
	defer delete(visited, b.name)
	return gb.builder(idx).isLeftRecursive(gb, visited)
}

func (b *ruleReferenceBuilder) isTerminating(gb *GrammarBuilder, leftmost bool, visited nameSet) bool {
	if _, seen := visited[b.name]; seen {
		return false
	}
	idx, ok := gb.resolvedBuilderIndex(b.name)
	if !ok {
		return false
	}
	visited[b.name] = struct{}{}
	defer delete(visited, b.name)
	return gb.builder(idx).isTerminating(gb, leftmost, visited)
}

func (b *ruleReferenceBuilder) childIndices(gb *GrammarBuilder) []int {
	if idx, ok := gb.resolvedBuilderIndex(b.name); ok {
		return []int{idx}
	}
	return nil
}

func (b *ruleReferenceBuilder) build(gb *GrammarBuilder, cells map[string]*ruleCell, cache map[int]Expression) (Expression, error) {
	cell, ok := cells[b.name]
	if !ok {
		return nil, errorUnknownRuleReference(b.name)
	}
	return &RuleReference{Name: b.name, Target: cell}, nil
}

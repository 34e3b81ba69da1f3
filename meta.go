package peg

import "sync"

// Rule names of the bootstrapped meta-grammar. Each name that matches an
// Expression variant's type name (see expr.go) is given a lifter handler in
// lifter.go, as are Rule and the parts those variants are assembled from
// (Identifier, UnsignedInteger, CharacterRange, CharacterSet,
// CharacterContainerElement and the two literal-character rules); the rest
// are pure syntax scaffolding that the lifter passes through via its
// generic visit.
const (
	metaRuleGrammar                    = "Grammar"
	metaRuleRule                       = "Rule"
	metaRuleExpression                 = "Expression"
	metaRulePrioritizedChoice          = "PrioritizedChoiceExpression"
	metaRulePrioritizedChoiceVariant   = "PrioritizedChoiceExpressionVariant"
	metaRuleSequence                   = "SequenceExpression"
	metaRuleSequenceElement            = "SequenceExpressionElement"
	metaRuleNonNullableSequenceElement = "NonNullableSequenceExpressionElement"
	metaRuleNullableSequenceElement    = "NullableSequenceExpressionElement"
	metaRuleNegativeLookahead          = "NegativeLookaheadExpression"
	metaRulePositiveLookahead          = "PositiveLookaheadExpression"
	metaRuleExactRepetition            = "ExactRepetitionExpression"
	metaRuleOptional                   = "OptionalExpression"
	metaRuleOneOrMore                  = "OneOrMoreExpression"
	metaRulePositiveOrMore             = "PositiveOrMoreExpression"
	metaRulePositiveRepetitionRange    = "PositiveRepetitionRangeExpression"
	metaRuleZeroOrMore                 = "ZeroOrMoreExpression"
	metaRuleZeroRepetitionRange        = "ZeroRepetitionRangeExpression"
	metaRuleNonNullableTerm            = "NonNullableTerm"
	metaRuleRuleReference              = "RuleReference"
	metaRuleAnyCharacter               = "AnyCharacterExpression"
	metaRuleDoubleQuotedLiteralChar    = "DoubleQuotedLiteralExpressionCharacter"
	metaRuleSingleQuotedLiteralChar    = "SingleQuotedLiteralExpressionCharacter"
	metaRuleCharacterClass             = "CharacterClassExpression"
	metaRuleComplementedCharacterClass = "ComplementedCharacterClassExpression"
	metaRuleCharacterContainer         = "CharacterContainer"
	metaRuleCharacterRange             = "CharacterRange"
	metaRuleCharacterSet               = "CharacterSet"
	metaRuleCharacterContainerElement  = "CharacterContainerElement"
	metaRuleDoubleQuotedLiteral        = "DoubleQuotedLiteralExpression"
	metaRuleSingleQuotedLiteral        = "SingleQuotedLiteralExpression"
	metaRuleEndOfLine                  = "EndOfLine"
	metaRuleIdentifier                 = "Identifier"
	metaRuleFiller                     = "Filler"
	metaRuleSingleLineComment          = "SingleLineComment"
	metaRuleSpace                      = "Space"
	metaRuleUnsignedInteger            = "UnsignedInteger"
	metaRuleLeftArrow                  = "LEFT_ARROW"
)

// Escape-sequence vocabularies: the control characters every quoted
// context understands, plus the additional characters each specific
// context allows escaping.
const (
	commonSpecialCharacters              = "fnrtv"
	characterClassSpecialCharacters      = "-[\\]^"
	doubleQuotedLiteralSpecialCharacters = "\"\\"
	singleQuotedLiteralSpecialCharacters = "'\\"
)

var (
	metaGrammarOnce sync.Once
	metaGrammarVal  *Grammar
)

// metaGrammar returns the process-wide, lazily-built grammar describing the
// concrete PEG surface syntax. It is a build-time constant in spirit:
// buildMetaGrammar can only fail if this file itself has a bug, so a
// failure panics rather than threading an error through every caller of
// ParseGrammar.
func metaGrammar() *Grammar {
	metaGrammarOnce.Do(func() {
		metaGrammarVal = buildMetaGrammar()
	})
	return metaGrammarVal
}

func must(idx int, err error) int {
	if err != nil {
		panic(err)
	}
	return idx
}

func buildMetaGrammar() *Grammar {
	gb := NewGrammarBuilder()

	add := func(name string, idx int) {
		if err := gb.AddRule(name, idx); err != nil {
			panic(err)
		}
	}
	ref := gb.RuleReference
	lit := func(s string) int { return must(gb.SingleQuotedLiteral(s)) }
	seq := func(elements ...int) int { return must(gb.Sequence(elements)) }
	choice := func(variants ...int) int { return must(gb.PrioritizedChoice(variants)) }
	neg := gb.NegativeLookahead
	star := gb.ZeroOrMore
	plus := gb.OneOrMore
	any := gb.AnyCharacter
	class := func(elements ...CharacterClassElement) int {
		return must(gb.CharacterClass(elements))
	}

	add(metaRuleGrammar, seq(
		ref(metaRuleFiller),
		plus(ref(metaRuleRule)),
		neg(any()),
	))

	add(metaRuleRule, seq(
		ref(metaRuleIdentifier),
		ref(metaRuleFiller),
		ref(metaRuleLeftArrow),
		ref(metaRuleFiller),
		ref(metaRuleExpression),
	))

	add(metaRuleExpression, choice(
		ref(metaRulePrioritizedChoice),
		ref(metaRulePrioritizedChoiceVariant),
	))

	add(metaRulePrioritizedChoice, seq(
		ref(metaRulePrioritizedChoiceVariant),
		plus(seq(
			lit("/"),
			ref(metaRuleFiller),
			ref(metaRulePrioritizedChoiceVariant),
		)),
	))

	add(metaRulePrioritizedChoiceVariant, choice(
		ref(metaRuleSequence),
		ref(metaRuleSequenceElement),
	))

	add(metaRuleSequence, seq(
		ref(metaRuleSequenceElement),
		plus(ref(metaRuleSequenceElement)),
	))

	add(metaRuleSequenceElement, choice(
		ref(metaRuleNullableSequenceElement),
		ref(metaRuleNonNullableSequenceElement),
	))

	add(metaRuleNonNullableSequenceElement, choice(
		ref(metaRuleExactRepetition),
		ref(metaRuleOneOrMore),
		ref(metaRulePositiveOrMore),
		ref(metaRulePositiveRepetitionRange),
		ref(metaRuleNonNullableTerm),
	))

	add(metaRuleNullableSequenceElement, choice(
		seq(
			lit("("),
			ref(metaRuleFiller),
			ref(metaRuleNullableSequenceElement),
			lit(")"),
			ref(metaRuleFiller),
		),
		ref(metaRuleNegativeLookahead),
		ref(metaRulePositiveLookahead),
		ref(metaRuleOptional),
		ref(metaRuleZeroOrMore),
		ref(metaRuleZeroRepetitionRange),
	))

	add(metaRuleNegativeLookahead, seq(
		lit("!"),
		ref(metaRuleFiller),
		ref(metaRuleNonNullableSequenceElement),
	))

	add(metaRulePositiveLookahead, seq(
		lit("&"),
		ref(metaRuleFiller),
		ref(metaRuleNonNullableSequenceElement),
	))

	add(metaRuleExactRepetition, seq(
		ref(metaRuleNonNullableTerm),
		lit("{"),
		ref(metaRuleFiller),
		ref(metaRuleUnsignedInteger),
		ref(metaRuleFiller),
		lit("}"),
		ref(metaRuleFiller),
	))

	add(metaRuleOptional, seq(
		ref(metaRuleNonNullableTerm),
		lit("?"),
		ref(metaRuleFiller),
	))

	add(metaRuleOneOrMore, seq(
		ref(metaRuleNonNullableTerm),
		lit("+"),
		ref(metaRuleFiller),
	))

	add(metaRulePositiveOrMore, seq(
		ref(metaRuleNonNullableTerm),
		lit("{"),
		ref(metaRuleFiller),
		ref(metaRuleUnsignedInteger),
		ref(metaRuleFiller),
		lit(","),
		ref(metaRuleFiller),
		lit("}"),
		ref(metaRuleFiller),
	))

	add(metaRulePositiveRepetitionRange, seq(
		ref(metaRuleNonNullableTerm),
		lit("{"),
		ref(metaRuleFiller),
		ref(metaRuleUnsignedInteger),
		ref(metaRuleFiller),
		lit(","),
		ref(metaRuleFiller),
		ref(metaRuleUnsignedInteger),
		ref(metaRuleFiller),
		lit("}"),
		ref(metaRuleFiller),
	))

	add(metaRuleZeroOrMore, seq(
		ref(metaRuleNonNullableTerm),
		lit("*"),
		ref(metaRuleFiller),
	))

	add(metaRuleZeroRepetitionRange, seq(
		ref(metaRuleNonNullableTerm),
		lit("{"),
		ref(metaRuleFiller),
		lit(","),
		ref(metaRuleFiller),
		ref(metaRuleUnsignedInteger),
		ref(metaRuleFiller),
		lit("}"),
		ref(metaRuleFiller),
	))

	add(metaRuleNonNullableTerm, choice(
		seq(
			lit("("),
			ref(metaRuleFiller),
			choice(
				ref(metaRulePrioritizedChoice),
				ref(metaRuleSequence),
				ref(metaRuleNonNullableSequenceElement),
			),
			lit(")"),
			ref(metaRuleFiller),
		),
		ref(metaRuleAnyCharacter),
		ref(metaRuleComplementedCharacterClass),
		ref(metaRuleCharacterClass),
		ref(metaRuleDoubleQuotedLiteral),
		ref(metaRuleSingleQuotedLiteral),
		ref(metaRuleRuleReference),
	))

	add(metaRuleRuleReference, seq(
		ref(metaRuleIdentifier),
		ref(metaRuleFiller),
		neg(ref(metaRuleLeftArrow)),
	))

	add(metaRuleAnyCharacter, seq(
		lit("."),
		ref(metaRuleFiller),
	))

	add(metaRuleDoubleQuotedLiteralChar, choice(
		seq(
			lit("\\"),
			class(mustSet(NewCharacterSet(doubleQuotedLiteralSpecialCharacters+commonSpecialCharacters))),
		),
		seq(
			neg(lit("\\")),
			any(),
		),
	))

	add(metaRuleSingleQuotedLiteralChar, choice(
		seq(
			lit("\\"),
			class(mustSet(NewCharacterSet(singleQuotedLiteralSpecialCharacters+commonSpecialCharacters))),
		),
		seq(
			neg(lit("\\")),
			any(),
		),
	))

	add(metaRuleCharacterClass, seq(
		lit("["),
		plus(ref(metaRuleCharacterContainer)),
		lit("]"),
		ref(metaRuleFiller),
	))

	add(metaRuleComplementedCharacterClass, seq(
		lit("[^"),
		plus(ref(metaRuleCharacterContainer)),
		lit("]"),
		ref(metaRuleFiller),
	))

	add(metaRuleCharacterContainer, choice(
		ref(metaRuleCharacterRange),
		ref(metaRuleCharacterSet),
	))

	add(metaRuleCharacterRange, seq(
		neg(lit("]")),
		ref(metaRuleCharacterContainerElement),
		lit("-"),
		ref(metaRuleCharacterContainerElement),
	))

	add(metaRuleCharacterSet, plus(seq(
		neg(lit("]")),
		ref(metaRuleCharacterContainerElement),
		neg(lit("-")),
	)))

	add(metaRuleCharacterContainerElement, choice(
		seq(
			lit("\\"),
			class(mustSet(NewCharacterSet(characterClassSpecialCharacters+commonSpecialCharacters))),
		),
		seq(
			neg(lit("\\")),
			any(),
		),
	))

	add(metaRuleDoubleQuotedLiteral, seq(
		lit(`"`),
		star(seq(
			neg(lit(`"`)),
			ref(metaRuleDoubleQuotedLiteralChar),
		)),
		lit(`"`),
		ref(metaRuleFiller),
	))

	add(metaRuleSingleQuotedLiteral, seq(
		lit("'"),
		star(seq(
			neg(lit("'")),
			ref(metaRuleSingleQuotedLiteralChar),
		)),
		lit("'"),
		ref(metaRuleFiller),
	))

	add(metaRuleEndOfLine, choice(
		lit("\r\n"),
		lit("\n"),
		lit("\r"),
	))

	add(metaRuleIdentifier, seq(
		class(
			mustRange(NewCharacterRange('a', 'z')),
			mustRange(NewCharacterRange('A', 'Z')),
			mustSet(NewCharacterSet("_")),
		),
		star(class(
			mustRange(NewCharacterRange('0', '9')),
			mustRange(NewCharacterRange('a', 'z')),
			mustRange(NewCharacterRange('A', 'Z')),
			mustSet(NewCharacterSet("_")),
		)),
	))

	add(metaRuleFiller, star(choice(
		ref(metaRuleSpace),
		ref(metaRuleSingleLineComment),
	)))

	add(metaRuleSingleLineComment, seq(
		lit("#"),
		star(seq(
			neg(ref(metaRuleEndOfLine)),
			any(),
		)),
		ref(metaRuleEndOfLine),
	))

	add(metaRuleSpace, choice(
		ref(metaRuleEndOfLine),
		lit(" "),
		lit("\t"),
	))

	add(metaRuleUnsignedInteger, choice(
		seq(
			class(mustRange(NewCharacterRange('1', '9'))),
			star(class(mustRange(NewCharacterRange('0', '9')))),
		),
		lit("0"),
	))

	add(metaRuleLeftArrow, lit("<-"))

	grammar, err := gb.Build()
	if err != nil {
		panic(err)
	}
	return grammar
}

func mustRange(r CharacterRange, err error) CharacterClassElement {
	if err != nil {
		panic(err)
	}
	return r
}

func mustSet(s CharacterSet, err error) CharacterClassElement {
	if err != nil {
		panic(err)
	}
	return s
}

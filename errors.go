package peg

import (
	"fmt"
)

var (
	errorCallstackOverflow = errorf("callstack overflow")
	errorUnprocessedSuffix = errorf("parse succeeded but did not consume the entire input")

	errorEmptyCharacterSet     = errorf("character set must be non-empty")
	errorEmptyMismatchOrigin   = errorf("mismatch origin name must be non-empty")
	errorEmptyMismatchChildren = errorf("mismatch tree must have at least one child")

	errorInvalidCharacterRange = func(lo, hi rune) error {
		return errorf("invalid character range: lo %q is greater than hi %q", lo, hi)
	}

	errorInvalidMismatchSpan = func(start, stop int) error {
		return errorf("invalid mismatch span: start %d is greater than stop %d", start, stop)
	}

	errorEmptyRuleName = errorf("rule name must be non-empty")

	errorUnknownRuleReference = func(name string) error {
		return errorf("reference to undeclared rule %q", name)
	}

	errorRuleRedefinition = func(name string) error {
		return errorf("rule %q is defined more than once", name)
	}

	errorRuleReferenceCycle = func(names []string) error {
		return errorf("cycle detected in bare rule references: %v", names)
	}

	errorUnresolvedRule = func(name string) error {
		return errorf("rule %q is declared but never given a definition", name)
	}

	errorNonProgressingOperand  = errorf("operand must be progressing (never match zero characters)")
	errorNonNullableSequence    = errorf("a sequence must have at least one progressing element")
	errorTooFewChoiceVariants   = errorf("a prioritized choice must have at least two variants")
	errorTooFewSequenceElements = errorf("a sequence must have at least two elements")
	errorEmptyLiteral           = errorf("literal must be non-empty")

	errorLookaheadOnlyRule = func(name string) error {
		return errorf("rule %q consists only of lookaheads and can never consume input", name)
	}

	errorChoiceVariantAlwaysMatches = func(index int) error {
		return errorf("prioritized choice variant %d always matches and is not the last variant", index)
	}

	errorNonTerminatingRule = func(name string) error {
		return errorf("rule %q is not guaranteed to terminate", name)
	}

	errorUnreachableBuilder = func(index int) error {
		return errorf("expression builder %d is never reachable from any rule", index)
	}

	errorInvalidBuilderIndex = func(index int) error {
		return errorf("invalid expression builder index %d", index)
	}

	errorInvalidRepetitionBound = func(msg string) error {
		return errorf("invalid repetition bound: %s", msg)
	}

	errorMalformedParseTree = func(detail string) error {
		return errorf("malformed grammar parse tree: %s", detail)
	}
)

type pegError struct {
	value string
}

func errorf(format string, v ...interface{}) error {
	return &pegError{fmt.Sprintf(format, v...)}
}

func (err *pegError) Error() string {
	return "peg: " + err.value
}

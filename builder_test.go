package peg

import "testing"

func TestGrammarBuilderUnresolvedRule(t *testing.T) {
	gb := NewGrammarBuilder()
	gb.RuleReference("Missing")
	if _, err := gb.Build(); err == nil {
		t.Fatal("expected error for a rule that is referenced but never defined")
	}
}

func TestGrammarBuilderInvalidBuilderIndex(t *testing.T) {
	gb := NewGrammarBuilder()
	if err := gb.AddRule("A", 0); err == nil {
		t.Fatal("expected error for an out-of-range builder index")
	}
}

func TestGrammarBuilderRuleRedefinition(t *testing.T) {
	gb := NewGrammarBuilder()
	lit, _ := gb.SingleQuotedLiteral("a")
	if err := gb.AddRule("A", lit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit2, _ := gb.SingleQuotedLiteral("b")
	if err := gb.AddRule("A", lit2); err == nil {
		t.Fatal("expected error redefining an already-defined rule")
	}
}

func TestGrammarBuilderTooFewSequenceElements(t *testing.T) {
	gb := NewGrammarBuilder()
	lit, _ := gb.SingleQuotedLiteral("a")
	if _, err := gb.Sequence([]int{lit}); err == nil {
		t.Fatal("expected error for a sequence with fewer than two elements")
	}
}

func TestGrammarBuilderTooFewChoiceVariants(t *testing.T) {
	gb := NewGrammarBuilder()
	lit, _ := gb.SingleQuotedLiteral("a")
	if _, err := gb.PrioritizedChoice([]int{lit}); err == nil {
		t.Fatal("expected error for a choice with fewer than two variants")
	}
}

func TestGrammarBuilderNonProgressingOperand(t *testing.T) {
	gb := NewGrammarBuilder()
	opt := gb.Optional(gb.AnyCharacter())
	if err := gb.AddRule("A", gb.ZeroOrMore(opt)); err != nil {
		t.Fatalf("unexpected error wiring the rule: %v", err)
	}
	if _, err := gb.Build(); err == nil {
		t.Fatal("expected error: zero-or-more over a nullable operand never progresses")
	}
}

func TestGrammarBuilderNonTerminatingRule(t *testing.T) {
	gb := NewGrammarBuilder()
	ref := gb.RuleReference("A")
	if err := gb.AddRule("A", ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := gb.Build(); err == nil {
		t.Fatal("expected error for a rule that is left-recursive with no progressing alternative")
	}
}

func TestGrammarBuilderUnreachableBuilder(t *testing.T) {
	gb := NewGrammarBuilder()
	gb.AnyCharacter() // never wired into any rule
	lit, _ := gb.SingleQuotedLiteral("a")
	if err := gb.AddRule("A", lit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := gb.Build(); err == nil {
		t.Fatal("expected error for an expression builder unreachable from any rule")
	}
}

func TestGrammarBuilderSimpleParse(t *testing.T) {
	gb := NewGrammarBuilder()
	a, _ := gb.SingleQuotedLiteral("a")
	b, _ := gb.SingleQuotedLiteral("b")
	seq, _ := gb.Sequence([]int{a, b})
	if err := gb.AddRule("AB", seq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	grammar, err := gb.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	match, err := grammar.Parse("ab", "AB")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if match.CharactersCount() != 2 {
		t.Fatalf("expected to consume 2 characters, got %d", match.CharactersCount())
	}
	if _, err := grammar.Parse("ac", "AB"); err == nil {
		t.Fatal("expected a parse error for non-matching input")
	}
}

func TestGrammarBuilderLeftRecursiveSeedAndGrow(t *testing.T) {
	// Digit <- [0-9]
	// Sum <- Sum '+' Digit / Digit
	gb := NewGrammarBuilder()
	digitClass, err := gb.CharacterClass([]CharacterClassElement{mustRange(NewCharacterRange('0', '9'))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := gb.AddRule("Digit", digitClass); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plus, _ := gb.SingleQuotedLiteral("+")
	sumRef := gb.RuleReference("Sum")
	digitRef := gb.RuleReference("Digit")
	recurse, err := gb.Sequence([]int{sumRef, plus, digitRef})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	digitRef2 := gb.RuleReference("Digit")
	choice, err := gb.PrioritizedChoice([]int{recurse, digitRef2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := gb.AddRule("Sum", choice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	grammar, err := gb.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	match, err := grammar.Parse("1+2+3", "Sum")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if match.CharactersCount() != 5 {
		t.Fatalf("expected to consume the entire left-recursive sum, got %d characters", match.CharactersCount())
	}
}

package peg

import "testing"

func TestAnyCharacterExpressionEvaluate(t *testing.T) {
	e := &AnyCharacterExpression{}
	ctx := &evalContext{text: "ab"}
	res := e.evaluate(ctx, 0, nil)
	if !res.Matched || res.Match.CharactersCount() != 1 {
		t.Fatalf("expected to match one character, got %+v", res)
	}
	res = e.evaluate(ctx, 2, nil)
	if res.Matched {
		t.Fatal("expected failure at end of input")
	}
}

func TestDoubleQuotedLiteralExpressionEvaluate(t *testing.T) {
	e := &DoubleQuotedLiteralExpression{Text: "hi"}
	ctx := &evalContext{text: "hiya"}
	res := e.evaluate(ctx, 0, nil)
	if !res.Matched || res.Match.CharactersCount() != 2 {
		t.Fatalf("expected to match the literal prefix, got %+v", res)
	}
	if res2 := e.evaluate(ctx, 1, nil); res2.Matched {
		t.Fatal("expected failure when the literal does not align with the text")
	}
}

func TestSequenceExpressionEvaluate(t *testing.T) {
	e := &SequenceExpression{Elements: []Expression{
		&DoubleQuotedLiteralExpression{Text: "a"},
		&DoubleQuotedLiteralExpression{Text: "b"},
	}}
	ctx := &evalContext{text: "ab"}
	name := "Seq"
	res := e.evaluate(ctx, 0, &name)
	if !res.Matched {
		t.Fatal("expected the sequence to match")
	}
	tree, ok := res.Match.(*MatchTree)
	if !ok {
		t.Fatalf("expected a *MatchTree, got %T", res.Match)
	}
	if tree.Name == nil || *tree.Name != "Seq" {
		t.Fatal("expected the sequence's own match to carry the ambient name")
	}
	for _, child := range tree.Children {
		if child.RuleName() != nil {
			t.Fatal("sequence elements should not inherit the ambient name")
		}
	}
}

func TestSequenceExpressionEvaluateFailure(t *testing.T) {
	e := &SequenceExpression{Elements: []Expression{
		&DoubleQuotedLiteralExpression{Text: "a"},
		&DoubleQuotedLiteralExpression{Text: "b"},
	}}
	ctx := &evalContext{text: "ac"}
	res := e.evaluate(ctx, 0, nil)
	if res.Matched {
		t.Fatal("expected the sequence to fail on its second element")
	}
}

func TestPrioritizedChoiceExpressionEvaluate(t *testing.T) {
	e := &PrioritizedChoiceExpression{Variants: []Expression{
		&DoubleQuotedLiteralExpression{Text: "a"},
		&DoubleQuotedLiteralExpression{Text: "b"},
	}}
	ctx := &evalContext{text: "b"}
	name := "Choice"
	res := e.evaluate(ctx, 0, &name)
	if !res.Matched {
		t.Fatal("expected the second variant to match")
	}
	if res.Match.RuleName() == nil || *res.Match.RuleName() != "Choice" {
		t.Fatal("expected the ambient name to be forwarded into the winning variant")
	}
}

func TestPrioritizedChoiceExpressionEvaluateAllFail(t *testing.T) {
	e := &PrioritizedChoiceExpression{Variants: []Expression{
		&DoubleQuotedLiteralExpression{Text: "a"},
		&DoubleQuotedLiteralExpression{Text: "b"},
	}}
	res := e.evaluate(&evalContext{text: "c"}, 0, nil)
	if res.Matched {
		t.Fatal("expected failure when no variant matches")
	}
	if _, ok := res.Mismatch.(*MismatchTree); !ok {
		t.Fatalf("expected a *MismatchTree grouping every variant's failure, got %T", res.Mismatch)
	}
}

func TestOptionalExpressionEvaluate(t *testing.T) {
	e := &OptionalExpression{Inner: &DoubleQuotedLiteralExpression{Text: "a"}}
	ctx := &evalContext{text: "b"}
	res := e.evaluate(ctx, 0, nil)
	if !res.Matched || res.Match.CharactersCount() != 0 {
		t.Fatalf("expected a zero-width success when the inner expression fails, got %+v", res)
	}
}

func TestOneOrMoreExpressionEvaluate(t *testing.T) {
	e := &OneOrMoreExpression{Inner: &AnyCharacterExpression{}}
	res := e.evaluate(&evalContext{text: "abc"}, 0, nil)
	if !res.Matched || res.Match.CharactersCount() != 3 {
		t.Fatalf("expected to greedily consume all three characters, got %+v", res)
	}
	if res := e.evaluate(&evalContext{text: ""}, 0, nil); res.Matched {
		t.Fatal("expected one-or-more to fail when its inner expression never matches once")
	}
}

func TestExprStringRendersPrecedence(t *testing.T) {
	choice := &PrioritizedChoiceExpression{Variants: []Expression{
		&DoubleQuotedLiteralExpression{Text: "a"},
		&DoubleQuotedLiteralExpression{Text: "b"},
	}}
	seq := &SequenceExpression{Elements: []Expression{choice, &AnyCharacterExpression{}}}
	got := ExprString(seq)
	want := `("a" / "b") .`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

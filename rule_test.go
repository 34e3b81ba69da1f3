package peg

import (
	"strings"
	"testing"
)

func TestNonLeftRecursiveRuleMemoizes(t *testing.T) {
	calls := 0
	r := &nonLeftRecursiveRule{name: "A", expr: countingExpr{&DoubleQuotedLiteralExpression{Text: "a"}, &calls}}
	cache := newParseCache(0)
	first := r.Parse("a", 0, cache, nil)
	second := r.Parse("a", 0, cache, nil)
	if !first.Matched || !second.Matched {
		t.Fatal("expected both parses to match")
	}
	if calls != 1 {
		t.Fatalf("expected the cached second call to skip re-evaluation, got %d evaluations", calls)
	}
}

func TestParseCacheCallstackLimit(t *testing.T) {
	cache := newParseCache(2)
	cache.enterRule()
	cache.enterRule()
	defer func() {
		r := recover()
		if r != errorCallstackOverflow {
			t.Fatalf("expected errorCallstackOverflow panic, got %v", r)
		}
	}()
	cache.enterRule()
}

func TestEffectiveName(t *testing.T) {
	own := "Own"
	if got := effectiveName(nil, own); *got != "Own" {
		t.Fatalf("expected the rule's own name, got %q", *got)
	}
	ambient := "Ambient"
	if got := effectiveName(&ambient, own); *got != "Ambient" {
		t.Fatalf("expected the ambient name to win, got %q", *got)
	}
}

// countingExpr wraps another Expression and counts evaluate calls, for
// asserting on packrat memoization without reaching into cache internals.
type countingExpr struct {
	inner Expression
	calls *int
}

func (c countingExpr) evaluate(ctx *evalContext, index int, name *string) evalResult {
	*c.calls++
	return c.inner.evaluate(ctx, index, name)
}
func (c countingExpr) expectedMessage() string { return c.inner.expectedMessage() }
func (c countingExpr) seedFailure(index int, name *string) Mismatch {
	return c.inner.seedFailure(index, name)
}
func (c countingExpr) precedence() precedence                       { return c.inner.precedence() }
func (c countingExpr) format(w *strings.Builder, parent precedence) { c.inner.format(w, parent) }

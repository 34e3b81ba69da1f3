package peg

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parseGrammar(t *testing.T, text string) *Grammar {
	t.Helper()
	grammar, err := ParseGrammar(text)
	if err != nil {
		t.Fatalf("unexpected grammar parse error: %v\n%s", err, text)
	}
	return grammar
}

func TestParseGrammarLiteralSequence(t *testing.T) {
	grammar := parseGrammar(t, "S <- 'a' 'b'")

	match, err := grammar.Parse("ab", "S")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	tree, ok := match.(*MatchTree)
	if !ok {
		t.Fatalf("expected a *MatchTree, got %T", match)
	}
	if tree.Name == nil || *tree.Name != "S" {
		t.Fatalf("expected the top match to be named S, got %v", tree.Name)
	}
	if len(tree.Children) != 2 || matchText(tree.Children[0]) != "a" || matchText(tree.Children[1]) != "b" {
		t.Fatalf("expected leaf children \"a\" and \"b\", got %+v", tree.Children)
	}
	if tree.CharactersCount() != 2 {
		t.Fatalf("expected 2 characters, got %d", tree.CharactersCount())
	}

	_, err = grammar.Parse("ac", "S")
	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	rendered := parseErr.Error()
	if !strings.Contains(rendered, "at 1:2-1:3") {
		t.Fatalf("expected the failure span at 1:2-1:3, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, "expected 'b'") {
		t.Fatalf("expected the report to name the missing literal, got:\n%s", rendered)
	}
}

func TestParseGrammarNestedRecursion(t *testing.T) {
	grammar := parseGrammar(t, "S <- 'a' S 'b' / 'ab'")

	match, err := grammar.Parse("aaabbb", "S")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if match.CharactersCount() != 6 {
		t.Fatalf("expected 6 characters, got %d", match.CharactersCount())
	}
	top, ok := match.(*MatchTree)
	if !ok {
		t.Fatalf("expected a *MatchTree, got %T", match)
	}
	middle, ok := top.Children[1].(*MatchTree)
	if !ok {
		t.Fatalf("expected a nested recursive level, got %T", top.Children[1])
	}
	base, ok := middle.Children[1].(*MatchLeaf)
	if !ok || base.Characters != "ab" {
		t.Fatalf("expected the base case leaf \"ab\" two levels down, got %+v", middle.Children[1])
	}
	if base.Name == nil || *base.Name != "S" {
		t.Fatalf("expected the base case to carry the rule name, got %v", base.Name)
	}
}

func TestParseGrammarLeftRecursion(t *testing.T) {
	grammar := parseGrammar(t, "E <- E '+' N / N\nN <- [0-9]+")

	if _, ok := grammar.rules["E"].(*leftRecursiveRule); !ok {
		t.Fatalf("expected E to be classified left-recursive, got %T", grammar.rules["E"])
	}
	if _, ok := grammar.rules["N"].(*nonLeftRecursiveRule); !ok {
		t.Fatalf("expected N to be classified non-left-recursive, got %T", grammar.rules["N"])
	}

	match, err := grammar.Parse("1+2+3", "E")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if match.CharactersCount() != 5 {
		t.Fatalf("expected the grown match to span the entire input, got %d characters", match.CharactersCount())
	}
	top, ok := match.(*MatchTree)
	if !ok || len(top.Children) != 3 {
		t.Fatalf("expected three top-level operands, got %+v", match)
	}
	left, ok := top.Children[0].(*MatchTree)
	if !ok || left.CharactersCount() != 3 {
		t.Fatalf("expected the left operand to hold the earlier grow iteration (\"1+2\"), got %+v", top.Children[0])
	}
	if left.Name == nil || *left.Name != "E" {
		t.Fatalf("expected the left operand to be an E match, got %v", left.Name)
	}
}

func TestParseGrammarIdentifierShape(t *testing.T) {
	grammar := parseGrammar(t, "S <- [A-Za-z_] [A-Za-z0-9_]*")

	match, err := grammar.Parse("x_1", "S")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	top, ok := match.(*MatchTree)
	if !ok || len(top.Children) != 2 {
		t.Fatalf("expected a head leaf and a tail tree, got %+v", match)
	}
	if matchText(top.Children[0]) != "x" || matchText(top.Children[1]) != "_1" {
		t.Fatalf("expected \"x\" then \"_1\", got %q and %q", matchText(top.Children[0]), matchText(top.Children[1]))
	}

	_, err = grammar.Parse("1x", "S")
	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if !strings.Contains(parseErr.Error(), "at 1:1-1:2") {
		t.Fatalf("expected the failure span at 1:1-1:2, got:\n%s", parseErr.Error())
	}
}

func TestCharacterClassSetNormalization(t *testing.T) {
	gb := NewGrammarBuilder()
	class, err := gb.CharacterClass([]CharacterClassElement{
		mustSet(NewCharacterSet("ab")),
		mustSet(NewCharacterSet("cd")),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := gb.AddRule("S", class); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	grammar, err := gb.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if got := ExprString(grammar.rules["S"].Expression()); got != "[abcd]" {
		t.Fatalf("expected the merged class [abcd], got %q", got)
	}
	for _, input := range []string{"a", "b", "c", "d"} {
		if _, err := grammar.Parse(input, "S"); err != nil {
			t.Fatalf("expected %q to be accepted: %v", input, err)
		}
	}
	if _, err := grammar.Parse("e", "S"); err == nil {
		t.Fatal("expected \"e\" to be rejected")
	}
}

func TestParseGrammarErrorAggregation(t *testing.T) {
	grammar := parseGrammar(t, "S <- 'aa' / 'ab' / 'ac'")

	_, err := grammar.Parse("ad", "S")
	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if len(parseErr.Children) != 1 {
		t.Fatalf("expected one grouped span, got %d", len(parseErr.Children))
	}
	rendered := parseErr.Error()
	if !strings.Contains(rendered, "at 1:1-1:3") {
		t.Fatalf("expected the shared span at 1:1-1:3, got:\n%s", rendered)
	}
	for _, expected := range []string{"'aa'", "'ab'", "'ac'"} {
		if !strings.Contains(rendered, "expected "+expected) {
			t.Fatalf("expected an entry for %s, got:\n%s", expected, rendered)
		}
	}
	if got := strings.Count(rendered, "+- expected"); got != 3 {
		t.Fatalf("expected one origin-path line per variant, got %d:\n%s", got, rendered)
	}
}

func TestParseGrammarOrderedChoiceShortCircuits(t *testing.T) {
	grammar := parseGrammar(t, "S <- 'a' / 'ab'")
	match, err := grammar.Parse("a", "S")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if match.CharactersCount() != 1 {
		t.Fatalf("expected the first variant to win, got %d characters", match.CharactersCount())
	}
}

func TestParseGrammarQuantifiers(t *testing.T) {
	grammar := parseGrammar(t, strings.Join([]string{
		"S <- Two AtLeastTwo AtLeastOne Ranged UpTo Tail",
		"Two <- 'a'{2}",
		"AtLeastTwo <- 'b'{2,}",
		"AtLeastOne <- 'c'+",
		"Ranged <- 'd'{1,3}",
		"UpTo <- 'e'{,2}",
		"Tail <- 'f'?",
	}, "\n"))

	for _, input := range []string{"aabbccdf", "aabbbcddd", "aabbccddeef"} {
		if _, err := grammar.Parse(input, "S"); err != nil {
			t.Fatalf("expected %q to parse: %v", input, err)
		}
	}
	if _, err := grammar.Parse("abbccdf", "S"); err == nil {
		t.Fatal("expected failure with only one 'a'")
	}
}

func TestParseGrammarLookaheads(t *testing.T) {
	grammar := parseGrammar(t, "S <- &'a' . !'c' .")

	match, err := grammar.Parse("ab", "S")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if match.CharactersCount() != 2 {
		t.Fatalf("expected lookaheads to consume nothing, got %d characters", match.CharactersCount())
	}
	if _, err := grammar.Parse("bc", "S"); err == nil {
		t.Fatal("expected the positive lookahead to reject input not starting with 'a'")
	}
	if _, err := grammar.Parse("ac", "S"); err == nil {
		t.Fatal("expected the negative lookahead to reject a 'c' in second position")
	}
}

func TestParseGrammarComplementedClass(t *testing.T) {
	grammar := parseGrammar(t, "S <- [^0-9x]+")
	if _, err := grammar.Parse("abc", "S"); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := grammar.Parse("a1", "S"); err == nil {
		t.Fatal("expected a digit to be rejected")
	}
	if _, err := grammar.Parse("x", "S"); err == nil {
		t.Fatal("expected 'x' to be rejected")
	}
}

// renderedRules canonicalizes a grammar for order-insensitive comparison:
// rule order follows first mention (a reference declares its target), so two
// equivalent grammars can list the same rules in different order.
func renderedRules(g *Grammar) []string {
	lines := strings.Split(g.String(), "\n")
	sorted := make([]string, len(lines))
	copy(sorted, lines)
	sort.Strings(sorted)
	return sorted
}

func TestParseGrammarRoundTrip(t *testing.T) {
	source := strings.Join([]string{
		"S <- Item (',' Filler Item)* !.",
		"Item <- [A-Za-z_]+ / \"quoted\" / 'x'{2,5}",
		"Filler <- ' '*",
	}, "\n")
	grammar := parseGrammar(t, source)

	reparsed := parseGrammar(t, grammar.String())
	if diff := cmp.Diff(renderedRules(grammar), renderedRules(reparsed)); diff != "" {
		t.Fatalf("round trip changed the grammar (-first +second):\n%s", diff)
	}

	first, err := grammar.Parse("ab,cd", "S")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	second, err := reparsed.Parse("ab,cd", "S")
	if err != nil {
		t.Fatalf("unexpected parse error from the reparsed grammar: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("round-tripped grammar produced a different match tree (-first +second):\n%s", diff)
	}
}

func TestMetaGrammarRoundTrips(t *testing.T) {
	meta := metaGrammar()
	reparsed := parseGrammar(t, meta.String())
	if diff := cmp.Diff(renderedRules(meta), renderedRules(reparsed)); diff != "" {
		t.Fatalf("round trip changed the meta-grammar (-first +second):\n%s", diff)
	}
}

func TestParseGrammarConstructionErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		source string
	}{
		{"bare self reference", "S <- S"},
		{"redefinition", "S <- 'a'\nS <- 'b'"},
		{"always-matching non-final variant", "S <- 'a'? / 'b'"},
		{"lookahead-only rule", "S <- &'x'"},
		{"lookahead-only sequence", "S <- &'x' !'y'"},
		{"reference to undefined rule", "S <- T"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseGrammar(tc.source); err == nil {
				t.Fatalf("expected a construction error for %q", tc.source)
			}
		})
	}
}

func TestParseGrammarSyntaxError(t *testing.T) {
	if _, err := ParseGrammar("S <- "); err == nil {
		t.Fatal("expected a parse error for a rule without a body")
	}
	if _, err := ParseGrammar(""); err == nil {
		t.Fatal("expected a parse error for an empty grammar")
	}
}

func TestParseGrammarMultiRule(t *testing.T) {
	grammar := parseGrammar(t, strings.Join([]string{
		"Greeting <- Word ' ' Word",
		"Word <- [a-z]+",
	}, "\n"))
	// Word is declared by the reference inside Greeting's body before
	// Greeting itself is added, so it leads the mention order.
	if diff := cmp.Diff([]string{"Word", "Greeting"}, grammar.Rules()); diff != "" {
		t.Fatalf("unexpected rule order (-want +got):\n%s", diff)
	}
	match, err := grammar.Parse("hello world", "Greeting")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if match.CharactersCount() != len("hello world") {
		t.Fatalf("expected the whole input to be consumed, got %d", match.CharactersCount())
	}
}

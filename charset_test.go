package peg

import "testing"

func TestNewCharacterRange(t *testing.T) {
	if _, err := NewCharacterRange('z', 'a'); err == nil {
		t.Fatal("expected error for lo > hi")
	}
	r, err := NewCharacterRange('a', 'z')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.containsRune('m') || r.containsRune('A') {
		t.Fatalf("containsRune behaved unexpectedly: %+v", r)
	}
}

func TestNormalizeClassElements(t *testing.T) {
	ab, _ := NewCharacterSet("ab")
	cd, _ := NewCharacterSet("cd")
	az, _ := NewCharacterRange('a', 'z')
	ef, _ := NewCharacterSet("ef")

	normalized := normalizeClassElements([]CharacterClassElement{ab, cd, az, ef})
	want := []CharacterClassElement{CharacterSet{Chars: "abcd"}, az, ef}
	if !classElementsEqual(normalized, want) {
		t.Fatalf("unexpected normalization: %+v", normalized)
	}
	// Idempotent: a second pass changes nothing.
	if !classElementsEqual(normalizeClassElements(normalized), want) {
		t.Fatal("normalization is not idempotent")
	}
	// Membership is preserved across the merge.
	for _, c := range "abcdef" {
		if !classContainsRune(normalized, c) {
			t.Fatalf("merged class lost %q", c)
		}
	}
}

func TestNewCharacterSet(t *testing.T) {
	if _, err := NewCharacterSet(""); err == nil {
		t.Fatal("expected error for empty set")
	}
	s, err := NewCharacterSet("abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.containsRune('b') || s.containsRune('z') {
		t.Fatalf("containsRune behaved unexpectedly: %+v", s)
	}
}

func TestNormalizeClassElementsMerge(t *testing.T) {
	a, _ := NewCharacterSet("ab")
	b, _ := NewCharacterSet("cd")
	r, _ := NewCharacterRange('0', '9')
	got := normalizeClassElements([]CharacterClassElement{a, b, r})
	if len(got) != 2 {
		t.Fatalf("expected adjacent sets to merge, got %d elements: %+v", len(got), got)
	}
	merged, ok := got[0].(CharacterSet)
	if !ok || merged.Chars != "abcd" {
		t.Fatalf("expected merged set \"abcd\", got %+v", got[0])
	}
}

func TestWriteEscapedClassChar(t *testing.T) {
	cases := map[rune]string{'a': "a", '-': `\-`, ']': `\]`, '\n': `\n`}
	for in, want := range cases {
		var set CharacterSet
		set.Chars = string(in)
		if got := set.String(); got != want {
			t.Errorf("escaping %q: got %q, want %q", in, got, want)
		}
	}
}

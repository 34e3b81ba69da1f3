package peg

import "testing"

// Test if position calculator resolves offsets using a configurable line
// separator, defaulting to "\n".
func TestPositionCalculator(t *testing.T) {
	data := []struct {
		text    string
		sep     string
		inputs  []int
		outputs []Position
	}{
		{"", "\n", []int{0}, []Position{{0, 0, 0}}},
		{"A\n", "\n", []int{0, 1, 2}, []Position{
			{0, 0, 0},
			{1, 0, 1},
			{2, 1, 0},
		}},
		{"AA\nA\n\n", "\n", []int{1, 3, 4, 5, 6}, []Position{
			{1, 0, 1},
			{3, 1, 0},
			{4, 1, 1},
			{5, 2, 0},
			{6, 3, 0},
		}},
		{"AA\nA\n\n", "\n", []int{6, 1, 4, 3, 5}, []Position{
			{6, 3, 0},
			{1, 0, 1},
			{4, 1, 1},
			{3, 1, 0},
			{5, 2, 0},
		}},
		{"A\r\nA\r\nA", "\r\n", []int{0, 3, 6}, []Position{
			{0, 0, 0},
			{3, 1, 0},
			{6, 2, 0},
		}},
	}

	for _, d := range data {
		pcalc := &positionCalculator{text: d.text, sep: d.sep}
		for i := range d.inputs {
			pos := pcalc.calculate(d.inputs[i])
			if d.outputs[i] != pos {
				t.Errorf("%q.position(%d) => %v != %v (lnends=%v)",
					d.text, d.inputs[i], pos, d.outputs[i], pcalc.lnends)
			}
		}
	}
}

// With no line separator configured, every offset resolves to line 0.
func TestPositionCalculatorNoSeparator(t *testing.T) {
	pcalc := &positionCalculator{text: "A\nB\nC", sep: ""}
	for _, offset := range []int{0, 2, 4} {
		pos := pcalc.calculate(offset)
		if pos.Line != 0 || pos.Column != offset {
			t.Errorf("position(%d) => %v, want line 0 column %d", offset, pos, offset)
		}
	}
}

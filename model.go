package m68k

import "io"

// CPUModel is the one-method interface both cost engines implement. The
// two CPU models share no state or behavior beyond this contract, so they
// are modeled as independent types behind a tagged constructor rather than
// a shared base type.
type CPUModel interface {
	// Simulate runs the instruction stream unroll+1 times (logically),
	// writing an annotated listing to w when print is true. The 68060
	// model returns the average cycles per iteration; the 68020 model
	// returns its total cache-case cycles multiplied by unroll+1.
	Simulate(unroll int, print bool, w io.Writer) (float64, error)
}

// ModelKind selects which CPU model to build.
type ModelKind int

const (
	Model020 ModelKind = 68020
	Model060 ModelKind = 68060
)

// ParseModelNumber accepts the CLI shorthand for a model number: a
// two-to-five digit number, where short forms below 68000 are adjusted
// by adding 68000 (so -68020, -020, and -20 all mean the same thing).
func ParseModelNumber(n int) (ModelKind, error) {
	if n < 68000 {
		n += 68000
	}
	switch ModelKind(n) {
	case Model020, Model060:
		return ModelKind(n), nil
	default:
		return 0, &ParseError{Msg: "unsupported CPU model"}
	}
}

// NewModel builds the cost engine for kind, bound to instructions.
func NewModel(kind ModelKind, instructions []Instruction) CPUModel {
	switch kind {
	case Model020:
		return newModel020(instructions)
	case Model060:
		return newModel060(instructions)
	default:
		panic("m68k: unknown model kind")
	}
}

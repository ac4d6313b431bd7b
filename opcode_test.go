package m68k

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodeAliasesResolve(t *testing.T) {
	cases := map[string]Opcode{
		"adda":  OpAdd,
		"and":   OpAnd,
		"or":    OpOr,
		"not":   OpNot,
		"cmpa":  OpCmp,
		"movea": OpMove,
		"dbf":   OpDbra,
	}
	for name, want := range cases {
		op, err := OpcodeFromString(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, op, name)
	}
}

func TestOpcodeFromStringUnknownFails(t *testing.T) {
	_, err := OpcodeFromString("frobnicate")
	assert.Error(t, err)
}

// TestOpcodeTableClosedOverArity checks that every opcode in the table
// declares a sane 0-2 operand count.
func TestOpcodeTableClosedOverArity(t *testing.T) {
	for op := Opcode(0); op < opcodeCount; op++ {
		info := opcodeTable[op]
		require.NotEmpty(t, info.name, "opcode %d has no table entry", op)
		assert.GreaterOrEqual(t, info.numEA, 0)
		assert.LessOrEqual(t, info.numEA, 2)
	}
}

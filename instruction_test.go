package m68k

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dnEA(t *testing.T, n uint8) EA {
	t.Helper()
	e, err := NewEA(ValTag(EADn, n))
	require.NoError(t, err)
	return e
}

func anEA(t *testing.T, n uint8) EA {
	t.Helper()
	e, err := NewEA(ValTag(EAAn, n))
	require.NoError(t, err)
	return e
}

func indEA(t *testing.T, n uint8) EA {
	t.Helper()
	e, err := NewEA(ValTag(EAInd, n))
	require.NoError(t, err)
	return e
}

func TestInstructionArityEnforced(t *testing.T) {
	_, err := NewInstruction1(OpAdd, SizeL, dnEA(t, 0))
	assert.Error(t, err, "add takes 2 operands, not 1")

	i, err := NewInstruction2(OpAdd, SizeL, dnEA(t, 0), dnEA(t, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, i.NumEA())
}

func TestCmpNeverHasResultRegister(t *testing.T) {
	i, err := NewInstruction2(OpCmp, SizeL, dnEA(t, 0), dnEA(t, 1))
	require.NoError(t, err)
	_, ok := i.ExecutionResultReg()
	assert.False(t, ok)
}

func TestExecutionResultRegDestinationWins(t *testing.T) {
	i, err := NewInstruction2(OpAdd, SizeL, dnEA(t, 0), dnEA(t, 1))
	require.NoError(t, err)
	r, ok := i.ExecutionResultReg()
	require.True(t, ok)
	assert.Equal(t, DataReg(1), r)
}

func TestExecutionResultRegNoneForMemoryDestination(t *testing.T) {
	i, err := NewInstruction2(OpMove, SizeL, dnEA(t, 0), indEA(t, 1))
	require.NoError(t, err)
	_, ok := i.ExecutionResultReg()
	assert.False(t, ok)
}

func TestMemoryCyclesRMWCountsTwo(t *testing.T) {
	i, err := NewInstruction1(OpNot, SizeL, indEA(t, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, i.MemoryCycles())

	i2, err := NewInstruction1(OpTst, SizeL, indEA(t, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, i2.MemoryCycles())
}

func TestNeedRegDestinationBeatsSource(t *testing.T) {
	// move.l (a0),a0 uses a0 as Base in the source and as A/B in the
	// destination; the destination is checked first, so A/B wins.
	i, err := NewInstruction2(OpMove, SizeL, indEA(t, 0), anEA(t, 0))
	require.NoError(t, err)
	res, ok, err := i.NeedReg(A0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ResAB, res)
}

func TestNeedRegAddressIndirectIsBase(t *testing.T) {
	i, err := NewInstruction2(OpMove, SizeL, indEA(t, 0), dnEA(t, 1))
	require.NoError(t, err)
	res, ok, err := i.NeedReg(A0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ResBase, res)
}

func TestOEPClassifyMoveMemDestOverride(t *testing.T) {
	i, err := NewInstruction2(OpMove, SizeL, indEA(t, 0), indEA(t, 1))
	require.NoError(t, err)
	assert.Equal(t, OEPPoepUntilLast, i.OEPClassify())

	reg, err := NewInstruction2(OpMove, SizeL, dnEA(t, 0), dnEA(t, 1))
	require.NoError(t, err)
	assert.Equal(t, OEPPoepOrSoep, reg.OEPClassify())
}

func TestNumWordsDbraAlwaysTwo(t *testing.T) {
	i, err := NewInstruction2(OpDbra, SizeNone, dnEA(t, 0), anEA(t, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, i.NumWords())
}

func TestNumWordsEmbeddedImmediateSkipsSourceWord(t *testing.T) {
	imm, err := NewEAWithExtra(ImmediateTag, 1)
	require.NoError(t, err)
	i, err := NewInstruction2(OpMoveq, SizeL, imm, dnEA(t, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, i.NumWords())
}

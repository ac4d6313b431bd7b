package m68k

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, src string) Instruction {
	t.Helper()
	insts, err := NewParser(strings.NewReader(src)).All()
	require.NoError(t, err)
	require.Len(t, insts, 1)
	return insts[0]
}

func TestParseMoveqAndRender(t *testing.T) {
	i := parseOne(t, "\tmoveq\t#1,d0\n")
	assert.Equal(t, OpMoveq, i.Op)
	assert.Equal(t, DataReg(0), mustResultReg(t, i))
	assert.Equal(t, "moveq\t#1,d0", i.String())
}

func mustResultReg(t *testing.T, i Instruction) Register {
	t.Helper()
	r, ok := i.ExecutionResultReg()
	require.True(t, ok)
	return r
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	src := "; a header comment\n\n\tmoveq\t#1,d0\t; inline comment\n"
	insts, err := NewParser(strings.NewReader(src)).All()
	require.NoError(t, err)
	require.Len(t, insts, 1)
	assert.Equal(t, OpMoveq, insts[0].Op)
}

func TestParseDisplacementBoundaries(t *testing.T) {
	_, err := NewParser(strings.NewReader("\tmove.w\t32767(a0),d0\n")).All()
	assert.NoError(t, err)
	_, err = NewParser(strings.NewReader("\tmove.w\t32768(a0),d0\n")).All()
	assert.Error(t, err)

	_, err = NewParser(strings.NewReader("\tmove.w\t127(a0,d1.w),d0\n")).All()
	assert.NoError(t, err)
	_, err = NewParser(strings.NewReader("\tmove.w\t128(a0,d1.w),d0\n")).All()
	assert.Error(t, err)
}

func TestParseWrongOperandCountFails(t *testing.T) {
	_, err := NewParser(strings.NewReader("\tadd.l\td0\n")).All()
	assert.Error(t, err)
}

func TestParseJunkAtEndOfLineFails(t *testing.T) {
	_, err := NewParser(strings.NewReader("\tmoveq\t#1,d0 garbage\n")).All()
	assert.Error(t, err)
}

func TestParseUnknownMnemonicFails(t *testing.T) {
	_, err := NewParser(strings.NewReader("\tfrobnicate\td0\n")).All()
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParseIndexedScale(t *testing.T) {
	i := parseOne(t, "\tmove.l\t4(a0,d1.l*4),d2\n")
	src := i.Arg(0)
	bew, err := src.BriefExtensionWord()
	require.NoError(t, err)
	assert.Equal(t, 4, bew.Scale)
	assert.True(t, bew.LongIndex)
	assert.Equal(t, int8(4), bew.Displacement)
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"add.l\td0,d1",
		"move.l\t(a0)+,d1",
		"bra\t$1000",
		"moveq\t#1,d0",
	}
	for _, src := range cases {
		i := parseOne(t, "\t"+src+"\n")
		assert.Equal(t, src, i.String(), "round trip of %q", src)
	}
}

package m68k

import (
	"fmt"
	"strings"
)

// Instruction is an immutable value: an opcode, an optional size suffix,
// and 0-2 effective-address operands. Instructions are produced once by
// the parser and never mutated.
type Instruction struct {
	Op    Opcode
	Size  OpSize
	nea   int
	ea    [2]EA
}

// NewInstruction constructs a zero-operand instruction (e.g. rts).
func NewInstruction(op Opcode, sz OpSize) (Instruction, error) {
	return newInstruction(op, sz)
}

// NewInstruction1 constructs a one-operand instruction.
func NewInstruction1(op Opcode, sz OpSize, ea1 EA) (Instruction, error) {
	return newInstruction(op, sz, ea1)
}

// NewInstruction2 constructs a two-operand instruction.
func NewInstruction2(op Opcode, sz OpSize, ea1, ea2 EA) (Instruction, error) {
	return newInstruction(op, sz, ea1, ea2)
}

func newInstruction(op Opcode, sz OpSize, eas ...EA) (Instruction, error) {
	if !ValidOpSize(byte(sz)) {
		return Instruction{}, &InvariantError{Tag: fmt.Sprintf("invalid size suffix %q", sz)}
	}
	if op.NumEA() != len(eas) {
		return Instruction{}, &InvariantError{Tag: fmt.Sprintf("%s expects %d operand(s), got %d", op, op.NumEA(), len(eas))}
	}
	i := Instruction{Op: op, Size: sz, nea: len(eas)}
	copy(i.ea[:], eas)
	return i, nil
}

// NumEA returns this instruction's declared operand count.
func (i Instruction) NumEA() int { return i.nea }

// Arg returns operand n (0 or 1). Callers must check NumEA first.
func (i Instruction) Arg(n int) EA { return i.ea[n] }

func regOrNone(e EA) (Register, bool) {
	switch e.Mode() {
	case EADn:
		return DataReg(e.Reg()), true
	case EAAn:
		return AddrReg(e.Reg()), true
	default:
		return 0, false
	}
}

// ExecutionResultReg returns the register this instruction writes, if
// any. cmp never has a result register (it only sets condition codes).
// For single-operand instructions, the (only) operand's register is
// returned if it is Dn/An. For two-operand instructions, the destination
// (second) operand is used.
func (i Instruction) ExecutionResultReg() (Register, bool) {
	if i.Op == OpCmp {
		return 0, false
	}
	switch i.nea {
	case 0:
		return 0, false
	case 1:
		return regOrNone(i.ea[0])
	default:
		return regOrNone(i.ea[1])
	}
}

// MemoryCycles returns how many memory cycles this instruction consumes:
// 0 for register-only operands, 1 for a memory read, 2 for a
// read-modify-write memory destination.
func (i Instruction) MemoryCycles() int {
	rmw := i.Op.IsRMW()
	switch i.nea {
	case 0:
		return 0
	case 1:
		if i.ea[0].IsMemory() {
			if rmw {
				return 2
			}
			return 1
		}
		return 0
	default:
		n := 0
		if i.ea[0].IsMemory() {
			n++
		}
		if i.ea[1].IsMemory() {
			if rmw {
				n += 2
			} else {
				n++
			}
		}
		return n
	}
}

// Cycles060 returns the 060 model's base cycle count: the opcode's static
// base cycles plus a surcharge for any memory cycle beyond the first.
// divu/divs are declared with a base of 0 in the opcode table, so their
// count is only the memory-cycle surcharge; with fewer than two memory
// cycles it is 0, which the 060 scheduler rejects as a missing cycle count.
func (i Instruction) Cycles060() int {
	base := i.Op.BaseCycles060()
	mc := i.MemoryCycles()
	if mc > 1 {
		base += mc - 1
	}
	return base
}

func needRegInEA(e EA, r Register) (Resource, bool, error) {
	switch e.Mode() {
	case EADn, EAAn:
		if reg, ok := regOrNone(e); ok && reg == r {
			return ResAB, true, nil
		}
		return 0, false, nil
	case EAInd, EAIndPost, EAIndPre, EADisp16:
		if !IsAddrReg(r) {
			return 0, false, nil
		}
		if AddrReg(e.Reg()) == r {
			return ResBase, true, nil
		}
		return 0, false, nil
	case EAIndex:
		bew, err := e.BriefExtensionWord()
		if err != nil {
			return 0, false, err
		}
		if r == bew.Base {
			return ResBase, true, nil
		}
		if r == bew.Index {
			return ResIndex, true, nil
		}
		return 0, false, nil
	case EAOtherTag:
		switch e.Other() {
		case OtherAbsW, OtherAbsL, OtherPCDisp16, OtherPCIndex, OtherImm:
			return 0, false, nil
		}
	}
	return 0, false, &UnsupportedError{Rendering: e.String(), Msg: "need_reg for unsupported ea"}
}

// NeedReg reports what resource kind, if any, this instruction uses
// register r as. The destination operand is checked first, so it wins
// when both operands happen to reference r.
func (i Instruction) NeedReg(r Register) (Resource, bool, error) {
	switch i.nea {
	case 0:
		return 0, false, nil
	case 1:
		return needRegInEA(i.ea[0], r)
	default:
		if res, ok, err := needRegInEA(i.ea[1], r); err != nil || ok {
			return res, ok, err
		}
		return needRegInEA(i.ea[0], r)
	}
}

// OEPClassify returns the instruction's dual-issue classification,
// applying the one dynamic override: a move with a memory
// destination and a memory-or-immediate source is reclassified as
// pOEP-until-last.
func (i Instruction) OEPClassify() OEPClass {
	if i.Op == OpMove {
		dst := i.ea[1]
		src := i.ea[0]
		if dst.IsMemory() && (src.IsMemory() || src.Val() == ImmediateTag) {
			return OEPPoepUntilLast
		}
		return OEPPoepOrSoep
	}
	return i.Op.OEPClassifyStatic()
}

// NumWords returns the instruction's encoded length in 16-bit words.
func (i Instruction) NumWords() int {
	if i.Op.IsBranch() {
		if i.Size == SizeW {
			return 2
		}
		return 1
	}
	if i.Op == OpDbra {
		return 2
	}

	nw := 1
	skipFirst := false
	if i.nea > 0 {
		if i.ea[0].Val() == ImmediateTag && HasEmbeddedImmediate(i) {
			skipFirst = true
		}
		if !skipFirst {
			nw += i.ea[0].EncodedWordCount(i.Size.IsLong())
		}
	}
	if i.nea > 1 {
		nw += i.ea[1].EncodedWordCount(false)
	}
	return nw
}

func (i Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.Op.String())
	if i.Size != SizeNone {
		b.WriteByte('.')
		b.WriteString(i.Size.String())
	}
	if i.nea > 0 {
		b.WriteByte('\t')
		b.WriteString(i.ea[0].String())
	}
	if i.nea > 1 {
		b.WriteByte(',')
		b.WriteString(i.ea[1].String())
	}
	return b.String()
}

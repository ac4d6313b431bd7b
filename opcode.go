package m68k

import "fmt"

// Opcode identifies one of the ~45 mnemonics the cost models understand.
type Opcode uint8

const (
	OpAnd Opcode = iota
	OpAdd
	OpAddq
	OpAddx
	OpAsl
	OpAsr
	OpBra
	OpBhi
	OpBls
	OpBcc
	OpBcs
	OpBne
	OpBeq
	OpBvc
	OpBvs
	OpBpl
	OpBmi
	OpBge
	OpBlt
	OpBgt
	OpBle
	OpCmp
	OpDbra
	OpDivu
	OpDivs
	OpEor
	OpLsl
	OpLsr
	OpMove
	OpMoveq
	OpNot
	OpNeg
	OpMulu
	OpMuls
	OpOr
	OpRol
	OpRor
	OpRts
	OpSub
	OpSubq
	OpSubx
	OpSwap
	OpTst
	opcodeCount
)

// OEPClass is an opcode's static dual-issue dispatch classification.
type OEPClass uint8

const (
	OEPPoepOrSoep OEPClass = iota
	OEPPoepOnly
	OEPPoepUntilLast
	OEPPoepButAllowsSoep
)

func (c OEPClass) String() string {
	switch c {
	case OEPPoepOrSoep:
		return "pOEP | sOEP"
	case OEPPoepOnly:
		return "pOEP-only"
	case OEPPoepUntilLast:
		return "pOEP-until-last"
	case OEPPoepButAllowsSoep:
		return "pOEP-but-allows-sOEP"
	default:
		return fmt.Sprintf("oep_class{%d}", c)
	}
}

// Resource is the integer-execution resource an instruction reads a
// register through.
type Resource uint8

const (
	ResAB Resource = iota
	ResBase
	ResIndex
)

func (r Resource) String() string {
	switch r {
	case ResAB:
		return "A/B"
	case ResBase:
		return "Base"
	case ResIndex:
		return "Index"
	default:
		return fmt.Sprintf("resource{%d}", r)
	}
}

// opcodeInfo is one row of the static opcode table: every property the
// cost models need, indexed by Opcode. This is the single consolidated
// table the design calls for; every predicate below (IsRMW, NumEA,
// BaseCycles060, OEPClassifyStatic) is a lookup into it, never a
// duplicate copy.
type opcodeInfo struct {
	name       string
	rmw        bool
	numEA      int
	baseCycles int
	class      OEPClass
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OpAnd:   {"and", true, 2, 1, OEPPoepOrSoep},
	OpAdd:   {"add", true, 2, 1, OEPPoepOrSoep},
	OpAddq:  {"addq", true, 2, 1, OEPPoepOrSoep},
	OpAddx:  {"addx", true, 2, 1, OEPPoepOnly},
	OpAsl:   {"asl", true, 2, 1, OEPPoepOrSoep},
	OpAsr:   {"asr", true, 2, 1, OEPPoepOrSoep},
	OpBra:   {"bra", false, 1, 1, OEPPoepOnly},
	OpBhi:   {"bhi", false, 1, 1, OEPPoepOnly},
	OpBls:   {"bls", false, 1, 1, OEPPoepOnly},
	OpBcc:   {"bcc", false, 1, 1, OEPPoepOnly},
	OpBcs:   {"bcs", false, 1, 1, OEPPoepOnly},
	OpBne:   {"bne", false, 1, 1, OEPPoepOnly},
	OpBeq:   {"beq", false, 1, 1, OEPPoepOnly},
	OpBvc:   {"bvc", false, 1, 1, OEPPoepOnly},
	OpBvs:   {"bvs", false, 1, 1, OEPPoepOnly},
	OpBpl:   {"bpl", false, 1, 1, OEPPoepOnly},
	OpBmi:   {"bmi", false, 1, 1, OEPPoepOnly},
	OpBge:   {"bge", false, 1, 1, OEPPoepOnly},
	OpBlt:   {"blt", false, 1, 1, OEPPoepOnly},
	OpBgt:   {"bgt", false, 1, 1, OEPPoepOnly},
	OpBle:   {"ble", false, 1, 1, OEPPoepOnly},
	OpCmp:   {"cmp", true, 2, 1, OEPPoepOrSoep},
	OpDbra:  {"dbra", false, 2, 1, OEPPoepOnly},
	OpDivu:  {"divu", true, 2, 0, OEPPoepOnly},
	OpDivs:  {"divs", true, 2, 0, OEPPoepOnly},
	OpEor:   {"eor", true, 2, 1, OEPPoepOrSoep},
	OpLsl:   {"lsl", true, 2, 1, OEPPoepOrSoep},
	OpLsr:   {"lsr", true, 2, 1, OEPPoepOrSoep},
	OpMove:  {"move", false, 2, 1, OEPPoepOrSoep},
	OpMoveq: {"moveq", false, 2, 1, OEPPoepOrSoep},
	OpNot:   {"not", true, 1, 1, OEPPoepOrSoep},
	OpNeg:   {"neg", true, 1, 1, OEPPoepOrSoep},
	OpMulu:  {"mulu", true, 2, 2, OEPPoepOnly},
	OpMuls:  {"muls", true, 2, 2, OEPPoepOnly},
	OpOr:    {"or", true, 2, 1, OEPPoepOrSoep},
	OpRol:   {"rol", true, 2, 1, OEPPoepOrSoep},
	OpRor:   {"ror", true, 2, 1, OEPPoepOrSoep},
	OpRts:   {"rts", false, 0, 1, OEPPoepOrSoep},
	OpSub:   {"sub", true, 2, 1, OEPPoepOrSoep},
	OpSubq:  {"subq", true, 2, 1, OEPPoepOrSoep},
	OpSubx:  {"subx", true, 2, 1, OEPPoepOnly},
	OpSwap:  {"swap", true, 1, 1, OEPPoepOnly},
	OpTst:   {"tst", false, 1, 1, OEPPoepOrSoep},
}

// opcodeAliases maps alternate mnemonics onto the canonical opcode used for
// cost lookups.
var opcodeAliases = map[string]Opcode{
	"adda":  OpAdd,
	"cmpa":  OpCmp,
	"movea": OpMove,
	"dbf":   OpDbra,
}

// OpcodeFromString resolves a mnemonic (already lowercased) to an Opcode,
// recognizing both canonical names and the assembler aliases adda, cmpa,
// movea, dbf. Unknown names return an error.
func OpcodeFromString(name string) (Opcode, error) {
	for op, info := range opcodeTable {
		if info.name == name {
			return Opcode(op), nil
		}
	}
	if op, ok := opcodeAliases[name]; ok {
		return op, nil
	}
	return 0, &ParseError{Msg: fmt.Sprintf("unknown opcode %q", name)}
}

func (o Opcode) String() string {
	if int(o) >= len(opcodeTable) {
		return fmt.Sprintf("opcode{%d}", uint8(o))
	}
	return opcodeTable[o].name
}

// IsRMW reports whether op reads then writes its memory destination,
// consuming two memory cycles instead of one.
func (o Opcode) IsRMW() bool { return opcodeTable[o].rmw }

// NumEA returns the operand count the opcode was declared with.
func (o Opcode) NumEA() int { return opcodeTable[o].numEA }

// BaseCycles060 returns the opcode's static base-cycle count for the 060
// dual-issue model (before any memory-cycle surcharge).
func (o Opcode) BaseCycles060() int { return opcodeTable[o].baseCycles }

// OEPClassifyStatic returns the opcode's table-declared OEP classification,
// ignoring the dynamic move override (see Instruction.OEPClassify).
func (o Opcode) OEPClassifyStatic() OEPClass { return opcodeTable[o].class }

// IsBranch reports whether op is one of the 15 conditional/unconditional
// branch mnemonics.
func (o Opcode) IsBranch() bool {
	switch o {
	case OpBra, OpBhi, OpBls, OpBcc, OpBcs, OpBne, OpBeq, OpBvc, OpBvs, OpBpl, OpBmi, OpBge, OpBlt, OpBgt, OpBle:
		return true
	default:
		return false
	}
}

// IsShiftRot reports whether op is a shift or rotate instruction.
func (o Opcode) IsShiftRot() bool {
	switch o {
	case OpAsl, OpAsr, OpLsl, OpLsr, OpRol, OpRor:
		return true
	default:
		return false
	}
}

// hasEmbeddedImmediateOpcodes skip the source EA's immediate extension
// word entirely: the small immediate is packed into the opcode word
// itself (quick instructions, moveq, and the shift/rotate-by-immediate
// forms; asl is not among them).
var hasEmbeddedImmediateOpcodes = map[Opcode]bool{
	OpAsr: true, OpAddq: true, OpSubq: true, OpMoveq: true,
	OpLsl: true, OpLsr: true, OpRol: true, OpRor: true,
}

// HasEmbeddedImmediate reports whether i's source operand, if an
// immediate, is encoded in the opcode word rather than a trailing
// extension word.
func HasEmbeddedImmediate(i Instruction) bool {
	return hasEmbeddedImmediateOpcodes[i.Op]
}

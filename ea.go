package m68k

import "fmt"

// Major effective-address mode, bits [5:3] of the EA mode-tag byte.
type EAMode uint8

const (
	EADn       EAMode = 0b000 // Dn
	EAAn       EAMode = 0b001 // An
	EAInd      EAMode = 0b010 // (An)
	EAIndPost  EAMode = 0b011 // (An)+
	EAIndPre   EAMode = 0b100 // -(An)
	EADisp16   EAMode = 0b101 // d16(An)
	EAIndex    EAMode = 0b110 // d8(An,Xn)
	EAOtherTag EAMode = 0b111 // Other: sub-mode in bits [2:0]
)

// Sub-mode of EAOtherTag, bits [2:0] of the mode-tag byte.
type EAOther uint8

const (
	OtherAbsW     EAOther = 0b000 // abs.w
	OtherAbsL     EAOther = 0b001 // abs.l
	OtherPCDisp16 EAOther = 0b010 // d16(pc)
	OtherPCIndex  EAOther = 0b011 // d8(pc,Xn)
	OtherImm      EAOther = 0b100 // #immediate
)

const (
	eaModeShift = 3
	eaXnMask    = 0b111
)

// ValTag packs a major mode and register/sub-mode field into one byte, the
// same encoding EA.Val returns.
func ValTag(mode EAMode, xn uint8) uint8 {
	return uint8(mode)<<eaModeShift | xn&eaXnMask
}

// ImmediateTag is the mode-tag byte for an immediate operand.
const ImmediateTag = uint8(EAOtherTag)<<eaModeShift | uint8(OtherImm)

func majorOf(val uint8) EAMode { return EAMode(val >> eaModeShift) }
func subOf(val uint8) uint8    { return val & eaXnMask }

// HasExtra reports whether the mode-tag byte requires a companion extra
// word (displacement, absolute address, brief extension word, or
// immediate value).
func HasExtra(val uint8) bool {
	switch majorOf(val) {
	case EADn, EAAn, EAInd, EAIndPost, EAIndPre:
		return false
	case EADisp16, EAIndex:
		return true
	case EAOtherTag:
		switch EAOther(subOf(val)) {
		case OtherAbsW, OtherAbsL, OtherPCDisp16, OtherPCIndex, OtherImm:
			return true
		}
	}
	return false
}

// EA is an effective address: a mode-tag byte plus, when required, an
// extra word of companion data (displacement, absolute address, brief
// extension word encoding, or immediate value). EA values are immutable
// and are only ever produced by the two constructors below, which enforce
// the has-extra invariant.
type EA struct {
	val   uint8
	extra uint32
}

// NewEA constructs an EA from a mode-tag byte that carries no extra data.
// It is an error to call this for a mode that requires extra data.
func NewEA(val uint8) (EA, error) {
	if HasExtra(val) {
		return EA{}, &InvariantError{Tag: fmt.Sprintf("ea mode $%02x requires extra data", val)}
	}
	return EA{val: val}, nil
}

// NewEAWithExtra constructs an EA from a mode-tag byte and its companion
// extra word. It is an error to call this for a mode that forbids extra
// data.
func NewEAWithExtra(val uint8, extra uint32) (EA, error) {
	if !HasExtra(val) {
		return EA{}, &InvariantError{Tag: fmt.Sprintf("ea mode $%02x forbids extra data", val)}
	}
	return EA{val: val, extra: extra}, nil
}

// Val returns the raw mode-tag byte.
func (e EA) Val() uint8 { return e.val }

// Extra returns the companion extra word. Only meaningful when HasExtra(e.Val()).
func (e EA) Extra() uint32 { return e.extra }

// Mode returns the major mode.
func (e EA) Mode() EAMode { return majorOf(e.val) }

// Reg returns the register number encoded in bits [2:0], valid for every
// mode except EAOtherTag.
func (e EA) Reg() uint8 { return subOf(e.val) }

// Other returns the Other sub-mode, valid only when Mode() == EAOtherTag.
func (e EA) Other() EAOther { return EAOther(subOf(e.val)) }

// IsMemory reports whether this EA denotes a memory reference, i.e. every
// mode except Dn, An, and immediate.
func (e EA) IsMemory() bool {
	switch majorOf(e.val) {
	case EADn, EAAn:
		return false
	case EAOtherTag:
		return e.val != ImmediateTag
	default:
		return true
	}
}

// IsImmediate reports whether this EA is the immediate addressing mode.
func (e EA) IsImmediate() bool { return e.val == ImmediateTag }

// EncodedWordCount returns the number of 16-bit extension words this EA
// contributes to an encoded instruction. isLongOperand only affects the
// immediate sub-mode.
func (e EA) EncodedWordCount(isLongOperand bool) int {
	switch majorOf(e.val) {
	case EADn, EAAn, EAInd, EAIndPost, EAIndPre:
		return 0
	case EADisp16, EAIndex:
		return 1
	case EAOtherTag:
		switch e.Other() {
		case OtherAbsW:
			return 1
		case OtherAbsL:
			return 2
		case OtherPCDisp16:
			return 1
		case OtherPCIndex:
			return 1
		case OtherImm:
			if isLongOperand {
				return 2
			}
			return 1
		}
	}
	return 0
}

// BriefExtensionWord is the decoded form of the 16-bit extension word used
// by d8(An,Xn) indexed addressing.
type BriefExtensionWord struct {
	Base         Register // always an address register
	Index        Register // any data/address register
	LongIndex    bool     // index size: word (false) or long (true)
	Scale        int      // 1, 2, 4, or 8
	Displacement int8
}

// BriefExtensionWord decodes e's extra word as a brief extension word. It
// is only valid when e.Mode() == EAIndex.
func (e EA) BriefExtensionWord() (BriefExtensionWord, error) {
	if majorOf(e.val) != EAIndex {
		return BriefExtensionWord{}, &InvariantError{Tag: fmt.Sprintf("brief extension word requested for non-indexed ea %v", e)}
	}
	extw := e.extra
	return BriefExtensionWord{
		Base:         AddrReg(e.Reg()),
		Index:        Register(extw >> 12),
		LongIndex:    extw&(1<<11) != 0,
		Scale:        1 << ((extw >> 9) & 3),
		Displacement: int8(extw & 0xff),
	}, nil
}

func (e EA) String() string {
	switch majorOf(e.val) {
	case EADn:
		return fmt.Sprintf("d%d", e.Reg())
	case EAAn:
		return fmt.Sprintf("a%d", e.Reg())
	case EAInd:
		return fmt.Sprintf("(a%d)", e.Reg())
	case EAIndPost:
		return fmt.Sprintf("(a%d)+", e.Reg())
	case EAIndPre:
		return fmt.Sprintf("-(a%d)", e.Reg())
	case EADisp16:
		return fmt.Sprintf("%d(a%d)", int16(e.extra), e.Reg())
	case EAIndex:
		bew, _ := e.BriefExtensionWord()
		sz := "w"
		if bew.LongIndex {
			sz = "l"
		}
		s := fmt.Sprintf("%d(%v,%v.%s)", bew.Displacement, bew.Base, bew.Index, sz)
		if bew.Scale > 1 {
			s = fmt.Sprintf("%d(%v,%v.%s*%d)", bew.Displacement, bew.Base, bew.Index, sz, bew.Scale)
		}
		return s
	case EAOtherTag:
		switch e.Other() {
		case OtherAbsW:
			return fmt.Sprintf("$%x.w", uint16(e.extra))
		case OtherAbsL:
			return fmt.Sprintf("$%x", e.extra)
		case OtherPCDisp16:
			return fmt.Sprintf("%d(pc)", int16(e.extra))
		case OtherPCIndex:
			return fmt.Sprintf("%d(pc,Xn)", int8(e.extra))
		case OtherImm:
			return fmt.Sprintf("#%d", int32(e.extra))
		}
	}
	return fmt.Sprintf("ea{$%02x}", e.val)
}

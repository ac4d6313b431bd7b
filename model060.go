package m68k

import (
	"fmt"
	"io"
)

// regChange records the cycle on which an instruction last wrote a
// register, so a later instruction reading it too soon can be charged a
// change/use stall.
type regChange struct {
	cycle int
	valid bool
}

// changeUseStall is a pending register-not-ready stall: reg won't be
// usable for another cycles cycles. A zero value means no stall.
type changeUseStall struct {
	Reg    Register
	Cycles int
}

// model060 is the dual-issue (pOEP/sOEP) 68060 scheduler: it walks the
// instruction stream trying to pair each primary-pipe instruction with
// the next one in the secondary pipe, subject to the dispatch test suite
// in soepOk, and charges change/use stalls when an operand isn't ready.
type model060 struct {
	instructions []Instruction

	cycle              int
	unroll             int
	pos                int
	lastRegisterChange [16]regChange
}

func newModel060(instructions []Instruction) *model060 {
	return &model060{instructions: instructions}
}

func (m *model060) done() bool {
	return m.pos == (m.unroll+1)*len(m.instructions)
}

func (m *model060) peek() *Instruction {
	if m.done() {
		return nil
	}
	return &m.instructions[m.pos%len(m.instructions)]
}

func (m *model060) get() Instruction {
	i := m.instructions[m.pos%len(m.instructions)]
	m.pos++
	return i
}

// soepEAOk is Dispatch Test 3: which addressing modes the secondary pipe
// may use. PC-relative modes are not allowed in the sOEP.
func soepEAOk(e EA) (bool, error) {
	switch e.Mode() {
	case EADn, EAAn, EAInd, EAIndPost, EAIndPre, EADisp16, EAIndex:
		return true, nil
	case EAOtherTag:
		switch e.Other() {
		case OtherAbsW, OtherAbsL, OtherImm:
			return true, nil
		case OtherPCDisp16, OtherPCIndex:
			return false, nil
		}
	}
	return false, &UnsupportedError{Rendering: e.String(), Msg: "soep_ea_ok"}
}

// soepOk runs the dispatch test suite for pairing p (pOEP) with s (a
// candidate sOEP instruction), returning the reason s can't dispatch, or
// "" if it can.
func (m *model060) soepOk(p, s Instruction) (string, error) {
	// Dispatch Test 2: Instruction Classification.
	if s.OEPClassify() != OEPPoepOrSoep {
		return fmt.Sprintf("%s is %s", s.Op, s.OEPClassify()), nil
	}
	if p.OEPClassify() == OEPPoepOnly {
		return fmt.Sprintf("%s is %s", p.Op, p.OEPClassify()), nil
	}

	// Dispatch Test 3: Allowable Effective Addressing Mode in the sOEP.
	for n := 0; n < s.NumEA(); n++ {
		ok, err := soepEAOk(s.Arg(n))
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("%s is not an allowable EA", s.Arg(n)), nil
		}
	}

	// Dispatch Test 4: Allowable Operand Data Memory Reference.
	if p.MemoryCycles() > 0 && s.MemoryCycles() > 0 {
		return fmt.Sprintf("%s also uses a memory cycle", s.Op), nil
	}
	if s.MemoryCycles() > 1 {
		return fmt.Sprintf("%s uses more than one memory cycle", s.Op), nil
	}

	// Dispatch Tests 5/6: No Register Conflicts on sOEP.AGU/IEE Resources.
	if pr, ok := p.ExecutionResultReg(); ok {
		res, used, err := s.NeedReg(pr)
		if err != nil {
			return "", err
		}
		if used {
			// move.l/moveq can forward their result into sOEP.A/B.
			isMoveL := (p.Op == OpMove && p.Size.IsLong()) || p.Op == OpMoveq
			if res != ResAB || !isMoveL {
				return fmt.Sprintf("%s needs %s", s, pr), nil
			}
		}
	}
	return "", nil
}

func (m *model060) checkChangeUseEA(e EA) (changeUseStall, error) {
	switch e.Mode() {
	case EADn, EAAn:
		return changeUseStall{}, nil
	case EAInd, EAIndPost, EAIndPre, EADisp16:
		return m.calcStall(AddrReg(e.Reg()), 2), nil
	case EAIndex:
		bew, err := e.BriefExtensionWord()
		if err != nil {
			return changeUseStall{}, err
		}
		if s := m.calcStall(bew.Base, 2); s.Cycles != 0 {
			return s, nil
		}
		cycles := 3
		if bew.LongIndex && (bew.Scale == 1 || bew.Scale == 4) {
			cycles = 2
		}
		return m.calcStall(bew.Index, cycles), nil
	case EAOtherTag:
		switch e.Other() {
		case OtherAbsW, OtherAbsL, OtherPCDisp16, OtherImm:
			return changeUseStall{}, nil
		}
	}
	return changeUseStall{}, &UnsupportedError{Rendering: e.String(), Msg: "check_change_use"}
}

// checkChangeUse finds a pending stall on either operand of i, source
// scanned before destination.
func (m *model060) checkChangeUse(i Instruction) (changeUseStall, error) {
	if i.NumEA() == 0 {
		return changeUseStall{}, nil
	}
	if s, err := m.checkChangeUseEA(i.Arg(0)); err != nil || s.Cycles != 0 {
		return s, err
	}
	if i.NumEA() == 1 {
		return changeUseStall{}, nil
	}
	return m.checkChangeUseEA(i.Arg(1))
}

func (m *model060) calcStall(r Register, cycles int) changeUseStall {
	// TODO: check optimization in 10.2.3 [iff cycles == 2]
	idx := int(r)
	if idx >= 16 {
		return changeUseStall{}
	}
	s := m.lastRegisterChange[idx]
	if !s.valid {
		return changeUseStall{}
	}
	ago := m.cycle - 1 - s.cycle
	if cycles <= ago {
		return changeUseStall{}
	}
	return changeUseStall{Reg: r, Cycles: cycles - ago}
}

func (m *model060) updateRegisterChange(i Instruction) {
	r, ok := i.ExecutionResultReg()
	if !ok {
		return
	}
	m.lastRegisterChange[int(r)] = regChange{cycle: m.cycle, valid: true}
}

// StepResult describes the outcome of one Step call: the pOEP instruction
// taken, whether it paired with a trailing sOEP instruction (and why not,
// if it didn't), and the cycle range the step occupied. Branch steps
// occupy no cycle range at all.
type StepResult struct {
	POEP      Instruction
	POEPStall changeUseStall

	Branch bool

	SOEP       *Instruction
	SOEPPaired bool
	SOEPStall  changeUseStall
	SOEPReason string // why SOEP didn't pair; "" when SOEPPaired

	CycleStart, CycleEnd int // CycleEnd < CycleStart for a branch step
}

func (m *model060) reset(unroll int) {
	m.cycle = 1
	m.pos = 0
	m.unroll = unroll
	for i := range m.lastRegisterChange {
		m.lastRegisterChange[i] = regChange{}
	}
}

// step runs exactly one pOEP dispatch (and, if pairing succeeds, its sOEP
// partner), advancing cycle/pos/lastRegisterChange. Both Simulate and the
// interactive stepper in cmd/acycles drive the scheduler through this one
// entry point, so there is exactly one place the per-step algorithm lives.
func (m *model060) step() (StepResult, error) {
	poep := m.get()
	res := StepResult{POEP: poep, CycleStart: m.cycle}

	stallCycles := 0
	if stall, err := m.checkChangeUse(poep); err != nil {
		return StepResult{}, err
	} else if stall.Cycles != 0 {
		res.POEPStall = stall
		stallCycles += stall.Cycles
	}

	if poep.Op.IsBranch() {
		res.Branch = true
		res.CycleEnd = m.cycle - 1
		return res, nil
	}

	soepIns := m.peek()
	var reason string
	if soepIns != nil {
		var err error
		reason, err = m.soepOk(poep, *soepIns)
		if err != nil {
			return StepResult{}, err
		}
		if reason == "" {
			// Change/use for address operations. Checking here rather
			// than in soepOk better matches observed behavior.
			if stall, err := m.checkChangeUse(*soepIns); err != nil {
				return StepResult{}, err
			} else if stall.Cycles != 0 {
				if stallCycles != 0 {
					return StepResult{}, &InvariantError{Tag: "both OEPs stalling in one cycle"}
				}
				res.SOEPStall = stall
				stallCycles += stall.Cycles
			}
		}
	}

	icycles := poep.Cycles060()
	if icycles <= 0 {
		return StepResult{}, &InvariantError{Tag: fmt.Sprintf("missing cycle count for %s", poep)}
	}
	m.cycle += stallCycles
	m.updateRegisterChange(poep)

	if soepIns != nil {
		s := *soepIns
		res.SOEP = &s
		if reason == "" {
			if s.Cycles060() != 1 {
				return StepResult{}, &InvariantError{Tag: fmt.Sprintf("paired sOEP instruction %s is not single-cycle", s)}
			}
			res.SOEPPaired = true
			m.pos++
			m.updateRegisterChange(s)
		} else {
			res.SOEPReason = reason
		}
	}
	m.cycle += icycles
	res.CycleEnd = m.cycle - 1
	return res, nil
}

// printStep renders one StepResult in the annotated-listing shape Simulate
// has always produced.
func printStep(w io.Writer, res StepResult) {
	if res.POEPStall.Cycles != 0 {
		fmt.Fprintf(w, "\t; %s\n", noteStyle.Render(fmt.Sprintf("pOEP change/use stall for %d cycles waiting for %s", res.POEPStall.Cycles, res.POEPStall.Reg)))
	}
	if res.Branch {
		fmt.Fprintf(w, "\t; %s\n", noteStyle.Render("assumed correctly predicted (taking 0 cycles)"))
		fmt.Fprintf(w, "\t%s\n", withWidth(res.POEP.String(), listingWidth))
		return
	}
	if res.SOEPPaired && res.SOEPStall.Cycles != 0 {
		fmt.Fprintf(w, "\t; %s\n", noteStyle.Render(fmt.Sprintf("sOEP change/use stall for %d cycles waiting for %s", res.SOEPStall.Cycles, res.SOEPStall.Reg)))
	}
	if res.CycleEnd > res.CycleStart {
		fmt.Fprintf(w, "\t; cycle %d-%d\n", res.CycleStart, res.CycleEnd)
	} else {
		fmt.Fprintf(w, "\t; cycle %d\n", res.CycleStart)
	}
	fmt.Fprintf(w, "\t%s; pOEP\n", withWidth(res.POEP.String(), listingWidth))
	if res.SOEP != nil {
		if res.SOEPPaired {
			fmt.Fprintf(w, "\t%s; sOEP\n", withWidth(res.SOEP.String(), listingWidth))
		} else {
			fmt.Fprintf(w, "\t; sOEP idle because %s\n", res.SOEPReason)
		}
	}
}

// Simulate walks the (unroll+1)-times-repeated instruction stream,
// pairing primary/secondary pipe instructions where the dispatch test
// suite allows it, and returns the average cycles per iteration.
func (m *model060) Simulate(unroll int, print bool, w io.Writer) (float64, error) {
	m.reset(unroll)

	for !m.done() {
		res, err := m.step()
		if err != nil {
			return 0, err
		}
		if print {
			printStep(w, res)
		}
	}

	total := m.cycle - 1
	if print {
		line := fmt.Sprintf("%d cycles", total)
		if unroll > 0 {
			line += fmt.Sprintf(" %g per iteration", float64(total)/float64(unroll+1))
		}
		fmt.Fprintf(w, "\n%s\n", totalStyle.Render(line))
	}
	return float64(total) / float64(unroll+1), nil
}

// RegisterSnapshot is one slot of the 16-entry last-register-change table,
// exposed read-only for the interactive stepper.
type RegisterSnapshot struct {
	Reg   Register
	Cycle int
	Valid bool
}

// Model060Session is a reusable, steppable instance of the 68060 scheduler:
// the same per-simulation state Simulate owns, exposed one Step at a time
// for interactive use (see cmd/acycles's watch mode).
type Model060Session struct {
	m *model060
}

// NewModel060Session builds a session over instructions, ready to Step
// through unroll+1 logical repetitions of the stream.
func NewModel060Session(instructions []Instruction, unroll int) *Model060Session {
	m := newModel060(instructions)
	m.reset(unroll)
	return &Model060Session{m: m}
}

// Done reports whether every instruction in the (possibly unrolled) stream
// has been dispatched.
func (s *Model060Session) Done() bool { return s.m.done() }

// Cycle returns the scheduler's current cycle counter.
func (s *Model060Session) Cycle() int { return s.m.cycle }

// Peek returns the next instruction due for pOEP, or nil if Done.
func (s *Model060Session) Peek() *Instruction { return s.m.peek() }

// RegisterChanges returns a snapshot of the 16-slot last-register-change
// table.
func (s *Model060Session) RegisterChanges() [16]RegisterSnapshot {
	var out [16]RegisterSnapshot
	for i, rc := range s.m.lastRegisterChange {
		out[i] = RegisterSnapshot{Reg: Register(i), Cycle: rc.cycle, Valid: rc.valid}
	}
	return out
}

// Step advances the scheduler by exactly one pOEP dispatch (and its sOEP
// partner, if pairing succeeds).
func (s *Model060Session) Step() (StepResult, error) { return s.m.step() }

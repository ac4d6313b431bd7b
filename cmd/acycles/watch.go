package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	m68k "github.com/68k-cycles/acycles"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	pairStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	stallStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// watchModel is a bubbletea model wrapping a Model060Session: one pOEP/sOEP
// dispatch steps per keypress, rendering the register-change table, the
// current cycle, and the pending pair's dispatch verdict.
type watchModel struct {
	session *m68k.Model060Session
	last    m68k.StepResult
	stepped bool
	err     error
	done    bool
}

func (m watchModel) Init() tea.Cmd { return nil }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			if m.done {
				return m, nil
			}
			res, err := m.session.Step()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.last = res
			m.stepped = true
			m.done = m.session.Done()
		}
	}
	return m, nil
}

func (m watchModel) registerTable() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("register   last-change cycle"))
	b.WriteByte('\n')
	for _, rc := range m.session.RegisterChanges() {
		if !rc.Valid {
			fmt.Fprintf(&b, "%-10s -\n", rc.Reg)
			continue
		}
		fmt.Fprintf(&b, "%-10s %d\n", rc.Reg, rc.Cycle)
	}
	return b.String()
}

func (m watchModel) pairView() string {
	if !m.stepped {
		return dimStyle.Render("press space/j to dispatch the first pOEP instruction")
	}
	r := m.last
	var b strings.Builder
	fmt.Fprintf(&b, "pOEP: %s", r.POEP)
	if r.POEPStall.Cycles != 0 {
		fmt.Fprintf(&b, "  %s", stallStyle.Render(fmt.Sprintf("stall %d waiting for %s", r.POEPStall.Cycles, r.POEPStall.Reg)))
	}
	b.WriteByte('\n')
	if r.Branch {
		b.WriteString(dimStyle.Render("assumed correctly predicted, 0 cycles"))
		return b.String()
	}
	if r.SOEP != nil {
		if r.SOEPPaired {
			fmt.Fprintf(&b, "sOEP: %s  %s", r.SOEP, pairStyle.Render("paired"))
			if r.SOEPStall.Cycles != 0 {
				fmt.Fprintf(&b, "  %s", stallStyle.Render(fmt.Sprintf("stall %d waiting for %s", r.SOEPStall.Cycles, r.SOEPStall.Reg)))
			}
		} else {
			fmt.Fprintf(&b, "sOEP: %s  %s", r.SOEP, dimStyle.Render("idle: "+r.SOEPReason))
		}
	} else {
		b.WriteString(dimStyle.Render("sOEP: (end of stream)"))
	}
	return b.String()
}

func (m watchModel) View() string {
	status := fmt.Sprintf("cycle %d", m.session.Cycle())
	if m.done {
		status += dimStyle.Render("  (done)")
	}
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(status),
		"",
		m.pairView(),
		"",
		m.registerTable(),
		"",
		dimStyle.Render("space/j: step   q: quit"),
	)
	if m.stepped {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", spew.Sdump(m.last.POEP))
	}
	return body
}

// runWatch starts the interactive 060 stepper over a single pass of the
// instruction stream.
func runWatch(instructions []m68k.Instruction) error {
	session := m68k.NewModel060Session(instructions, 0)
	m := watchModel{session: session}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if wm, ok := final.(watchModel); ok && wm.err != nil {
		return wm.err
	}
	return nil
}

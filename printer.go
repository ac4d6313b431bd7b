package m68k

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	noteStyle  = lipgloss.NewStyle().Faint(true)
	totalStyle = lipgloss.NewStyle().Bold(true)
)

// listingWidth is the column the cycle annotation starts at, tab-aware
// like the original's with_width.
const listingWidth = 40

// withWidth right-pads s with spaces until it reaches width display
// columns, expanding embedded tabs to the next multiple of 8 as it goes.
// Strings already at or past width get exactly one trailing space.
func withWidth(s string, width int) string {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += 8 - w%8
		} else {
			w++
		}
	}
	if w >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-w)
}

// listingPrinter writes one annotated line per instruction followed by a
// trailing total, the shape the 68020 model's Simulate produces when asked
// to print. The 68060 listing is written by printStep instead.
type listingPrinter struct {
	w io.Writer
}

func newListingPrinter(w io.Writer) *listingPrinter {
	return &listingPrinter{w: w}
}

func (p *listingPrinter) line(inst Instruction, note string) {
	fmt.Fprintf(p.w, "%s; %s\n", withWidth(inst.String(), listingWidth), noteStyle.Render(note))
}

func (p *listingPrinter) total(note string) {
	fmt.Fprintf(p.w, "%s; %s\n", withWidth("total", listingWidth), totalStyle.Render(note))
}

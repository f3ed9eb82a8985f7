package view

import (
	"fmt"
	"io"
	"strings"
)

// RenderText draws the page for a terminal. Empty cells show their index so
// players know what to type; winning cells are wrapped in brackets.
func RenderText(w io.Writer, p Page) error {
	var b strings.Builder
	for r, row := range p.Rows {
		if r > 0 {
			b.WriteString("---+---+---\n")
		}
		cells := make([]string, len(row))
		for c, sq := range row {
			switch {
			case sq.Value == "":
				cells[c] = fmt.Sprintf(" %d ", sq.Index)
			case sq.Winning:
				cells[c] = "[" + sq.Value + "]"
			default:
				cells[c] = " " + sq.Value + " "
			}
		}
		b.WriteString(strings.Join(cells, "|"))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%s\n", p.Status)
	if p.Error != "" {
		fmt.Fprintf(&b, "! %s\n", p.Error)
	}
	fmt.Fprintf(&b, "Move History (%s)\n", p.SortLabel)
	for _, m := range p.Moves {
		marker := " "
		if m.Current {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, m.Label)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dqcheck/dqcheck/internal/domain/engine"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

var kindTitles = map[string]string{
	engine.KindTable:       "Table",
	engine.KindColumnMap:   "Column values",
	engine.KindAggregate:   "Column aggregates",
	engine.KindMultiColumn: "Multiple columns",
}

// RenderExpectations lists the supported expectation types grouped by kind.
// types must already be grouped, as engine.Types returns them.
func RenderExpectations(types []engine.TypeInfo) string {
	var b strings.Builder

	current := ""
	for _, ti := range types {
		if ti.Kind != current {
			current = ti.Kind
			title := kindTitles[ti.Kind]
			if title == "" {
				title = ti.Kind
			}
			fmt.Fprintf(&b, "\n  %s %s\n",
				sectionHeaderStyle.Render(title),
				dimStyle.Render(fmt.Sprintf("(%d)", countKind(types, ti.Kind))),
			)
		}
		fmt.Fprintf(&b, "    %s %s %s\n",
			warnStyle.Render("●"),
			padRight(ti.Name, 58),
			faintStyle.Render(ti.Description),
		)
	}

	b.WriteString("\n")
	b.WriteString("  " + hintStyle.Render("Column map expectations accept mostly (0..1); all accept result_format."))
	b.WriteString("\n")
	return b.String()
}

func countKind(types []engine.TypeInfo, kind string) int {
	n := 0
	for _, ti := range types {
		if ti.Kind == kind {
			n++
		}
	}
	return n
}

package tui

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// numbers formats counts with thousands separators.
var numbers = message.NewPrinter(language.English)

func count(n int) string { return numbers.Sprintf("%d", n) }

// RenderRunHeader is printed before a dataset is validated.
func RenderRunHeader(datasetPath string) string {
	title := headerStyle.Render("dqcheck")
	line := dimStyle.Render("Starting validation: ") + titleStyle.Render(filepath.Base(datasetPath))
	return boxStyle.Render(title+"\n"+line) + "\n"
}

// RenderSummary renders the metric table, the failed expectations and the
// final verdict for one run.
func RenderSummary(r *domain.ValidationResult) string {
	var b strings.Builder

	if r.Meta.RowCount > 0 || r.SuiteName != "" {
		fmt.Fprintf(&b, "  %s %s  %s %s\n\n",
			dimStyle.Render("suite"), titleStyle.Render(r.SuiteName),
			dimStyle.Render("rows"), titleStyle.Render(count(r.Meta.RowCount)),
		)
	}

	b.WriteString(renderMetricTable(r.Statistics))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n",
		coloredBar(int(r.Statistics.SuccessPercent), 40),
		lipgloss.NewStyle().Bold(true).Foreground(percentColor(r.Statistics.SuccessPercent)).
			Render(fmt.Sprintf("%.2f%%", r.Statistics.SuccessPercent)),
	)

	if failed := r.Failed(); len(failed) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n\n",
			titleStyle.Render("Failed expectations"),
			errorTagStyle.Render(fmt.Sprintf("(%d)", len(failed))),
		)
		for _, er := range failed {
			renderFailure(&b, er)
		}
	}

	b.WriteString("\n")
	b.WriteString(RenderVerdict(r.Success))
	return b.String()
}

// RenderVerdict renders the final PASSED/FAILED panel.
func RenderVerdict(passed bool) string {
	label, color := "RESULT: DATA QUALITY FAILED", danger
	if passed {
		label, color = "RESULT: DATA QUALITY PASSED", success
	}
	style := boxStyle.BorderForeground(color).Foreground(color).Bold(true)
	return style.Render(label) + "\n"
}

func renderMetricTable(st domain.Statistics) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(faintStyle).
		Headers("Metric", "Count").
		Row("Total Expectations", count(st.EvaluatedExpectations)).
		Row("Passed", count(st.SuccessfulExpectations)).
		Row("Failed", count(st.UnsuccessfulExpectations)).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col == 1 {
				s = s.Align(lipgloss.Right)
			}
			switch {
			case row == table.HeaderRow:
				return s.Bold(true).Foreground(accent)
			case col == 0:
				return s.Foreground(dim)
			case row == 1:
				return s.Foreground(success)
			case row == 2 && st.UnsuccessfulExpectations > 0:
				return s.Foreground(danger)
			}
			return s
		})
	return indent(t.String(), "  ") + "\n"
}

func renderFailure(b *strings.Builder, er domain.ExpectationResult) {
	name := er.Expectation.Type
	if col := er.Expectation.Column(); col != "" {
		name += " " + fileStyle.Render("("+col+")")
	}
	fmt.Fprintf(b, "    %s %s\n", failStyle.Render("●"), name)
	if detail := failureDetail(er); detail != "" {
		fmt.Fprintf(b, "      %s\n", dimStyle.Render(detail))
	}
}

func failureDetail(er domain.ExpectationResult) string {
	if er.ExceptionInfo.RaisedException {
		return "error: " + er.ExceptionInfo.ExceptionMessage
	}
	res := er.Result
	if n, ok := res["unexpected_count"].(int); ok {
		detail := fmt.Sprintf("%s unexpected", count(n))
		if total, ok := res["element_count"].(int); ok {
			detail = fmt.Sprintf("%s of %s unexpected", count(n), count(total))
		}
		if sample, ok := res["partial_unexpected_list"].([]any); ok && len(sample) > 0 {
			detail += "  e.g. " + compact(sample, 5)
		}
		return detail
	}
	if v, ok := res["observed_value"]; ok {
		return "observed " + compact(v, 5)
	}
	return ""
}

// compact renders v as JSON, truncating lists after limit items.
func compact(v any, limit int) string {
	if l, ok := v.([]any); ok && len(l) > limit {
		data, _ := json.Marshal(l[:limit])
		return strings.TrimSuffix(string(data), "]") + ", …]"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// RenderError renders a user-facing error line.
func RenderError(msg string) string {
	return "  " + errorTagStyle.Render("error") + " " + msg + "\n"
}

// RenderWarning renders a non-fatal problem.
func RenderWarning(msg string) string {
	return "  " + warnStyle.Render("warning") + " " + msg + "\n"
}

// RenderReportPaths lists where the artifacts of a run were written.
func RenderReportPaths(reportPath, docsPath string) string {
	var b strings.Builder
	if reportPath != "" {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("report"), fileStyle.Render(reportPath))
	}
	if docsPath != "" {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("docs  "), fileStyle.Render(docsPath))
	}
	return b.String()
}

// BatchLine is one dataset of a batch run.
type BatchLine struct {
	Dataset string
	Result  *domain.ValidationResult
	Err     error
}

// RenderBatch summarises a directory run, one line per dataset.
func RenderBatch(lines []BatchLine) string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Batch summary") + "\n")
	b.WriteString("  " + separatorLine + "\n")

	passed := 0
	for _, l := range lines {
		switch {
		case l.Err != nil:
			fmt.Fprintf(&b, "  %s %s  %s\n", errorTagStyle.Render("error "), l.Dataset, dimStyle.Render(l.Err.Error()))
		case l.Result.Success:
			passed++
			fmt.Fprintf(&b, "  %s %s  %s\n", passStyle.Render("passed"), l.Dataset,
				dimStyle.Render(fmt.Sprintf("%.2f%%", l.Result.Statistics.SuccessPercent)))
		default:
			fmt.Fprintf(&b, "  %s %s  %s\n", failStyle.Render("failed"), l.Dataset,
				dimStyle.Render(fmt.Sprintf("%.2f%%", l.Result.Statistics.SuccessPercent)))
		}
	}
	fmt.Fprintf(&b, "\n  %s\n", dimStyle.Render(fmt.Sprintf("%d of %d datasets passed", passed, len(lines))))
	return b.String()
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 64)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		ts := e.Timestamp
		if len(ts) > 16 {
			ts = strings.Replace(ts[:16], "T", " ", 1)
		}

		status := failStyle.Render("failed")
		if e.Success {
			status = passStyle.Render("passed")
		}

		pct := lipgloss.NewStyle().
			Foreground(percentColor(e.Percent)).
			Render(fmt.Sprintf("%6.2f%%", e.Percent))

		line := fmt.Sprintf("  %s  %s  %s  %s  %s %s",
			dimStyle.Render(ts),
			faintStyle.Render(hash),
			status,
			pct,
			filepath.Base(e.Dataset),
			infoTagStyle.Render(e.Suite),
		)

		if i > 0 {
			diff := e.Percent - entries[i-1].Percent
			if diff > 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%.2f", diff))
			} else if diff < 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%.2f", -diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func coloredBar(pct, width int) string {
	filled := max(0, min(pct*width/100, width))
	empty := width - filled

	color := percentColor(float64(pct))
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func percentColor(pct float64) lipgloss.Color {
	switch {
	case pct >= 100:
		return success
	case pct >= 80:
		return lipgloss.Color("#A3E635") // lime
	case pct >= 50:
		return warning
	default:
		return danger
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

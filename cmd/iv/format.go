package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/industryview/industryview/internal/board"
	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
	"golang.org/x/term"
)

const (
	defaultWidth   = 100
	minColumnWidth = 18
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#b91c1c")).Bold(true)
	columnStyle = lipgloss.NewStyle().PaddingRight(1)
)

// terminalWidth returns the width of out when it is a terminal, or a
// fixed default otherwise.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// badge renders a label in its display colors.
func badge(m models.DisplayMeta) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.Color)).
		Background(lipgloss.Color(m.Bg)).
		Padding(0, 1).
		Render(m.Label)
}

// progressBar renders pct as a bar of the given width followed by the
// percentage.
func progressBar(pct, width int) string {
	pct = max(0, min(100, pct))
	filled := pct * width / 100
	done := models.TaskStatusMeta[models.StatusDone]
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(done.Color)).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func sprintRange(s models.Sprint) string {
	return s.StartDate.Format(kanban.DateLayout) + " → " + s.EndDate.Format(kanban.DateLayout)
}

// renderBoard lays the five status columns side by side, or stacked when
// the terminal is too narrow.
func renderBoard(snap *board.Snapshot, width int) string {
	statuses := models.AllTaskStatuses()
	colWidth := (width - len(statuses)) / len(statuses)
	stacked := colWidth < minColumnWidth
	if stacked {
		colWidth = width
	}

	cols := make([]string, 0, len(statuses))
	for _, s := range statuses {
		tasks := snap.Board.Bucket(s)
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s\n", badge(s.Meta()), mutedStyle.Render(fmt.Sprintf("(%d)", len(tasks))))
		if len(tasks) == 0 {
			b.WriteString(mutedStyle.Render("-"))
		}
		for i, t := range tasks {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(truncate(fmt.Sprintf("#%d %s", t.ID, t.DisplayName()), colWidth-1))
		}
		cols = append(cols, columnStyle.Width(colWidth).Render(b.String()))
	}

	var body string
	if stacked {
		body = lipgloss.JoinVertical(lipgloss.Left, cols...)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "%s  %s\n", headerStyle.Render(snap.Sprint.Name), mutedStyle.Render(sprintRange(snap.Sprint)))
	fmt.Fprintf(&out, "%s\n\n", progressBar(snap.Progress, 30))
	out.WriteString(body)
	out.WriteByte('\n')
	if len(snap.Board.Unknown) > 0 {
		ids := make([]string, len(snap.Board.Unknown))
		for i, t := range snap.Board.Unknown {
			ids[i] = fmt.Sprintf("#%d (%s)", t.ID, t.StatusCode)
		}
		fmt.Fprintf(&out, "\n%s %s\n", warnStyle.Render("Unclassified tasks:"), strings.Join(ids, ", "))
	}
	if !snap.HasTeamCreated {
		fmt.Fprintf(&out, "\n%s\n", mutedStyle.Render("No team exists for this project yet."))
	}
	return out.String()
}

// renderBurndown prints the burndown series as a table with a bar for the
// remaining work.
func renderBurndown(w io.Writer, points []kanban.Point) {
	if len(points) == 0 {
		fmt.Fprintln(w, "No burndown data.")
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-10s  %6s  %6s  %s", "DATE", "IDEAL", "ACTUAL", "REMAINING")))
	for _, p := range points {
		fmt.Fprintf(w, "%-10s  %6.1f  %6d  %s\n", p.Date, p.Ideal, p.Actual, progressBar(int(p.ActualPercent+0.5), 20))
	}
}

// printSummary prints per-status counts and overall progress.
func printSummary(w io.Writer, sum kanban.Summary) {
	counts := map[models.TaskStatus]int{
		models.StatusPending:    sum.Pending,
		models.StatusInProgress: sum.InProgress,
		models.StatusDone:       sum.Done,
		models.StatusFailed:     sum.Failed,
		models.StatusInspection: sum.Inspection,
	}
	for _, s := range models.AllTaskStatuses() {
		fmt.Fprintf(w, "  %-14s %d\n", s.Meta().Label, counts[s])
	}
	fmt.Fprintf(w, "  %-14s %d\n", "Total", sum.Total)
	fmt.Fprintf(w, "  %-14s %s\n", "Progress", progressBar(sum.PercentDone, 20))
}

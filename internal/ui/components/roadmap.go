package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skilltree/internal/render"
	"github.com/abhisek/skilltree/internal/ui/theme"
)

var statusMarks = map[render.Status]string{
	render.StatusDone:    "✓",
	render.StatusNext:    "▶",
	render.StatusIgnored: "–",
	render.StatusSkipped: "!",
	render.StatusPending: "·",
}

// StatusStyle returns the style of a roadmap status.
func StatusStyle(s render.Status) lipgloss.Style {
	switch s {
	case render.StatusDone:
		return theme.Done
	case render.StatusNext:
		return theme.Next
	case render.StatusIgnored:
		return theme.Ignored
	case render.StatusSkipped:
		return theme.Skipped
	default:
		return theme.Pending
	}
}

// Roadmap renders a roadmap view as a numbered, coloured list followed by
// a progress bar of the given width.
func Roadmap(v render.RoadmapView, width int) string {
	var b strings.Builder

	if v.Title != "" {
		b.WriteString(theme.Title.Render(v.Title))
		b.WriteString("\n\n")
	}
	if v.Problem != "" {
		b.WriteString(theme.Warning.Render("No recommendation available"))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(v.Problem))
		b.WriteString("\n")
		return b.String()
	}
	if len(v.Rows) == 0 {
		b.WriteString(theme.Hint.Render("This tree has no skills yet."))
		b.WriteString("\n")
		return b.String()
	}

	numWidth := len(fmt.Sprint(len(v.Rows)))
	for _, r := range v.Rows {
		style := StatusStyle(r.Status)
		line := fmt.Sprintf("%*d. %s %s", numWidth, r.Index+1, statusMarks[r.Status], r.Name)
		b.WriteString(style.Render(line))
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  (node %d)", r.NodeID)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.Next != nil {
		b.WriteString(theme.Body.Render("Next: "))
		b.WriteString(theme.Next.Render(v.Next.Name))
	} else {
		b.WriteString(theme.Done.Render("All done!"))
	}
	b.WriteString("\n")

	pct := float64(v.Summary.Percent) / 100
	b.WriteString(NewProgressBar("Progress", pct, true, width).View())
	b.WriteString("\n")
	return b.String()
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

var (
	headlineStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	positiveBadge = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#00897B"))
	negativeBadge = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#D32F2F"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Render draws v as a terminal card.
func Render(w io.Writer, v View) error {
	_, err := fmt.Fprintln(w, cardStyle.Render(Text(v)))
	return err
}

// Text lays out v without the surrounding card.
func Text(v View) string {
	var sections []string

	badge := negativeBadge.Render(v.Badge.Label)
	if v.Badge.Positive {
		badge = positiveBadge.Render(v.Badge.Label)
	}
	sections = append(sections,
		lipgloss.JoinHorizontal(lipgloss.Center, headlineStyle.Render(v.Headline), " ", badge),
		mutedStyle.Render(v.Summary),
	)

	if len(v.Scores) > 0 {
		bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage())
		var lines []string
		for _, s := range v.Scores {
			lines = append(lines, fmt.Sprintf("%-20s %s %6.2f%%", s.Label, bar.ViewAs(s.Value/100), s.Value))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(v.Facts) > 0 {
		var lines []string
		for _, f := range v.Facts {
			lines = append(lines, fmt.Sprintf("%-22s %s", f.Label+":", f.Value))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	for _, l := range v.Lists {
		lines := []string{sectionStyle.Render(l.Title)}
		for _, item := range l.Items {
			lines = append(lines, "  • "+item)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if v.Link != "" {
		sections = append(sections, "Source: "+v.Link)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

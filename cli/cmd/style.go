package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/tdl/lang"
)

// Styles.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	highlightStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true).
			Underline(true)
)

// renderIssues writes one styled line per issue under a styled heading.
func renderIssues(b *strings.Builder, title string, style lipgloss.Style, issues []lang.Issue) {
	if len(issues) == 0 {
		return
	}

	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')

	for _, is := range issues {
		b.WriteString("  ")
		b.WriteString(style.Render("• " + is.String()))
		b.WriteByte('\n')
	}
}

// renderHighlighted styles name rune by rune, emphasizing the runes whose
// byte offsets are among the matched indexes.
func renderHighlighted(name string, matched []int) string {
	hl := make(map[int]struct{}, len(matched))
	for _, idx := range matched {
		hl[idx] = struct{}{}
	}

	var b strings.Builder

	for i, r := range name {
		ch := string(r)
		if _, ok := hl[i]; ok {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(suggestionStyle.Render(ch))
		}
	}

	return b.String()
}

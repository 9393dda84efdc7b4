package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/tui/components"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minWidth || a.height < minHeight {
		return a.viewTooSmall()
	}
	if a.data == nil {
		if a.loadErr != nil && !a.state.Loading {
			return a.viewLoadError()
		}
		return a.viewLoading()
	}
	if a.state.ShowHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) viewTooSmall() string {
	msg := fmt.Sprintf(
		"\n  Terminal too small (%dx%d)\n\n  claudetop needs at least %dx%d.\n",
		a.width, a.height, minWidth, minHeight,
	)
	h := max(a.height, 1)
	return padHeight(truncateHeight(msg, h), h)
}

// overlay centers a card on the full screen.
func (a App) overlay(body string, padV, padH int) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(padV, padH).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	count := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logo.Render("◈ claudetop"))
	b.WriteString(muted.Render(" · Claude Code usage"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())

	if a.progressMax > 0 {
		barW := min(max(a.width-30, 20), 40)
		b.WriteString(muted.Render(" Parsing sessions\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(count.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(muted.Render(" / "))
		b.WriteString(count.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(muted.Render(" Discovering sessions..."))
	}
	return a.overlay(b.String(), 2, 4)
}

func (a App) viewLoadError() string {
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.Danger).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := title.Render("Could not load session logs") + "\n\n" +
		muted.Render(cli.Truncate(a.loadErr.Error(), min(a.width-16, 100))) + "\n\n" +
		muted.Render("[r] retry  [q] quit")
	return a.overlay(body, 1, 3)
}

func (a App) viewHelp() string {
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Tokens).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, group := range []struct {
		name     string
		bindings []binding
	}{
		{"Navigation", navBindings},
		{"Actions", actionBindings},
	} {
		b.WriteString("\n")
		b.WriteString(section.Render(group.name))
		b.WriteString("\n")
		for _, bind := range group.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-9s", bind.keys)),
				desc.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("[?] or [esc] to close"))
	return a.overlay(b.String(), 1, 3)
}

func (a App) viewMain() string {
	t := theme.Active
	w, h := a.width, a.height
	cw := a.contentWidth()

	header := components.RenderTabBar(a.state.View, w) + "\n" + a.renderFilterLine(w)
	status := a.renderStatus(w)
	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(status), 1)

	var content string
	switch a.state.View {
	case nav.Dashboard:
		content = a.renderDashboard(cw, contentH)
	case nav.Daily:
		content = a.renderDaily(cw, contentH)
	case nav.Sessions:
		if a.state.InDrilldown() {
			content = a.renderDrilldown(cw, contentH)
		} else {
			content = a.renderSessions(cw, contentH)
		}
	case nav.Projects:
		content = a.renderProjects(cw, contentH)
	case nav.Prompts:
		content = a.renderPrompts(cw, contentH)
	case nav.Insights:
		content = a.renderInsights(cw, contentH)
	case nav.Analytics:
		content = a.renderAnalytics(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLines(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	out := lipgloss.JoinVertical(lipgloss.Left, header, content, status)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, out,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderFilterLine shows the active command-line filters and either the
// open search box or the applied search.
func (a App) renderFilterLine(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	sep := dim.Render(" │ ")

	window := "all time"
	if a.opts.Build.Days > 0 {
		window = fmt.Sprintf("last %dd", a.opts.Build.Days)
	}
	parts := []string{accent.Render(window)}
	if p := a.opts.Build.Project; p != "" {
		parts = append(parts, dim.Render("project ")+accent.Render(p))
	}
	if m := a.opts.Build.Model; m != "" {
		parts = append(parts, dim.Render("model ")+accent.Render(m))
	}

	switch {
	case a.state.Searching != nav.SearchNone:
		parts = append(parts, a.search.View())
	case a.state.View == nav.Sessions && a.state.SessionSearch != "":
		parts = append(parts, dim.Render("search ")+accent.Render(a.state.SessionSearch))
	case a.state.View == nav.Prompts && a.state.PromptSearch != "":
		parts = append(parts, dim.Render("search ")+accent.Render(a.state.PromptSearch))
	}

	line := dim.Render(" ") + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(t.Surface).Width(w).MaxWidth(w).Render(line)
}

func (a App) renderStatus(w int) string {
	hints := a.hints()
	switch {
	case a.loadErr != nil:
		return components.RenderStatusBar(w, hints, "reload failed: "+a.loadErr.Error(), true)
	case a.state.Loading:
		return components.RenderStatusBar(w, hints, a.spinner.View()+" reloading", false)
	}

	status := ""
	if a.data != nil {
		status = fmt.Sprintf("%s sessions · %.1fs",
			cli.FormatNumber(int64(len(a.data.Sessions))), a.loadTime.Seconds())
	}
	if a.opts.Changes != nil {
		status += " · watching"
	}
	return components.RenderStatusBar(w, hints, status, false)
}

func (a App) hints() string {
	if a.state.Searching != nav.SearchNone {
		return "[enter] apply  [esc] cancel"
	}
	switch a.state.View {
	case nav.Daily:
		return "[←→/jk] day  [enter] expand  [esc] collapse  [?] help  [q] quit"
	case nav.Sessions:
		if a.state.InDrilldown() {
			return "[jk] turns  [g/G] first/last  [esc] back"
		}
		return "[jk] move  [enter] drill  [/] search  [s] sort  [o/h] model  [?] help"
	case nav.Projects:
		return "[jk] move  [enter] expand  [esc] collapse  [?] help  [q] quit"
	case nav.Prompts:
		return "[jk] move  [/] search  [esc] clear  [?] help  [q] quit"
	case nav.Insights, nav.Analytics:
		return "[jk] move  [tab] next view  [?] help  [q] quit"
	}
	return "[1-7] views  [tab] next  [r] reload  [?] help  [q] quit"
}

// ─── Layout helpers ─────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	n := strings.Count(s, "\n") + 1
	if n >= h {
		return s
	}
	return s + strings.Repeat("\n", h-n)
}

// fillLines pads every line to w with the background color so gaps between
// cards are not left unstyled.
func fillLines(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// scrollWindow returns the [start, end) slice of n rows that keeps sel
// visible in a viewport of size rows, keeping sel near the middle.
func scrollWindow(sel, n, size int) (int, int) {
	if size <= 0 || n <= 0 {
		return 0, 0
	}
	if n <= size {
		return 0, n
	}
	start := min(max(sel-size/2, 0), n-size)
	return start, start + size
}

// column is one fixed-width table column.
type column struct {
	title string
	width int
	right bool
}

// flexColumns gives the remaining width to the column at flex.
func flexColumns(cols []column, total, flex int) []column {
	out := append([]column(nil), cols...)
	used := 0
	for i, c := range out {
		if i != flex {
			used += c.width + 1
		}
	}
	out[flex].width = max(total-used-1, 8)
	return out
}

func formatRow(cells []string, cols []column) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(' ')
		}
		cell := ""
		if i < len(cells) {
			cell = cli.Truncate(cells[i], c.width)
		}
		gap := strings.Repeat(" ", max(c.width-lipgloss.Width(cell), 0))
		if c.right {
			b.WriteString(gap + cell)
		} else {
			b.WriteString(cell + gap)
		}
	}
	return b.String()
}

func headerRow(cols []column) string {
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true).
		Render(formatRow(titles, cols))
}

// listRow styles a table row, highlighting the selection.
func listRow(text string, selected bool) string {
	t := theme.Active
	if selected {
		return lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Highlight).Bold(true).Render(text)
	}
	return lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Render(text)
}

// emptyCard is the placeholder for a view with nothing to show.
func emptyCard(title, msg string, w int) string {
	t := theme.Active
	return components.ContentCard(title,
		lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg), w)
}

func styled(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface)
}

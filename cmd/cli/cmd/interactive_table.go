package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	cliapi "github.com/solver492/manu-pro/internal/cli"
	"github.com/solver492/manu-pro/internal/stats"
)

// KeyMap represents the key bindings for the statistics browser
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Sort    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// sortMode is the column the browser orders sites by
type sortMode int

const (
	sortByRevenue sortMode = iota
	sortByMonth
	sortByEvolution
	sortByName
	sortModeCount
)

func (s sortMode) String() string {
	switch s {
	case sortByMonth:
		return "handlers this month"
	case sortByEvolution:
		return "evolution"
	case sortByName:
		return "name"
	default:
		return "revenue"
	}
}

var browserColumns = []table.Column{
	{Title: "Site", Width: 24},
	{Title: "Month", Width: 7},
	{Title: "Year", Width: 7},
	{Title: "Revenue (DH)", Width: 13},
	{Title: "Evolution", Width: 10},
}

// StatsBrowser is the interactive per-site statistics table
type StatsBrowser struct {
	ctx      context.Context
	source   cliapi.StatsSource
	table    table.Model
	rows     []stats.SiteStat
	keys     KeyMap
	sortBy   sortMode
	loading  bool
	spinner  spinner.Model
	err      error
	message  string
	showHelp bool
	quitting bool
	useColor bool
}

// NewStatsBrowser creates a browser over detailed statistics already fetched
// from source. Refreshing asks source again.
func NewStatsBrowser(ctx context.Context, source cliapi.StatsSource, detailed *stats.DetailedStats, noColor bool) StatsBrowser {
	t := table.New(
		table.WithColumns(browserColumns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	useColor := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	if useColor {
		st := table.DefaultStyles()
		st.Header = st.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(false)
		st.Selected = st.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(st)
	}

	m := StatsBrowser{
		ctx:      ctx,
		source:   source,
		table:    t,
		keys:     DefaultKeyMap(),
		spinner:  s,
		useColor: useColor,
	}
	if detailed != nil {
		m.rows = append(m.rows, detailed.SiteStats...)
	}
	m.applySort()
	return m
}

// Init initializes the browser
func (m StatsBrowser) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m StatsBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Sort):
			m.sortBy = (m.sortBy + 1) % sortModeCount
			m.applySort()
			m.table.SetCursor(0)
			m.err = nil
			m.message = "Sorted by " + m.sortBy.String()
			return m, nil

		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.message = ""
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.refresh())

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		if h := msg.Height - 6; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case refreshCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.message = "Refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.rows = nil
		if msg.detailed != nil {
			m.rows = append(m.rows, msg.detailed.SiteStats...)
		}
		m.applySort()
		if m.table.Cursor() >= len(m.rows) {
			m.table.SetCursor(0)
		}
		m.message = fmt.Sprintf("Refreshed %d sites", len(m.rows))
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View renders the browser
func (m StatsBrowser) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.showHelp {
		b.WriteString(m.helpView())
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(fmt.Sprintf("%s Loading...\n", m.spinner.View()))
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.message != "" {
		color := lipgloss.Color("82")
		if m.err != nil {
			color = lipgloss.Color("196")
		}
		b.WriteString(m.colorize(m.message, color))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	return b.String()
}

func (m StatsBrowser) colorize(s string, color lipgloss.Color) string {
	if !m.useColor {
		return s
	}
	return lipgloss.NewStyle().Foreground(color).Render(s)
}

// helpView returns the help view
func (m StatsBrowser) helpView() string {
	help := strings.Builder{}
	help.WriteString("Help:\n")
	help.WriteString("  ↑/k         - Move up\n")
	help.WriteString("  ↓/j         - Move down\n")
	help.WriteString("  s           - Cycle sort column\n")
	help.WriteString("  r           - Reload statistics\n")
	help.WriteString("  ?           - Toggle help\n")
	help.WriteString("  q/esc       - Quit\n")
	return help.String()
}

// statusLine returns the status line
func (m StatsBrowser) statusLine() string {
	if len(m.rows) == 0 {
		return "No sites found"
	}
	return fmt.Sprintf("Site %d of %d | sorted by %s | Press ? for help", m.table.Cursor()+1, len(m.rows), m.sortBy)
}

// Selected returns the site under the cursor
func (m StatsBrowser) Selected() (stats.SiteStat, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return stats.SiteStat{}, false
	}
	return m.rows[i], true
}

// applySort orders rows by the current mode and rebuilds the table rows.
// Ties keep the order the server returned.
func (m *StatsBrowser) applySort() {
	var less func(a, b stats.SiteStat) bool
	switch m.sortBy {
	case sortByMonth:
		less = func(a, b stats.SiteStat) bool { return a.HandlersThisMonth > b.HandlersThisMonth }
	case sortByEvolution:
		less = func(a, b stats.SiteStat) bool { return a.Evolution > b.Evolution }
	case sortByName:
		less = func(a, b stats.SiteStat) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		less = func(a, b stats.SiteStat) bool { return a.RevenueGenerated > b.RevenueGenerated }
	}
	sort.SliceStable(m.rows, func(i, j int) bool { return less(m.rows[i], m.rows[j]) })

	rows := make([]table.Row, len(m.rows))
	for i, s := range m.rows {
		rows[i] = siteStatRow(s)
	}
	m.table.SetRows(rows)
}

func siteStatRow(s stats.SiteStat) table.Row {
	return table.Row{
		truncateString(s.Name, browserColumns[0].Width),
		strconv.FormatInt(s.HandlersThisMonth, 10),
		strconv.FormatInt(s.HandlersThisYear, 10),
		strconv.FormatInt(s.RevenueGenerated, 10),
		stats.FormatEvolution(s.Evolution),
	}
}

// truncateString shortens s to maxLen runes, ending with an ellipsis
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// refreshCompleteMsg is sent when a reload completes
type refreshCompleteMsg struct {
	detailed *stats.DetailedStats
	err      error
}

func (m StatsBrowser) refresh() tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		detailed, err := source.Detailed(ctx)
		return refreshCompleteMsg{detailed: detailed, err: err}
	}
}

// runStatsBrowser runs the browser on the alternate screen
func runStatsBrowser(ctx context.Context, source cliapi.StatsSource, detailed *stats.DetailedStats, noColor bool) error {
	p := tea.NewProgram(NewStatsBrowser(ctx, source, detailed, noColor), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

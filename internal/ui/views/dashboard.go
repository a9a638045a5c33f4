package views

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/session"
	"pmadmin/internal/ui/styles"
)

// DashboardView is the landing screen: static summary cards, matching the
// upstream dashboard which ships sample data rather than live aggregates.
type DashboardView struct {
	session *session.Store
	styles  *styles.Styles
	width   int
	height  int
}

func NewDashboardView(sess *session.Store) *DashboardView {
	return &DashboardView{
		session: sess,
		styles:  styles.NewStyles(),
	}
}

func (v *DashboardView) Init() tea.Cmd { return nil }

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		v.width = msg.Width
		v.height = msg.Height
	}
	return v, nil
}

func (v *DashboardView) View() string {
	s := v.styles

	greeting := "Welcome back!"
	if u := v.session.User(); u != nil && u.Name != "" {
		greeting = fmt.Sprintf("Welcome back, %s!", u.Name)
	}

	tasks := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("My Tasks"),
		"",
		"Design Review          "+s.TitleMuted.Render("completed"),
		"Frontend Development   "+s.TitleMuted.Render("in-progress"),
		"Backend Integration    "+s.TitleMuted.Render("pending"),
	)

	projects := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Projects"),
		"",
		"Website Redesign  "+progressBar(75),
		"Mobile App        "+progressBar(45),
		"API Development   "+progressBar(90),
	)

	activity := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Team Activity"),
		"",
		"Sarah completed a task        "+s.TitleMuted.Render("2m ago"),
		"Mike created a new project    "+s.TitleMuted.Render("1h ago"),
		"Anna updated documentation    "+s.TitleMuted.Render("3h ago"),
	)

	cards := lipgloss.JoinVertical(lipgloss.Left,
		s.Modal.Render(tasks),
		s.Modal.Render(projects),
		s.Modal.Render(activity),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(greeting),
		"",
		cards,
	)
}

func progressBar(pct int) string {
	filled := pct / 10
	bar := ""
	for i := 0; i < 10; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return fmt.Sprintf("%s %d%%", bar, pct)
}

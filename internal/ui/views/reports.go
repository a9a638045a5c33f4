package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/api"
	"pmadmin/internal/export"
	"pmadmin/internal/models"
	"pmadmin/internal/ui/keys"
	"pmadmin/internal/ui/styles"
	"pmadmin/internal/ui/table"
)

// ReportsView shows the per-project task aggregates with dedicated project
// and status filters, and exports whatever the filters currently show.
type ReportsView struct {
	client      *api.Client
	styles      *styles.Styles
	keys        keys.KeyMap
	downloadDir string

	table   table.Model[models.Report]
	reports []models.Report
	loaded  bool

	projectFilter textinput.Model
	statusFilter  textinput.Model
	filterFocus   int // 0=table, 1=project filter, 2=status filter

	width  int
	height int
}

func NewReportsView(client *api.Client, downloadDir string, pageSize int) *ReportsView {
	v := &ReportsView{
		client:      client,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		downloadDir: downloadDir,
	}

	v.projectFilter = textinput.New()
	v.projectFilter.Placeholder = "Filter by project"
	v.projectFilter.CharLimit = 100

	v.statusFilter = textinput.New()
	v.statusFilter.Placeholder = "Filter by status"
	v.statusFilter.CharLimit = 100

	columns := []table.Column[models.Report]{
		{Header: "Project", Key: func(r models.Report) any { return r.ProjectName }, Sortable: true},
		{Header: "Status", Key: func(r models.Report) any { return r.ProjectStatus }, Sortable: true},
		{Header: "Total", Key: func(r models.Report) any { return r.TotalTasks }, Sortable: true},
		{Header: "Done", Key: func(r models.Report) any { return r.CompletedTasks }, Sortable: true},
		{Header: "Pending", Key: func(r models.Report) any { return r.PendingTasks }, Sortable: true},
		{
			Header:   "Completion",
			Key:      func(r models.Report) any { return r.CompletionPercentage },
			Render:   func(r models.Report) string { return fmt.Sprintf("%g%%", r.CompletionPercentage) },
			Sortable: true,
		},
	}
	v.table = table.New(columns, pageSize)
	return v
}

type reportsLoadedMsg struct {
	reports []models.Report
}

func (v *ReportsView) Init() tea.Cmd {
	return v.load
}

func (v *ReportsView) load() tea.Msg {
	reports, err := api.AggregateReports(v.client)
	if err != nil {
		return loadFailure(err)
	}
	return reportsLoadedMsg{reports: reports}
}

// visible applies the two dedicated filters on top of the full result set.
// The table's own search and sort then operate on what is left.
func (v *ReportsView) visible() []models.Report {
	project := strings.ToLower(strings.TrimSpace(v.projectFilter.Value()))
	status := strings.ToLower(strings.TrimSpace(v.statusFilter.Value()))

	var out []models.Report
	for _, r := range v.reports {
		if project != "" && !strings.Contains(strings.ToLower(r.ProjectName), project) {
			continue
		}
		if status != "" && !strings.Contains(strings.ToLower(r.ProjectStatus), status) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (v *ReportsView) applyFilters() {
	v.table.SetRows(v.visible())
}

func (v *ReportsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetWidth(styles.ContentWidth(msg.Width) - 4)
		return v, nil

	case reportsLoadedMsg:
		v.reports = msg.reports
		v.applyFilters()
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v *ReportsView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.filterFocus > 0 {
		switch msg.String() {
		case "esc", "enter":
			v.filterFocus = 0
			v.projectFilter.Blur()
			v.statusFilter.Blur()
			return v, nil
		case "tab":
			v.filterFocus = 3 - v.filterFocus
			v.updateFilterFocus()
			return v, textinput.Blink
		}
		var cmd tea.Cmd
		if v.filterFocus == 1 {
			v.projectFilter, cmd = v.projectFilter.Update(msg)
		} else {
			v.statusFilter, cmd = v.statusFilter.Update(msg)
		}
		v.applyFilters()
		return v, cmd
	}

	if v.table.SearchFocused() {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}

	switch {
	case msg.String() == "f":
		v.filterFocus = 1
		v.updateFilterFocus()
		return v, textinput.Blink

	case msg.String() == "c":
		return v, v.export("csv")

	case msg.String() == "p":
		return v, v.export("pdf")

	case msg.String() == "x":
		return v, v.export("xlsx")

	case key.Matches(msg, v.keys.Refresh):
		return v, v.load
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *ReportsView) updateFilterFocus() {
	v.projectFilter.Blur()
	v.statusFilter.Blur()
	if v.filterFocus == 1 {
		v.projectFilter.Focus()
	} else if v.filterFocus == 2 {
		v.statusFilter.Focus()
	}
}

// export writes the currently visible rows in the chosen format.
func (v *ReportsView) export(format string) tea.Cmd {
	rows := export.ReportRows(v.visible())
	dir := v.downloadDir

	return func() tea.Msg {
		dest := filepath.Join(dir, "project-report."+format)
		f, err := os.Create(dest)
		if err != nil {
			return ToastMsg{Text: err.Error(), Err: true}
		}
		defer f.Close()

		switch format {
		case "csv":
			err = export.CSV(f, export.ReportHeaders, rows)
		case "pdf":
			err = export.PDF(f, "Project Report", export.ReportHeaders, rows)
		case "xlsx":
			err = export.Workbook(f, "Report", export.ReportHeaders, rows)
		}
		if err != nil {
			return ToastMsg{Text: err.Error(), Err: true}
		}
		return ToastMsg{Text: "Exported " + dest}
	}
}

func (v *ReportsView) View() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	filterWidth := clamp(styles.ContentWidth(v.width)/2-6, 15, 35)
	projectStyle := s.Input
	statusStyle := s.Input
	if v.filterFocus == 1 {
		projectStyle = s.InputFocused
	}
	if v.filterFocus == 2 {
		statusStyle = s.InputFocused
	}
	filters := lipgloss.JoinHorizontal(lipgloss.Top,
		projectStyle.Width(filterWidth).Render(v.projectFilter.View()),
		"  ",
		statusStyle.Width(filterWidth).Render(v.statusFilter.View()),
	)

	help := s.Help.Render(
		s.HelpKey.Render("f") + " filter • " +
			s.HelpKey.Render("c") + " csv • " +
			s.HelpKey.Render("p") + " pdf • " +
			s.HelpKey.Render("x") + " xlsx • " +
			s.HelpKey.Render("r") + " refresh",
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Reports"),
		"",
		filters,
		"",
		v.table.View(),
		help,
	)
}

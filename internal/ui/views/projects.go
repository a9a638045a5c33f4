package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/api"
	"pmadmin/internal/models"
	"pmadmin/internal/ui/keys"
	"pmadmin/internal/ui/styles"
	"pmadmin/internal/ui/table"
)

type projectPayload struct {
	Name      string `json:"name"`
	StatusID  string `json:"status_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ProjectsView lists and edits projects.
type ProjectsView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	table    table.Model[models.Project]
	statuses []models.ProjectStatus
	loaded   bool

	editing      bool
	editingNew   bool
	selected     models.Project
	nameInput    textinput.Model
	startInput   textinput.Model
	endInput     textinput.Model
	statusSelect selector
	focusIdx     int // 0=name, 1=status, 2=start, 3=end, 4=save

	confirmingDelete bool
	deleteTarget     models.Project

	width  int
	height int
}

func NewProjectsView(client *api.Client, pageSize int) *ProjectsView {
	v := &ProjectsView{
		client: client,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}

	v.nameInput = textinput.New()
	v.nameInput.Placeholder = "Project name"
	v.nameInput.CharLimit = 100

	v.startInput = textinput.New()
	v.startInput.Placeholder = "2026-01-15"
	v.startInput.CharLimit = 10

	v.endInput = textinput.New()
	v.endInput.Placeholder = "2026-06-30"
	v.endInput.CharLimit = 10

	v.statusSelect = newSelector("Select Status")

	columns := []table.Column[models.Project]{
		{Header: "Name", Key: func(p models.Project) any { return p.Name }, Sortable: true},
		{Header: "Status", Render: func(p models.Project) string { return v.statusName(p.StatusID) }},
		{Header: "Start Date", Key: func(p models.Project) any { return p.StartDate }, Sortable: true},
		{Header: "End Date", Key: func(p models.Project) any { return p.EndDate }, Sortable: true},
	}
	v.table = table.New(columns, pageSize)
	return v
}

func (v *ProjectsView) statusName(id string) string {
	for _, s := range v.statuses {
		if s.ID == id {
			return s.StatusName
		}
	}
	return "Unknown Status"
}

type projectsLoadedMsg struct {
	projects []models.Project
}

type projectStatusesLoadedMsg struct {
	statuses []models.ProjectStatus
}

func (v *ProjectsView) Init() tea.Cmd {
	return tea.Batch(v.loadProjects, v.loadStatuses)
}

func (v *ProjectsView) loadProjects() tea.Msg {
	projects, err := api.List[models.Project](v.client, api.ResourceProjects)
	if err != nil {
		return loadFailure(err)
	}
	return projectsLoadedMsg{projects: projects}
}

func (v *ProjectsView) loadStatuses() tea.Msg {
	statuses, err := api.List[models.ProjectStatus](v.client, api.ResourceProjectStatuses)
	if err != nil {
		return loadFailure(err)
	}
	return projectStatusesLoadedMsg{statuses: statuses}
}

func (v *ProjectsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetWidth(styles.ContentWidth(msg.Width) - 4)
		return v, nil

	case projectsLoadedMsg:
		v.table.SetRows(msg.projects)
		v.loaded = true
		return v, nil

	case projectStatusesLoadedMsg:
		v.statuses = msg.statuses
		opts := make([]option, len(msg.statuses))
		for i, s := range msg.statuses {
			opts[i] = option{id: s.ID, label: s.StatusName}
		}
		v.statusSelect.SetOptions(opts)
		return v, nil

	case submitMsg:
		if msg.failure != nil {
			return v, emit(msg.failure)
		}
		switch msg.op {
		case "create":
			v.closeForm()
			return v, tea.Batch(toast("Project created successfully"), v.loadProjects)
		case "update":
			v.closeForm()
			return v, tea.Batch(toast("Project updated successfully"), v.loadProjects)
		case "delete":
			return v, tea.Batch(toast("Project deleted successfully"), v.loadProjects)
		}
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *ProjectsView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.table.SearchFocused() {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.New):
		v.startForm(models.Project{}, true)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if row, ok := v.table.Selected(); ok {
			v.startForm(row, false)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if row, ok := v.table.Selected(); ok {
			v.confirmingDelete = true
			v.deleteTarget = row
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, tea.Batch(v.loadProjects, v.loadStatuses)
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *ProjectsView) startForm(p models.Project, isNew bool) {
	v.editing = true
	v.editingNew = isNew
	v.selected = p
	v.focusIdx = 0
	v.nameInput.SetValue(p.Name)
	v.startInput.SetValue(p.StartDate)
	v.endInput.SetValue(p.EndDate)
	v.statusSelect.Select(p.StatusID)
	v.updateFocus()
}

func (v *ProjectsView) closeForm() {
	v.editing = false
	v.nameInput.Reset()
	v.startInput.Reset()
	v.endInput.Reset()
	v.statusSelect.Reset()
}

func (v *ProjectsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		return v, doSubmit("delete", func() (*api.Response, error) {
			return api.Delete(v.client, api.ResourceProjects, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ProjectsView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.submit()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 5
		v.updateFocus()
		return v, textinput.Blink

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 4) % 5
		v.updateFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 4 {
			return v, v.submit()
		}
		v.focusIdx++
		v.updateFocus()
		return v, textinput.Blink

	case msg.String() == "left", msg.String() == "right":
		if v.focusIdx == 1 {
			if msg.String() == "left" {
				v.statusSelect.Prev()
			} else {
				v.statusSelect.Next()
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.nameInput, cmd = v.nameInput.Update(msg)
	case 2:
		v.startInput, cmd = v.startInput.Update(msg)
	case 3:
		v.endInput, cmd = v.endInput.Update(msg)
	}
	return v, cmd
}

func (v *ProjectsView) updateFocus() {
	v.nameInput.Blur()
	v.startInput.Blur()
	v.endInput.Blur()
	switch v.focusIdx {
	case 0:
		v.nameInput.Focus()
	case 2:
		v.startInput.Focus()
	case 3:
		v.endInput.Focus()
	}
}

func (v *ProjectsView) submit() tea.Cmd {
	payload := projectPayload{
		Name:      strings.TrimSpace(v.nameInput.Value()),
		StatusID:  v.statusSelect.Value(),
		StartDate: strings.TrimSpace(v.startInput.Value()),
		EndDate:   strings.TrimSpace(v.endInput.Value()),
	}
	if payload.Name == "" || payload.StatusID == "" {
		return toastErr("Name and status are required")
	}

	if v.editingNew {
		return doSubmit("create", func() (*api.Response, error) {
			return api.Create(v.client, api.ResourceProjects, payload)
		})
	}
	id := v.selected.ID
	return doSubmit("update", func() (*api.Response, error) {
		return api.Update(v.client, api.ResourceProjects, id, payload)
	})
}

func (v *ProjectsView) View() string {
	s := v.styles

	if v.confirmingDelete {
		return renderDeleteConfirm(s, "Project", v.width, v.height)
	}

	if v.editing {
		return v.renderForm()
	}

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	help := s.Help.Render(
		s.HelpKey.Render("n") + " new • " +
			s.HelpKey.Render("e") + " edit • " +
			s.HelpKey.Render("d") + " delete • " +
			s.HelpKey.Render("/") + " search • " +
			s.HelpKey.Render("s") + " sort",
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Projects"),
		"",
		v.table.View(),
		help,
	)
}

func (v *ProjectsView) renderForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)

	formTitle := "New Project"
	if !v.editingNew {
		formTitle = "Edit Project"
	}

	fieldStyle := func(i int) lipgloss.Style {
		if v.focusIdx == i {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.focusIdx == 4 {
		btnStyle = s.ButtonFocused
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Name:",
		fieldStyle(0).Width(inputWidth).Render(v.nameInput.View()),
		"",
		"Status:",
		v.statusSelect.View(s, v.focusIdx == 1, inputWidth),
		"",
		"Start Date (YYYY-MM-DD):",
		fieldStyle(2).Width(inputWidth).Render(v.startInput.View()),
		"",
		"End Date (YYYY-MM-DD):",
		fieldStyle(3).Width(inputWidth).Render(v.endInput.View()),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: pick status • Ctrl+S: save • Esc: cancel"),
	)
	return renderModal(s, form, v.width, v.height)
}

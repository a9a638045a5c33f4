package views

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/api"
	"pmadmin/internal/models"
	"pmadmin/internal/session"
	"pmadmin/internal/ui/keys"
	"pmadmin/internal/ui/styles"
	"pmadmin/internal/ui/table"
)

// meetingPayload is the create/update body. The backend stores attendees as a
// JSON-encoded string column, so the list is marshalled before sending.
type meetingPayload struct {
	ProjectID string `json:"project_id"`
	Date      string `json:"date"`
	Attendees string `json:"attendees"`
	Notes     string `json:"notes"`
	CreatedBy string `json:"created_by,omitempty"`
}

// MeetingsView records and browses meeting minutes.
type MeetingsView struct {
	client  *api.Client
	session *session.Store
	styles  *styles.Styles
	keys    keys.KeyMap

	table    table.Model[models.Meeting]
	projects []models.Project
	loaded   bool

	editing        bool
	editingNew     bool
	selected       models.Meeting
	dateInput      textinput.Model
	attendeesInput textinput.Model
	notesInput     textarea.Model
	projectSelect  selector
	focusIdx       int // 0=project, 1=date, 2=attendees, 3=notes, 4=save

	confirmingDelete bool
	deleteTarget     models.Meeting

	viewing    bool
	viewTarget models.Meeting

	width  int
	height int
}

func NewMeetingsView(client *api.Client, sess *session.Store, pageSize int) *MeetingsView {
	v := &MeetingsView{
		client:  client,
		session: sess,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
	}

	v.dateInput = textinput.New()
	v.dateInput.Placeholder = "2026-02-10"
	v.dateInput.CharLimit = 10

	v.attendeesInput = textinput.New()
	v.attendeesInput.Placeholder = "Alice, Bob, Carol"
	v.attendeesInput.CharLimit = 255

	v.notesInput = textarea.New()
	v.notesInput.Placeholder = "Discussion points and decisions..."
	v.notesInput.SetHeight(5)
	v.notesInput.CharLimit = 2000

	v.projectSelect = newSelector("Select Project")

	columns := []table.Column[models.Meeting]{
		{Header: "Project", Render: func(m models.Meeting) string { return v.projectName(m.ProjectID) }},
		{Header: "Date", Key: func(m models.Meeting) any { return m.Date }, Sortable: true},
		{Header: "Attendees", Render: func(m models.Meeting) string { return strings.Join(m.Attendees, ", ") }},
		{Header: "Notes", Render: func(m models.Meeting) string { return truncate(m.Notes, 40) }},
	}
	v.table = table.New(columns, pageSize)
	return v
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func (v *MeetingsView) projectName(id string) string {
	for _, p := range v.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return "Unknown Project"
}

type meetingsLoadedMsg struct {
	meetings []models.Meeting
}

type meetingProjectsLoadedMsg struct {
	projects []models.Project
}

func (v *MeetingsView) Init() tea.Cmd {
	return tea.Batch(v.loadMeetings, v.loadProjects)
}

func (v *MeetingsView) loadMeetings() tea.Msg {
	meetings, err := api.List[models.Meeting](v.client, api.ResourceMeetingMinutes)
	if err != nil {
		return loadFailure(err)
	}
	return meetingsLoadedMsg{meetings: meetings}
}

func (v *MeetingsView) loadProjects() tea.Msg {
	projects, err := api.List[models.Project](v.client, api.ResourceProjects)
	if err != nil {
		return loadFailure(err)
	}
	return meetingProjectsLoadedMsg{projects: projects}
}

func (v *MeetingsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetWidth(styles.ContentWidth(msg.Width) - 4)
		return v, nil

	case meetingsLoadedMsg:
		v.table.SetRows(msg.meetings)
		v.loaded = true
		return v, nil

	case meetingProjectsLoadedMsg:
		v.projects = msg.projects
		opts := make([]option, len(msg.projects))
		for i, p := range msg.projects {
			opts[i] = option{id: p.ID, label: p.Name}
		}
		v.projectSelect.SetOptions(opts)
		return v, nil

	case submitMsg:
		if msg.failure != nil {
			return v, emit(msg.failure)
		}
		switch msg.op {
		case "create":
			v.closeForm()
			return v, tea.Batch(toast("Meeting recorded successfully"), v.loadMeetings)
		case "update":
			v.closeForm()
			return v, tea.Batch(toast("Meeting updated successfully"), v.loadMeetings)
		case "delete":
			return v, tea.Batch(toast("Meeting deleted successfully"), v.loadMeetings)
		}
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.viewing {
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				v.viewing = false
			}
			return v, nil
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *MeetingsView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.table.SearchFocused() {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.New):
		v.startForm(models.Meeting{}, true)
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

	case key.Matches(msg, v.keys.Enter):
		if row, ok := v.table.Selected(); ok {
			v.viewing = true
			v.viewTarget = row
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, tea.Batch(v.loadMeetings, v.loadProjects)
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *MeetingsView) startForm(m models.Meeting, isNew bool) {
	v.editing = true
	v.editingNew = isNew
	v.selected = m
	v.focusIdx = 0
	v.dateInput.SetValue(m.Date)
	v.attendeesInput.SetValue(strings.Join(m.Attendees, ", "))
	v.notesInput.SetValue(m.Notes)
	v.projectSelect.Select(m.ProjectID)
	v.updateFocus()
}

func (v *MeetingsView) closeForm() {
	v.editing = false
	v.dateInput.Reset()
	v.attendeesInput.Reset()
	v.notesInput.Reset()
	v.projectSelect.Reset()
}

func (v *MeetingsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		return v, doSubmit("delete", func() (*api.Response, error) {
			return api.Delete(v.client, api.ResourceMeetingMinutes, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *MeetingsView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
		// Enter inserts a newline while the notes textarea has focus.
		if v.focusIdx == 3 {
			break
		}
		if v.focusIdx == 4 {
			return v, v.submit()
		}
		v.focusIdx++
		v.updateFocus()
		return v, textinput.Blink

	case msg.String() == "left", msg.String() == "right":
		if v.focusIdx == 0 {
			if msg.String() == "left" {
				v.projectSelect.Prev()
			} else {
				v.projectSelect.Next()
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 1:
		v.dateInput, cmd = v.dateInput.Update(msg)
	case 2:
		v.attendeesInput, cmd = v.attendeesInput.Update(msg)
	case 3:
		v.notesInput, cmd = v.notesInput.Update(msg)
	}
	return v, cmd
}

func (v *MeetingsView) updateFocus() {
	v.dateInput.Blur()
	v.attendeesInput.Blur()
	v.notesInput.Blur()
	switch v.focusIdx {
	case 1:
		v.dateInput.Focus()
	case 2:
		v.attendeesInput.Focus()
	case 3:
		v.notesInput.Focus()
	}
}

// parseAttendees splits the comma-separated entry, dropping empty names.
func parseAttendees(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func (v *MeetingsView) submit() tea.Cmd {
	projectID := v.projectSelect.Value()
	date := strings.TrimSpace(v.dateInput.Value())
	if projectID == "" || date == "" {
		return toastErr("Project and date are required")
	}

	attendees := parseAttendees(v.attendeesInput.Value())
	encoded, err := json.Marshal(attendees)
	if err != nil {
		return toastErr(err.Error())
	}

	payload := meetingPayload{
		ProjectID: projectID,
		Date:      date,
		Attendees: string(encoded),
		Notes:     v.notesInput.Value(),
	}
	if u := v.session.User(); u != nil {
		payload.CreatedBy = u.ID
	}

	if v.editingNew {
		return doSubmit("create", func() (*api.Response, error) {
			return api.Create(v.client, api.ResourceMeetingMinutes, payload)
		})
	}
	id := v.selected.ID
	return doSubmit("update", func() (*api.Response, error) {
		return api.Update(v.client, api.ResourceMeetingMinutes, id, payload)
	})
}

func (v *MeetingsView) View() string {
	s := v.styles

	if v.confirmingDelete {
		return renderDeleteConfirm(s, "Meeting", v.width, v.height)
	}
	if v.viewing {
		return v.renderDetails()
	}
	if v.editing {
		return v.renderForm()
	}
	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	help := s.Help.Render(
		s.HelpKey.Render("n") + " new • " +
			s.HelpKey.Render("enter") + " details • " +
			s.HelpKey.Render("e") + " edit • " +
			s.HelpKey.Render("d") + " delete • " +
			s.HelpKey.Render("/") + " search",
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Meeting Minutes"),
		"",
		v.table.View(),
		help,
	)
}

func (v *MeetingsView) renderDetails() string {
	s := v.styles
	m := v.viewTarget

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(v.projectName(m.ProjectID)+" — "+m.Date),
		"",
		s.TitleMuted.Render("Attendees"),
		strings.Join(m.Attendees, ", "),
		"",
		s.TitleMuted.Render("Notes"),
		m.Notes,
		"",
		s.TitleMuted.Render("Esc: close"),
	)
	return renderModal(s, content, v.width, v.height)
}

func (v *MeetingsView) renderForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)

	formTitle := "New Meeting"
	if !v.editingNew {
		formTitle = "Edit Meeting"
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
		"Project:",
		v.projectSelect.View(s, v.focusIdx == 0, inputWidth),
		"",
		"Date (YYYY-MM-DD):",
		fieldStyle(1).Width(inputWidth).Render(v.dateInput.View()),
		"",
		"Attendees (comma separated):",
		fieldStyle(2).Width(inputWidth).Render(v.attendeesInput.View()),
		"",
		"Notes:",
		v.notesInput.View(),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: pick project • Ctrl+S: save • Esc: cancel"),
	)
	return renderModal(s, form, v.width, v.height)
}

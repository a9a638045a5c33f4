package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/api"
	"pmadmin/internal/ui/keys"
	"pmadmin/internal/ui/styles"
	"pmadmin/internal/ui/table"
)

// MasterView is the shared screen for the flat master-data lookups (roles,
// priorities, project statuses, task statuses). The lookups differ only in
// resource path, display name and payload field, so one parameterized view
// serves all four.
type MasterView[T table.Row] struct {
	client   *api.Client
	styles   *styles.Styles
	keys     keys.KeyMap
	title    string
	singular string
	resource string
	name     func(T) string
	payload  func(name string) any

	table  table.Model[T]
	loaded bool

	editing    bool
	editingNew bool
	selected   T
	nameInput  textinput.Model

	confirmingDelete bool
	deleteTarget     T

	width  int
	height int
}

// NewMasterView builds a lookup screen. name extracts the display name from
// a record; payload builds the create/update body from the entered name.
func NewMasterView[T table.Row](
	client *api.Client,
	title, singular, resource string,
	pageSize int,
	name func(T) string,
	payload func(string) any,
) *MasterView[T] {
	nameInput := textinput.New()
	nameInput.Placeholder = singular + " name"
	nameInput.CharLimit = 100

	columns := []table.Column[T]{
		{Header: "Name", Key: func(r T) any { return name(r) }, Sortable: true},
	}

	return &MasterView[T]{
		client:    client,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		title:     title,
		singular:  singular,
		resource:  resource,
		name:      name,
		payload:   payload,
		table:     table.New(columns, pageSize),
		nameInput: nameInput,
	}
}

type masterLoadedMsg[T table.Row] struct {
	rows []T
}

func (v *MasterView[T]) Init() tea.Cmd {
	return v.load
}

func (v *MasterView[T]) load() tea.Msg {
	rows, err := api.List[T](v.client, v.resource)
	if err != nil {
		return loadFailure(err)
	}
	return masterLoadedMsg[T]{rows: rows}
}

func (v *MasterView[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetWidth(styles.ContentWidth(msg.Width) - 4)
		return v, nil

	case masterLoadedMsg[T]:
		v.table.SetRows(msg.rows)
		v.loaded = true
		return v, nil

	case submitMsg:
		if msg.failure != nil {
			return v, emit(msg.failure)
		}
		switch msg.op {
		case "create", "update":
			v.editing = false
			v.nameInput.Reset()
			return v, tea.Batch(toast(v.singular+" saved successfully"), v.load)
		case "delete":
			return v, tea.Batch(toast(v.singular+" deleted successfully"), v.load)
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

func (v *MasterView[T]) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.table.SearchFocused() {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.New):
		v.editing = true
		v.editingNew = true
		v.nameInput.Reset()
		v.nameInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if row, ok := v.table.Selected(); ok {
			v.editing = true
			v.editingNew = false
			v.selected = row
			v.nameInput.SetValue(v.name(row))
			v.nameInput.Focus()
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
		return v, v.load
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *MasterView[T]) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.RowID()
		return v, doSubmit("delete", func() (*api.Response, error) {
			return api.Delete(v.client, v.resource, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *MasterView[T]) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s", key.Matches(msg, v.keys.Enter):
		name := strings.TrimSpace(v.nameInput.Value())
		if name == "" {
			return v, toastErr("Name is required")
		}
		if v.editingNew {
			return v, doSubmit("create", func() (*api.Response, error) {
				return api.Create(v.client, v.resource, v.payload(name))
			})
		}
		id := v.selected.RowID()
		return v, doSubmit("update", func() (*api.Response, error) {
			return api.Update(v.client, v.resource, id, v.payload(name))
		})
	}

	var cmd tea.Cmd
	v.nameInput, cmd = v.nameInput.Update(msg)
	return v, cmd
}

func (v *MasterView[T]) View() string {
	s := v.styles

	if v.confirmingDelete {
		return renderDeleteConfirm(s, v.singular, v.width, v.height)
	}

	if v.editing {
		formTitle := "New " + v.singular
		if !v.editingNew {
			formTitle = "Edit " + v.singular
		}
		inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)
		form := lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render(formTitle),
			"",
			"Name:",
			s.InputFocused.Width(inputWidth).Render(v.nameInput.View()),
			"",
			s.TitleMuted.Render("Enter: save • Esc: cancel"),
		)
		return renderModal(s, form, v.width, v.height)
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
		s.Title.Render(v.title),
		"",
		v.table.View(),
		help,
	)
}

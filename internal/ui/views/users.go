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

// userPayload is the create/update body. Password is omitted when left
// blank on edit, so the backend keeps the existing one.
type userPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	RoleID   string `json:"role_id"`
}

// UsersView administers user accounts.
type UsersView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	table  table.Model[models.User]
	roles  []models.Role
	loaded bool

	editing    bool
	editingNew bool
	selected   models.User
	nameInput  textinput.Model
	emailInput textinput.Model
	passInput  textinput.Model
	roleSelect selector
	focusIdx   int // 0=name, 1=email, 2=password, 3=role, 4=save

	confirmingDelete bool
	deleteTarget     models.User

	width  int
	height int
}

func NewUsersView(client *api.Client, pageSize int) *UsersView {
	v := &UsersView{
		client: client,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}

	v.nameInput = textinput.New()
	v.nameInput.Placeholder = "Full name"
	v.nameInput.CharLimit = 100

	v.emailInput = textinput.New()
	v.emailInput.Placeholder = "Email"
	v.emailInput.CharLimit = 100

	v.passInput = textinput.New()
	v.passInput.Placeholder = "Password (blank keeps current)"
	v.passInput.CharLimit = 100
	v.passInput.EchoMode = textinput.EchoPassword

	v.roleSelect = newSelector("Select Role")

	columns := []table.Column[models.User]{
		{Header: "Name", Key: func(u models.User) any { return u.Name }, Sortable: true},
		{Header: "Email", Key: func(u models.User) any { return u.Email }, Sortable: true},
		{Header: "Role", Render: func(u models.User) string { return v.roleName(u.RoleID) }},
	}
	v.table = table.New(columns, pageSize)
	return v
}

func (v *UsersView) roleName(id string) string {
	for _, r := range v.roles {
		if r.ID == id {
			return r.RoleName
		}
	}
	return "Unknown Role"
}

type usersLoadedMsg struct {
	users []models.User
}

type rolesLoadedMsg struct {
	roles []models.Role
}

func (v *UsersView) Init() tea.Cmd {
	return tea.Batch(v.loadUsers, v.loadRoles)
}

func (v *UsersView) loadUsers() tea.Msg {
	users, err := api.List[models.User](v.client, api.ResourceUsers)
	if err != nil {
		return loadFailure(err)
	}
	return usersLoadedMsg{users: users}
}

func (v *UsersView) loadRoles() tea.Msg {
	roles, err := api.List[models.Role](v.client, api.ResourceRoles)
	if err != nil {
		return loadFailure(err)
	}
	return rolesLoadedMsg{roles: roles}
}

func (v *UsersView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetWidth(styles.ContentWidth(msg.Width) - 4)
		return v, nil

	case usersLoadedMsg:
		v.table.SetRows(msg.users)
		v.loaded = true
		return v, nil

	case rolesLoadedMsg:
		v.roles = msg.roles
		opts := make([]option, len(msg.roles))
		for i, r := range msg.roles {
			opts[i] = option{id: r.ID, label: r.RoleName}
		}
		v.roleSelect.SetOptions(opts)
		return v, nil

	case submitMsg:
		if msg.failure != nil {
			return v, emit(msg.failure)
		}
		switch msg.op {
		case "create":
			v.closeForm()
			return v, tea.Batch(toast("User created successfully"), v.loadUsers)
		case "update":
			v.closeForm()
			return v, tea.Batch(toast("User updated successfully"), v.loadUsers)
		case "delete":
			return v, tea.Batch(toast("User deleted successfully"), v.loadUsers)
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

func (v *UsersView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.table.SearchFocused() {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.New):
		v.startForm(models.User{}, true)
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
		return v, tea.Batch(v.loadUsers, v.loadRoles)
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *UsersView) startForm(u models.User, isNew bool) {
	v.editing = true
	v.editingNew = isNew
	v.selected = u
	v.focusIdx = 0
	v.nameInput.SetValue(u.Name)
	v.emailInput.SetValue(u.Email)
	v.passInput.Reset()
	v.roleSelect.Select(u.RoleID)
	v.updateFocus()
}

func (v *UsersView) closeForm() {
	v.editing = false
	v.nameInput.Reset()
	v.emailInput.Reset()
	v.passInput.Reset()
	v.roleSelect.Reset()
}

func (v *UsersView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		return v, doSubmit("delete", func() (*api.Response, error) {
			return api.Delete(v.client, api.ResourceUsers, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *UsersView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
		if v.focusIdx == 3 {
			if msg.String() == "left" {
				v.roleSelect.Prev()
			} else {
				v.roleSelect.Next()
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.nameInput, cmd = v.nameInput.Update(msg)
	case 1:
		v.emailInput, cmd = v.emailInput.Update(msg)
	case 2:
		v.passInput, cmd = v.passInput.Update(msg)
	}
	return v, cmd
}

func (v *UsersView) updateFocus() {
	v.nameInput.Blur()
	v.emailInput.Blur()
	v.passInput.Blur()
	switch v.focusIdx {
	case 0:
		v.nameInput.Focus()
	case 1:
		v.emailInput.Focus()
	case 2:
		v.passInput.Focus()
	}
}

func (v *UsersView) submit() tea.Cmd {
	payload := userPayload{
		Name:   strings.TrimSpace(v.nameInput.Value()),
		Email:  strings.TrimSpace(v.emailInput.Value()),
		RoleID: v.roleSelect.Value(),
	}
	payload.Password = v.passInput.Value()

	if payload.Name == "" || payload.Email == "" || payload.RoleID == "" {
		return toastErr("Name, email and role are required")
	}

	if v.editingNew {
		if payload.Password == "" {
			return toastErr("Password is required")
		}
		return doSubmit("create", func() (*api.Response, error) {
			return api.Create(v.client, api.ResourceUsers, payload)
		})
	}

	id := v.selected.ID
	return doSubmit("update", func() (*api.Response, error) {
		return api.Update(v.client, api.ResourceUsers, id, payload)
	})
}

func (v *UsersView) View() string {
	s := v.styles

	if v.confirmingDelete {
		return renderDeleteConfirm(s, "User", v.width, v.height)
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
		s.Title.Render("Users"),
		"",
		v.table.View(),
		help,
	)
}

func (v *UsersView) renderForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)

	formTitle := "Add New User"
	if !v.editingNew {
		formTitle = "Edit User"
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
		"Email:",
		fieldStyle(1).Width(inputWidth).Render(v.emailInput.View()),
		"",
		"Password:",
		fieldStyle(2).Width(inputWidth).Render(v.passInput.View()),
		"",
		"Role:",
		v.roleSelect.View(s, v.focusIdx == 3, inputWidth),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: pick role • Ctrl+S: save • Esc: cancel"),
	)
	return renderModal(s, form, v.width, v.height)
}

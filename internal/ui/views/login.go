package views

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/api"
	"pmadmin/internal/models"
	"pmadmin/internal/session"
	"pmadmin/internal/ui/keys"
	"pmadmin/internal/ui/styles"
)

// LoginView is the guest-only credential form.
type LoginView struct {
	client  *api.Client
	session *session.Store
	styles  *styles.Styles
	keys    keys.KeyMap

	email    textinput.Model
	password textinput.Model
	focusIdx int // 0=email, 1=password, 2=submit

	submitting bool
	width      int
	height     int
}

// NewLoginView creates the login screen.
func NewLoginView(client *api.Client, sess *session.Store) *LoginView {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 100
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	return &LoginView{
		client:   client,
		session:  sess,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		email:    email,
		password: password,
	}
}

func (v *LoginView) Init() tea.Cmd {
	v.submitting = false
	v.password.Reset()
	v.focusIdx = 0
	v.updateFocus()
	return textinput.Blink
}

type loginResultMsg struct {
	login   *models.LoginResponse
	failure tea.Msg
}

func (v *LoginView) submit() tea.Cmd {
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if email == "" || password == "" {
		return toastErr("Email and password are required")
	}

	v.submitting = true
	return func() tea.Msg {
		login, resp, err := api.Login(v.client, email, password)
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return loginResultMsg{failure: ToastMsg{Text: "Invalid credentials", Err: true}}
			}
			return loginResultMsg{failure: ToastMsg{Text: err.Error(), Err: true}}
		}
		if resp.Status != http.StatusOK {
			return loginResultMsg{failure: ToastMsg{Text: api.StatusMessage(resp), Err: true}}
		}
		return loginResultMsg{login: login}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginResultMsg:
		v.submitting = false
		if msg.login == nil {
			return v, emit(msg.failure)
		}
		if err := v.session.Login(*msg.login); err != nil {
			return v, toastErr(err.Error())
		}
		return v, tea.Batch(
			emit(LoggedInMsg{}),
			toast("Logged in successfully"),
		)

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case msg.String() == "ctrl+s":
			return v, v.submit()

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 3
			v.updateFocus()
			return v, textinput.Blink

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 2) % 3
			v.updateFocus()
			return v, textinput.Blink

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < 2 {
				v.focusIdx++
				v.updateFocus()
				return v, textinput.Blink
			}
			return v, v.submit()
		}

		var cmd tea.Cmd
		switch v.focusIdx {
		case 0:
			v.email, cmd = v.email.Update(msg)
		case 1:
			v.password, cmd = v.password.Update(msg)
		}
		return v, cmd
	}

	return v, nil
}

func (v *LoginView) updateFocus() {
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.email.Focus()
	case 1:
		v.password.Focus()
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-10, 20, 40)

	emailStyle := s.Input
	passwordStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		emailStyle = s.InputFocused
	case 1:
		passwordStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	btnLabel := " Sign In "
	if v.submitting {
		btnLabel = " Signing in... "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Project Management System"),
		"",
		"Email:",
		emailStyle.Width(inputWidth).Render(v.email.View()),
		"",
		"Password:",
		passwordStyle.Width(inputWidth).Render(v.password.View()),
		"",
		btnStyle.Render(btnLabel),
		"",
		s.TitleMuted.Render("Tab: next • Enter: sign in"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

package views

import (
	"errors"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/api"
	"pmadmin/internal/ui/styles"
)

// ToastMsg asks the app shell to show a transient acknowledgment.
type ToastMsg struct {
	Text string
	Err  bool
}

// UnauthorizedMsg signals a 401; the gateway client has already logged the
// session out, the app only needs to route back to the login screen.
type UnauthorizedMsg struct{}

// LoggedInMsg signals a successful login.
type LoggedInMsg struct{}

// NavigateMsg asks the app shell to switch screens.
type NavigateMsg struct {
	Route string
}

func toast(text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Text: text} }
}

func toastErr(text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Text: text, Err: true} }
}

// loadFailure converts a fetch error into the message the app shell handles.
func loadFailure(err error) tea.Msg {
	if errors.Is(err, api.ErrUnauthorized) {
		return UnauthorizedMsg{}
	}
	return ToastMsg{Text: err.Error(), Err: true}
}

// submitMsg is the outcome of one mutation call. The op tag tells the view
// which modal to close. On failure the modal stays open and the user's input
// stays intact; failure carries the toast (or unauthorized) message.
type submitMsg struct {
	op      string
	ok      bool
	failure tea.Msg
}

// doSubmit runs a mutation and folds its response into a submitMsg.
// 200 and 201 are the success statuses; everything else is a status-coded
// failure the user sees as a toast.
func doSubmit(op string, call func() (*api.Response, error)) tea.Cmd {
	return func() tea.Msg {
		resp, err := call()
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return UnauthorizedMsg{}
			}
			return submitMsg{op: op, failure: ToastMsg{Text: err.Error(), Err: true}}
		}
		if resp.Status == http.StatusOK || resp.Status == http.StatusCreated {
			return submitMsg{op: op, ok: true}
		}
		return submitMsg{op: op, failure: ToastMsg{Text: api.StatusMessage(resp), Err: true}}
	}
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// option is one entry of a select input.
type option struct {
	id    string
	label string
}

// selector is a left/right cycling select input for reference fields.
type selector struct {
	options     []option
	idx         int // 0 means "nothing chosen"; options start at 1
	placeholder string
}

func newSelector(placeholder string) selector {
	return selector{placeholder: placeholder}
}

// SetOptions replaces the candidate list, keeping the current choice when it
// still exists.
func (s *selector) SetOptions(opts []option) {
	current := s.Value()
	s.options = opts
	s.idx = 0
	if current != "" {
		s.Select(current)
	}
}

// Select picks the option with the given id; unknown ids clear the choice.
func (s *selector) Select(id string) {
	s.idx = 0
	for i, o := range s.options {
		if o.id == id {
			s.idx = i + 1
			return
		}
	}
}

// Value returns the chosen id, empty when nothing is chosen.
func (s *selector) Value() string {
	if s.idx == 0 || s.idx > len(s.options) {
		return ""
	}
	return s.options[s.idx-1].id
}

// Label returns the display text for the current choice.
func (s *selector) Label() string {
	if s.idx == 0 || s.idx > len(s.options) {
		return s.placeholder
	}
	return s.options[s.idx-1].label
}

func (s *selector) Next() {
	if s.idx < len(s.options) {
		s.idx++
	}
}

func (s *selector) Prev() {
	if s.idx > 0 {
		s.idx--
	}
}

// Reset clears the choice.
func (s *selector) Reset() {
	s.idx = 0
}

// View renders the selector with cycle arrows.
func (s *selector) View(st *styles.Styles, focused bool, width int) string {
	style := st.Input
	if focused {
		style = st.InputFocused
	}
	label := s.Label()
	if s.Value() == "" {
		label = st.TitleMuted.Render(label)
	}
	return style.Width(width).Render("◂ " + label + " ▸")
}

// renderModal centers a bordered form within the content area.
func renderModal(st *styles.Styles, content string, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		st.Modal.Render(content),
	)
	return styles.CenterView(centered, width, height)
}

// renderDeleteConfirm is the shared y/n confirmation overlay.
func renderDeleteConfirm(st *styles.Styles, what string, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		st.Title.Foreground(styles.Current.Error).Render("Delete "+what+"?"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			st.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			st.Button.Render(" N - No "),
		),
	)
	contentWidth := styles.ContentWidth(width)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

package views

import (
	"strconv"
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

// UnreadCountMsg tells the app shell how many notifications are unread so it
// can badge the sidebar entry.
type UnreadCountMsg struct {
	Count int
}

type notificationPayload struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NotificationsView lists notifications. Opening one marks it read
// optimistically: the local row flips before the server confirms, and a
// rejected mark-read call does not flip it back.
type NotificationsView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	table  table.Model[models.Notification]
	loaded bool

	editing      bool
	messageInput textinput.Model

	confirmingDelete bool
	deleteTarget     models.Notification

	viewing    bool
	viewTarget models.Notification

	width  int
	height int
}

func NewNotificationsView(client *api.Client, pageSize int) *NotificationsView {
	v := &NotificationsView{
		client: client,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}

	v.messageInput = textinput.New()
	v.messageInput.Placeholder = "Notification message"
	v.messageInput.CharLimit = 255

	columns := []table.Column[models.Notification]{
		{Header: "Message", Key: func(n models.Notification) any { return n.Message }, Sortable: true},
		{
			Header: "Status",
			Render: func(n models.Notification) string {
				if n.Status == models.NotificationUnread {
					return v.styles.Badge.Render("unread")
				}
				return "read"
			},
		},
		{Header: "Created", Key: func(n models.Notification) any { return n.CreatedAt }, Sortable: true},
	}
	v.table = table.New(columns, pageSize)
	return v
}

type notificationsLoadedMsg struct {
	notifications []models.Notification
}

func (v *NotificationsView) Init() tea.Cmd {
	return v.load
}

func (v *NotificationsView) load() tea.Msg {
	notifications, err := api.List[models.Notification](v.client, api.ResourceNotifications)
	if err != nil {
		return loadFailure(err)
	}
	return notificationsLoadedMsg{notifications: notifications}
}

func unreadCount(rows []models.Notification) int {
	count := 0
	for _, n := range rows {
		if n.Status == models.NotificationUnread {
			count++
		}
	}
	return count
}

func (v *NotificationsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetWidth(styles.ContentWidth(msg.Width) - 4)
		return v, nil

	case notificationsLoadedMsg:
		v.table.SetRows(msg.notifications)
		v.loaded = true
		return v, emit(UnreadCountMsg{Count: unreadCount(msg.notifications)})

	case submitMsg:
		if msg.failure != nil {
			return v, emit(msg.failure)
		}
		switch msg.op {
		case "create":
			v.editing = false
			v.messageInput.Reset()
			return v, tea.Batch(toast("Notification created successfully"), v.load)
		case "delete":
			return v, tea.Batch(toast("Notification deleted successfully"), v.load)
		case "mark-read":
			// The row already shows read; nothing more to do.
			return v, nil
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

func (v *NotificationsView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.table.SearchFocused() {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.New):
		v.editing = true
		v.messageInput.Reset()
		v.messageInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if row, ok := v.table.Selected(); ok {
			v.confirmingDelete = true
			v.deleteTarget = row
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if row, ok := v.table.Selected(); ok {
			return v, v.open(row)
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.load
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

// open shows the details modal and marks the notification read. The local
// flip happens immediately; the server call follows and its verdict is not
// reconciled back into the row.
func (v *NotificationsView) open(n models.Notification) tea.Cmd {
	v.viewing = true
	v.viewTarget = n

	if n.Status != models.NotificationUnread {
		return nil
	}

	rows := v.table.Rows()
	updated := make([]models.Notification, len(rows))
	copy(updated, rows)
	for i := range updated {
		if updated[i].ID == n.ID {
			updated[i].Status = models.NotificationRead
		}
	}
	v.table.SetRows(updated)

	id := n.ID
	return tea.Batch(
		emit(UnreadCountMsg{Count: unreadCount(updated)}),
		doSubmit("mark-read", func() (*api.Response, error) {
			return api.MarkNotificationRead(v.client, id)
		}),
	)
}

func (v *NotificationsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		return v, doSubmit("delete", func() (*api.Response, error) {
			return api.Delete(v.client, api.ResourceNotifications, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *NotificationsView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s", key.Matches(msg, v.keys.Enter):
		message := strings.TrimSpace(v.messageInput.Value())
		if message == "" {
			return v, toastErr("Message is required")
		}
		payload := notificationPayload{Message: message, Status: models.NotificationUnread}
		return v, doSubmit("create", func() (*api.Response, error) {
			return api.Create(v.client, api.ResourceNotifications, payload)
		})
	}

	var cmd tea.Cmd
	v.messageInput, cmd = v.messageInput.Update(msg)
	return v, cmd
}

func (v *NotificationsView) View() string {
	s := v.styles

	if v.confirmingDelete {
		return renderDeleteConfirm(s, "Notification", v.width, v.height)
	}
	if v.viewing {
		content := lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("Notification"),
			"",
			v.viewTarget.Message,
			"",
			s.TitleMuted.Render(v.viewTarget.CreatedAt),
			"",
			s.TitleMuted.Render("Esc: close"),
		)
		return renderModal(s, content, v.width, v.height)
	}
	if v.editing {
		inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)
		form := lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("New Notification"),
			"",
			"Message:",
			s.InputFocused.Width(inputWidth).Render(v.messageInput.View()),
			"",
			s.TitleMuted.Render("Enter: save • Esc: cancel"),
		)
		return renderModal(s, form, v.width, v.height)
	}
	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	title := "Notifications"
	if n := unreadCount(v.table.Rows()); n > 0 {
		title = lipgloss.JoinHorizontal(lipgloss.Top,
			s.Title.Render(title),
			" ",
			s.Badge.Render(strconv.Itoa(n)+" unread"),
		)
	} else {
		title = s.Title.Render(title)
	}

	help := s.Help.Render(
		s.HelpKey.Render("n") + " new • " +
			s.HelpKey.Render("enter") + " open • " +
			s.HelpKey.Render("d") + " delete • " +
			s.HelpKey.Render("/") + " search",
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		v.table.View(),
		help,
	)
}

package ui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/api"
	"pmadmin/internal/config"
	"pmadmin/internal/models"
	"pmadmin/internal/session"
	"pmadmin/internal/ui/keys"
	"pmadmin/internal/ui/styles"
	"pmadmin/internal/ui/views"
)

// Screen routes.
const (
	RouteLogin           = "login"
	RouteDashboard       = "dashboard"
	RouteProjects        = "projects"
	RouteTasks           = "tasks"
	RouteUsers           = "users"
	RouteDocuments       = "documents"
	RouteMeetings        = "meetings"
	RouteNotifications   = "notifications"
	RouteReports         = "reports"
	RouteRoles           = "roles"
	RouteProjectStatuses = "project-statuses"
	RouteTaskStatuses    = "task-statuses"
	RoutePriorities      = "priorities"
)

// GuardRoute enforces the access rules: protected screens require both the
// authenticated flag and a token, and a session holding both is sent from
// login to the dashboard instead. A flag without a token (a tampered or
// stale storage blob) is treated as logged out.
func GuardRoute(route, token string, authenticated bool) string {
	authed := authenticated && token != ""
	if route == RouteLogin {
		if authed {
			return RouteDashboard
		}
		return RouteLogin
	}
	if !authed {
		return RouteLogin
	}
	return route
}

// navEntry is one sidebar row.
type navEntry struct {
	route string
	label string
}

var navEntries = []navEntry{
	{RouteDashboard, "Dashboard"},
	{RouteProjects, "Projects"},
	{RouteTasks, "Tasks"},
	{RouteUsers, "Users"},
	{RouteDocuments, "Documents"},
	{RouteMeetings, "Meetings"},
	{RouteNotifications, "Notifications"},
	{RouteReports, "Reports"},
	{RouteRoles, "Roles"},
	{RouteProjectStatuses, "Project Statuses"},
	{RouteTaskStatuses, "Task Statuses"},
	{RoutePriorities, "Priorities"},
	{"logout", "Logout"},
}

type toastExpiredMsg struct {
	seq int
}

type loggedOutMsg struct{}

// App is the root model: it owns the session, routes between screens, hosts
// the sidebar and shows transient toasts.
type App struct {
	client  *api.Client
	session *session.Store
	styles  *styles.Styles
	keys    keys.KeyMap

	route string
	views map[string]tea.Model

	sidebarFocus  bool
	sidebarCursor int
	unread        int

	toastText string
	toastErr  bool
	toastSeq  int

	width  int
	height int
}

// NewApp wires every screen and picks the starting route from the persisted
// session.
func NewApp(client *api.Client, sess *session.Store, cfg config.Config) *App {
	pageSize := cfg.PageSize

	masterRoles := views.NewMasterView[models.Role](
		client, "Roles", "Role", api.ResourceRoles, pageSize,
		func(r models.Role) string { return r.RoleName },
		func(name string) any { return map[string]string{"role_name": name} },
	)
	masterProjectStatuses := views.NewMasterView[models.ProjectStatus](
		client, "Project Statuses", "Project Status", api.ResourceProjectStatuses, pageSize,
		func(s models.ProjectStatus) string { return s.StatusName },
		func(name string) any { return map[string]string{"status_name": name} },
	)
	masterTaskStatuses := views.NewMasterView[models.TaskStatus](
		client, "Task Statuses", "Task Status", api.ResourceTaskStatuses, pageSize,
		func(s models.TaskStatus) string { return s.StatusName },
		func(name string) any { return map[string]string{"status_name": name} },
	)
	masterPriorities := views.NewMasterView[models.Priority](
		client, "Priorities", "Priority", api.ResourcePriorities, pageSize,
		func(p models.Priority) string { return p.PriorityName },
		func(name string) any { return map[string]string{"priority_name": name} },
	)

	app := &App{
		client:  client,
		session: sess,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		views: map[string]tea.Model{
			RouteLogin:           views.NewLoginView(client, sess),
			RouteDashboard:       views.NewDashboardView(sess),
			RouteProjects:        views.NewProjectsView(client, pageSize),
			RouteTasks:           views.NewTasksView(client, pageSize),
			RouteUsers:           views.NewUsersView(client, pageSize),
			RouteDocuments:       views.NewDocumentsView(client, sess, cfg.DownloadDir, pageSize),
			RouteMeetings:        views.NewMeetingsView(client, sess, pageSize),
			RouteNotifications:   views.NewNotificationsView(client, pageSize),
			RouteReports:         views.NewReportsView(client, cfg.DownloadDir, pageSize),
			RouteRoles:           masterRoles,
			RouteProjectStatuses: masterProjectStatuses,
			RouteTaskStatuses:    masterTaskStatuses,
			RoutePriorities:      masterPriorities,
		},
	}
	app.route = GuardRoute(RouteDashboard, sess.Token(), sess.IsAuthenticated())
	return app
}

func (a *App) Init() tea.Cmd {
	return a.views[a.route].Init()
}

// navigate switches screens, re-running the target's Init so its data is
// fetched fresh on every entry.
func (a *App) navigate(route string) tea.Cmd {
	route = GuardRoute(route, a.session.Token(), a.session.IsAuthenticated())
	a.route = route
	a.sidebarFocus = false

	view := a.views[route]
	cmds := []tea.Cmd{view.Init()}
	if a.width > 0 {
		updated, cmd := view.Update(tea.WindowSizeMsg{Width: a.contentWidth(), Height: a.height})
		a.views[route] = updated
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// contentWidth is the width left for the active view beside the sidebar.
func (a *App) contentWidth() int {
	if a.route != RouteLogin && a.session.SidebarOpen() {
		return a.width - sidebarWidth
	}
	return a.width
}

const sidebarWidth = 22

func (a *App) showToast(text string, isErr bool) tea.Cmd {
	a.toastText = text
	a.toastErr = isErr
	a.toastSeq++
	seq := a.toastSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// logout tells the backend, then clears the local session either way.
func (a *App) logout() tea.Cmd {
	client := a.client
	sess := a.session
	return func() tea.Msg {
		_ = api.Logout(client)
		_ = sess.Logout()
		return loggedOutMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmds []tea.Cmd
		for route, view := range a.views {
			w := msg.Width
			if route != RouteLogin {
				w = msg.Width - sidebarWidth
			}
			updated, cmd := view.Update(tea.WindowSizeMsg{Width: w, Height: msg.Height})
			a.views[route] = updated
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case views.ToastMsg:
		return a, a.showToast(msg.Text, msg.Err)

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toastText = ""
		}
		return a, nil

	case views.UnauthorizedMsg:
		a.unread = 0
		cmd := a.navigate(RouteLogin)
		return a, tea.Batch(cmd, a.showToast("Session expired, please sign in again", true))

	case views.LoggedInMsg:
		return a, a.navigate(RouteDashboard)

	case loggedOutMsg:
		a.unread = 0
		cmd := a.navigate(RouteLogin)
		return a, tea.Batch(cmd, a.showToast("Logged out", false))

	case views.NavigateMsg:
		return a, a.navigate(msg.Route)

	case views.UnreadCountMsg:
		a.unread = msg.Count
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.route != RouteLogin && key.Matches(msg, a.keys.Sidebar) {
			if !a.session.SidebarOpen() {
				_ = a.session.ToggleSidebar()
			}
			a.sidebarFocus = !a.sidebarFocus
			return a, nil
		}
		if a.sidebarFocus {
			return a.updateSidebar(msg)
		}
	}

	view, cmd := a.views[a.route].Update(msg)
	a.views[a.route] = view
	return a, cmd
}

func (a *App) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.sidebarFocus = false
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.sidebarCursor > 0 {
			a.sidebarCursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.sidebarCursor < len(navEntries)-1 {
			a.sidebarCursor++
		}
		return a, nil

	case msg.String() == "h":
		// Collapse and remember the preference.
		if a.session.SidebarOpen() {
			_ = a.session.ToggleSidebar()
		}
		a.sidebarFocus = false
		return a, nil

	case key.Matches(msg, a.keys.Enter):
		entry := navEntries[a.sidebarCursor]
		if entry.route == "logout" {
			return a, a.logout()
		}
		return a, a.navigate(entry.route)
	}
	return a, nil
}

func (a *App) View() string {
	content := a.views[a.route].View()

	if a.route != RouteLogin && a.session.SidebarOpen() {
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			a.renderSidebar(),
			lipgloss.NewStyle().Padding(1, 2).Render(content),
		)
	}

	if a.toastText != "" {
		style := a.styles.ToastSuccess
		if a.toastErr {
			style = a.styles.ToastError
		}
		content = lipgloss.JoinVertical(lipgloss.Left,
			style.Render(a.toastText),
			content,
		)
	}
	return content
}

func (a *App) renderSidebar() string {
	s := a.styles

	rows := make([]string, 0, len(navEntries)+2)
	rows = append(rows, s.Title.Render("PM Admin"), "")
	for i, entry := range navEntries {
		label := entry.label
		if entry.route == RouteNotifications && a.unread > 0 {
			label += " (" + strconv.Itoa(a.unread) + ")"
		}
		switch {
		case a.sidebarFocus && i == a.sidebarCursor:
			label = s.SidebarSelected.Render("> " + label)
		case entry.route == a.route:
			label = s.SidebarSelected.Render("  " + label)
		default:
			label = s.SidebarItem.Render("  " + label)
		}
		rows = append(rows, label)
	}

	return s.Sidebar.
		Width(sidebarWidth - 2).
		Height(a.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

package views

import (
	"net/http"
	"strings"
	"time"

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

type taskPayload struct {
	Name       string `json:"name"`
	ProjectID  string `json:"project_id"`
	StatusID   string `json:"status_id"`
	PriorityID string `json:"priority_id"`
	DueDate    string `json:"due_date"`
}

type assignmentPayload struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
}

// TasksView lists and edits tasks, and manages who is assigned to them.
// Besides the usual CRUD modals it has an assignments listing mode and a
// per-task assignee checklist.
type TasksView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	table       table.Model[models.Task]
	assignTable table.Model[models.TaskAssignment]
	projects    []models.Project
	statuses    []models.TaskStatus
	priorities  []models.Priority
	users       []models.User
	assignments []models.TaskAssignment
	loaded      bool

	showingAssignments bool

	editing        bool
	editingNew     bool
	selected       models.Task
	nameInput      textinput.Model
	dueInput       textinput.Model
	projectSelect  selector
	statusSelect   selector
	prioritySelect selector
	focusIdx       int // 0=name, 1=project, 2=status, 3=priority, 4=due, 5=save

	managing     bool
	manageTask   models.Task
	checkedUsers map[string]bool
	manageCursor int
	manageBusy   bool

	assigning  bool
	assignTask models.Task
	userSelect selector

	confirmingDelete bool
	deleteTarget     models.Task
	deleteAssignment models.TaskAssignment

	width  int
	height int
}

func NewTasksView(client *api.Client, pageSize int) *TasksView {
	v := &TasksView{
		client: client,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}

	v.nameInput = textinput.New()
	v.nameInput.Placeholder = "Task name"
	v.nameInput.CharLimit = 100

	v.dueInput = textinput.New()
	v.dueInput.Placeholder = "2026-03-15"
	v.dueInput.CharLimit = 10

	v.projectSelect = newSelector("Select Project")
	v.statusSelect = newSelector("Select Status")
	v.prioritySelect = newSelector("Select Priority")
	v.userSelect = newSelector("Select User")

	columns := []table.Column[models.Task]{
		{Header: "Name", Key: func(t models.Task) any { return t.Name }, Sortable: true},
		{Header: "Project", Render: func(t models.Task) string { return v.projectName(t.ProjectID) }},
		{Header: "Status", Render: func(t models.Task) string { return v.statusName(t.StatusID) }},
		{Header: "Priority", Render: func(t models.Task) string { return v.priorityName(t.PriorityID) }},
		{
			Header:   "Due Date",
			Key:      func(t models.Task) any { return t.DueDate },
			Render:   func(t models.Task) string { return formatDueDate(t.DueDate) },
			Sortable: true,
		},
	}
	v.table = table.New(columns, pageSize)

	assignColumns := []table.Column[models.TaskAssignment]{
		{Header: "Task", Render: func(a models.TaskAssignment) string { return v.taskName(a.TaskID) }},
		{Header: "Assigned To", Render: func(a models.TaskAssignment) string { return v.userName(a.UserID) }},
	}
	v.assignTable = table.New(assignColumns, pageSize)
	return v
}

// formatDueDate renders an ISO date in a friendlier form, passing through
// anything it cannot parse.
func formatDueDate(raw string) string {
	if raw == "" {
		return "-"
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return raw
	}
	return t.Format("Jan 2, 2006")
}

func (v *TasksView) projectName(id string) string {
	for _, p := range v.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return "Unknown Project"
}

func (v *TasksView) statusName(id string) string {
	for _, s := range v.statuses {
		if s.ID == id {
			return s.StatusName
		}
	}
	return "Unknown Status"
}

func (v *TasksView) priorityName(id string) string {
	for _, p := range v.priorities {
		if p.ID == id {
			return p.PriorityName
		}
	}
	return "Unknown Priority"
}

func (v *TasksView) taskName(id string) string {
	for _, t := range v.table.Rows() {
		if t.ID == id {
			return t.Name
		}
	}
	return "Unknown Task"
}

func (v *TasksView) userName(id string) string {
	for _, u := range v.users {
		if u.ID == id {
			return u.Name
		}
	}
	return "Unknown User"
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

type taskRefsLoadedMsg struct {
	projects   []models.Project
	statuses   []models.TaskStatus
	priorities []models.Priority
	users      []models.User
}

type assignmentsLoadedMsg struct {
	assignments []models.TaskAssignment
}

func (v *TasksView) Init() tea.Cmd {
	return tea.Batch(v.loadTasks, v.loadRefs, v.loadAssignments)
}

func (v *TasksView) loadTasks() tea.Msg {
	tasks, err := api.List[models.Task](v.client, api.ResourceTasks)
	if err != nil {
		return loadFailure(err)
	}
	return tasksLoadedMsg{tasks: tasks}
}

func (v *TasksView) loadRefs() tea.Msg {
	projects, err := api.List[models.Project](v.client, api.ResourceProjects)
	if err != nil {
		return loadFailure(err)
	}
	statuses, err := api.List[models.TaskStatus](v.client, api.ResourceTaskStatuses)
	if err != nil {
		return loadFailure(err)
	}
	priorities, err := api.List[models.Priority](v.client, api.ResourcePriorities)
	if err != nil {
		return loadFailure(err)
	}
	users, err := api.List[models.User](v.client, api.ResourceUsers)
	if err != nil {
		return loadFailure(err)
	}
	return taskRefsLoadedMsg{
		projects:   projects,
		statuses:   statuses,
		priorities: priorities,
		users:      users,
	}
}

func (v *TasksView) loadAssignments() tea.Msg {
	assignments, err := api.List[models.TaskAssignment](v.client, api.ResourceTaskAssignees)
	if err != nil {
		return loadFailure(err)
	}
	return assignmentsLoadedMsg{assignments: assignments}
}

func (v *TasksView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetWidth(styles.ContentWidth(msg.Width) - 4)
		v.assignTable.SetWidth(styles.ContentWidth(msg.Width) - 4)
		return v, nil

	case tasksLoadedMsg:
		v.table.SetRows(msg.tasks)
		v.loaded = true
		return v, nil

	case taskRefsLoadedMsg:
		v.projects = msg.projects
		v.statuses = msg.statuses
		v.priorities = msg.priorities
		v.users = msg.users

		opts := make([]option, len(msg.projects))
		for i, p := range msg.projects {
			opts[i] = option{id: p.ID, label: p.Name}
		}
		v.projectSelect.SetOptions(opts)

		opts = make([]option, len(msg.statuses))
		for i, s := range msg.statuses {
			opts[i] = option{id: s.ID, label: s.StatusName}
		}
		v.statusSelect.SetOptions(opts)

		opts = make([]option, len(msg.priorities))
		for i, p := range msg.priorities {
			opts[i] = option{id: p.ID, label: p.PriorityName}
		}
		v.prioritySelect.SetOptions(opts)

		opts = make([]option, len(msg.users))
		for i, u := range msg.users {
			opts[i] = option{id: u.ID, label: u.Name}
		}
		v.userSelect.SetOptions(opts)
		return v, nil

	case assignmentsLoadedMsg:
		v.assignments = msg.assignments
		v.assignTable.SetRows(msg.assignments)
		return v, nil

	case submitMsg:
		return v.handleSubmit(msg)

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.managing {
			return v.updateManaging(msg)
		}
		if v.assigning {
			return v.updateAssigning(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		if v.showingAssignments {
			return v.updateAssignmentsList(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TasksView) handleSubmit(msg submitMsg) (tea.Model, tea.Cmd) {
	if msg.failure != nil {
		v.manageBusy = false
		return v, emit(msg.failure)
	}
	switch msg.op {
	case "create":
		v.closeForm()
		return v, tea.Batch(toast("Task created successfully"), v.loadTasks)
	case "update":
		v.closeForm()
		return v, tea.Batch(toast("Task updated successfully"), v.loadTasks)
	case "delete":
		return v, tea.Batch(toast("Task deleted successfully"), v.loadTasks, v.loadAssignments)
	case "assign":
		v.assigning = false
		v.userSelect.Reset()
		return v, tea.Batch(toast("Task assigned successfully"), v.loadAssignments)
	case "unassign":
		return v, tea.Batch(toast("Assignment removed"), v.loadAssignments)
	case "assignees":
		v.managing = false
		v.manageBusy = false
		return v, tea.Batch(toast("Assignees updated successfully"), v.loadAssignments)
	}
	return v, nil
}

func (v *TasksView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.table.SearchFocused() {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.New):
		v.startForm(models.Task{}, true)
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
			v.deleteAssignment = models.TaskAssignment{}
		}
		return v, nil

	case key.Matches(msg, v.keys.Manage):
		if row, ok := v.table.Selected(); ok {
			v.startManage(row)
		}
		return v, nil

	case msg.String() == "a":
		if row, ok := v.table.Selected(); ok {
			v.assigning = true
			v.assignTask = row
			v.userSelect.Reset()
		}
		return v, nil

	case msg.String() == "v":
		v.showingAssignments = true
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, tea.Batch(v.loadTasks, v.loadRefs, v.loadAssignments)
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *TasksView) updateAssignmentsList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.assignTable.SearchFocused() {
		var cmd tea.Cmd
		v.assignTable, cmd = v.assignTable.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Back), msg.String() == "v":
		v.showingAssignments = false
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if row, ok := v.assignTable.Selected(); ok {
			v.confirmingDelete = true
			v.deleteAssignment = row
			v.deleteTarget = models.Task{}
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadAssignments
	}

	var cmd tea.Cmd
	v.assignTable, cmd = v.assignTable.Update(msg)
	return v, cmd
}

func (v *TasksView) startForm(t models.Task, isNew bool) {
	v.editing = true
	v.editingNew = isNew
	v.selected = t
	v.focusIdx = 0
	v.nameInput.SetValue(t.Name)
	v.dueInput.SetValue(t.DueDate)
	v.projectSelect.Select(t.ProjectID)
	v.statusSelect.Select(t.StatusID)
	v.prioritySelect.Select(t.PriorityID)
	v.updateFocus()
}

func (v *TasksView) closeForm() {
	v.editing = false
	v.nameInput.Reset()
	v.dueInput.Reset()
	v.projectSelect.Reset()
	v.statusSelect.Reset()
	v.prioritySelect.Reset()
}

func (v *TasksView) startManage(t models.Task) {
	v.managing = true
	v.manageTask = t
	v.manageCursor = 0
	v.manageBusy = false
	v.checkedUsers = make(map[string]bool)
	for _, a := range v.assignments {
		if a.TaskID == t.ID {
			v.checkedUsers[a.UserID] = true
		}
	}
}

func (v *TasksView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if v.deleteAssignment.ID != "" {
			id := v.deleteAssignment.ID
			return v, doSubmit("unassign", func() (*api.Response, error) {
				return api.Delete(v.client, api.ResourceTaskAssignees, id)
			})
		}
		id := v.deleteTarget.ID
		return v, doSubmit("delete", func() (*api.Response, error) {
			return api.Delete(v.client, api.ResourceTasks, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TasksView) updateManaging(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.manageBusy {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.managing = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.manageCursor > 0 {
			v.manageCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.manageCursor < len(v.users)-1 {
			v.manageCursor++
		}
		return v, nil

	case msg.String() == " ", key.Matches(msg, v.keys.Enter):
		if v.manageCursor < len(v.users) {
			id := v.users[v.manageCursor].ID
			v.checkedUsers[id] = !v.checkedUsers[id]
		}
		return v, nil

	case msg.String() == "ctrl+s":
		v.manageBusy = true
		return v, v.saveAssignees()
	}

	return v, nil
}

// saveAssignees replaces the task's assignment set wholesale: every existing
// assignment row is deleted, then one row per checked user is recreated.
func (v *TasksView) saveAssignees() tea.Cmd {
	taskID := v.manageTask.ID
	var existing []string
	for _, a := range v.assignments {
		if a.TaskID == taskID {
			existing = append(existing, a.ID)
		}
	}
	var wanted []string
	for _, u := range v.users {
		if v.checkedUsers[u.ID] {
			wanted = append(wanted, u.ID)
		}
	}

	return doSubmit("assignees", func() (*api.Response, error) {
		var last *api.Response
		for _, id := range existing {
			resp, err := api.Delete(v.client, api.ResourceTaskAssignees, id)
			if err != nil {
				return nil, err
			}
			if resp.Status != http.StatusOK {
				return resp, nil
			}
			last = resp
		}
		for _, userID := range wanted {
			resp, err := api.Create(v.client, api.ResourceTaskAssignees, assignmentPayload{
				TaskID: taskID,
				UserID: userID,
			})
			if err != nil {
				return nil, err
			}
			if resp.Status != http.StatusOK && resp.Status != http.StatusCreated {
				return resp, nil
			}
			last = resp
		}
		if last == nil {
			last = &api.Response{Status: http.StatusOK}
		}
		return last, nil
	})
}

func (v *TasksView) updateAssigning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.assigning = false
		return v, nil

	case msg.String() == "left":
		v.userSelect.Prev()
		return v, nil

	case msg.String() == "right":
		v.userSelect.Next()
		return v, nil

	case key.Matches(msg, v.keys.Enter), msg.String() == "ctrl+s":
		userID := v.userSelect.Value()
		if userID == "" {
			return v, toastErr("Pick a user to assign")
		}
		taskID := v.assignTask.ID
		return v, doSubmit("assign", func() (*api.Response, error) {
			return api.Create(v.client, api.ResourceTaskAssignees, assignmentPayload{
				TaskID: taskID,
				UserID: userID,
			})
		})
	}
	return v, nil
}

func (v *TasksView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.submit()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 6
		v.updateFocus()
		return v, textinput.Blink

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 5) % 6
		v.updateFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 5 {
			return v, v.submit()
		}
		v.focusIdx++
		v.updateFocus()
		return v, textinput.Blink

	case msg.String() == "left", msg.String() == "right":
		sel := v.focusedSelector()
		if sel != nil {
			if msg.String() == "left" {
				sel.Prev()
			} else {
				sel.Next()
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.nameInput, cmd = v.nameInput.Update(msg)
	case 4:
		v.dueInput, cmd = v.dueInput.Update(msg)
	}
	return v, cmd
}

func (v *TasksView) focusedSelector() *selector {
	switch v.focusIdx {
	case 1:
		return &v.projectSelect
	case 2:
		return &v.statusSelect
	case 3:
		return &v.prioritySelect
	}
	return nil
}

func (v *TasksView) updateFocus() {
	v.nameInput.Blur()
	v.dueInput.Blur()
	switch v.focusIdx {
	case 0:
		v.nameInput.Focus()
	case 4:
		v.dueInput.Focus()
	}
}

func (v *TasksView) submit() tea.Cmd {
	payload := taskPayload{
		Name:       strings.TrimSpace(v.nameInput.Value()),
		ProjectID:  v.projectSelect.Value(),
		StatusID:   v.statusSelect.Value(),
		PriorityID: v.prioritySelect.Value(),
		DueDate:    strings.TrimSpace(v.dueInput.Value()),
	}
	if payload.Name == "" || payload.ProjectID == "" {
		return toastErr("Name and project are required")
	}

	if v.editingNew {
		return doSubmit("create", func() (*api.Response, error) {
			return api.Create(v.client, api.ResourceTasks, payload)
		})
	}
	id := v.selected.ID
	return doSubmit("update", func() (*api.Response, error) {
		return api.Update(v.client, api.ResourceTasks, id, payload)
	})
}

func (v *TasksView) View() string {
	s := v.styles

	if v.confirmingDelete {
		what := "Task"
		if v.deleteAssignment.ID != "" {
			what = "Assignment"
		}
		return renderDeleteConfirm(s, what, v.width, v.height)
	}
	if v.managing {
		return v.renderManage()
	}
	if v.assigning {
		return v.renderAssign()
	}
	if v.editing {
		return v.renderForm()
	}
	if v.showingAssignments {
		help := s.Help.Render(
			s.HelpKey.Render("d") + " remove • " +
				s.HelpKey.Render("v") + "/" + s.HelpKey.Render("esc") + " back to tasks",
		)
		return lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("Task Assignments"),
			"",
			v.assignTable.View(),
			help,
		)
	}

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	help := s.Help.Render(
		s.HelpKey.Render("n") + " new • " +
			s.HelpKey.Render("e") + " edit • " +
			s.HelpKey.Render("d") + " delete • " +
			s.HelpKey.Render("m") + " assignees • " +
			s.HelpKey.Render("a") + " assign • " +
			s.HelpKey.Render("v") + " assignments • " +
			s.HelpKey.Render("/") + " search",
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Tasks"),
		"",
		v.table.View(),
		help,
	)
}

func (v *TasksView) renderManage() string {
	s := v.styles

	var rows []string
	for i, u := range v.users {
		mark := "[ ]"
		if v.checkedUsers[u.ID] {
			mark = "[x]"
		}
		line := mark + " " + u.Name
		if i == v.manageCursor {
			line = s.ListSelected.Render("> " + line)
		} else {
			line = s.ListItem.Render("  " + line)
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		rows = append(rows, s.TitleMuted.Render("No users available"))
	}

	footer := "Space: toggle • Ctrl+S: save • Esc: cancel"
	if v.manageBusy {
		footer = "Saving..."
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Assignees: "+v.manageTask.Name),
		"",
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		"",
		s.TitleMuted.Render(footer),
	)
	return renderModal(s, content, v.width, v.height)
}

func (v *TasksView) renderAssign() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Assign: "+v.assignTask.Name),
		"",
		"User:",
		v.userSelect.View(s, true, inputWidth),
		"",
		s.TitleMuted.Render("←/→: pick user • Enter: assign • Esc: cancel"),
	)
	return renderModal(s, content, v.width, v.height)
}

func (v *TasksView) renderForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	fieldStyle := func(i int) lipgloss.Style {
		if v.focusIdx == i {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.focusIdx == 5 {
		btnStyle = s.ButtonFocused
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Name:",
		fieldStyle(0).Width(inputWidth).Render(v.nameInput.View()),
		"",
		"Project:",
		v.projectSelect.View(s, v.focusIdx == 1, inputWidth),
		"",
		"Status:",
		v.statusSelect.View(s, v.focusIdx == 2, inputWidth),
		"",
		"Priority:",
		v.prioritySelect.View(s, v.focusIdx == 3, inputWidth),
		"",
		"Due Date (YYYY-MM-DD):",
		fieldStyle(4).Width(inputWidth).Render(v.dueInput.View()),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: pick • Ctrl+S: save • Esc: cancel"),
	)
	return renderModal(s, form, v.width, v.height)
}

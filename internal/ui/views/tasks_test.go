package views

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmadmin/internal/api"
	"pmadmin/internal/models"
)

type stubSession struct{}

func (stubSession) Token() string { return "test-token" }
func (stubSession) Logout() error { return nil }

// recorder is a fake backend that logs every mutation in order.
type recorder struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (r *recorder) record(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req.Method+" "+req.URL.Path)
	r.bodies = append(r.bodies, string(body))
}

func (r *recorder) mutations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.requests))
	copy(out, r.requests)
	return out
}

// drain executes a command tree and flattens the produced messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func listJSON(v any) string {
	raw, _ := json.Marshal(map[string]any{"data": v})
	return string(raw)
}

func TestSaveAssigneesReplacesWholeSet(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			rec.record(r)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost:
			rec.record(r)
			w.WriteHeader(http.StatusCreated)
		default:
			fmt.Fprint(w, `{"data":[]}`)
		}
	}))
	defer srv.Close()

	client := api.New(srv.URL, 5*time.Second, stubSession{})
	v := NewTasksView(client, 10)

	task := models.Task{ID: "t1", Name: "Ship it", ProjectID: "p1"}
	userA := models.User{ID: "uA", Name: "Ann"}
	userB := models.User{ID: "uB", Name: "Bob"}
	userC := models.User{ID: "uC", Name: "Cam"}

	model, _ := v.Update(taskRefsLoadedMsg{users: []models.User{userA, userB, userC}})
	v = model.(*TasksView)
	model, _ = v.Update(assignmentsLoadedMsg{assignments: []models.TaskAssignment{
		{ID: "a1", TaskID: "t1", UserID: "uA"},
		{ID: "a2", TaskID: "t1", UserID: "uB"},
		{ID: "a3", TaskID: "other", UserID: "uC"},
	}})
	v = model.(*TasksView)

	// Open the checklist: A and B come pre-checked from the current set.
	v.startManage(task)
	assert.True(t, v.checkedUsers["uA"])
	assert.True(t, v.checkedUsers["uB"])
	assert.False(t, v.checkedUsers["uC"])

	// Uncheck A, check C; B stays checked but is still recreated.
	v.checkedUsers["uA"] = false
	v.checkedUsers["uC"] = true

	msgs := drain(v.saveAssignees())
	require.Len(t, msgs, 1)
	result, ok := msgs[0].(submitMsg)
	require.True(t, ok)
	assert.True(t, result.ok)
	assert.Equal(t, "assignees", result.op)

	// Every existing row for t1 is torn down, then the checked set is
	// recreated. The assignment on the other task is untouched.
	assert.Equal(t, []string{
		"DELETE /task-assignees/delete/a1",
		"DELETE /task-assignees/delete/a2",
		"POST /task-assignees/create",
		"POST /task-assignees/create",
	}, rec.mutations())
	assert.Contains(t, rec.bodies[2], `"user_id":"uB"`)
	assert.Contains(t, rec.bodies[3], `"user_id":"uC"`)
}

func TestSaveAssigneesStopsOnRejectedDelete(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":"admins only"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := api.New(srv.URL, 5*time.Second, stubSession{})
	v := NewTasksView(client, 10)

	model, _ := v.Update(taskRefsLoadedMsg{users: []models.User{{ID: "uA", Name: "Ann"}}})
	v = model.(*TasksView)
	model, _ = v.Update(assignmentsLoadedMsg{assignments: []models.TaskAssignment{
		{ID: "a1", TaskID: "t1", UserID: "uA"},
	}})
	v = model.(*TasksView)

	v.startManage(models.Task{ID: "t1", Name: "Ship it"})
	v.checkedUsers["uA"] = false

	msgs := drain(v.saveAssignees())
	require.Len(t, msgs, 1)
	result := msgs[0].(submitMsg)
	assert.False(t, result.ok)
	require.IsType(t, ToastMsg{}, result.failure)
	assert.Equal(t, "admins only", result.failure.(ToastMsg).Text)

	// No creates follow a rejected delete.
	assert.Equal(t, []string{"DELETE /task-assignees/delete/a1"}, rec.mutations())
}

func TestCreatedTaskTriggersRefetch(t *testing.T) {
	listed := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tasks/select" {
			listed++
			fmt.Fprint(w, listJSON([]models.Task{{ID: "t-new", Name: "Fresh"}}))
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, 5*time.Second, stubSession{})
	v := NewTasksView(client, 10)
	v.editing = true

	model, cmd := v.Update(submitMsg{op: "create", ok: true})
	v = model.(*TasksView)
	assert.False(t, v.editing)

	// The success path re-fetches; the new row is what the server returned.
	for _, msg := range drain(cmd) {
		model, _ = v.Update(msg)
		v = model.(*TasksView)
	}
	assert.Equal(t, 1, listed)
	require.Len(t, v.table.Rows(), 1)
	assert.Equal(t, "Fresh", v.table.Rows()[0].Name)
}

func TestFailedSubmitKeepsFormOpen(t *testing.T) {
	client := api.New("http://unused", time.Second, stubSession{})
	v := NewTasksView(client, 10)
	v.editing = true
	v.nameInput.SetValue("typed so far")

	model, cmd := v.Update(submitMsg{op: "create", failure: ToastMsg{Text: "Bad Request: Invalid input data", Err: true}})
	v = model.(*TasksView)

	assert.True(t, v.editing)
	assert.Equal(t, "typed so far", v.nameInput.Value())

	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, ToastMsg{Text: "Bad Request: Invalid input data", Err: true}, msgs[0])
}

func TestDueDateFormatting(t *testing.T) {
	assert.Equal(t, "Mar 5, 2026", formatDueDate("2026-03-05"))
	assert.Equal(t, "-", formatDueDate(""))
	assert.Equal(t, "soon", formatDueDate("soon"))
}

package models

import "encoding/json"

// Entities are flat records exchanged verbatim with the backend. Identifiers
// are opaque strings assigned server-side; the client never generates them.

// StringList is a []string that also decodes from a JSON-encoded string
// holding an array. The backend stores attendee lists in a text column, so
// list responses may carry either shape. Undecodable input yields an empty
// list rather than failing the whole fetch.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		*l = nil
		return nil
	}
	*l = arr
	return nil
}

// User is an account that can log in and be assigned to tasks.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name,omitempty"`
}

func (u User) RowID() string { return u.ID }

// Role is a master-data lookup referenced by users.
type Role struct {
	ID       string `json:"id"`
	RoleName string `json:"role_name"`
}

func (r Role) RowID() string { return r.ID }

// Project groups tasks, documents and meetings.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StatusID  string `json:"status_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (p Project) RowID() string { return p.ID }

// ProjectStatus is a master-data lookup referenced by projects.
type ProjectStatus struct {
	ID         string `json:"id"`
	StatusName string `json:"status_name"`
}

func (s ProjectStatus) RowID() string { return s.ID }

// Task belongs to a project and carries status/priority lookups.
type Task struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProjectID  string `json:"project_id"`
	StatusID   string `json:"status_id"`
	PriorityID string `json:"priority_id"`
	DueDate    string `json:"due_date"`
}

func (t Task) RowID() string { return t.ID }

// TaskStatus is a master-data lookup referenced by tasks.
type TaskStatus struct {
	ID         string `json:"id"`
	StatusName string `json:"status_name"`
}

func (s TaskStatus) RowID() string { return s.ID }

// Priority is a master-data lookup referenced by tasks.
type Priority struct {
	ID           string `json:"id"`
	PriorityName string `json:"priority_name"`
}

func (p Priority) RowID() string { return p.ID }

// TaskAssignment joins a task to a user.
type TaskAssignment struct {
	ID     string `json:"id"`
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
}

func (a TaskAssignment) RowID() string { return a.ID }

// Document is a file record attached to a project.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProjectID  string `json:"project_id"`
	UploadedBy string `json:"uploaded_by"`
	FilePath   string `json:"file_path"`
}

func (d Document) RowID() string { return d.ID }

// Meeting records minutes for a project meeting. Attendees round-trip as a
// JSON-encoded string array inside the create/update payload; responses may
// echo either the array or the stored string form.
type Meeting struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Date      string     `json:"date"`
	Attendees StringList `json:"attendees"`
	Notes     string     `json:"notes"`
	CreatedBy string     `json:"created_by,omitempty"`
}

func (m Meeting) RowID() string { return m.ID }

// Notification status values.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification is a broadcast message with a read/unread flag.
type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (n Notification) RowID() string { return n.ID }

// Report is a per-project aggregate row served by /reports/aggregate.
type Report struct {
	ID                   string  `json:"id"`
	ProjectName          string  `json:"project_name"`
	ProjectStatus        string  `json:"project_status"`
	TotalTasks           int     `json:"total_tasks"`
	CompletedTasks       int     `json:"completed_tasks"`
	PendingTasks         int     `json:"pending_tasks"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

func (r Report) RowID() string { return r.ID }

// LoginPayload is the credential body for POST /login.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the server's login envelope.
type LoginResponse struct {
	StatusCode int       `json:"statusCode"`
	Data       LoginData `json:"data"`
	Message    string    `json:"message"`
	Success    bool      `json:"success"`
}

// LoginData carries the authenticated user and token pair.
type LoginData struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

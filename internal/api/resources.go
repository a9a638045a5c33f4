package api

import (
	"fmt"
	"io"
	"net/http"

	"pmadmin/internal/models"
)

// Resource path segments as the backend names them.
const (
	ResourceUsers           = "users"
	ResourceRoles           = "roles"
	ResourceProjects        = "projects"
	ResourceProjectStatuses = "project-statuses"
	ResourceTasks           = "tasks"
	ResourceTaskStatuses    = "task-statuses"
	ResourcePriorities      = "priorities"
	ResourceTaskAssignees   = "task-assignees"
	ResourceDocuments       = "documents"
	ResourceMeetingMinutes  = "meeting-minutes"
	ResourceNotifications   = "notifications"
)

// envelope is the backend's list wrapper. No alternative shapes are handled.
type envelope[T any] struct {
	Data []T `json:"data"`
}

// List fetches /<resource>/select and unwraps the {data: [...]} envelope.
func List[T any](c *Client, resource string) ([]T, error) {
	resp, err := c.Get("/" + resource + "/select")
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("list %s: %s", resource, StatusMessage(resp))
	}
	var env envelope[T]
	if err := resp.Decode(&env); err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	return env.Data, nil
}

// Create posts a new record. The caller branches on the response status.
func Create(c *Client, resource string, payload any) (*Response, error) {
	return c.Post("/"+resource+"/create", payload)
}

// Update replaces the record with the given id.
func Update(c *Client, resource, id string, payload any) (*Response, error) {
	return c.Put("/"+resource+"/update/"+id, payload)
}

// Delete removes the record with the given id.
func Delete(c *Client, resource, id string) (*Response, error) {
	return c.Delete("/" + resource + "/delete/" + id)
}

// Login exchanges credentials for a token. Any completed response comes back
// for status inspection; only transport failures are errors.
func Login(c *Client, email, password string) (*models.LoginResponse, *Response, error) {
	resp, err := c.Post("/login", models.LoginPayload{Email: email, Password: password})
	if err != nil {
		return nil, nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, resp, nil
	}
	var lr models.LoginResponse
	if err := resp.Decode(&lr); err != nil {
		return nil, resp, err
	}
	return &lr, resp, nil
}

// Logout informs the backend of session termination. Callers proceed with
// the local logout regardless of the outcome.
func Logout(c *Client) error {
	_, err := c.Post("/logout", nil)
	return err
}

// DownloadDocument fetches the binary content of a stored document.
func DownloadDocument(c *Client, id string) ([]byte, error) {
	resp, err := c.Get("/documents/download/" + id)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("download document: %s", StatusMessage(resp))
	}
	return resp.Body, nil
}

// UploadDocument posts a multipart document with its file content.
func UploadDocument(c *Client, name, projectID, fileName string, file io.Reader) (*Response, error) {
	fields := map[string]string{
		"name":       name,
		"project_id": projectID,
	}
	return c.PostMultipart("/documents/create", fields, "file_path", fileName, file)
}

// MarkNotificationRead flips a notification to read on the server.
func MarkNotificationRead(c *Client, id string) (*Response, error) {
	return c.Put("/notifications/mark-read/"+id, nil)
}

// AggregateReports fetches the per-project report rows.
func AggregateReports(c *Client) ([]models.Report, error) {
	resp, err := c.Get("/reports/aggregate")
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("aggregate reports: %s", StatusMessage(resp))
	}
	var env envelope[models.Report]
	if err := resp.Decode(&env); err != nil {
		return nil, fmt.Errorf("aggregate reports: %w", err)
	}
	return env.Data, nil
}

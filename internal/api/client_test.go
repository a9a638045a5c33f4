package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmadmin/internal/models"
)

// fakeSession records logout calls so the 401 side effect can be observed.
type fakeSession struct {
	token   string
	logouts int
}

func (f *fakeSession) Token() string { return f.token }

func (f *fakeSession) Logout() error {
	f.logouts++
	f.token = ""
	return nil
}

func newTestClient(handler http.Handler, token string) (*Client, *fakeSession, *httptest.Server) {
	srv := httptest.NewServer(handler)
	sess := &fakeSession{token: token}
	return New(srv.URL, 5*time.Second, sess), sess, srv
}

func TestBearerTokenAttached(t *testing.T) {
	var got string
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}), "tok-123")
	defer srv.Close()

	_, err := c.Get("/users/select")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", got)
}

func TestNoAuthHeaderWhenLoggedOut(t *testing.T) {
	var got string
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}), "")
	defer srv.Close()

	_, err := c.Get("/users/select")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnauthorizedForcesSingleLogout(t *testing.T) {
	c, sess, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), "expired")
	defer srv.Close()

	resp, err := c.Get("/tasks/select")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, 1, sess.logouts)
}

func TestCompletedExchangesAreNotErrors(t *testing.T) {
	for _, status := range []int{200, 201, 400, 403, 404, 500} {
		c, sess, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}), "tok")

		resp, err := c.Post("/projects/create", map[string]string{"name": "x"})
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, status, resp.Status)
		assert.Zero(t, sess.logouts)
		srv.Close()
	}
}

func TestListUnwrapsEnvelope(t *testing.T) {
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/select", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"u1","name":"Ann"},{"id":"u2","name":"Bob"}]}`))
	}), "tok")
	defer srv.Close()

	users, err := List[models.User](c, ResourceUsers)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ann", users[0].Name)
}

func TestListMeetingsWithStoredAttendeeString(t *testing.T) {
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"m1","project_id":"p1","date":"2026-02-10","attendees":"[\"Ann\",\"Bob\"]","notes":"kickoff"}]}`))
	}), "tok")
	defer srv.Close()

	meetings, err := List[models.Meeting](c, ResourceMeetingMinutes)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, models.StringList{"Ann", "Bob"}, meetings[0].Attendees)
}

func TestListNonOKIsError(t *testing.T) {
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"db down"}`))
	}), "tok")
	defer srv.Close()

	_, err := List[models.User](c, ResourceUsers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestLoginReturnsResponseForRejection(t *testing.T) {
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"missing password"}`))
	}), "")
	defer srv.Close()

	login, resp, err := Login(c, "a@b.c", "")
	require.NoError(t, err)
	assert.Nil(t, login)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestLoginDecodesPayload(t *testing.T) {
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		w.Write([]byte(`{
			"statusCode": 200,
			"data": {
				"user": {"id": "u1", "name": "Ann", "email": "ann@example.com"},
				"accessToken": "at",
				"refreshToken": "rt"
			},
			"message": "ok",
			"success": true
		}`))
	}), "")
	defer srv.Close()

	login, resp, err := Login(c, "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.NotNil(t, login)
	assert.Equal(t, "at", login.Data.AccessToken)
	assert.Equal(t, "Ann", login.Data.User.Name)
}

func TestStatusMessage(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"bad request with detail", 400, `{"error":"name required"}`, "Bad Request: name required"},
		{"bad request without detail", 400, ``, "Bad Request: Invalid input data"},
		{"forbidden with detail", 403, `{"error":"admins only"}`, "admins only"},
		{"forbidden without detail", 403, ``, "You don't have permission"},
		{"server error with detail", 500, `{"error":"boom"}`, "Server Error: boom"},
		{"server error without detail", 500, ``, "Server Error: Something went wrong"},
		{"other with detail", 404, `{"error":"gone"}`, "Error 404: gone"},
		{"other without detail", 418, ``, "Error 418: An unknown error occurred"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Response{Status: tc.status, Body: []byte(tc.body)}
			assert.Equal(t, tc.want, StatusMessage(r))
		})
	}
}

func TestUploadDocumentMultipart(t *testing.T) {
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "spec.pdf record", r.FormValue("name"))
		assert.Equal(t, "p1", r.FormValue("project_id"))

		f, hdr, err := r.FormFile("file_path")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "spec.pdf", hdr.Filename)
		w.WriteHeader(http.StatusCreated)
	}), "tok")
	defer srv.Close()

	resp, err := UploadDocument(c, "spec.pdf record", "p1", "spec.pdf", bytes.NewReader([]byte("content")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
}

func TestMarkNotificationReadPath(t *testing.T) {
	var gotPath, gotMethod string
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
	}), "tok")
	defer srv.Close()

	_, err := MarkNotificationRead(c, "n42")
	require.NoError(t, err)
	assert.Equal(t, "/notifications/mark-read/n42", gotPath)
	assert.Equal(t, http.MethodPut, gotMethod)
}

func TestAggregateReports(t *testing.T) {
	c, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/aggregate", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"r1","project_name":"P","total_tasks":4,"completed_tasks":1,"pending_tasks":3,"completion_percentage":25}]}`))
	}), "tok")
	defer srv.Close()

	reports, err := AggregateReports(c)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 25.0, reports[0].CompletionPercentage)
}

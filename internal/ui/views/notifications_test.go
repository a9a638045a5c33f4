package views

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmadmin/internal/api"
	"pmadmin/internal/models"
)

func TestOpenMarksReadOptimistically(t *testing.T) {
	marked := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		marked = r.Method + " " + r.URL.Path
	}))
	defer srv.Close()

	client := api.New(srv.URL, 5*time.Second, stubSession{})
	v := NewNotificationsView(client, 10)

	model, _ := v.Update(notificationsLoadedMsg{notifications: []models.Notification{
		{ID: "n1", Message: "hello", Status: models.NotificationUnread},
		{ID: "n2", Message: "world", Status: models.NotificationUnread},
	}})
	v = model.(*NotificationsView)

	cmd := v.open(v.table.Rows()[0])
	assert.True(t, v.viewing)

	// The row flips before the server call runs.
	assert.Equal(t, models.NotificationRead, v.table.Rows()[0].Status)
	assert.Equal(t, models.NotificationUnread, v.table.Rows()[1].Status)

	msgs := drain(cmd)
	assert.Equal(t, "PUT /notifications/mark-read/n1", marked)

	var counts []int
	for _, msg := range msgs {
		if c, ok := msg.(UnreadCountMsg); ok {
			counts = append(counts, c.Count)
		}
	}
	assert.Equal(t, []int{1}, counts)
}

func TestRejectedMarkReadLeavesRowRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"boom"}`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, 5*time.Second, stubSession{})
	v := NewNotificationsView(client, 10)

	model, _ := v.Update(notificationsLoadedMsg{notifications: []models.Notification{
		{ID: "n1", Message: "hello", Status: models.NotificationUnread},
	}})
	v = model.(*NotificationsView)

	cmd := v.open(v.table.Rows()[0])
	for _, msg := range drain(cmd) {
		model, _ = v.Update(msg)
		v = model.(*NotificationsView)
	}

	// The rejection is not reconciled: the row stays read locally.
	assert.Equal(t, models.NotificationRead, v.table.Rows()[0].Status)
}

func TestOpeningReadNotificationSkipsMarkRead(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := api.New(srv.URL, 5*time.Second, stubSession{})
	v := NewNotificationsView(client, 10)

	model, _ := v.Update(notificationsLoadedMsg{notifications: []models.Notification{
		{ID: "n1", Message: "old news", Status: models.NotificationRead},
	}})
	v = model.(*NotificationsView)

	cmd := v.open(v.table.Rows()[0])
	drain(cmd)

	assert.True(t, v.viewing)
	assert.False(t, called)
}

func TestUnreadCountEmittedOnLoad(t *testing.T) {
	client := api.New("http://unused", time.Second, stubSession{})
	v := NewNotificationsView(client, 10)

	_, cmd := v.Update(notificationsLoadedMsg{notifications: []models.Notification{
		{ID: "n1", Status: models.NotificationUnread},
		{ID: "n2", Status: models.NotificationRead},
		{ID: "n3", Status: models.NotificationUnread},
	}})

	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, UnreadCountMsg{Count: 2}, msgs[0])
}

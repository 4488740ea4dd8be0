package controllers

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/contact"
)

type inbox struct {
	mu       sync.Mutex
	messages []models.ContactMessage
	limit    int
}

func (s *inbox) Create(_ context.Context, msg *models.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = uint(len(s.messages) + 1)
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *inbox) List(_ context.Context, limit int) ([]models.ContactMessage, error) {
	s.limit = limit
	return s.messages, nil
}

func (s *inbox) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, m := range s.messages {
		if m.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *inbox) GetByID(_ context.Context, id uint) (*models.ContactMessage, error) {
	if id == 0 || int(id) > len(s.messages) {
		return nil, gorm.ErrRecordNotFound
	}
	m := s.messages[id-1]
	return &m, nil
}

func (s *inbox) UpdateStatus(_ context.Context, id uint, status string) error {
	s.messages[id-1].Status = status
	return nil
}

func newContactApp(store contact.Store) *fiber.App {
	cc := NewContactController(contact.NewService(store, nil))
	app := newTestApp("")
	app.Post("/contact", cc.HandleSubmit)
	app.Get("/admin/contact", cc.HandleList)
	app.Get("/admin/contact/unread-count", cc.HandleUnreadCount)
	app.Patch("/admin/contact/:id", cc.HandleUpdateStatus)
	return app
}

func TestContactSubmitAndTriage(t *testing.T) {
	store := &inbox{}
	app := newContactApp(store)

	resp, body := doRequest(t, app, http.MethodPost, "/contact", map[string]string{
		"name": "Ada", "email": "ada@example.org", "organization": "Tuskegee Prep", "message": "Can our school join?",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"success":true,"id":1}`, string(body))

	resp, body = doRequest(t, app, http.MethodGet, "/admin/contact/unread-count", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":1}`, string(body))

	resp, body = doRequest(t, app, http.MethodPatch, "/admin/contact/1", map[string]string{"status": "replied"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "replied", decodeMap(t, body)["status"])

	resp, body = doRequest(t, app, http.MethodGet, "/admin/contact?limit=500", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decodeMap(t, body)["messages"], 1)
	assert.Equal(t, contact.MaxListLimit, store.limit)

	resp, body = doRequest(t, app, http.MethodGet, "/admin/contact/unread-count", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":0}`, string(body))
}

func TestContactErrors(t *testing.T) {
	app := newContactApp(&inbox{})
	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
		status int
		want   string
	}{
		{"missing fields", http.MethodPost, "/contact", map[string]string{"name": "Ada"}, fiber.StatusBadRequest, `{"error":"Missing required fields: name, email, message"}`},
		{"bad email", http.MethodPost, "/contact", map[string]string{"name": "Ada", "email": "ada", "message": "hi"}, fiber.StatusBadRequest, `{"error":"Invalid email address"}`},
		{"unknown message", http.MethodPatch, "/admin/contact/7", map[string]string{"status": "read"}, fiber.StatusNotFound, `{"error":"Message not found"}`},
		{"bad id", http.MethodPatch, "/admin/contact/x", map[string]string{"status": "read"}, fiber.StatusBadRequest, `{"error":"Invalid message id"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, tt.want, string(body))
		})
	}
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"pushhub/internal/domain/event"
	"pushhub/internal/infrastructure/hub"
	"pushhub/internal/infrastructure/logger"
)

type fakePublisher struct {
	events []event.Event
	scopes []event.Scope
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev event.Event, scope event.Scope) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	f.scopes = append(f.scopes, scope)
	return nil
}

func newPushRouter(t *testing.T, publisher *fakePublisher) (*gin.Engine, *hub.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := hub.New(hub.Options{}, nil, logger.NewNopLogger())
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start hub: %v", err)
	}
	t.Cleanup(func() { h.Stop(context.Background()) })

	pushHandler := NewPushHandler(publisher, h, logger.NewNopLogger())

	r := gin.New()
	r.POST("/publish", pushHandler.Publish)
	r.GET("/connections", pushHandler.Connections)
	return r, h
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublish_OK(t *testing.T) {
	publisher := &fakePublisher{}
	r, _ := newPushRouter(t, publisher)

	body := `{
		"type": "force_logout",
		"scope": {"kind": "owner", "owner": "alice"},
		"data": {"reason": "password changed"}
	}`
	w := postJSON(r, "/publish", body)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"status":"published"`) {
		t.Errorf("Unexpected response: %s", w.Body.String())
	}

	if len(publisher.events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(publisher.events))
	}
	logout, ok := publisher.events[0].(event.ForceLogout)
	if !ok {
		t.Fatalf("Expected ForceLogout, got %T", publisher.events[0])
	}
	if logout.Reason != "password changed" {
		t.Errorf("Unexpected reason: %s", logout.Reason)
	}
	if publisher.scopes[0] != event.ByOwner("alice") {
		t.Errorf("Unexpected scope: %+v", publisher.scopes[0])
	}
}

func TestPublish_BroadcastActionWithoutData(t *testing.T) {
	publisher := &fakePublisher{}
	r, _ := newPushRouter(t, publisher)

	w := postJSON(r, "/publish", `{"type": "action_deleted", "scope": {"kind": "broadcast"}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(publisher.events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(publisher.events))
	}
	if publisher.events[0].Type() != event.TypeActionDeleted {
		t.Errorf("Expected action_deleted, got %s", publisher.events[0].Type())
	}
}

func TestPublish_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "not json",
			body: "not json at all",
		},
		{
			name: "missing type",
			body: `{"scope": {"kind": "broadcast"}}`,
		},
		{
			name: "unknown type",
			body: `{"type": "mystery", "scope": {"kind": "broadcast"}}`,
		},
		{
			name: "malformed payload",
			body: `{"type": "force_logout", "scope": {"kind": "broadcast"}, "data": [1, 2]}`,
		},
		{
			name: "owner scope without owner",
			body: `{"type": "force_logout", "scope": {"kind": "owner"}}`,
		},
		{
			name: "unknown scope kind",
			body: `{"type": "force_logout", "scope": {"kind": "project", "owner": "p-1"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &fakePublisher{}
			r, _ := newPushRouter(t, publisher)

			w := postJSON(r, "/publish", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if len(publisher.events) != 0 {
				t.Errorf("Nothing should be published, got %d events", len(publisher.events))
			}
		})
	}
}

func TestPublish_PublisherFailure(t *testing.T) {
	r, _ := newPushRouter(t, &fakePublisher{err: errors.New("hub is not running")})

	w := postJSON(r, "/publish", `{"type": "force_logout", "scope": {"kind": "broadcast"}}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

func TestConnections(t *testing.T) {
	r, h := newPushRouter(t, &fakePublisher{})

	for _, owner := range []string{"alice", "bob"} {
		conn := h.NewConnection(owner)
		if err := h.Register(conn); err != nil {
			t.Fatalf("Failed to register connection: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/connections", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"total_connections":2`) {
		t.Errorf("Expected 2 connections, got %s", body)
	}
	if !strings.Contains(body, `"owner":"alice"`) || !strings.Contains(body, `"owner":"bob"`) {
		t.Errorf("Expected both owners, got %s", body)
	}
	if !strings.Contains(body, `"hub_running":true`) {
		t.Errorf("Expected a running hub, got %s", body)
	}
}

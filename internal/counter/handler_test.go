package counter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
	"github.com/brewbarclub/brewbar/internal/queue"
	"github.com/brewbarclub/brewbar/internal/session"
)

// MockQueueAPI is a test mock for queue.QueueAPI
type MockQueueAPI struct {
	QueueFunc func(ctx context.Context) ([]api.Order, error)
}

func (m *MockQueueAPI) Queue(ctx context.Context) ([]api.Order, error) {
	if m.QueueFunc != nil {
		return m.QueueFunc(ctx)
	}
	return nil, nil
}

// MockStatusChanger is a test mock for queue.StatusChanger
type MockStatusChanger struct {
	RequestStatusChangeFunc func(ctx context.Context, orderID uuid.UUID, next api.OrderStatus) (*api.Order, error)
}

func (m *MockStatusChanger) RequestStatusChange(ctx context.Context, orderID uuid.UUID, next api.OrderStatus) (*api.Order, error) {
	if m.RequestStatusChangeFunc != nil {
		return m.RequestStatusChangeFunc(ctx, orderID, next)
	}
	return &api.Order{ID: orderID, Status: next}, nil
}

// MockAuthAPI is a test mock for AuthAPI
type MockAuthAPI struct {
	LoginFunc  func(ctx context.Context, username, password string) (*api.AuthResponse, error)
	LogoutFunc func(ctx context.Context) error
}

func (m *MockAuthAPI) Login(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return &api.AuthResponse{Token: "tok", User: api.User{ID: uuid.New(), Username: username, Role: api.RoleBarista}}, nil
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	mu     sync.Mutex
	topics []string
	bodies [][]byte
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
	m.bodies = append(m.bodies, msg)
	return nil
}

func (m *MockPublisher) Published() ([]string, [][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.topics, m.bodies
}

type handlerFixture struct {
	handler   *Handler
	router    chi.Router
	sessions  *session.Store
	queue     *queue.Controller
	statuses  *MockStatusChanger
	publisher *MockPublisher
}

func newFixture(t *testing.T, role api.Role) *handlerFixture {
	t.Helper()

	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"), apt.NewNoopLogger())
	if role != "" {
		user := api.User{ID: uuid.New(), Username: "worker", Role: role}
		if err := sessions.SetSession("tok", user); err != nil {
			t.Fatalf("SetSession() error = %v", err)
		}
	}

	statuses := &MockStatusChanger{}
	queueCtrl := queue.NewController(queue.Deps{
		Client:   &MockQueueAPI{},
		Statuses: statuses,
	}, apt.NewNoopLogger())

	publisher := &MockPublisher{}
	handler := NewHandler(HandlerDeps{
		Queue:     queueCtrl,
		Sessions:  sessions,
		Auth:      &MockAuthAPI{},
		Publisher: publisher,
	}, nil, apt.NewNoopLogger())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return &handlerFixture{
		handler:   handler,
		router:    router,
		sessions:  sessions,
		queue:     queueCtrl,
		statuses:  statuses,
		publisher: publisher,
	}
}

func TestGetQueueRequiresBaristaRole(t *testing.T) {
	tests := []struct {
		name       string
		role       api.Role
		wantStatus int
	}{
		{name: "signedOut", role: "", wantStatus: http.StatusForbidden},
		{name: "customerDenied", role: api.RoleCustomer, wantStatus: http.StatusForbidden},
		{name: "baristaAllowed", role: api.RoleBarista, wantStatus: http.StatusOK},
		{name: "adminAllowed", role: api.RoleAdmin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.role)

			req := httptest.NewRequest(http.MethodGet, "/queue/", nil)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUpdateStatusFlow(t *testing.T) {
	f := newFixture(t, api.RoleBarista)
	orderID := uuid.New()

	body, _ := json.Marshal(map[string]string{"status": "PREPARING"})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/queue/%s/status", orderID), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	// The confirmed transition lands in the held queue and on the wire.
	snapshot := f.queue.Snapshot()
	if len(snapshot) != 1 || snapshot[0].Status != api.StatusPreparing {
		t.Errorf("queue snapshot = %+v, want the PREPARING order", snapshot)
	}

	topics, bodies := f.publisher.Published()
	if len(topics) != 1 || topics[0] != OrderStatusTopic {
		t.Fatalf("published topics = %v, want [%s]", topics, OrderStatusTopic)
	}
	var event StatusEvent
	if err := json.Unmarshal(bodies[0], &event); err != nil {
		t.Fatalf("cannot decode published event: %v", err)
	}
	if event.OrderID != orderID || event.Status != api.StatusPreparing {
		t.Errorf("event = %+v, want order %s PREPARING", event, orderID)
	}
}

func TestUpdateStatusRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "invalidID", path: "/queue/not-a-uuid/status", body: `{"status": "PREPARING"}`},
		{name: "unknownStatus", path: fmt.Sprintf("/queue/%s/status", uuid.New()), body: `{"status": "BREWING"}`},
		{name: "malformedBody", path: fmt.Sprintf("/queue/%s/status", uuid.New()), body: `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, api.RoleBarista)

			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestUpdateStatusMapsConflict(t *testing.T) {
	f := newFixture(t, api.RoleBarista)
	f.statuses.RequestStatusChangeFunc = func(ctx context.Context, orderID uuid.UUID, next api.OrderStatus) (*api.Order, error) {
		return nil, &api.ConflictError{Message: "order already completed"}
	}

	body, _ := json.Marshal(map[string]string{"status": "COMPLETED"})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/queue/%s/status", uuid.New()), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestLoginRejectsCustomers(t *testing.T) {
	f := newFixture(t, "")
	auth := f.handler.auth.(*MockAuthAPI)
	auth.LoginFunc = func(ctx context.Context, username, password string) (*api.AuthResponse, error) {
		return &api.AuthResponse{Token: "tok", User: api.User{Username: username, Role: api.RoleCustomer}}, nil
	}

	body, _ := json.Marshal(map[string]string{"username": "sam", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for a customer login", rec.Code)
	}
	if f.sessions.IsAuthenticated() {
		t.Error("session stored for a rejected login")
	}
}

func TestLoginStoresBaristaSession(t *testing.T) {
	f := newFixture(t, "")

	body, _ := json.Marshal(map[string]string{"username": "worker", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if !f.sessions.CanOperateQueue() {
		t.Error("session cannot operate queue after barista login")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFixture(t, api.RoleBarista)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if f.sessions.IsAuthenticated() {
		t.Error("session still authenticated after logout")
	}
}

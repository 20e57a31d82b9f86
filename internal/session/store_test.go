package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
)

func testUser(role api.Role) api.User {
	return api.User{
		ID:       uuid.New(),
		Username: "sam",
		Email:    "sam@example.com",
		Role:     role,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path, apt.NewNoopLogger())

	user := testUser(api.RoleCustomer)
	if err := s.SetSession("tok-1", user); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	// A fresh store on the same path restores the session.
	restored := NewStore(path, apt.NewNoopLogger())
	if restored.Token() != "tok-1" {
		t.Errorf("restored Token() = %q, want %q", restored.Token(), "tok-1")
	}
	got, ok := restored.User()
	if !ok {
		t.Fatal("restored store has no user")
	}
	if got.ID != user.ID || got.Username != user.Username {
		t.Errorf("restored user = %+v, want %+v", got, user)
	}
}

func TestStoreCorruptFileMeansSignedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s := NewStore(path, apt.NewNoopLogger())
	if s.IsAuthenticated() {
		t.Error("store authenticated from a corrupt session file")
	}
}

func TestStoreMissingFileMeansSignedOut(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.json"), apt.NewNoopLogger())
	if s.IsAuthenticated() {
		t.Error("store authenticated with no session file")
	}
	if _, ok := s.User(); ok {
		t.Error("store has a user with no session file")
	}
}

func TestStoreClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path, apt.NewNoopLogger())

	if err := s.SetSession("tok-1", testUser(api.RoleCustomer)); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if s.IsAuthenticated() {
		t.Error("store still authenticated after Clear()")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session file still exists after Clear()")
	}

	// Clearing an already-clear store is fine.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestStoreUpdateUserRequiresSession(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"), apt.NewNoopLogger())

	if err := s.UpdateUser(testUser(api.RoleCustomer)); err == nil {
		t.Error("UpdateUser() succeeded with no active session")
	}
}

func TestStoreCanOperateQueue(t *testing.T) {
	tests := []struct {
		name string
		role api.Role
		want bool
	}{
		{name: "customerDenied", role: api.RoleCustomer, want: false},
		{name: "baristaAllowed", role: api.RoleBarista, want: true},
		{name: "adminAllowed", role: api.RoleAdmin, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(filepath.Join(t.TempDir(), "session.json"), apt.NewNoopLogger())
			if err := s.SetSession("tok", testUser(tt.role)); err != nil {
				t.Fatalf("SetSession() error = %v", err)
			}
			if got := s.CanOperateQueue(); got != tt.want {
				t.Errorf("CanOperateQueue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreCanOperateQueueSignedOut(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"), apt.NewNoopLogger())
	if s.CanOperateQueue() {
		t.Error("CanOperateQueue() = true while signed out")
	}
}

package kiosk

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
	"github.com/brewbarclub/brewbar/internal/checkout"
	"github.com/brewbarclub/brewbar/internal/session"
)

func newTestKiosk(t *testing.T, signedIn bool) (*Kiosk, *bytes.Buffer) {
	t.Helper()

	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"), apt.NewNoopLogger())
	if signedIn {
		user := api.User{ID: uuid.New(), Username: "sam", Role: api.RoleCustomer}
		if err := sessions.SetSession("tok", user); err != nil {
			t.Fatalf("SetSession() error = %v", err)
		}
	}

	out := &bytes.Buffer{}
	k := New(nil, sessions, strings.NewReader(""), out, apt.NewNoopLogger())
	return k, out
}

func TestFindCommand(t *testing.T) {
	k, _ := newTestKiosk(t, false)

	tests := []struct {
		name       string
		input      string
		wantCmd    string
		wantParams []string
		wantFound  bool
	}{
		{name: "canonical", input: "menu", wantCmd: "menu", wantFound: true},
		{name: "shortForm", input: "m", wantCmd: "menu", wantFound: true},
		{name: "withParams", input: "add 1 2 oat milk", wantCmd: "add", wantParams: []string{"1", "2", "oat", "milk"}, wantFound: true},
		{name: "twoWordCommand", input: "fav save 1 morning usual", wantCmd: "fav-save", wantParams: []string{"1", "morning", "usual"}, wantFound: true},
		{name: "twoWordList", input: "fav list", wantCmd: "fav-list", wantFound: true},
		{name: "caseInsensitive", input: "MENU", wantCmd: "menu", wantFound: true},
		{name: "unknown", input: "frobnicate", wantFound: false},
		{name: "empty", input: "   ", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, params, found := k.registry.FindCommand(tt.input)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if cmd.Canonical != tt.wantCmd {
				t.Errorf("command = %q, want %q", cmd.Canonical, tt.wantCmd)
			}
			if len(params) != len(tt.wantParams) {
				t.Fatalf("params = %v, want %v", params, tt.wantParams)
			}
			for i := range params {
				if params[i] != tt.wantParams[i] {
					t.Errorf("params[%d] = %q, want %q", i, params[i], tt.wantParams[i])
				}
			}
		})
	}
}

func TestProcessUnknownCommand(t *testing.T) {
	k, _ := newTestKiosk(t, false)

	resp, err := k.Process(context.Background(), "frobnicate")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if resp.Success {
		t.Error("unknown command reported success")
	}
	if resp.Message != "command not recognized" {
		t.Errorf("Message = %q, want command not recognized", resp.Message)
	}
}

func TestProcessParamCount(t *testing.T) {
	k, _ := newTestKiosk(t, true)

	tests := []struct {
		name  string
		input string
	}{
		{name: "tooFew", input: "login sam"},
		{name: "tooMany", input: "cancel 1 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := k.Process(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if resp.Message != "invalid parameter count" {
				t.Errorf("Message = %q, want invalid parameter count", resp.Message)
			}
			if !strings.HasPrefix(resp.Text, "Usage:") {
				t.Errorf("Text = %q, want usage line", resp.Text)
			}
		})
	}
}

func TestProcessRequiresAuth(t *testing.T) {
	k, _ := newTestKiosk(t, false)

	resp, err := k.Process(context.Background(), "cart")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if resp.Message != "authentication required" {
		t.Errorf("Message = %q, want authentication required", resp.Message)
	}
}

func TestProcessHelpWithoutAuth(t *testing.T) {
	k, _ := newTestKiosk(t, false)

	resp, err := k.Process(context.Background(), "help")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !resp.Success {
		t.Error("help failed")
	}
	if !strings.Contains(resp.Text, "login") {
		t.Error("help output does not mention login")
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		max     int
		want    int
		wantErr bool
	}{
		{name: "first", raw: "1", max: 3, want: 0},
		{name: "last", raw: "3", max: 3, want: 2},
		{name: "zero", raw: "0", max: 3, wantErr: true},
		{name: "tooLarge", raw: "4", max: 3, wantErr: true},
		{name: "notANumber", raw: "x", max: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIndex(tt.raw, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIndex(%q, %d) error = %v, wantErr %v", tt.raw, tt.max, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseIndex(%q, %d) = %d, want %d", tt.raw, tt.max, got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation",
			err:  &api.ValidationError{Field: "items", Reason: "cart is empty"},
			want: "cart is empty",
		},
		{
			name: "conflict",
			err:  &api.ConflictError{Message: "order already preparing"},
			want: "order already preparing",
		},
		{
			name: "network",
			err:  &api.NetworkError{Err: errors.New("dial tcp: refused")},
			want: "network problem — please try again",
		},
		{
			name: "serverWithMessage",
			err:  &api.ServerError{StatusCode: 500, Message: "boom"},
			want: "boom",
		},
		{
			name: "declined",
			err:  checkout.ErrDeclined,
			want: "cancelled",
		},
		{
			name: "wrappedNetwork",
			err:  errWrap{&api.NetworkError{Err: errors.New("timeout")}},
			want: "network problem — please try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err); got != tt.want {
				t.Errorf("userMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

type errWrap struct{ err error }

func (e errWrap) Error() string { return "wrapped: " + e.err.Error() }
func (e errWrap) Unwrap() error { return e.err }

func TestRunStopsOnCancelWhileWaitingForInput(t *testing.T) {
	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"), apt.NewNoopLogger())
	blocked, _ := io.Pipe()
	k := New(nil, sessions, blocked, &bytes.Buffer{}, apt.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- k.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() still blocked on input after cancellation")
	}
}

func TestRunExitsOnEOF(t *testing.T) {
	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"), apt.NewNoopLogger())
	out := &bytes.Buffer{}
	k := New(nil, sessions, strings.NewReader("help\nexit\n"), out, apt.NewNoopLogger())

	if err := k.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Available commands") {
		t.Error("help output missing from the session transcript")
	}
}

package api

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    OrderStatus
		wantErr bool
	}{
		{name: "received", in: "RECEIVED", want: StatusReceived},
		{name: "preparing", in: "PREPARING", want: StatusPreparing},
		{name: "ready", in: "READY", want: StatusReady},
		{name: "completed", in: "COMPLETED", want: StatusCompleted},
		{name: "cancelled", in: "CANCELLED", want: StatusCancelled},
		{name: "lowercaseRejected", in: "ready", wantErr: true},
		{name: "unknownRejected", in: "BREWING", wantErr: true},
		{name: "emptyRejected", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{name: "receivedToPreparing", from: StatusReceived, to: StatusPreparing, allowed: true},
		{name: "receivedToCancelled", from: StatusReceived, to: StatusCancelled, allowed: true},
		{name: "preparingToReady", from: StatusPreparing, to: StatusReady, allowed: true},
		{name: "readyToCompleted", from: StatusReady, to: StatusCompleted, allowed: true},
		{name: "receivedSkipsToReady", from: StatusReceived, to: StatusReady, allowed: false},
		{name: "preparingCannotCancel", from: StatusPreparing, to: StatusCancelled, allowed: false},
		{name: "readyCannotGoBack", from: StatusReady, to: StatusPreparing, allowed: false},
		{name: "completedIsFinal", from: StatusCompleted, to: StatusReceived, allowed: false},
		{name: "cancelledIsFinal", from: StatusCancelled, to: StatusPreparing, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("%v -> %v = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	terminal := map[OrderStatus]bool{
		StatusReceived:  false,
		StatusPreparing: false,
		StatusReady:     false,
		StatusCompleted: true,
		StatusCancelled: true,
	}

	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%v.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

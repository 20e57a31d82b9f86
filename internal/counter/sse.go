package counter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
)

// StreamEvents serves the queue as Server-Sent Events: the current snapshot
// on connect, then a queue-update event after every refresh or transition.
// The subscription is released when the client disconnects.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	if !h.sessions.CanOperateQueue() {
		http.Error(w, "Barista role required", http.StatusForbidden)
		return
	}

	subscriberID := uuid.New().String()
	h.logger.Info("new SSE connection", "subscriber_id", subscriberID)

	snapshots := h.queue.Subscribe(subscriberID)
	defer h.queue.Unsubscribe(subscriberID)

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")

	// Current state first, so a reconnecting dashboard is never blank.
	h.sendQueueEvent(w, h.queue.Snapshot())

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "subscriber_id", subscriberID)
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flush(w)

		case snapshot, ok := <-snapshots:
			if !ok {
				h.logger.Info("queue snapshot channel closed", "subscriber_id", subscriberID)
				return
			}
			h.sendQueueEvent(w, snapshot)
		}
	}
}

func (h *Handler) sendQueueEvent(w http.ResponseWriter, orders []api.Order) {
	data, err := json.Marshal(orders)
	if err != nil {
		h.logger.Error("failed to encode queue snapshot", "error", err)
		return
	}

	fmt.Fprintf(w, "event: queue-update\n")
	fmt.Fprintf(w, "data: %s\n\n", data)
	flush(w)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

package counter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
	"github.com/brewbarclub/brewbar/internal/queue"
	"github.com/brewbarclub/brewbar/internal/session"
)

const MaxBodyBytes = 1 << 20

// OrderStatusTopic carries status transition events for in-store displays.
const OrderStatusTopic = "brewbar.orders.status"

// StatusEvent is published after every confirmed status transition.
type StatusEvent struct {
	OrderID   uuid.UUID       `json:"order_id"`
	Status    api.OrderStatus `json:"status"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AuthAPI is the slice of the remote API the counter uses for sign-in.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
}

// Handler serves the barista counter: queue snapshots, status transitions
// and a live event stream.
type Handler struct {
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP
	queue     *queue.Controller
	sessions  *session.Store
	auth      AuthAPI
	publisher events.Publisher
}

type HandlerDeps struct {
	Queue    *queue.Controller
	Sessions *session.Store
	Auth     AuthAPI
	// Publisher is optional; when set, confirmed transitions are published
	// on OrderStatusTopic.
	Publisher events.Publisher
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		queue:     hd.Queue,
		sessions:  hd.Sessions,
		auth:      hd.Auth,
		publisher: hd.Publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/queue", func(r chi.Router) {
		r.Get("/", h.GetQueue)
		r.Post("/{id}/status", h.UpdateStatus)
	})
	r.Get("/events", h.StreamEvents)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

// GetQueue returns the currently held open orders with per-status counts.
func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetQueue")
	defer finish()

	log := h.log(r)

	if !h.sessions.CanOperateQueue() {
		log.Debug("queue access denied")
		apt.RespondError(w, http.StatusForbidden, "Barista role required")
		return
	}

	orders := h.queue.Snapshot()
	counts := h.queue.CountByStatus()

	apt.RespondSuccess(w, queueView{
		Orders: orders,
		Counts: counts,
	})
}

// UpdateStatus applies an operator-issued transition through the lifecycle
// controller and reports the server's authoritative order back.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	if !h.sessions.CanOperateQueue() {
		log.Debug("status change denied")
		apt.RespondError(w, http.StatusForbidden, "Barista role required")
		return
	}

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	req, ok := h.decodeStatusPayload(w, r, log)
	if !ok {
		return
	}

	status, err := api.ParseStatus(req.Status)
	if err != nil {
		log.Debug("invalid status", "status", req.Status)
		apt.RespondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	order, err := h.queue.ApplyStatusChange(ctx, id, status)
	if err != nil {
		h.respondAPIError(w, log, err, "Could not update order status")
		return
	}

	h.publishStatusEvent(ctx, order)
	apt.RespondSuccess(w, order)
}

// Login signs a barista in at the counter and stores the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Login")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeLoginPayload(w, r, log)
	if !ok {
		return
	}

	auth, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.respondAPIError(w, log, err, "Login failed")
		return
	}

	if auth.User.Role != api.RoleBarista && auth.User.Role != api.RoleAdmin {
		log.Debug("non-barista login rejected", "role", string(auth.User.Role))
		apt.RespondError(w, http.StatusForbidden, "Barista role required")
		return
	}

	if err := h.sessions.SetSession(auth.Token, auth.User); err != nil {
		log.Error("cannot persist session", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not store session")
		return
	}

	apt.RespondSuccess(w, auth.User)
}

// Logout clears the counter session. The remote token invalidation is
// best-effort; the local session is wiped regardless.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Logout")
	defer finish()

	log := h.log(r)

	if err := h.auth.Logout(r.Context()); err != nil {
		log.Info("remote logout failed", "error", err)
	}
	if err := h.sessions.Clear(); err != nil {
		log.Error("cannot clear session", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not clear session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) publishStatusEvent(ctx context.Context, order *api.Order) {
	if h.publisher == nil {
		return
	}

	event := StatusEvent{
		OrderID:   order.ID,
		Status:    order.Status,
		UpdatedAt: order.UpdatedAt,
	}
	raw, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("cannot encode status event", "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, OrderStatusTopic, raw); err != nil {
		h.logger.Info("cannot publish status event", "order_id", order.ID, "error", err)
	}
}

// respondAPIError maps client error classes onto HTTP responses.
func (h *Handler) respondAPIError(w http.ResponseWriter, log apt.Logger, err error, fallback string) {
	var (
		validation *api.ValidationError
		conflict   *api.ConflictError
		server     *api.ServerError
	)

	switch {
	case errors.As(err, &validation):
		apt.RespondError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &conflict):
		apt.RespondError(w, http.StatusConflict, conflict.Message)
	case errors.As(err, &server):
		log.Error("upstream error", "status", server.StatusCode, "error", server.Message)
		apt.RespondError(w, http.StatusBadGateway, server.Message)
	default:
		log.Error(fallback, "error", err)
		apt.RespondError(w, http.StatusBadGateway, fallback)
	}
}

type queueView struct {
	Orders []api.Order             `json:"orders"`
	Counts map[api.OrderStatus]int `json:"counts"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodeStatusPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (statusRequest, bool) {
	var req statusRequest
	if !h.decodeBody(w, r, log, &req) {
		return statusRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeLoginPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (loginRequest, bool) {
	var req loginRequest
	if !h.decodeBody(w, r, log, &req) {
		return loginRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, log apt.Logger, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, dest); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}

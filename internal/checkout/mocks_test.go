package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
)

// MockOrderAPI is a test mock for OrderAPI
type MockOrderAPI struct {
	CreateOrderFunc     func(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error)
	UpdateOrderFunc     func(ctx context.Context, id uuid.UUID, req api.UpdateOrderRequest) (*api.Order, error)
	CancelOrderFunc     func(ctx context.Context, id uuid.UUID) error
	UpdateStatusFunc    func(ctx context.Context, id uuid.UUID, status api.OrderStatus) (*api.Order, error)
	SaveFavouriteFunc   func(ctx context.Context, name string, templateOrder uuid.UUID) (*api.Favourite, error)
	ReorderFunc         func(ctx context.Context, id uuid.UUID, scheduledFor *time.Time) (*api.Order, error)
	DeleteFavouriteFunc func(ctx context.Context, id uuid.UUID) error
	GetProfileFunc      func(ctx context.Context) (*api.User, error)

	CreateCalls int
}

func (m *MockOrderAPI) CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error) {
	m.CreateCalls++
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, req)
	}
	return &api.Order{ID: uuid.New(), Status: api.StatusReceived}, nil
}

func (m *MockOrderAPI) UpdateOrder(ctx context.Context, id uuid.UUID, req api.UpdateOrderRequest) (*api.Order, error) {
	if m.UpdateOrderFunc != nil {
		return m.UpdateOrderFunc(ctx, id, req)
	}
	return &api.Order{ID: id, Status: api.StatusReceived}, nil
}

func (m *MockOrderAPI) CancelOrder(ctx context.Context, id uuid.UUID) error {
	if m.CancelOrderFunc != nil {
		return m.CancelOrderFunc(ctx, id)
	}
	return nil
}

func (m *MockOrderAPI) UpdateStatus(ctx context.Context, id uuid.UUID, status api.OrderStatus) (*api.Order, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return &api.Order{ID: id, Status: status}, nil
}

func (m *MockOrderAPI) SaveFavourite(ctx context.Context, name string, templateOrder uuid.UUID) (*api.Favourite, error) {
	if m.SaveFavouriteFunc != nil {
		return m.SaveFavouriteFunc(ctx, name, templateOrder)
	}
	return &api.Favourite{ID: uuid.New(), Name: name, TemplateOrder: templateOrder}, nil
}

func (m *MockOrderAPI) Reorder(ctx context.Context, id uuid.UUID, scheduledFor *time.Time) (*api.Order, error) {
	if m.ReorderFunc != nil {
		return m.ReorderFunc(ctx, id, scheduledFor)
	}
	return &api.Order{ID: uuid.New(), Status: api.StatusReceived}, nil
}

func (m *MockOrderAPI) DeleteFavourite(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFavouriteFunc != nil {
		return m.DeleteFavouriteFunc(ctx, id)
	}
	return nil
}

func (m *MockOrderAPI) GetProfile(ctx context.Context) (*api.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx)
	}
	return nil, errors.New("no profile configured")
}

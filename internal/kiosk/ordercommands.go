package kiosk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
)

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func (k *Kiosk) cmdOrders(ctx context.Context, params []string) (*Response, error) {
	orders, err := k.client.ListMyOrders(ctx)
	if err != nil {
		return nil, err
	}
	k.lastOrders = orders

	if len(orders) == 0 {
		return &Response{Text: "No orders yet.", Success: true}, nil
	}

	var b strings.Builder
	b.WriteString("My orders:\n")
	for i, order := range orders {
		fav := " "
		if order.IsFavourite {
			fav = "★"
		}
		fmt.Fprintf(&b, "%3d. %s #%s  %-9s %8s  %d items  %s\n",
			i+1, fav, shortID(order.ID), order.Status, order.TotalPrice.String(),
			len(order.Items), order.CreatedAt.Local().Format("Jan 2 15:04"))
	}
	b.WriteString("Reference orders by number: cancel 1, edit 1, fav save 1 <name>")
	return &Response{Text: b.String(), Success: true}, nil
}

func (k *Kiosk) orderByNumber(raw string) (*api.Order, *Response) {
	if len(k.lastOrders) == 0 {
		return nil, &Response{Text: "Run orders first so they can be referenced by number.", Message: "no orders loaded"}
	}
	idx, err := parseIndex(raw, len(k.lastOrders))
	if err != nil {
		return nil, &Response{Text: err.Error(), Message: "invalid order number"}
	}
	return &k.lastOrders[idx], nil
}

func (k *Kiosk) cmdCancel(ctx context.Context, params []string) (*Response, error) {
	order, resp := k.orderByNumber(params[0])
	if resp != nil {
		return resp, nil
	}

	if order.Status != api.StatusReceived {
		return &Response{
			Text:    fmt.Sprintf("Order #%s is %s and can no longer be cancelled.", shortID(order.ID), order.Status),
			Message: "order not cancellable",
		}, nil
	}

	if err := k.lifecycle.Cancel(ctx, order.ID); err != nil {
		return nil, err
	}
	return &Response{Text: fmt.Sprintf("Order #%s cancelled.", shortID(order.ID)), Success: true}, nil
}

// cmdEdit loads an order's line items into the cart as a scratch pad; the
// follow-up update command submits the edited cart back to the same order.
func (k *Kiosk) cmdEdit(ctx context.Context, params []string) (*Response, error) {
	listed, resp := k.orderByNumber(params[0])
	if resp != nil {
		return resp, nil
	}

	// Re-fetch so a transition since the listing is caught before editing.
	order, err := k.client.GetOrder(ctx, listed.ID)
	if err != nil {
		return nil, err
	}

	if order.Status != api.StatusReceived {
		return &Response{
			Text:    fmt.Sprintf("Order #%s is %s and can no longer be edited.", shortID(order.ID), order.Status),
			Message: "order not editable",
		}, nil
	}

	if len(k.lastMenu) == 0 {
		items, err := k.client.ListMenuItems(ctx)
		if err != nil {
			return nil, err
		}
		k.lastMenu = items
	}

	menuByID := make(map[uuid.UUID]api.MenuItem, len(k.lastMenu))
	for _, item := range k.lastMenu {
		menuByID[item.ID] = item
	}

	k.cart.Clear()
	for _, line := range order.Items {
		item, ok := menuByID[line.MenuItemID]
		if !ok {
			// Off-menu by now; keep the snapshot identity and price.
			item = api.MenuItem{ID: line.MenuItemID, Title: line.Title, Price: line.Price}
		}
		k.cart.Add(item, line.Quantity, line.Customizations)
	}

	return &Response{
		Text: fmt.Sprintf("Order #%s loaded into the cart (%d lines). Adjust it, then run: update %s",
			shortID(order.ID), k.cart.Len(), params[0]),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdUpdate(ctx context.Context, params []string) (*Response, error) {
	order, resp := k.orderByNumber(params[0])
	if resp != nil {
		return resp, nil
	}

	notes := strings.Join(params[1:], " ")
	updated, err := k.lifecycle.Edit(ctx, order.ID, k.cart.Snapshot(), notes)
	if err != nil {
		return nil, err
	}
	k.cart.Clear()

	return &Response{
		Text:    fmt.Sprintf("Order #%s updated — total %s.", shortID(updated.ID), updated.TotalPrice.String()),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdFavMark(ctx context.Context, params []string) (*Response, error) {
	order, resp := k.orderByNumber(params[0])
	if resp != nil {
		return resp, nil
	}

	updated, err := k.client.MarkFavourite(ctx, order.ID, !order.IsFavourite)
	if err != nil {
		return nil, err
	}
	*order = *updated

	verb := "unmarked"
	if updated.IsFavourite {
		verb = "marked"
	}
	return &Response{Text: fmt.Sprintf("Order #%s %s as favourite.", shortID(updated.ID), verb), Success: true}, nil
}

func (k *Kiosk) cmdFavSave(ctx context.Context, params []string) (*Response, error) {
	order, resp := k.orderByNumber(params[0])
	if resp != nil {
		return resp, nil
	}

	name := strings.Join(params[1:], " ")
	favourite, err := k.lifecycle.SaveFavourite(ctx, name, order.ID)
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:    fmt.Sprintf("Saved favourite %q from order #%s.", favourite.Name, shortID(order.ID)),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdFavList(ctx context.Context, params []string) (*Response, error) {
	favourites, err := k.client.ListFavourites(ctx)
	if err != nil {
		return nil, err
	}
	k.lastFavourites = favourites

	if len(favourites) == 0 {
		return &Response{Text: "No favourites saved. Save one with: fav save <order #> <name>", Success: true}, nil
	}

	var b strings.Builder
	b.WriteString("Favourites:\n")
	for i, favourite := range favourites {
		fmt.Fprintf(&b, "%3d. %-28s (from order #%s)\n", i+1, favourite.Name, shortID(favourite.TemplateOrder))
	}
	b.WriteString("Order again with: reorder <favourite #>")
	return &Response{Text: b.String(), Success: true}, nil
}

func (k *Kiosk) favouriteByNumber(raw string) (*api.Favourite, *Response) {
	if len(k.lastFavourites) == 0 {
		return nil, &Response{Text: "Run fav list first so favourites can be referenced by number.", Message: "no favourites loaded"}
	}
	idx, err := parseIndex(raw, len(k.lastFavourites))
	if err != nil {
		return nil, &Response{Text: err.Error(), Message: "invalid favourite number"}
	}
	return &k.lastFavourites[idx], nil
}

func (k *Kiosk) cmdFavDelete(ctx context.Context, params []string) (*Response, error) {
	favourite, resp := k.favouriteByNumber(params[0])
	if resp != nil {
		return resp, nil
	}

	if err := k.lifecycle.DeleteFavourite(ctx, favourite.ID); err != nil {
		return nil, err
	}
	return &Response{Text: fmt.Sprintf("Favourite %q deleted.", favourite.Name), Success: true}, nil
}

func (k *Kiosk) cmdReorder(ctx context.Context, params []string) (*Response, error) {
	favourite, resp := k.favouriteByNumber(params[0])
	if resp != nil {
		return resp, nil
	}

	var scheduledFor *time.Time
	if k.schedule != nil {
		scheduledFor = k.schedule
	}

	order, err := k.lifecycle.ReorderFromFavourite(ctx, favourite.ID, scheduledFor)
	if err != nil {
		return nil, err
	}
	k.schedule = nil

	return &Response{
		Text: fmt.Sprintf("Reordered %q — new order #%s, total %s, status %s",
			favourite.Name, shortID(order.ID), order.TotalPrice.String(), order.Status),
		Success: true,
	}, nil
}

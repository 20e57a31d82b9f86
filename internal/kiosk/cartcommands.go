package kiosk

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func (k *Kiosk) cmdMenu(ctx context.Context, params []string) (*Response, error) {
	items, err := k.client.ListMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	k.lastMenu = items

	if len(items) == 0 {
		return &Response{Text: "The menu is empty right now.", Success: true}, nil
	}

	var b strings.Builder
	b.WriteString("Menu:\n")
	for i, item := range items {
		marker := " "
		if !item.Available {
			marker = "✗"
		}
		fmt.Fprintf(&b, "%3d. %s %-28s %8s  %s\n", i+1, marker, item.Title, item.Price.String(), item.Category)
	}
	b.WriteString("Add with: add <menu #> <quantity> [customizations]")
	return &Response{Text: b.String(), Success: true}, nil
}

func (k *Kiosk) cmdAdd(ctx context.Context, params []string) (*Response, error) {
	if len(k.lastMenu) == 0 {
		return &Response{Text: "Run menu first so items can be referenced by number.", Message: "no menu loaded"}, nil
	}

	idx, err := parseIndex(params[0], len(k.lastMenu))
	if err != nil {
		return &Response{Text: err.Error(), Message: "invalid menu number"}, nil
	}

	quantity, err := strconv.Atoi(params[1])
	if err != nil || quantity < 1 {
		return &Response{Text: "Quantity must be a positive number.", Message: "invalid quantity"}, nil
	}

	item := k.lastMenu[idx]
	if !item.Available {
		return &Response{Text: fmt.Sprintf("%s is not available right now.", item.Title), Message: "item unavailable"}, nil
	}

	customizations := strings.Join(params[2:], " ")
	k.cart.Add(item, quantity, customizations)

	return &Response{
		Text:    fmt.Sprintf("Added %d × %s. Cart total: %s (%d lines)", quantity, item.Title, k.cart.Total().String(), k.cart.Len()),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdRemove(ctx context.Context, params []string) (*Response, error) {
	if len(k.lastMenu) == 0 {
		return &Response{Text: "Run menu first so items can be referenced by number.", Message: "no menu loaded"}, nil
	}

	idx, err := parseIndex(params[0], len(k.lastMenu))
	if err != nil {
		return &Response{Text: err.Error(), Message: "invalid menu number"}, nil
	}

	item := k.lastMenu[idx]
	k.cart.Remove(item.ID)
	return &Response{
		Text:    fmt.Sprintf("Removed %s. Cart total: %s", item.Title, k.cart.Total().String()),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdQty(ctx context.Context, params []string) (*Response, error) {
	if len(k.lastMenu) == 0 {
		return &Response{Text: "Run menu first so items can be referenced by number.", Message: "no menu loaded"}, nil
	}

	idx, err := parseIndex(params[0], len(k.lastMenu))
	if err != nil {
		return &Response{Text: err.Error(), Message: "invalid menu number"}, nil
	}

	quantity, err := strconv.Atoi(params[1])
	if err != nil || quantity < 1 {
		return &Response{Text: "Quantity must be a positive number.", Message: "invalid quantity"}, nil
	}

	k.cart.SetQuantity(k.lastMenu[idx].ID, quantity)
	return &Response{
		Text:    fmt.Sprintf("Quantity updated. Cart total: %s", k.cart.Total().String()),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdCart(ctx context.Context, params []string) (*Response, error) {
	lines := k.cart.Lines()
	if len(lines) == 0 {
		return &Response{Text: "Your cart is empty.", Success: true}, nil
	}

	var b strings.Builder
	b.WriteString("Cart:\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "  %d × %-28s %8s", line.Quantity, line.MenuItem.Title, line.Total().String())
		if line.Customizations != "" {
			fmt.Fprintf(&b, "  (%s)", line.Customizations)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total: %s", k.cart.Total().String())
	if k.schedule != nil {
		fmt.Fprintf(&b, "\nScheduled pickup: %s", k.schedule.Format(time.RFC3339))
	}
	return &Response{Text: b.String(), Success: true}, nil
}

func (k *Kiosk) cmdClear(ctx context.Context, params []string) (*Response, error) {
	k.cart.Clear()
	return &Response{Text: "Cart emptied.", Success: true}, nil
}

func (k *Kiosk) cmdSchedule(ctx context.Context, params []string) (*Response, error) {
	if params[0] == "off" {
		k.schedule = nil
		return &Response{Text: "Pickup scheduling cleared.", Success: true}, nil
	}

	when, err := time.Parse(time.RFC3339, params[0])
	if err != nil {
		return &Response{Text: "Expected an RFC3339 time, e.g. 2026-09-01T10:30:00Z, or off.", Message: "invalid time"}, nil
	}
	if when.Before(time.Now()) {
		return &Response{Text: "Pickup time must be in the future.", Message: "time in past"}, nil
	}

	k.schedule = &when
	return &Response{Text: fmt.Sprintf("Pickup scheduled for %s.", when.Format(time.RFC3339)), Success: true}, nil
}

func (k *Kiosk) cmdCheckout(ctx context.Context, params []string) (*Response, error) {
	notes := strings.Join(params, " ")

	order, err := k.lifecycle.Submit(ctx, notes, k.schedule)
	if err != nil {
		return nil, err
	}
	k.schedule = nil

	return &Response{
		Text: fmt.Sprintf("Order placed! #%s — total %s, status %s",
			shortID(order.ID), order.TotalPrice.String(), order.Status),
		Success: true,
	}, nil
}

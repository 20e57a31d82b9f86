package kiosk

import (
	"context"
	"fmt"
	"strings"
)

func (k *Kiosk) cmdOffers(ctx context.Context, params []string) (*Response, error) {
	offers, err := k.client.ListOffers(ctx)
	if err != nil {
		return nil, err
	}
	k.lastOffers = offers

	if len(offers) == 0 {
		return &Response{Text: "No loyalty offers available right now.", Success: true}, nil
	}

	var b strings.Builder
	b.WriteString("Loyalty offers:\n")
	for i, offer := range offers {
		fmt.Fprintf(&b, "%3d. %-28s %4d pts  %s\n", i+1, offer.Title, offer.PointsRequired, offer.Description)
	}
	b.WriteString("Redeem with: redeem <offer #>")
	return &Response{Text: b.String(), Success: true}, nil
}

func (k *Kiosk) cmdRedeem(ctx context.Context, params []string) (*Response, error) {
	if len(k.lastOffers) == 0 {
		return &Response{Text: "Run offers first so they can be referenced by number.", Message: "no offers loaded"}, nil
	}
	idx, err := parseIndex(params[0], len(k.lastOffers))
	if err != nil {
		return &Response{Text: err.Error(), Message: "invalid offer number"}, nil
	}

	offer := k.lastOffers[idx]
	redemption, err := k.client.RedeemOffer(ctx, offer.ID)
	if err != nil {
		return nil, err
	}

	if user, ok := k.sessions.User(); ok {
		user.LoyaltyPoints = redemption.PointsLeft
		if err := k.sessions.UpdateUser(user); err != nil {
			k.logger.Info("session update failed", "error", err)
		}
	}

	return &Response{
		Text: fmt.Sprintf("Redeemed %q. Show this code at the counter: %s (%d points left)",
			offer.Title, redemption.RedemptionCode, redemption.PointsLeft),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdNotifications(ctx context.Context, params []string) (*Response, error) {
	notifications, err := k.client.ListNotifications(ctx)
	if err != nil {
		return nil, err
	}
	k.lastNotifications = notifications

	if len(notifications) == 0 {
		return &Response{Text: "No notifications.", Success: true}, nil
	}

	var b strings.Builder
	unread := 0
	b.WriteString("Notifications:\n")
	for i, n := range notifications {
		marker := " "
		if !n.IsRead {
			marker = "•"
			unread++
		}
		fmt.Fprintf(&b, "%3d. %s %s — %s  (%s)\n", i+1, marker, n.Title, n.Message, n.SentAt.Local().Format("Jan 2 15:04"))
	}
	if unread > 0 {
		fmt.Fprintf(&b, "%d unread. Mark all read with: readall", unread)
	} else {
		b.WriteString("All read.")
	}
	return &Response{Text: b.String(), Success: true}, nil
}

func (k *Kiosk) cmdRead(ctx context.Context, params []string) (*Response, error) {
	if len(k.lastNotifications) == 0 {
		return &Response{Text: "Run notifications first so they can be referenced by number.", Message: "no notifications loaded"}, nil
	}
	idx, err := parseIndex(params[0], len(k.lastNotifications))
	if err != nil {
		return &Response{Text: err.Error(), Message: "invalid notification number"}, nil
	}

	if err := k.client.MarkRead(ctx, k.lastNotifications[idx].ID); err != nil {
		return nil, err
	}
	k.lastNotifications[idx].IsRead = true
	return &Response{Text: "Notification marked read.", Success: true}, nil
}

func (k *Kiosk) cmdReadAll(ctx context.Context, params []string) (*Response, error) {
	if err := k.client.MarkAllRead(ctx); err != nil {
		return nil, err
	}
	for i := range k.lastNotifications {
		k.lastNotifications[i].IsRead = true
	}
	return &Response{Text: "All notifications marked read.", Success: true}, nil
}

package kiosk

import (
	"context"
	"fmt"
	"strings"

	"github.com/brewbarclub/brewbar/internal/api"
)

func registerRequest(username, email, password string) api.RegisterRequest {
	return api.RegisterRequest{Username: username, Email: email, Password: password}
}

func (k *Kiosk) cmdHelp(ctx context.Context, params []string) (*Response, error) {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, def := range k.registry.Definitions() {
		name := def.Usage
		if name == "" {
			name = def.Canonical
		}
		fmt.Fprintf(&b, "  %-42s %s\n", name, def.Description)
	}
	b.WriteString("  exit                                       Leave the kiosk")
	return &Response{Text: b.String(), Success: true}, nil
}

func (k *Kiosk) cmdLogin(ctx context.Context, params []string) (*Response, error) {
	auth, err := k.client.Login(ctx, params[0], params[1])
	if err != nil {
		return nil, err
	}

	if err := k.sessions.SetSession(auth.Token, auth.User); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &Response{
		Text:    fmt.Sprintf("Welcome back, %s! You have %d loyalty points.", auth.User.Username, auth.User.LoyaltyPoints),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdRegister(ctx context.Context, params []string) (*Response, error) {
	auth, err := k.client.Register(ctx, registerRequest(params[0], params[1], params[2]))
	if err != nil {
		return nil, err
	}

	if err := k.sessions.SetSession(auth.Token, auth.User); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &Response{
		Text:    fmt.Sprintf("Account created. Welcome, %s!", auth.User.Username),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdLogout(ctx context.Context, params []string) (*Response, error) {
	if err := k.client.Logout(ctx); err != nil {
		k.logger.Info("remote logout failed", "error", err)
	}
	if err := k.sessions.Clear(); err != nil {
		return nil, err
	}
	k.cart.Clear()
	return &Response{Text: "Signed out.", Success: true}, nil
}

func (k *Kiosk) cmdProfile(ctx context.Context, params []string) (*Response, error) {
	user, err := k.client.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := k.sessions.UpdateUser(*user); err != nil {
		k.logger.Info("session update failed", "error", err)
	}

	return &Response{
		Text: fmt.Sprintf("%s <%s>\nName: %s %s\nRole: %s\nLoyalty points: %d",
			user.Username, user.Email, user.FirstName, user.LastName, user.Role, user.LoyaltyPoints),
		Success: true,
	}, nil
}

func (k *Kiosk) cmdProfileSet(ctx context.Context, params []string) (*Response, error) {
	value := strings.Join(params[1:], " ")

	var update api.ProfileUpdate
	switch params[0] {
	case "email":
		update.Email = &value
	case "first":
		update.FirstName = &value
	case "last":
		update.LastName = &value
	default:
		return &Response{Text: "Expected one of: email, first, last.", Message: "unknown profile field"}, nil
	}

	user, err := k.client.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	if err := k.sessions.UpdateUser(*user); err != nil {
		k.logger.Info("session update failed", "error", err)
	}

	return &Response{Text: "Profile updated.", Success: true}, nil
}

func (k *Kiosk) cmdPoints(ctx context.Context, params []string) (*Response, error) {
	points, err := k.client.Points(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{Text: fmt.Sprintf("Loyalty points: %d", points), Success: true}, nil
}

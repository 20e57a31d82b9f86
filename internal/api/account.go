package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest creates a new customer account.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	if username == "" || password == "" {
		return nil, &ValidationError{Reason: "username and password are required"}
	}

	payload := map[string]string{"username": username, "password": password}
	var auth AuthResponse
	if err := c.do(ctx, http.MethodPost, "/login/", payload, &auth); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &auth, nil
}

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, &ValidationError{Reason: "username and password are required"}
	}

	var auth AuthResponse
	if err := c.do(ctx, http.MethodPost, "/register/", req, &auth); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return &auth, nil
}

// Logout invalidates the server-side token. Local session cleanup is the
// caller's job regardless of the outcome here.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/logout/", nil, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// GetProfile fetches the caller's profile.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/profile/", nil, &user); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &user, nil
}

// ProfileUpdate carries the editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// UpdateProfile patches profile fields and returns the merged record.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPatch, "/profile/", update, &user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}

// ListOffers returns the redeemable loyalty offers, cheapest first. The
// collection is paginated; every page is fetched.
func (c *Client) ListOffers(ctx context.Context) ([]LoyaltyOffer, error) {
	offers, err := listAll[LoyaltyOffer](ctx, c, "/loyalty-offers/")
	if err != nil {
		return nil, fmt.Errorf("failed to list loyalty offers: %w", err)
	}
	return offers, nil
}

// RedeemOffer claims an offer against the caller's point balance.
func (c *Client) RedeemOffer(ctx context.Context, id uuid.UUID) (*Redemption, error) {
	var redemption Redemption
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/loyalty-offers/%s/redeem/", id), nil, &redemption); err != nil {
		return nil, fmt.Errorf("failed to redeem offer: %w", err)
	}
	return &redemption, nil
}

// Points returns the caller's current loyalty point balance.
func (c *Client) Points(ctx context.Context) (int, error) {
	var resp struct {
		Points int `json:"points"`
	}
	if err := c.do(ctx, http.MethodGet, "/loyalty-points/", nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to get loyalty points: %w", err)
	}
	return resp.Points, nil
}

package kiosk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/brewbarclub/brewbar/internal/api"
	"github.com/brewbarclub/brewbar/internal/cart"
	"github.com/brewbarclub/brewbar/internal/checkout"
	"github.com/brewbarclub/brewbar/internal/session"
)

// Kiosk is the customer-facing console: a command registry over the cart,
// the order lifecycle controller and the session store. The cart is scoped
// to the kiosk flow; the session is process-wide.
type Kiosk struct {
	client    *api.Client
	cart      *cart.Cart
	sessions  *session.Store
	lifecycle *checkout.Lifecycle
	registry  *Registry
	logger    apt.Logger

	in  *bufio.Reader
	out io.Writer

	// lines carries input read off in by the Run reader goroutine, so the
	// REPL can react to context cancellation while waiting for input.
	// Nil until Run starts; confirm falls back to a direct read then.
	lines chan string

	// Listing caches so commands can reference items by display number.
	lastMenu          []api.MenuItem
	lastOrders        []api.Order
	lastFavourites    []api.Favourite
	lastOffers        []api.LoyaltyOffer
	lastNotifications []api.Notification

	// schedule carries a pending pickup time into the next checkout.
	schedule *time.Time
}

func New(client *api.Client, sessions *session.Store, in io.Reader, out io.Writer, logger apt.Logger) *Kiosk {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	k := &Kiosk{
		client:   client,
		cart:     cart.New(),
		sessions: sessions,
		logger:   logger,
		in:       bufio.NewReader(in),
		out:      out,
	}

	k.lifecycle = checkout.NewLifecycle(checkout.Deps{
		Client:   client,
		Cart:     k.cart,
		Sessions: sessions,
		Confirm:  k.confirm,
	}, logger)
	k.registry = NewRegistry(k)

	return k
}

// Cart exposes the kiosk's flow-scoped cart.
func (k *Kiosk) Cart() *cart.Cart { return k.cart }

// Process parses and executes one line of input.
func (k *Kiosk) Process(ctx context.Context, input string) (*Response, error) {
	cmd, params, found := k.registry.FindCommand(input)
	if !found {
		return &Response{
			Text:    fmt.Sprintf("Command not recognized: %q. Type help to see available commands.", strings.TrimSpace(input)),
			Message: "command not recognized",
		}, nil
	}

	if len(params) < cmd.MinParams || len(params) > cmd.MaxParams {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Canonical
		}
		return &Response{
			Text:    fmt.Sprintf("Usage: %s", usage),
			Message: "invalid parameter count",
		}, nil
	}

	if cmd.RequiresAuth && !k.sessions.IsAuthenticated() {
		return &Response{
			Text:    "Please sign in first: login <username> <password>",
			Message: "authentication required",
		}, nil
	}

	return cmd.Handler(ctx, params)
}

// Run reads commands from the kiosk input until EOF, "exit" or context
// cancellation. Input is read on a separate goroutine so cancellation takes
// effect while waiting for a line, not after it.
func (k *Kiosk) Run(ctx context.Context) error {
	fmt.Fprintln(k.out, "brewbar kiosk — type help to get started, exit to leave")
	k.prompt()

	k.lines = make(chan string)
	readErrs := make(chan error, 1)
	go func() {
		defer close(k.lines)
		for {
			line, err := k.in.ReadString('\n')
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErrs <- err
				}
				return
			}
			select {
			case k.lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErrs:
			return fmt.Errorf("failed to read input: %w", err)

		case line, ok := <-k.lines:
			if !ok {
				fmt.Fprintln(k.out)
				return nil
			}

			line = strings.TrimSpace(line)
			if line == "" {
				k.prompt()
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}

			resp, err := k.Process(ctx, line)
			if err != nil {
				fmt.Fprintf(k.out, "error: %s\n", userMessage(err))
			} else if resp != nil && resp.Text != "" {
				fmt.Fprintln(k.out, resp.Text)
			}
			k.prompt()
		}
	}
}

func (k *Kiosk) prompt() {
	if user, ok := k.sessions.User(); ok {
		fmt.Fprintf(k.out, "%s> ", user.Username)
		return
	}
	fmt.Fprint(k.out, "> ")
}

// confirm asks on the kiosk console; anything but y/yes declines. Inside Run
// the answer arrives through the reader goroutine's channel.
func (k *Kiosk) confirm(prompt string) bool {
	fmt.Fprintf(k.out, "%s [y/N] ", prompt)

	var line string
	if k.lines != nil {
		l, ok := <-k.lines
		if !ok {
			return false
		}
		line = l
	} else {
		l, err := k.in.ReadString('\n')
		if err != nil {
			return false
		}
		line = l
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// userMessage derives a display message from the error taxonomy, falling
// back to a generic line rather than leaking transport details.
func userMessage(err error) string {
	var (
		validation *api.ValidationError
		conflict   *api.ConflictError
		server     *api.ServerError
		network    *api.NetworkError
	)

	switch {
	case errors.As(err, &validation):
		return validation.Reason
	case errors.As(err, &conflict):
		return conflict.Message
	case errors.As(err, &server):
		if server.Message != "" {
			return server.Message
		}
		return "the server could not handle that request"
	case errors.As(err, &network):
		return "network problem — please try again"
	case errors.Is(err, checkout.ErrDeclined):
		return "cancelled"
	}
	return err.Error()
}

// parseIndex converts a 1-based display number into a slice index.
func parseIndex(raw string, max int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("invalid number %q, expected 1-%d", raw, max)
	}
	return n - 1, nil
}

package kiosk

import (
	"context"
	"strings"
)

// Response is the structured result of a kiosk command.
type Response struct {
	Text    string
	Success bool
	Message string
}

// HandlerFunc processes a matched command.
type HandlerFunc func(ctx context.Context, params []string) (*Response, error)

// Definition describes a command, its short forms and parameter bounds.
type Definition struct {
	Canonical    string
	ShortForms   []string
	Description  string
	Usage        string
	MinParams    int
	MaxParams    int
	RequiresAuth bool
	Handler      HandlerFunc
}

// Registry holds all kiosk commands.
type Registry struct {
	commands map[string]*Definition
	ordered  []string
}

func NewRegistry(k *Kiosk) *Registry {
	r := &Registry{commands: make(map[string]*Definition)}
	r.registerAll(k)
	return r
}

func (r *Registry) register(def *Definition) {
	r.commands[def.Canonical] = def
	r.ordered = append(r.ordered, def.Canonical)
}

// FindCommand matches tokenized input against canonicals, two-word
// canonicals ("fav save" -> "fav-save") and short forms.
func (r *Registry) FindCommand(input string) (*Definition, []string, bool) {
	tokens := strings.Fields(strings.TrimSpace(input))
	if len(tokens) == 0 {
		return nil, nil, false
	}

	first := strings.ToLower(tokens[0])

	if len(tokens) >= 2 {
		twoWord := first + "-" + strings.ToLower(tokens[1])
		if cmd, ok := r.commands[twoWord]; ok {
			return cmd, tokens[2:], true
		}
	}

	if cmd, ok := r.commands[first]; ok {
		return cmd, tokens[1:], true
	}

	for _, cmd := range r.commands {
		for _, short := range cmd.ShortForms {
			if short == first {
				return cmd, tokens[1:], true
			}
		}
	}

	return nil, nil, false
}

// Definitions returns the commands in registration order, for help output.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.ordered))
	for _, canonical := range r.ordered {
		out = append(out, r.commands[canonical])
	}
	return out
}

func (r *Registry) registerAll(k *Kiosk) {
	r.register(&Definition{
		Canonical: "help", ShortForms: []string{"h", "?"},
		Description: "Show available commands",
		Handler:     k.cmdHelp, MaxParams: 1,
	})
	r.register(&Definition{
		Canonical: "login", Usage: "login <username> <password>",
		Description: "Sign in",
		MinParams:   2, MaxParams: 2, Handler: k.cmdLogin,
	})
	r.register(&Definition{
		Canonical: "register", Usage: "register <username> <email> <password>",
		Description: "Create an account and sign in",
		MinParams:   3, MaxParams: 3, Handler: k.cmdRegister,
	})
	r.register(&Definition{
		Canonical: "logout", Description: "Sign out and clear the stored session",
		RequiresAuth: true, Handler: k.cmdLogout,
	})
	r.register(&Definition{
		Canonical: "profile", ShortForms: []string{"whoami"},
		Description:  "Show the signed-in profile and loyalty points",
		RequiresAuth: true, Handler: k.cmdProfile,
	})
	r.register(&Definition{
		Canonical: "profile-set", Usage: "profile set <email|first|last> <value...>",
		Description:  "Update a profile field",
		MinParams:    2, MaxParams: 16, RequiresAuth: true, Handler: k.cmdProfileSet,
	})
	r.register(&Definition{
		Canonical: "menu", ShortForms: []string{"m"},
		Description:  "List the menu",
		RequiresAuth: true, Handler: k.cmdMenu,
	})
	r.register(&Definition{
		Canonical: "add", Usage: "add <menu #> <quantity> [customizations...]",
		Description:  "Add a menu item to the cart",
		MinParams:    2, MaxParams: 32, RequiresAuth: true, Handler: k.cmdAdd,
	})
	r.register(&Definition{
		Canonical: "remove", Usage: "remove <menu #>",
		Description:  "Remove a line from the cart",
		MinParams:    1, MaxParams: 1, RequiresAuth: true, Handler: k.cmdRemove,
	})
	r.register(&Definition{
		Canonical: "qty", Usage: "qty <menu #> <quantity>",
		Description:  "Change a line's quantity",
		MinParams:    2, MaxParams: 2, RequiresAuth: true, Handler: k.cmdQty,
	})
	r.register(&Definition{
		Canonical: "cart", ShortForms: []string{"c"},
		Description:  "Show the cart",
		RequiresAuth: true, Handler: k.cmdCart,
	})
	r.register(&Definition{
		Canonical: "clear", Description: "Empty the cart",
		RequiresAuth: true, Handler: k.cmdClear,
	})
	r.register(&Definition{
		Canonical: "schedule", Usage: "schedule <RFC3339 time | off>",
		Description:  "Set or clear a pickup time for the next checkout",
		MinParams:    1, MaxParams: 1, RequiresAuth: true, Handler: k.cmdSchedule,
	})
	r.register(&Definition{
		Canonical: "checkout", Usage: "checkout [notes...]",
		Description:  "Submit the cart as an order",
		MaxParams:    64, RequiresAuth: true, Handler: k.cmdCheckout,
	})
	r.register(&Definition{
		Canonical: "orders", ShortForms: []string{"o"},
		Description:  "List my orders",
		RequiresAuth: true, Handler: k.cmdOrders,
	})
	r.register(&Definition{
		Canonical: "cancel", Usage: "cancel <order #>",
		Description:  "Cancel a RECEIVED order",
		MinParams:    1, MaxParams: 1, RequiresAuth: true, Handler: k.cmdCancel,
	})
	r.register(&Definition{
		Canonical: "edit", Usage: "edit <order #>",
		Description:  "Load an order's items into the cart for editing",
		MinParams:    1, MaxParams: 1, RequiresAuth: true, Handler: k.cmdEdit,
	})
	r.register(&Definition{
		Canonical: "update", Usage: "update <order #> [notes...]",
		Description:  "Submit the cart as an edit of an order",
		MinParams:    1, MaxParams: 64, RequiresAuth: true, Handler: k.cmdUpdate,
	})
	r.register(&Definition{
		Canonical: "fav-mark", Usage: "fav mark <order #>",
		Description:  "Toggle the favourite flag on an order",
		MinParams:    1, MaxParams: 1, RequiresAuth: true, Handler: k.cmdFavMark,
	})
	r.register(&Definition{
		Canonical: "fav-save", Usage: "fav save <order #> <name...>",
		Description:  "Save an order as a favourite",
		MinParams:    2, MaxParams: 32, RequiresAuth: true, Handler: k.cmdFavSave,
	})
	r.register(&Definition{
		Canonical: "fav-list", ShortForms: []string{"favs"},
		Description:  "List favourites",
		RequiresAuth: true, Handler: k.cmdFavList,
	})
	r.register(&Definition{
		Canonical: "fav-delete", Usage: "fav delete <favourite #>",
		Description:  "Delete a favourite",
		MinParams:    1, MaxParams: 1, RequiresAuth: true, Handler: k.cmdFavDelete,
	})
	r.register(&Definition{
		Canonical: "reorder", Usage: "reorder <favourite #>",
		Description:  "Order again from a favourite",
		MinParams:    1, MaxParams: 1, RequiresAuth: true, Handler: k.cmdReorder,
	})
	r.register(&Definition{
		Canonical: "offers", Description: "List loyalty offers",
		RequiresAuth: true, Handler: k.cmdOffers,
	})
	r.register(&Definition{
		Canonical: "redeem", Usage: "redeem <offer #>",
		Description:  "Redeem a loyalty offer",
		MinParams:    1, MaxParams: 1, RequiresAuth: true, Handler: k.cmdRedeem,
	})
	r.register(&Definition{
		Canonical: "points", Description: "Show my loyalty point balance",
		RequiresAuth: true, Handler: k.cmdPoints,
	})
	r.register(&Definition{
		Canonical: "notifications", ShortForms: []string{"n"},
		Description:  "List notifications",
		RequiresAuth: true, Handler: k.cmdNotifications,
	})
	r.register(&Definition{
		Canonical: "read", Usage: "read <notification #>",
		Description:  "Mark one notification read",
		MinParams:    1, MaxParams: 1, RequiresAuth: true, Handler: k.cmdRead,
	})
	r.register(&Definition{
		Canonical: "readall", Description: "Mark all notifications read",
		RequiresAuth: true, Handler: k.cmdReadAll,
	})
}

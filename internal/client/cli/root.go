package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/client/services"
)

func (a *App) getStatus(ctx context.Context) string {
	var parts []string

	switch a.session.State() {
	case models.StateTwoFactorPending:
		parts = append(parts, "2fa pending")
	case models.StateLoggedIn:
		parts = append(parts, a.router.Focus(ctx).String())
		if n := a.cartCount.Load(); n >= 0 {
			parts = append(parts, fmt.Sprintf("cart %d", n))
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Root runs the REPL until the user exits or input ends.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to the bakery console (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}

// report prints err the way a screen alert would show it.
func (a *App) report(err error) {
	title, msg := services.Describe(err)
	a.printf("%s: %s\n", title, msg)
}

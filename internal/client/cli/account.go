package cli

import (
	"context"
	"strconv"
)

func (a *App) WhoAmI(ctx context.Context) error {
	rec, err := a.session.Current(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	if !rec.Authenticated() {
		a.println("Not signed in.")
		return nil
	}
	a.printf("user %s, role %s, state %s\n", rec.UserID, rec.Role.OrDefault(), a.session.State())
	return nil
}

// Profile shows the profile. Fetching it doubles as the identity check, so a
// deleted account signs the console out here.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.profiles.Get(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	a.printf("%s %s <%s>", p.FirstName, p.LastName, p.Email)
	if p.Phone != "" {
		a.printf(" %s", p.Phone)
	}
	a.println()
	return nil
}

func (a *App) EditName(ctx context.Context) error {
	v, err := a.prompt("Enter first name", "Enter last name")
	if err != nil {
		return err
	}
	if err := a.profiles.UpdateName(ctx, v[0], v[1]); err != nil {
		a.report(err)
		return err
	}
	a.println("Name updated.")
	return nil
}

func (a *App) Cart(ctx context.Context) error {
	c, err := a.cart.Get(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	if len(c.Items) == 0 {
		a.println("Your cart is empty.")
		return nil
	}
	for _, it := range c.Items {
		a.printf("%-24s x%d\n", it.ProductID, it.Quantity)
	}
	a.cartCount.Store(int64(c.Count()))
	return nil
}

// AddToCart handles "add <productId> <qty> <stock>".
func (a *App) AddToCart(ctx context.Context, args []string) error {
	// Unparsable numbers become 0 and are rejected by the cart service.
	qty, _ := strconv.Atoi(args[1])
	stock, _ := strconv.Atoi(args[2])

	n, err := a.cart.Add(ctx, args[0], qty, stock)
	if err != nil {
		a.report(err)
		return err
	}
	a.printf("%s in cart: %d\n", args[0], n)
	return nil
}

func (a *App) TwoFactorStatus(ctx context.Context) error {
	st, err := a.twoFactor.Status(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	if st.Enabled {
		a.println("Two-factor authentication is enabled.")
	} else {
		a.println("Two-factor authentication is disabled.")
	}
	return nil
}

func (a *App) TwoFactorEnable(ctx context.Context) error {
	sec, err := a.twoFactor.Enable(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	a.println("Add this secret to your authenticator app:", sec.Secret)
	if sec.URL != "" {
		a.println(sec.URL)
	}
	a.println("Then run 'verify' with a code from the app.")
	return nil
}

func (a *App) TwoFactorDisable(ctx context.Context) error {
	if err := a.twoFactor.Disable(ctx); err != nil {
		a.report(err)
		return err
	}
	a.println("Two-factor authentication disabled.")
	return nil
}


package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
)

// MsgInvalidQuantity is reported for a missing product or a non-positive
// quantity.
const MsgInvalidQuantity = "Please enter a valid quantity."

// CartService works on the signed-in user's cart. Every call goes through
// the guard, so there is no cart traffic without credentials.
type CartService struct {
	guard *Guard
	api   client.Client
}

func NewCartService(guard *Guard, api client.Client) *CartService {
	return &CartService{guard: guard, api: api}
}

func (c *CartService) Get(ctx context.Context) (*models.Cart, error) {
	var cart *models.Cart
	err := c.guard.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		cart, err = c.api.GetCart(ctx, token)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// Add merges qty units of productID into the cart, clamping the line to
// stock, and returns the resulting quantity.
func (c *CartService) Add(ctx context.Context, productID string, qty, stock int) (int, error) {
	if blank(productID) || qty <= 0 {
		return 0, invalid(MsgInvalidQuantity)
	}

	var final int
	err := c.guard.Do(ctx, func(ctx context.Context, token string) error {
		cart, err := c.api.GetCart(ctx, token)
		if err != nil {
			return err
		}
		before := 0
		if i := cart.Find(productID); i >= 0 {
			before = cart.Items[i].Quantity
		}

		final = cart.Merge(productID, qty, stock)
		if final == before {
			return nil
		}
		return c.api.SetCartItem(ctx, token, models.CartItem{ProductID: productID, Quantity: final})
	})
	if err != nil {
		return 0, fmt.Errorf("add to cart: %w", err)
	}
	return final, nil
}

func (c *CartService) Count(ctx context.Context) (int, error) {
	var n int
	err := c.guard.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		n, err = c.api.CartCount(ctx, token)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("cart count: %w", err)
	}
	return n, nil
}

// WatchCount polls the cart count every interval, starting immediately,
// and hands each result to fn. It blocks until ctx is cancelled, which is
// how the owning view stops it; fn is never called after that. A
// non-positive interval is an error and nothing is polled.
func (c *CartService) WatchCount(ctx context.Context, interval time.Duration, fn func(count int, err error)) error {
	if interval <= 0 {
		return fmt.Errorf("cart watch: interval must be positive, got %s", interval)
	}

	poll := func() {
		n, err := c.Count(ctx)
		if ctx.Err() != nil {
			return
		}
		fn(n, err)
	}

	poll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			poll()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

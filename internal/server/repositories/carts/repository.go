// Package carts stores per-user cart lines.
package carts

import (
	"context"

	"github.com/dmitrijs2005/bakerykit/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]models.CartItem, error)
	// Set stores the line's final quantity; zero removes it.
	Set(ctx context.Context, userID string, item models.CartItem) error
	// Count sums the quantities of all lines.
	Count(ctx context.Context, userID string) (int, error)
}

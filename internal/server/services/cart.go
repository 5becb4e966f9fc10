package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/bakerykit/internal/server/models"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/repomanager"
)

// CartService stores the final quantity per line; merging and stock
// clamping happen on the client.
type CartService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCartService(db *sql.DB, m repomanager.RepositoryManager) *CartService {
	return &CartService{db: db, repomanager: m}
}

func (s *CartService) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	items, err := s.repomanager.Carts(s.db).List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// SetItem stores item. A zero quantity removes the line.
func (s *CartService) SetItem(ctx context.Context, userID string, item models.CartItem) error {
	item.ProductID = strings.TrimSpace(item.ProductID)
	if item.ProductID == "" || item.Quantity < 0 {
		return invalid(MsgInvalidItem)
	}
	return s.repomanager.Carts(s.db).Set(ctx, userID, item)
}

func (s *CartService) Count(ctx context.Context, userID string) (int, error) {
	return s.repomanager.Carts(s.db).Count(ctx, userID)
}

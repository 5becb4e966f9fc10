package models

type CartItem struct {
	ProductID string
	Quantity  int
}

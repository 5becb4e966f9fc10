package models

// CartItem is one product line. ProductID is unique within a cart.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the ordered, user-scoped shopping cart.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Find returns the index of productID or -1.
func (c *Cart) Find(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Merge adds qty of productID, clamping the line to stock instead of
// overflowing. It returns the resulting quantity for the line. Non-positive
// qty or stock leaves the cart unchanged.
func (c *Cart) Merge(productID string, qty, stock int) int {
	idx := c.Find(productID)
	current := 0
	if idx >= 0 {
		current = c.Items[idx].Quantity
	}
	if qty <= 0 || stock <= 0 {
		return current
	}

	next := current + qty
	if next > stock {
		next = stock
	}

	if idx >= 0 {
		c.Items[idx].Quantity = next
	} else {
		c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: next})
	}
	return next
}

// Count returns the total number of units.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

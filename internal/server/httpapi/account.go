package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/bakerykit/internal/server/models"
)

func (s *HTTPServer) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Profile(r.Context(), claimsFromContext(r.Context()).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
	})
}

func (s *HTTPServer) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.users.UpdateProfile(r.Context(), claimsFromContext(r.Context()).UserID, models.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated")
}

func (s *HTTPServer) updateName(w http.ResponseWriter, r *http.Request) {
	var req updateNameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.users.UpdateName(r.Context(), claimsFromContext(r.Context()).UserID, req.FirstName, req.LastName); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Name updated")
}

func (s *HTTPServer) getCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.carts.Items(r.Context(), claimsFromContext(r.Context()).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := cartResponse{Items: make([]cartItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, cartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) setCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItem
	if !decodeJSON(w, r, &req) {
		return
	}

	item := models.CartItem{ProductID: req.ProductID, Quantity: req.Quantity}
	if err := s.carts.SetItem(r.Context(), claimsFromContext(r.Context()).UserID, item); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *HTTPServer) cartCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.carts.Count(r.Context(), claimsFromContext(r.Context()).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartCountResponse{Count: n})
}

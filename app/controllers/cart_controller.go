package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/response"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// Show returns the cart lines together with the running count and total.
func (c *CartController) Show(w http.ResponseWriter, r *http.Request) {
	items := c.carts.Cart()
	response.Success(w, map[string]interface{}{
		"items": items,
		"count": c.carts.Count(),
		"total": c.carts.Total(),
	})
}

// Add puts a product in the cart, or bumps its quantity when already there.
func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if !decode(w, r, &product) {
		return
	}

	items, err := c.carts.AddToCart(product)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"items": items,
		"count": c.carts.Count(),
		"total": c.carts.Total(),
	})
}

// UpdateQuantity sets the quantity of one cart line.
func (c *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &body) {
		return
	}

	items, err := c.carts.UpdateQuantity(chi.URLParam(r, "id"), body.Quantity)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"items": items,
		"count": c.carts.Count(),
		"total": c.carts.Total(),
	})
}

// Remove drops one cart line. Removing an unknown product is a no-op.
func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	items, err := c.carts.RemoveFromCart(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"items": items,
		"count": c.carts.Count(),
		"total": c.carts.Total(),
	})
}

// Clear empties the cart.
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	if err := c.carts.ClearCart(); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"items": []models.CartItem{},
		"count": 0,
		"total": 0,
	})
}

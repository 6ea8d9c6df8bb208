package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/plumbstore/internal/auth"
	"github.com/MikeMC777/plumbstore/internal/cart"
	"github.com/MikeMC777/plumbstore/internal/httpx"
	"github.com/MikeMC777/plumbstore/internal/product"
	"github.com/MikeMC777/plumbstore/internal/session"
)

// cartOwner is the logged-in user when there is one, else the session.
func cartOwner(c *gin.Context) cart.Owner {
	return cart.Owner{UserID: auth.UserID(c), SessionID: session.From(c).ID()}.Normalize()
}

// updateItemRequest changes one or both of quantity and fulfillment.
type updateItemRequest struct {
	Quantity    *int                 `json:"quantity"    example:"3"`
	Fulfillment *product.Fulfillment `json:"fulfillment" example:"collection"`
}

// @Summary Current cart
// @Tags    cart
// @Produce json
// @Success 200 {object} httpx.Envelope
// @Router  /cart [get]
func getCartHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, err := svc.Get(c.Request.Context(), cartOwner(c))
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, ct)
	}
}

// @Summary Add a line to the cart
// @Tags    cart
// @Accept  json
// @Produce json
// @Param   body body cart.AddInput true "line"
// @Success 200 {object} httpx.Envelope
// @Failure 409 {object} httpx.Envelope
// @Router  /cart/items [post]
func addCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.AddInput
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if in.InventoryID == "" {
			httpx.Fail(c, http.StatusBadRequest, "inventory_id is required")
			return
		}
		ct, err := svc.Add(c.Request.Context(), cartOwner(c), in)
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, ct)
	}
}

// @Summary Change quantity or fulfillment of a line
// @Tags    cart
// @Accept  json
// @Produce json
// @Param   id   path string            true "item id"
// @Param   body body updateItemRequest true "changes"
// @Success 200 {object} httpx.Envelope
// @Router  /cart/items/{id} [patch]
func updateCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in updateItemRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if in.Quantity == nil && in.Fulfillment == nil {
			httpx.Fail(c, http.StatusBadRequest, "quantity or fulfillment is required")
			return
		}

		ctx, owner, id := c.Request.Context(), cartOwner(c), c.Param("id")
		var (
			ct  *cart.Cart
			err error
		)
		// fulfillment first: a quantity of 0 removes the line.
		if in.Fulfillment != nil {
			before, err := svc.Get(ctx, owner)
			if err != nil {
				fail(c, err)
				return
			}
			if ct, err = svc.SetFulfillment(ctx, owner, id, *in.Fulfillment); err != nil {
				fail(c, err)
				return
			}
			// the line may have merged into the other fulfillment's line
			if merged, ok := lineFor(before, ct, id); ok {
				id = merged
			}
		}
		if in.Quantity != nil {
			if ct, err = svc.UpdateQuantity(ctx, owner, id, *in.Quantity); err != nil {
				fail(c, err)
				return
			}
		}
		httpx.OK(c, http.StatusOK, ct)
	}
}

// lineFor finds where itemID lives in after, matching on inventory and
// fulfillment when the row itself is gone.
func lineFor(before, after *cart.Cart, itemID string) (string, bool) {
	var inv string
	for _, it := range before.Items {
		if it.ID == itemID {
			inv = it.InventoryID
		}
	}
	for _, it := range after.Items {
		if it.ID == itemID {
			return it.ID, true
		}
	}
	for _, it := range after.Items {
		if it.InventoryID == inv {
			if want, ok := fulfillmentOf(before, itemID); ok && it.Fulfillment != want {
				return it.ID, true
			}
		}
	}
	return "", false
}

func fulfillmentOf(ct *cart.Cart, itemID string) (product.Fulfillment, bool) {
	for _, it := range ct.Items {
		if it.ID == itemID {
			return it.Fulfillment, true
		}
	}
	return "", false
}

// @Summary Remove a line
// @Tags    cart
// @Produce json
// @Param   id path string true "item id"
// @Success 200 {object} httpx.Envelope
// @Failure 404 {object} httpx.Envelope
// @Router  /cart/items/{id} [delete]
func removeCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, err := svc.Remove(c.Request.Context(), cartOwner(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, ct)
	}
}

package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/plumbstore/internal/auth"
	"github.com/MikeMC777/plumbstore/internal/checkout"
	"github.com/MikeMC777/plumbstore/internal/httpx"
	"github.com/MikeMC777/plumbstore/internal/order"
	"github.com/MikeMC777/plumbstore/internal/session"
	"github.com/MikeMC777/plumbstore/internal/user"
)

func customer(c *gin.Context) checkout.Customer {
	sess := session.From(c)
	return checkout.Customer{
		UserID:      auth.UserID(c),
		GuestID:     sess.Data.GuestUserID,
		SessionID:   sess.ID(),
		AddressIDs:  sess.Data.AddressIDs,
		LastOrderID: sess.Data.LastOrderID,
	}
}

// @Summary Checkout summary for a step
// @Tags    checkout
// @Produce json
// @Param   step query string false "details, delivery, payment or confirmation"
// @Success 200 {object} httpx.Envelope
// @Router  /checkout [get]
func checkoutSummaryHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svc.Summary(c.Request.Context(), customer(c), checkout.ParseStep(c.Query("step")))
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, sum)
	}
}

// @Summary Submit customer details and shipping address
// @Tags    checkout
// @Accept  json
// @Produce json
// @Param   body body checkout.DetailsInput true "details"
// @Success 200 {object} httpx.Envelope
// @Failure 409 {object} httpx.Envelope
// @Router  /checkout/details [post]
func submitDetailsHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.DetailsInput
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		res, err := svc.SubmitDetails(c.Request.Context(), customer(c), in)
		if err != nil {
			fail(c, err)
			return
		}
		if res.User.Role == user.RoleGuest {
			sess := session.From(c)
			sess.SetGuest(res.User.ID)
			if res.Address != nil {
				sess.AddAddress(res.Address.ID)
			}
		}
		httpx.OK(c, http.StatusOK, res)
	}
}

// @Summary Place a pre-order from the cart
// @Tags    checkout
// @Accept  json
// @Produce json
// @Param   body body checkout.PreOrderInput true "pre-order"
// @Success 201 {object} httpx.Envelope
// @Failure 409 {object} httpx.Envelope
// @Router  /checkout/pre-order [post]
func placePreOrderHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.PreOrderInput
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&in); err != nil {
				httpx.Fail(c, http.StatusBadRequest, "invalid json")
				return
			}
		}
		o, err := svc.PlacePreOrder(c.Request.Context(), customer(c), in)
		if err != nil {
			fail(c, err)
			return
		}
		session.From(c).SetLastOrder(o.ID)
		httpx.OK(c, http.StatusCreated, o)
	}
}

// @Summary Confirm payment for a pre-order
// @Tags    checkout
// @Accept  json
// @Produce json
// @Param   Idempotency-Key header string               false "client retry key"
// @Param   body            body   checkout.PaymentInput true  "payment"
// @Success 200 {object} httpx.Envelope
// @Failure 402 {object} httpx.Envelope
// @Failure 409 {object} httpx.Envelope
// @Router  /checkout/payment [post]
func confirmPaymentHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.PaymentInput
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if in.OrderID == "" {
			in.OrderID = session.From(c).Data.LastOrderID
		}
		if in.OrderID == "" {
			httpx.Fail(c, http.StatusBadRequest, "order_id is required")
			return
		}
		key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		o, err := svc.ConfirmPayment(c.Request.Context(), customer(c), in, key)
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, o)
	}
}

// @Summary Order confirmation
// @Tags    orders
// @Produce json
// @Param   number path string true "order number"
// @Success 200 {object} httpx.Envelope
// @Failure 404 {object} httpx.Envelope
// @Router  /orders/{number} [get]
func confirmationHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		conf, err := svc.Confirmation(c.Request.Context(), customer(c), strings.ToUpper(c.Param("number")))
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, conf)
	}
}

// @Summary Move an order along its lifecycle
// @Tags    admin
// @Accept  json
// @Produce json
// @Param   id            path   string                    true "order id"
// @Param   X-Admin-Token header string                    true "admin token"
// @Param   body          body   order.StatusChangeRequest true "new status"
// @Success 200 {object} httpx.Envelope
// @Failure 409 {object} httpx.Envelope
// @Router  /admin/orders/{id}/status [put]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.StatusChangeRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		st, err := order.ParseStatus(in.Status)
		if err != nil {
			fail(c, err)
			return
		}
		o, err := svc.ChangeStatus(c.Request.Context(), c.Param("id"), st, in.Note)
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, o)
	}
}

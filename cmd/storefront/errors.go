package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/cart"
	"github.com/MikeMC777/plumbstore/internal/category"
	"github.com/MikeMC777/plumbstore/internal/checkout"
	"github.com/MikeMC777/plumbstore/internal/httpx"
	"github.com/MikeMC777/plumbstore/internal/logx"
	"github.com/MikeMC777/plumbstore/internal/order"
	"github.com/MikeMC777/plumbstore/internal/payment"
	"github.com/MikeMC777/plumbstore/internal/product"
	"github.com/MikeMC777/plumbstore/internal/user"
)

var statusOf = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		category.ErrNotFound, product.ErrNotFound, product.ErrInventoryNotFound,
		cart.ErrNotFound, cart.ErrItemNotFound, user.ErrNotFound, user.ErrAddressNotFound, order.ErrNotFound,
	}},
	{http.StatusBadRequest, []error{
		category.ErrInvalidTier, category.ErrInvalidType,
		cart.ErrInvalidQuantity, cart.ErrInvalidFulfillment, cart.ErrNoOwner,
		user.ErrInvalidEmail, user.ErrNameRequired, user.ErrWeakPassword, user.ErrInvalidAddress,
		order.ErrInvalidStatus,
		checkout.ErrDetailsRequired, checkout.ErrAddressRequired, checkout.ErrEmptyCart,
		payment.ErrInvalidReference,
	}},
	{http.StatusUnauthorized, []error{user.ErrInvalidCredentials}},
	{http.StatusPaymentRequired, []error{payment.ErrDeclined, payment.ErrAmountMismatch, payment.ErrUnknownPayment}},
	{http.StatusConflict, []error{
		user.ErrAlreadyExists,
		cart.ErrInsufficientStock, cart.ErrFulfillmentUnavailable, product.ErrInsufficientStock,
		checkout.ErrOutOfStock, checkout.ErrOrderNotPending, checkout.ErrPaymentInFlight,
		order.ErrInvalidTransition, order.ErrDuplicatePayment,
	}},
	{http.StatusBadGateway, []error{payment.ErrGatewayFailure}},
}

// fail maps a service error to its HTTP status and writes the envelope.
// Unknown errors are logged and reported as 500 without details.
func fail(c *gin.Context, err error) {
	for _, s := range statusOf {
		for _, e := range s.errs {
			if errors.Is(err, e) {
				httpx.Fail(c, s.status, err.Error())
				return
			}
		}
	}
	_ = c.Error(err)
	logx.From(c.Request.Context()).Error("request failed", zap.Error(err))
	httpx.Fail(c, http.StatusInternalServerError, "internal error")
}

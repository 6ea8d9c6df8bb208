package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/auth"
	"github.com/MikeMC777/plumbstore/internal/httpx"
	"github.com/MikeMC777/plumbstore/internal/logx"
	"github.com/MikeMC777/plumbstore/internal/order"
	"github.com/MikeMC777/plumbstore/internal/session"
	"github.com/MikeMC777/plumbstore/internal/user"
)

type loginRequest struct {
	Email    string `json:"email"    example:"jo@example.com"`
	Password string `json:"password" example:"correct-horse"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// signIn issues the token cookie and moves the session cart to the user.
func (a *app) signIn(c *gin.Context, u *user.User) (*loginResponse, error) {
	tok, err := a.issuer.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	a.issuer.SetCookie(c, tok, a.cfg.CookieSecure)

	sess := session.From(c)
	if err := a.carts.Merge(c.Request.Context(), sess.ID(), u.ID); err != nil {
		logx.From(c.Request.Context()).Warn("cart merge failed", zap.String("user_id", u.ID), zap.Error(err))
	}
	sess.SetGuest("")
	return &loginResponse{Token: tok, User: u}, nil
}

// @Summary Register an account, upgrading a guest with the same email
// @Tags    account
// @Accept  json
// @Produce json
// @Param   body body user.Registration true "registration"
// @Success 201 {object} httpx.Envelope
// @Failure 409 {object} httpx.Envelope
// @Router  /account/register [post]
func registerHandler(a *app) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.Registration
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := a.users.Register(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		res, err := a.signIn(c, u)
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, res)
	}
}

// @Summary Log in and merge the session cart
// @Tags    account
// @Accept  json
// @Produce json
// @Param   body body loginRequest true "credentials"
// @Success 200 {object} httpx.Envelope
// @Failure 401 {object} httpx.Envelope
// @Router  /account/login [post]
func loginHandler(a *app) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := a.users.Authenticate(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			fail(c, err)
			return
		}
		res, err := a.signIn(c, u)
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, res)
	}
}

// @Summary Clear the auth cookie
// @Tags    account
// @Produce json
// @Success 200 {object} httpx.Envelope
// @Router  /account/logout [post]
func logoutHandler(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.ClearCookie(c, secure)
		session.From(c).Reset()
		httpx.OK(c, http.StatusOK, nil)
	}
}

// @Summary List the authenticated user's orders
// @Tags    account
// @Produce json
// @Param   limit  query int false "page size"
// @Param   offset query int false "offset"
// @Success 200 {object} httpx.Envelope
// @Failure 401 {object} httpx.Envelope
// @Router  /account/orders [get]
func listMyOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		list, err := svc.ListByUser(c.Request.Context(), auth.UserID(c), limit, offset)
		if err != nil {
			fail(c, err)
			return
		}
		if list == nil {
			list = []order.Order{}
		}
		httpx.OK(c, http.StatusOK, gin.H{"items": list, "limit": limit, "offset": offset})
	}
}

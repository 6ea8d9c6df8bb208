package main

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/plumbstore/docs"
	"github.com/MikeMC777/plumbstore/internal/auth"
	"github.com/MikeMC777/plumbstore/internal/httpx"
	"github.com/MikeMC777/plumbstore/internal/metrics"
	"github.com/MikeMC777/plumbstore/internal/session"
)

func (a *app) router() *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(a.log), httpx.Logger(), httpx.Recovery(), metrics.Middleware())

	r.GET("/healthz", healthHandler(a.back))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api", session.Middleware(a.cache, a.sessions), auth.Middleware(a.issuer))
	limited := httpx.RateLimit(a.limiter)

	api.GET("/categories/:type/tree", categoryTreeHandler(a.categories))
	api.GET("/categories/:type", categoryChildrenHandler(a.categories))
	api.GET("/categories/:type/page/*path", categoryPageHandler(a.categories))

	api.GET("/products", listProductsHandler(a.products))
	api.GET("/products/search", searchProductsHandler(a.products))
	api.GET("/products/:slug", getProductHandler(a.products))

	api.GET("/cart", getCartHandler(a.carts))
	api.POST("/cart/items", addCartItemHandler(a.carts))
	api.PATCH("/cart/items/:id", updateCartItemHandler(a.carts))
	api.DELETE("/cart/items/:id", removeCartItemHandler(a.carts))

	acct := api.Group("/account")
	acct.POST("/register", limited, registerHandler(a))
	acct.POST("/login", limited, loginHandler(a))
	acct.POST("/logout", logoutHandler(a.cfg.CookieSecure))
	acct.GET("/orders", auth.Require(), listMyOrdersHandler(a.orders))

	co := api.Group("/checkout")
	co.GET("", checkoutSummaryHandler(a.checkout))
	co.POST("/details", limited, submitDetailsHandler(a.checkout))
	co.POST("/pre-order", limited, placePreOrderHandler(a.checkout))
	co.POST("/payment", limited, confirmPaymentHandler(a.checkout))

	api.GET("/orders/:number", confirmationHandler(a.checkout))

	admin := r.Group("/api/admin", adminOnly(a.cfg.AdminToken))
	admin.PUT("/orders/:id/status", updateOrderStatusHandler(a.orders))

	return r
}

// adminOnly checks X-Admin-Token. With no token configured the admin API
// is disabled.
func adminOnly(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			httpx.Fail(c, http.StatusNotFound, "not found")
			return
		}
		got := c.GetHeader("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			httpx.Fail(c, http.StatusUnauthorized, "invalid admin token")
			return
		}
		c.Next()
	}
}

func healthHandler(b backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := b.ping(c.Request.Context()); err != nil {
			httpx.Fail(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	}
}

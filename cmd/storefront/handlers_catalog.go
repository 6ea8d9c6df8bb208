package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/plumbstore/internal/category"
	"github.com/MikeMC777/plumbstore/internal/httpx"
	"github.com/MikeMC777/plumbstore/internal/product"
)

// pageParams reads limit/offset; bad values fall back to the defaults.
func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return product.NormalizePage(limit, offset)
}

// @Summary Navigation tree
// @Tags    categories
// @Produce json
// @Param   type path string true "plumbing or heating"
// @Success 200 {object} httpx.Envelope
// @Router  /categories/{type}/tree [get]
func categoryTreeHandler(svc *category.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tree, err := svc.Tree(c.Request.Context(), c.Param("type"))
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, tree)
	}
}

// @Summary Children of an ancestor chain
// @Tags    categories
// @Produce json
// @Param   type      path  string true  "plumbing or heating"
// @Param   primary   query string false "primary category id"
// @Param   secondary query string false "secondary category id"
// @Param   tertiary  query string false "tertiary category id"
// @Success 200 {object} httpx.Envelope
// @Router  /categories/{type} [get]
func categoryChildrenHandler(svc *category.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var parents []string
		for _, k := range []string{"primary", "secondary", "tertiary"} {
			v := strings.TrimSpace(c.Query(k))
			if v == "" {
				break
			}
			parents = append(parents, v)
		}
		cs, err := svc.Children(c.Request.Context(), c.Param("type"), parents...)
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, cs)
	}
}

// @Summary Category page by slug path
// @Tags    categories
// @Produce json
// @Param   type path string true "plumbing or heating"
// @Param   path path string true "slug path, e.g. radiators/compact-radiators"
// @Success 200 {object} httpx.Envelope
// @Failure 404 {object} httpx.Envelope
// @Router  /categories/{type}/page/{path} [get]
func categoryPageHandler(svc *category.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var slugs []string
		for _, s := range strings.Split(c.Param("path"), "/") {
			if s != "" {
				slugs = append(slugs, s)
			}
		}
		page, err := svc.Page(c.Request.Context(), c.Param("type"), slugs...)
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, page)
	}
}

// /api/products only pages; searching goes through /api/products/search.
//
// @Summary List products
// @Tags    products
// @Produce json
// @Param   category query string false "category id (includes descendants)"
// @Param   limit    query int    false "page size (max 100)"
// @Param   offset   query int    false "offset"
// @Success 200 {object} httpx.Envelope
// @Router  /products [get]
func listProductsHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		res, err := svc.List(c.Request.Context(), product.Query{
			CategoryID: c.Query("category"),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, res)
	}
}

// @Summary Search products
// @Tags    products
// @Produce json
// @Param   q      query string true  "search term (2+ chars)"
// @Param   limit  query int    false "page size"
// @Param   offset query int    false "offset"
// @Success 200 {object} httpx.Envelope
// @Failure 400 {object} httpx.Envelope
// @Router  /products/search [get]
func searchProductsHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if len([]rune(q)) < product.MinSearchLen {
			httpx.Fail(c, http.StatusBadRequest, "q must have at least 2 characters")
			return
		}
		limit, offset := pageParams(c)
		res, err := svc.List(c.Request.Context(), product.Query{
			Q:          q,
			CategoryID: c.Query("category"),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, res)
	}
}

// @Summary Product detail
// @Tags    products
// @Produce json
// @Param   slug path string true "product slug"
// @Success 200 {object} httpx.Envelope
// @Failure 404 {object} httpx.Envelope
// @Router  /products/{slug} [get]
func getProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, p)
	}
}

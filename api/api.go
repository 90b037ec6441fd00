// Package api exposes a Khata engine over a JSON HTTP API built on gin.
//
// Routes are mounted under a base path (default "/khata"):
//
//	GET    /shops                        list shops (?active=true&limit&offset)
//	POST   /shops                        create a shop
//	GET    /shops/:id                    get a shop
//	PUT    /shops/:id                    update a shop
//	DELETE /shops/:id                    delete a shop and its records
//	GET    /shops/:id/balance            credit position
//	GET    /shops/:id/day-wise           day-wise ledger (?from&to)
//	GET    /shops/:id/deposits           list deposits
//	POST   /shops/:id/deposits           record a deposit
//	GET    /shops/:id/payments           list payments
//	POST   /shops/:id/payments           record a payment
//	POST   /shops/:id/bills              create a bill
//	GET    /bills                        list bills (?shop&from&to&limit&offset)
//	GET    /bills/today                  today's bills (?shop)
//	GET    /bills/:id                    get a bill with items
//	PUT    /bills/:id                    replace notes and items (bill date only)
//	DELETE /bills/:id                    delete a bill
//	POST   /bills/:id/items              add an item
//	GET    /bills/:id/export/:format     render a bill document
//	PUT    /items/:id                    change an item
//	DELETE /items/:id                    remove an item
//	GET    /day-wise                     cross-shop day-wise view (?shop&from&to)
//	GET    /statistics                   statistics (?from&to)
//	GET    /statistics/export/:format    render statistics
//	GET    /dashboard                    overview
//	GET    /settings                     current settings
//	PUT    /settings                     change the gunny bag cost
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xraph/khata"
)

// DefaultBasePath is the URL prefix used when none is configured.
const DefaultBasePath = "/khata"

// Handler serves the Khata API for one engine.
type Handler struct {
	k      *khata.Khata
	logger *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for request and error logging.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// New creates a Handler for k.
func New(k *khata.Khata, opts ...Option) *Handler {
	h := &Handler{k: k, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns a gin engine with recovery and request logging that serves
// the API under basePath. middleware runs before every route.
func (h *Handler) Router(basePath string, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())
	r.Use(middleware...)
	h.Register(r.Group(normalizeBasePath(basePath)))
	return r
}

// Register mounts every route on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	shops := rg.Group("/shops")
	shops.GET("", h.listShops)
	shops.POST("", h.createShop)
	shops.GET("/:id", h.getShop)
	shops.PUT("/:id", h.updateShop)
	shops.DELETE("/:id", h.deleteShop)
	shops.GET("/:id/balance", h.shopBalance)
	shops.GET("/:id/day-wise", h.shopDayWise)
	shops.GET("/:id/deposits", h.listDeposits)
	shops.POST("/:id/deposits", h.recordDeposit)
	shops.GET("/:id/payments", h.listPayments)
	shops.POST("/:id/payments", h.recordPayment)
	shops.POST("/:id/bills", h.createBill)

	bills := rg.Group("/bills")
	bills.GET("", h.listBills)
	bills.GET("/today", h.todaysBills)
	bills.GET("/:id", h.getBill)
	bills.PUT("/:id", h.editBill)
	bills.DELETE("/:id", h.deleteBill)
	bills.POST("/:id/items", h.addBillItem)
	bills.GET("/:id/export/:format", h.exportBill)

	items := rg.Group("/items")
	items.PUT("/:id", h.updateBillItem)
	items.DELETE("/:id", h.removeBillItem)

	rg.GET("/day-wise", h.dayWiseAll)
	rg.GET("/statistics", h.statistics)
	rg.GET("/statistics/export/:format", h.exportStatistics)
	rg.GET("/dashboard", h.dashboard)
	rg.GET("/settings", h.getSettings)
	rg.PUT("/settings", h.updateSettings)
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("khata api request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func normalizeBasePath(p string) string {
	if p == "" {
		return DefaultBasePath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// ok writes v with status 200.
func ok(c *gin.Context, v any) {
	c.JSON(http.StatusOK, v)
}

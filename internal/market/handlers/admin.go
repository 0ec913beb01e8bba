package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/pkg/cache"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardKey = "admin:dashboard"
	dashboardTTL = 5 * time.Minute
)

// AdminHandler serves marketplace administration
type AdminHandler struct {
	users    repositories.UserRepository
	vendors  repositories.VendorRepository
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	cache    *cache.Cache
	log      *logger.Logger
}

// NewAdminHandler creates a new AdminHandler. cache may be nil.
func NewAdminHandler(users repositories.UserRepository, vendors repositories.VendorRepository, products repositories.ProductRepository, orders repositories.OrderRepository, c *cache.Cache, log *logger.Logger) *AdminHandler {
	return &AdminHandler{users: users, vendors: vendors, products: products, orders: orders, cache: c, log: log}
}

// RegisterAdminRoutes registers /admin; the group must already require an
// admin token.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/dashboard", h.Dashboard)
	g.GET("/vendors", h.Vendors)
	g.PUT("/vendors/:id/approve", h.Approve)
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := cache.Remember(c.Request().Context(), h.cache, dashboardKey, dashboardTTL, h.loadStats)
	if err != nil {
		return httperr.Internal("DASHBOARD_ERROR", "Server error fetching dashboard data", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

func (h *AdminHandler) loadStats(ctx context.Context) (models.MarketStats, error) {
	var stats models.MarketStats
	pending := false

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = h.users.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.TotalVendors, err = h.vendors.Count(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingVendors, err = h.vendors.Count(gctx, &pending)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalProducts, err = h.products.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = h.orders.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = h.orders.Revenue(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.MarketStats{}, err
	}
	return stats, nil
}

// Vendors lists every shop, filtered by ?approved=true|false when given.
func (h *AdminHandler) Vendors(c echo.Context) error {
	page := paging.FromQuery(c, 20, 100)
	filter := models.VendorFilter{Search: c.QueryParam("search"), Skip: page.Skip(), Limit: page.Limit}
	if raw := c.QueryParam("approved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return httperr.BadRequest("INVALID_FILTER", "approved must be true or false")
		}
		filter.Approved = &v
	}
	vendors, total, err := h.vendors.List(c.Request().Context(), filter)
	if err != nil {
		return httperr.Internal("FETCH_VENDORS_ERROR", "Server error fetching vendors", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"vendors":    vendors,
		"pagination": page.Meta(total, "totalVendors"),
	})
}

// Approve sets a shop's approval, true unless the body says otherwise.
func (h *AdminHandler) Approve(c echo.Context) error {
	var req struct {
		IsApproved *bool `json:"isApproved"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("INVALID_PAYLOAD", "Invalid request payload")
	}
	approved := req.IsApproved == nil || *req.IsApproved
	ctx := c.Request().Context()

	shop, err := h.vendors.SetApproved(ctx, c.Param("id"), approved)
	if err != nil {
		return lookupErr(err, "VENDOR_NOT_FOUND", "Vendor not found", "APPROVE_VENDOR_ERROR", "Server error updating vendor")
	}
	if err := h.cache.Delete(ctx, dashboardKey); err != nil {
		h.log.Warn("failed to invalidate dashboard cache", "error", err)
	}
	h.log.Info("vendor approval changed", "vendor_id", shop.ID.Hex(), "approved", approved)

	msg := "Vendor approved successfully"
	if !approved {
		msg = "Vendor approval revoked"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "vendor": shop})
}

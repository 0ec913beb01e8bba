package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/internal/market/services"
	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderHandler serves order history and fulfilment
type OrderHandler struct {
	orders  repositories.OrderRepository
	vendors repositories.VendorRepository
	log     *logger.Logger
	now     func() time.Time
}

func NewOrderHandler(orders repositories.OrderRepository, vendors repositories.VendorRepository, log *logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, vendors: vendors, log: log, now: time.Now}
}

// RegisterOrderRoutes registers /orders and /vendor/orders on the api root.
func (h *OrderHandler) RegisterOrderRoutes(g *echo.Group, auth, vendorOnly echo.MiddlewareFunc) {
	g.GET("/orders", h.Mine, auth)
	g.GET("/orders/:id", h.Get, auth)
	g.PUT("/orders/:id/status", h.UpdateStatus, auth)
	g.GET("/vendor/orders", h.VendorOrders, auth, vendorOnly)
}

func (h *OrderHandler) Mine(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	page := paging.FromQuery(c, 10, 50)
	orders, total, err := h.orders.ListByCustomer(c.Request().Context(), uid, page.Skip(), page.Limit)
	if err != nil {
		return httperr.Internal("FETCH_ORDERS_ERROR", "Server error fetching orders", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"orders":     orders,
		"pagination": page.Meta(total, "totalOrders"),
	})
}

// callerShopID returns the id of the caller's shop, or NilObjectID.
func (h *OrderHandler) callerShopID(ctx context.Context, uid primitive.ObjectID) (primitive.ObjectID, error) {
	shop, err := h.vendors.GetByUser(ctx, uid)
	if errors.Is(err, repositories.ErrNotFound) {
		return primitive.NilObjectID, nil
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return shop.ID, nil
}

func hasVendor(o *models.Order, shopID primitive.ObjectID) bool {
	if shopID.IsZero() {
		return false
	}
	for _, vo := range o.VendorOrders {
		if vo.VendorID == shopID {
			return true
		}
	}
	return false
}

// Get shows an order to its customer, its vendors and admins.
func (h *OrderHandler) Get(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	order, err := h.orders.GetByID(ctx, c.Param("id"))
	if err != nil {
		return lookupErr(err, "ORDER_NOT_FOUND", "Order not found", "FETCH_ORDER_ERROR", "Server error fetching order")
	}

	allowed := order.CustomerID == uid || middleware.Claims(c).Role == models.RoleAdmin
	if !allowed {
		shopID, err := h.callerShopID(ctx, uid)
		if err != nil {
			return httperr.Internal("FETCH_ORDER_ERROR", "Server error fetching order", err)
		}
		allowed = hasVendor(order, shopID)
	}
	if !allowed {
		return httperr.Forbidden("ACCESS_DENIED", "Not authorized to view this order")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order":    order,
		"timeline": services.Timeline(order),
	})
}

func (h *OrderHandler) VendorOrders(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	shopID, err := h.callerShopID(ctx, uid)
	if err != nil {
		return httperr.Internal("FETCH_ORDERS_ERROR", "Server error fetching vendor orders", err)
	}
	if shopID.IsZero() {
		return httperr.NotFound("VENDOR_NOT_FOUND", "Vendor profile not found")
	}

	page := paging.FromQuery(c, 10, 50)
	orders, total, err := h.orders.ListByVendor(ctx, shopID, c.QueryParam("status"), page.Skip(), page.Limit)
	if err != nil {
		return httperr.Internal("FETCH_ORDERS_ERROR", "Server error fetching vendor orders", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"orders":     orders,
		"pagination": page.Meta(total, "totalOrders"),
	})
}

// UpdateStatus moves an order along. A vendor only updates its own share of
// the order; an admin updates every share.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req models.OrderStatusRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	if !services.ValidOrderStatus(req.Status) {
		return httperr.BadRequest("INVALID_STATUS", "Invalid order status")
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	order, err := h.orders.GetByID(ctx, c.Param("id"))
	if err != nil {
		return lookupErr(err, "ORDER_NOT_FOUND", "Order not found", "UPDATE_ORDER_ERROR", "Server error updating order")
	}

	isAdmin := middleware.Claims(c).Role == models.RoleAdmin
	var shopID primitive.ObjectID
	if !isAdmin {
		shopID, err = h.callerShopID(ctx, uid)
		if err != nil {
			return httperr.Internal("UPDATE_ORDER_ERROR", "Server error updating order", err)
		}
		if !hasVendor(order, shopID) {
			return httperr.Forbidden("ACCESS_DENIED", "Not authorized to update this order")
		}
	}

	now := h.now()
	for i := range order.VendorOrders {
		vo := &order.VendorOrders[i]
		if !isAdmin && vo.VendorID != shopID {
			continue
		}
		vo.Status = req.Status
		if req.TrackingNumber != "" {
			vo.TrackingNumber = req.TrackingNumber
		}
		switch req.Status {
		case models.OrderShipped:
			vo.ShippedAt = &now
		case models.OrderDelivered:
			vo.DeliveredAt = &now
		}
	}
	order.Status = req.Status
	if req.TrackingNumber != "" {
		order.TrackingNumber = req.TrackingNumber
	}

	if err := h.orders.Update(ctx, order); err != nil {
		return lookupErr(err, "ORDER_NOT_FOUND", "Order not found", "UPDATE_ORDER_ERROR", "Server error updating order")
	}
	h.log.Info("order status updated", "order_number", order.OrderNumber, "status", req.Status, "by", uid.Hex())

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Order status updated successfully",
		"order":    order,
		"timeline": services.Timeline(order),
	})
}

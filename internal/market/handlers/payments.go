package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/internal/market/services"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/payments"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxWebhookBody     = 1 << 20
	orderNumberRetries = 3
)

// PaymentHandler runs checkout: pricing, payment intents, order creation and
// processor webhooks
type PaymentHandler struct {
	products      repositories.ProductRepository
	vendors       repositories.VendorRepository
	orders        repositories.OrderRepository
	gateway       payments.Gateway
	webhookSecret string
	log           *logger.Logger
	now           func() time.Time
}

func NewPaymentHandler(products repositories.ProductRepository, vendors repositories.VendorRepository, orders repositories.OrderRepository, gateway payments.Gateway, webhookSecret string, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		products:      products,
		vendors:       vendors,
		orders:        orders,
		gateway:       gateway,
		webhookSecret: webhookSecret,
		log:           log,
		now:           time.Now,
	}
}

// RegisterPaymentRoutes registers /payments. The webhook is authenticated by
// its signature, not a bearer token.
func (h *PaymentHandler) RegisterPaymentRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/create-payment-intent", h.CreateIntent, auth)
	g.POST("/create-order", h.CreateOrder, auth)
	g.GET("/orders/:paymentIntentId", h.OrderByIntent, auth)
	g.POST("/webhook", h.Webhook)
}

// quote prices cart against the stored catalogue.
func (h *PaymentHandler) quote(ctx context.Context, cart []models.CartItem, shippingMethod string) (*services.Quote, error) {
	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, line := range cart {
		id, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			return nil, httperr.BadRequest("INVALID_PRODUCT", "Invalid product ID")
		}
		ids = append(ids, id)
	}
	catalogue, err := h.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, httperr.Internal("PRICING_ERROR", "Failed to price cart", err)
	}

	q, err := services.PriceCart(cart, catalogue, shippingMethod)
	if err != nil {
		var stockErr *services.StockError
		if errors.As(err, &stockErr) && stockErr.Name != "" {
			return nil, httperr.Conflict("INSUFFICIENT_STOCK", stockErr.Error())
		}
		return nil, httperr.BadRequest("PRODUCT_UNAVAILABLE", err.Error())
	}
	return q, nil
}

func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req models.PaymentIntentRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	q, err := h.quote(ctx, req.Items, req.ShippingMethod)
	if err != nil {
		return err
	}
	intent, err := h.gateway.CreateIntent(ctx, q.TotalCents, services.Currency, map[string]string{"userId": uid.Hex()})
	if err != nil {
		return httperr.Internal("PAYMENT_INTENT_ERROR", "Error creating payment intent", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
		"amount":          services.FromCents(q.TotalCents),
		"subtotal":        services.FromCents(q.SubtotalCents),
		"shippingCost":    services.FromCents(q.ShippingCents),
		"tax":             services.FromCents(q.TaxCents),
	})
}

// CreateOrder turns a paid-for cart into an order. The cart is priced again
// and must match the intent's amount; stock is taken before the order is
// stored and given back if a later line cannot be filled. The unique
// paymentIntentId index settles concurrent submissions of one intent.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	var req models.CreateOrderRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	intent, err := h.gateway.GetIntent(ctx, req.PaymentIntentID)
	if err != nil {
		if errors.Is(err, payments.ErrIntentNotFound) {
			return httperr.NotFound("PAYMENT_INTENT_NOT_FOUND", "Payment intent not found")
		}
		return httperr.Internal("CREATE_ORDER_ERROR", "Error creating order", err)
	}
	if intent.Metadata["userId"] != uid.Hex() {
		return httperr.Forbidden("PAYMENT_INTENT_MISMATCH", "Payment intent belongs to another user")
	}
	if _, err := h.orders.FindByPaymentIntent(ctx, intent.ID); err == nil {
		return httperr.Conflict("ORDER_EXISTS", "An order already exists for this payment")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return httperr.Internal("CREATE_ORDER_ERROR", "Error creating order", err)
	}

	q, err := h.quote(ctx, req.Items, req.ShippingMethod)
	if err != nil {
		return err
	}
	if q.TotalCents != intent.AmountCents {
		return httperr.BadRequest("AMOUNT_MISMATCH", "Cart total no longer matches the payment amount")
	}

	if err := h.takeStock(ctx, q.Items); err != nil {
		return err
	}

	order := h.buildOrder(uid, intent, q, &req)
	if err := h.insertNumbered(ctx, order); err != nil {
		h.returnStock(ctx, q.Items)
		if errors.Is(err, repositories.ErrOrderExists) {
			return httperr.Conflict("ORDER_EXISTS", "An order already exists for this payment")
		}
		return httperr.Internal("CREATE_ORDER_ERROR", "Error creating order", err)
	}

	for _, vo := range order.VendorOrders {
		qty := 0
		for _, item := range vo.Items {
			qty += item.Quantity
		}
		if err := h.vendors.AddSales(ctx, vo.VendorID, qty); err != nil {
			h.log.Warn("failed to record vendor sales", "vendor_id", vo.VendorID.Hex(), "error", err)
		}
	}
	h.log.Info("order created", "order_number", order.OrderNumber, "total", order.Total, "vendors", len(order.VendorOrders))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order created successfully",
		"order":   order,
	})
}

func (h *PaymentHandler) buildOrder(customer primitive.ObjectID, intent *payments.Intent, q *services.Quote, req *models.CreateOrderRequest) *models.Order {
	method := req.ShippingMethod
	if method == "" {
		method = "standard"
	}
	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}
	order := &models.Order{
		CustomerID:      customer,
		Items:           q.Items,
		Subtotal:        services.FromCents(q.SubtotalCents),
		ShippingCost:    services.FromCents(q.ShippingCents),
		Tax:             services.FromCents(q.TaxCents),
		Total:           services.FromCents(q.TotalCents),
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentPending,
		PaymentMethod:   "card",
		PaymentIntentID: intent.ID,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		ShippingMethod:  method,
		Notes:           req.Notes,
		VendorOrders:    services.SplitByVendor(q.Items, models.DefaultCommissionRate),
		CreatedAt:       h.now(),
	}
	if intent.Status == payments.IntentSucceeded {
		order.PaymentStatus = models.PaymentPaid
		order.Status = models.OrderConfirmed
	}
	return order
}

// insertNumbered assigns the next daily order number, retrying when a
// concurrent checkout took it first.
func (h *PaymentHandler) insertNumbered(ctx context.Context, order *models.Order) error {
	start, end := services.DayBounds(order.CreatedAt)
	var err error
	for attempt := 0; attempt < orderNumberRetries; attempt++ {
		var n int64
		n, err = h.orders.CountBetween(ctx, start, end)
		if err != nil {
			return err
		}
		order.OrderNumber = services.OrderNumber(order.CreatedAt, n+1+int64(attempt))
		if err = h.orders.Create(ctx, order); !errors.Is(err, repositories.ErrDuplicate) {
			return err
		}
	}
	return err
}

func (h *PaymentHandler) takeStock(ctx context.Context, items []models.OrderItem) error {
	for i, item := range items {
		err := h.products.ApplySale(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}
		h.returnStock(ctx, items[:i])
		if errors.Is(err, repositories.ErrInsufficientStock) {
			return httperr.Conflict("INSUFFICIENT_STOCK", "Insufficient stock for "+item.Name)
		}
		return httperr.Internal("CREATE_ORDER_ERROR", "Error creating order", err)
	}
	return nil
}

func (h *PaymentHandler) returnStock(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if err := h.products.ApplySale(ctx, item.ProductID, -item.Quantity); err != nil {
			h.log.Error("failed to return stock", "product_id", item.ProductID.Hex(), "quantity", item.Quantity, "error", err)
		}
	}
}

func (h *PaymentHandler) OrderByIntent(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	order, err := h.orders.GetByPaymentIntent(c.Request().Context(), uid, c.Param("paymentIntentId"))
	if err != nil {
		return lookupErr(err, "ORDER_NOT_FOUND", "Order not found", "FETCH_ORDER_ERROR", "Error fetching order")
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// Webhook applies processor events to the order paid with the intent.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return httperr.BadRequest("INVALID_PAYLOAD", "Unreadable webhook body")
	}
	event, err := payments.ConstructEvent(payload, c.Request().Header.Get(payments.SignatureHeader), h.webhookSecret, payments.DefaultTolerance, h.now())
	if err != nil {
		h.log.Warn("webhook signature rejected", "error", err)
		return httperr.BadRequest("INVALID_SIGNATURE", "Webhook signature verification failed")
	}

	var paymentStatus, status string
	switch event.Type {
	case payments.EventIntentSucceeded:
		paymentStatus, status = models.PaymentPaid, models.OrderConfirmed
	case payments.EventIntentFailed:
		paymentStatus, status = models.PaymentFailed, models.OrderCancelled
	default:
		h.log.Debug("unhandled webhook event", "type", event.Type)
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	intentID := event.Data.Object.ID
	order, err := h.orders.SetPaymentState(c.Request().Context(), intentID, paymentStatus, status)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		h.log.Warn("webhook for unknown order", "payment_intent_id", intentID, "type", event.Type)
	case err != nil:
		return httperr.Internal("WEBHOOK_ERROR", "Webhook processing failed", err)
	default:
		h.log.Info("order payment updated", "order_number", order.OrderNumber, "payment_status", paymentStatus)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

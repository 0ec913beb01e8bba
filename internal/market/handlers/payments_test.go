package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const webhookSecret = "whsec_test"

type checkout struct {
	handler  *PaymentHandler
	gateway  *payments.LocalGateway
	products *MockProductRepository
	vendors  *MockVendorRepository
	orders   *MockOrderRepository
	mug      models.Product
	napkin   models.Product
}

func newCheckout() *checkout {
	co := &checkout{
		gateway:  payments.NewLocalGateway(),
		products: new(MockProductRepository),
		vendors:  new(MockVendorRepository),
		orders:   new(MockOrderRepository),
		mug:      models.Product{ID: primitive.NewObjectID(), Name: "Clay mug", Price: 19.99, Stock: 5, IsActive: true, VendorID: primitive.NewObjectID(), VendorName: "Kiln Co"},
		napkin:   models.Product{ID: primitive.NewObjectID(), Name: "Linen napkin", Price: 5.5, Stock: 1, IsActive: true, VendorID: primitive.NewObjectID(), VendorName: "Loom"},
	}
	co.handler = NewPaymentHandler(co.products, co.vendors, co.orders, co.gateway, webhookSecret, logger.NewNop())
	co.handler.now = func() time.Time { return fixedNow }
	co.products.On("FindByIDs", mock.Anything, mock.Anything).Return(map[primitive.ObjectID]models.Product{
		co.mug.ID:    co.mug,
		co.napkin.ID: co.napkin,
	}, nil)
	return co
}

func (co *checkout) cart() string {
	return fmt.Sprintf(`[{"productId":%q,"quantity":2},{"productId":%q,"quantity":1}]`, co.mug.ID.Hex(), co.napkin.ID.Hex())
}

const shippingAddress = `{"firstName":"Ada","lastName":"King","address":"1 Loom St","city":"Leeds","zipCode":"LS1","country":"UK"}`

func TestCreatePaymentIntent(t *testing.T) {
	h := newHarness()
	co := newCheckout()
	uid := primitive.NewObjectID()

	rec, body := h.serve(t, co.handler.CreateIntent, request{
		method: http.MethodPost, target: "/payments/create-payment-intent",
		body:   `{"items":` + co.cart() + `,"shippingMethod":"standard"}`,
		userID: uid.Hex(),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 54.12, body["amount"])
	assert.Equal(t, 3.64, body["tax"])
	assert.Equal(t, 5.0, body["shippingCost"])

	intent, err := co.gateway.GetIntent(context.Background(), body["paymentIntentId"].(string))
	require.NoError(t, err)
	assert.Equal(t, int64(5412), intent.AmountCents)
	assert.Equal(t, uid.Hex(), intent.Metadata["userId"])
	assert.Equal(t, intent.ClientSecret, body["clientSecret"])
}

func TestCreatePaymentIntent_ShortStock(t *testing.T) {
	h := newHarness()
	co := newCheckout()

	rec, body := h.serve(t, co.handler.CreateIntent, request{
		method: http.MethodPost, target: "/payments/create-payment-intent",
		body:   fmt.Sprintf(`{"items":[{"productId":%q,"quantity":3}]}`, co.napkin.ID.Hex()),
		userID: primitive.NewObjectID().Hex(),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
}

func TestCreateOrder(t *testing.T) {
	h := newHarness()
	co := newCheckout()
	uid := primitive.NewObjectID()
	ctx := context.Background()

	intent, err := co.gateway.CreateIntent(ctx, 5412, "usd", map[string]string{"userId": uid.Hex()})
	require.NoError(t, err)
	require.NoError(t, co.gateway.SetStatus(intent.ID, payments.IntentSucceeded))

	co.orders.On("FindByPaymentIntent", mock.Anything, intent.ID).Return(nil, repositories.ErrNotFound)
	co.products.On("ApplySale", mock.Anything, co.mug.ID, 2).Return(nil)
	co.products.On("ApplySale", mock.Anything, co.napkin.ID, 1).Return(nil)
	co.orders.On("CountBetween", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	co.orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	co.vendors.On("AddSales", mock.Anything, co.mug.VendorID, 2).Return(nil)
	co.vendors.On("AddSales", mock.Anything, co.napkin.VendorID, 1).Return(nil)

	rec, body := h.serve(t, co.handler.CreateOrder, request{
		method: http.MethodPost, target: "/payments/create-order",
		body:   fmt.Sprintf(`{"paymentIntentId":%q,"items":%s,"shippingAddress":%s}`, intent.ID, co.cart(), shippingAddress),
		userID: uid.Hex(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	raw, err := json.Marshal(body["order"])
	require.NoError(t, err)
	var order models.Order
	require.NoError(t, json.Unmarshal(raw, &order))

	assert.Equal(t, "AM2402090001", order.OrderNumber)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Equal(t, 54.12, order.Total)
	assert.Equal(t, "standard", order.ShippingMethod)
	assert.Equal(t, "Leeds", order.BillingAddress.City)
	require.Len(t, order.VendorOrders, 2)
	assert.Equal(t, 4.0, order.VendorOrders[0].Commission)
	co.products.AssertExpectations(t)
	co.vendors.AssertExpectations(t)
}

func TestCreateOrder_Rejections(t *testing.T) {
	h := newHarness()
	uid := primitive.NewObjectID()
	ctx := context.Background()

	t.Run("intent of another customer", func(t *testing.T) {
		co := newCheckout()
		intent, _ := co.gateway.CreateIntent(ctx, 5412, "usd", map[string]string{"userId": primitive.NewObjectID().Hex()})

		rec, body := h.serve(t, co.handler.CreateOrder, request{
			method: http.MethodPost, target: "/payments/create-order",
			body:   fmt.Sprintf(`{"paymentIntentId":%q,"items":%s,"shippingAddress":%s}`, intent.ID, co.cart(), shippingAddress),
			userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "PAYMENT_INTENT_MISMATCH", body["code"])
	})

	t.Run("cart changed since the intent", func(t *testing.T) {
		co := newCheckout()
		intent, _ := co.gateway.CreateIntent(ctx, 100, "usd", map[string]string{"userId": uid.Hex()})
		co.orders.On("FindByPaymentIntent", mock.Anything, intent.ID).Return(nil, repositories.ErrNotFound)

		rec, body := h.serve(t, co.handler.CreateOrder, request{
			method: http.MethodPost, target: "/payments/create-order",
			body:   fmt.Sprintf(`{"paymentIntentId":%q,"items":%s,"shippingAddress":%s}`, intent.ID, co.cart(), shippingAddress),
			userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "AMOUNT_MISMATCH", body["code"])
	})

	t.Run("stock sold out mid checkout", func(t *testing.T) {
		co := newCheckout()
		intent, _ := co.gateway.CreateIntent(ctx, 5412, "usd", map[string]string{"userId": uid.Hex()})
		co.orders.On("FindByPaymentIntent", mock.Anything, intent.ID).Return(nil, repositories.ErrNotFound)
		co.products.On("ApplySale", mock.Anything, co.mug.ID, 2).Return(nil)
		co.products.On("ApplySale", mock.Anything, co.napkin.ID, 1).Return(repositories.ErrInsufficientStock)
		co.products.On("ApplySale", mock.Anything, co.mug.ID, -2).Return(nil)

		rec, body := h.serve(t, co.handler.CreateOrder, request{
			method: http.MethodPost, target: "/payments/create-order",
			body:   fmt.Sprintf(`{"paymentIntentId":%q,"items":%s,"shippingAddress":%s}`, intent.ID, co.cart(), shippingAddress),
			userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
		co.products.AssertCalled(t, "ApplySale", mock.Anything, co.mug.ID, -2)
		co.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("intent claimed by a concurrent order", func(t *testing.T) {
		co := newCheckout()
		intent, _ := co.gateway.CreateIntent(ctx, 5412, "usd", map[string]string{"userId": uid.Hex()})
		co.orders.On("FindByPaymentIntent", mock.Anything, intent.ID).Return(nil, repositories.ErrNotFound)
		co.products.On("ApplySale", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		co.orders.On("CountBetween", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
		co.orders.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("%w: %s", repositories.ErrOrderExists, intent.ID)).Once()

		rec, body := h.serve(t, co.handler.CreateOrder, request{
			method: http.MethodPost, target: "/payments/create-order",
			body:   fmt.Sprintf(`{"paymentIntentId":%q,"items":%s,"shippingAddress":%s}`, intent.ID, co.cart(), shippingAddress),
			userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "ORDER_EXISTS", body["code"])
		co.orders.AssertNumberOfCalls(t, "Create", 1)
		co.products.AssertCalled(t, "ApplySale", mock.Anything, co.mug.ID, -2)
		co.products.AssertCalled(t, "ApplySale", mock.Anything, co.napkin.ID, -1)
		co.vendors.AssertNotCalled(t, "AddSales", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing shipping address", func(t *testing.T) {
		co := newCheckout()
		rec, body := h.serve(t, co.handler.CreateOrder, request{
			method: http.MethodPost, target: "/payments/create-order",
			body:   fmt.Sprintf(`{"paymentIntentId":"pi_x","items":%s}`, co.cart()),
			userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})
}

func TestWebhook(t *testing.T) {
	h := newHarness()
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","amount":5412}}}`)

	t.Run("succeeded marks the order paid", func(t *testing.T) {
		co := newCheckout()
		co.orders.On("SetPaymentState", mock.Anything, "pi_1", models.PaymentPaid, models.OrderConfirmed).
			Return(&models.Order{OrderNumber: "AM2402090001"}, nil)

		rec, body := h.serve(t, co.handler.Webhook, request{
			method: http.MethodPost, target: "/payments/webhook", body: string(payload),
			headers: []string{payments.SignatureHeader, payments.Sign(payload, webhookSecret, fixedNow)},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["received"])
		co.orders.AssertExpectations(t)
	})

	t.Run("failed payment cancels", func(t *testing.T) {
		co := newCheckout()
		failed := []byte(`{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2"}}}`)
		co.orders.On("SetPaymentState", mock.Anything, "pi_2", models.PaymentFailed, models.OrderCancelled).
			Return(nil, repositories.ErrNotFound)

		rec, _ := h.serve(t, co.handler.Webhook, request{
			method: http.MethodPost, target: "/payments/webhook", body: string(failed),
			headers: []string{payments.SignatureHeader, payments.Sign(failed, webhookSecret, fixedNow)},
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		co.orders.AssertExpectations(t)
	})

	t.Run("forged signature", func(t *testing.T) {
		co := newCheckout()
		rec, body := h.serve(t, co.handler.Webhook, request{
			method: http.MethodPost, target: "/payments/webhook", body: string(payload),
			headers: []string{payments.SignatureHeader, payments.Sign(payload, "wrong", fixedNow)},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_SIGNATURE", body["code"])
		co.orders.AssertNotCalled(t, "SetPaymentState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

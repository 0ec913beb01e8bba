package services

import (
	"testing"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func catalogue() (map[primitive.ObjectID]models.Product, primitive.ObjectID, primitive.ObjectID) {
	v1, v2 := primitive.NewObjectID(), primitive.NewObjectID()
	a := models.Product{ID: primitive.NewObjectID(), Name: "Clay mug", Price: 19.99, Stock: 5, IsActive: true, VendorID: v1, VendorName: "Kiln Co", Images: []string{"mug.jpg"}}
	b := models.Product{ID: primitive.NewObjectID(), Name: "Linen napkin", Price: 5.5, Stock: 1, IsActive: true, VendorID: v2, VendorName: "Loom"}
	return map[primitive.ObjectID]models.Product{a.ID: a, b.ID: b}, a.ID, b.ID
}

func TestPriceCart(t *testing.T) {
	products, mug, napkin := catalogue()

	q, err := PriceCart([]models.CartItem{
		{ProductID: mug.Hex(), Quantity: 1},
		{ProductID: napkin.Hex(), Quantity: 1},
		{ProductID: mug.Hex(), Quantity: 1},
	}, products, "standard")
	require.NoError(t, err)

	require.Len(t, q.Items, 2)
	assert.Equal(t, 2, q.Items[0].Quantity)
	assert.Equal(t, "mug.jpg", q.Items[0].Image)
	assert.Equal(t, int64(4548), q.SubtotalCents)
	assert.Equal(t, int64(500), q.ShippingCents)
	assert.Equal(t, int64(364), q.TaxCents)
	assert.Equal(t, int64(5412), q.TotalCents)
}

func TestPriceCart_Failures(t *testing.T) {
	products, mug, napkin := catalogue()
	inactive := products[mug]
	inactive.IsActive = false

	tests := []struct {
		name     string
		products map[primitive.ObjectID]models.Product
		cart     []models.CartItem
	}{
		{"unknown product", products, []models.CartItem{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}}},
		{"malformed id", products, []models.CartItem{{ProductID: "nope", Quantity: 1}}},
		{"short stock", products, []models.CartItem{{ProductID: napkin.Hex(), Quantity: 2}}},
		{"inactive", map[primitive.ObjectID]models.Product{mug: inactive}, []models.CartItem{{ProductID: mug.Hex(), Quantity: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PriceCart(tt.cart, tt.products, "")
			var stockErr *StockError
			assert.ErrorAs(t, err, &stockErr)
		})
	}
}

func TestShippingAndTax(t *testing.T) {
	assert.Equal(t, int64(1500), ShippingCents("express"))
	assert.Equal(t, int64(500), ShippingCents("standard"))
	assert.Equal(t, int64(500), ShippingCents(""))
	assert.Equal(t, int64(8), TaxCents(100))
	assert.Equal(t, int64(1), TaxCents(7))
	assert.Equal(t, int64(0), TaxCents(6))
}

func TestSplitByVendor(t *testing.T) {
	products, mug, napkin := catalogue()
	q, err := PriceCart([]models.CartItem{{ProductID: mug.Hex(), Quantity: 2}, {ProductID: napkin.Hex(), Quantity: 1}}, products, "express")
	require.NoError(t, err)

	split := SplitByVendor(q.Items, models.DefaultCommissionRate)
	require.Len(t, split, 2)

	assert.Equal(t, "Kiln Co", split[0].VendorName)
	assert.Equal(t, 39.98, split[0].Subtotal)
	assert.Equal(t, 4.0, split[0].Commission)
	assert.Equal(t, 35.98, split[0].VendorAmount)
	assert.Equal(t, models.OrderPending, split[0].Status)

	assert.Equal(t, 5.5, split[1].Subtotal)
	assert.Equal(t, 0.55, split[1].Commission)
	assert.Equal(t, 4.95, split[1].VendorAmount)
}

func TestOrderNumber(t *testing.T) {
	now := time.Date(2024, 2, 9, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "AM2402090001", OrderNumber(now, 1))
	assert.Equal(t, "AM2402090123", OrderNumber(now, 123))

	start, end := DayBounds(now)
	assert.Equal(t, time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), end)
}

func TestTimeline(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)
	shipped := created.Add(24 * time.Hour)

	o := &models.Order{Status: models.OrderPending, CreatedAt: created, UpdatedAt: updated}
	assert.Len(t, Timeline(o), 1)

	o.Status = models.OrderShipped
	o.VendorOrders = []models.VendorOrder{{ShippedAt: &shipped}}
	events := Timeline(o)
	require.Len(t, events, 3)
	assert.Equal(t, "Order Shipped", events[2].Status)
	assert.Equal(t, shipped, events[2].Date)

	o.Status = models.OrderDelivered
	events = Timeline(o)
	require.Len(t, events, 4)
	assert.Equal(t, updated, events[3].Date)

	o.Status = models.OrderCancelled
	assert.Len(t, Timeline(o), 1)
}

func TestConversationID_IsSymmetric(t *testing.T) {
	a, b := primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()
	assert.Equal(t, ConversationID(a, b), ConversationID(b, a))
	assert.Contains(t, ConversationID(a, b), "_")
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.3, RoundRating(13.0/3))
	assert.Equal(t, 4.5, RoundRating(4.45))
	assert.Equal(t, 5.0, RoundRating(5))
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus("shipped"))
	assert.False(t, ValidOrderStatus("lost"))
}

func TestApplyHelpfulVote(t *testing.T) {
	r := &models.Review{}
	voter := primitive.NewObjectID()
	now := time.Now()

	ApplyHelpfulVote(r, models.HelpfulVote{UserID: voter, IsHelpful: true, VotedAt: now})
	assert.Equal(t, 1, r.IsHelpful)

	ApplyHelpfulVote(r, models.HelpfulVote{UserID: voter, IsHelpful: true, VotedAt: now})
	assert.Equal(t, 1, r.IsHelpful)
	assert.Len(t, r.HelpfulVotes, 1)

	ApplyHelpfulVote(r, models.HelpfulVote{UserID: voter, IsHelpful: false, VotedAt: now})
	assert.Equal(t, -1, r.IsHelpful)

	ApplyHelpfulVote(r, models.HelpfulVote{UserID: primitive.NewObjectID(), IsHelpful: true, VotedAt: now})
	assert.Equal(t, 0, r.IsHelpful)
	assert.Len(t, r.HelpfulVotes, 2)
}

func TestDiscountPercentage(t *testing.T) {
	p := models.Product{Price: 30, ComparePrice: 40}
	assert.Equal(t, 25, p.DiscountPercentage())
	p.ComparePrice = 20
	assert.Equal(t, 0, p.DiscountPercentage())
	p.ComparePrice = 0
	assert.Equal(t, 0, p.DiscountPercentage())
}

package services

import (
	"fmt"
	"math"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	standardShippingCents = 500
	expressShippingCents  = 1500
	taxPercent            = 8
	Currency              = "usd"
)

// StockError reports a cart line the catalogue cannot fill.
type StockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("product %s is not available", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.Name, e.Available, e.Requested)
}

// Quote is a priced cart. Amounts are kept in cents so totals never drift.
type Quote struct {
	Items         []models.OrderItem
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}

func ToCents(v float64) int64 { return int64(math.Round(v * 100)) }

func FromCents(c int64) float64 { return float64(c) / 100 }

func ShippingCents(method string) int64 {
	if method == "express" {
		return expressShippingCents
	}
	return standardShippingCents
}

// TaxCents is 8% of the subtotal, rounded half up to the cent.
func TaxCents(subtotalCents int64) int64 {
	return (subtotalCents*taxPercent + 50) / 100
}

// PriceCart prices cart lines from stored products. Quantities for the same
// product are merged; inactive or missing products and short stock fail.
func PriceCart(cart []models.CartItem, products map[primitive.ObjectID]models.Product, shippingMethod string) (*Quote, error) {
	q := &Quote{}
	index := map[primitive.ObjectID]int{}

	for _, line := range cart {
		id, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			return nil, &StockError{ProductID: line.ProductID}
		}
		p, ok := products[id]
		if !ok || !p.IsActive {
			return nil, &StockError{ProductID: line.ProductID}
		}

		if i, seen := index[id]; seen {
			q.Items[i].Quantity += line.Quantity
		} else {
			index[id] = len(q.Items)
			item := models.OrderItem{
				ProductID:  id,
				Name:       p.Name,
				Price:      p.Price,
				Quantity:   line.Quantity,
				VendorID:   p.VendorID,
				VendorName: p.VendorName,
			}
			if len(p.Images) > 0 {
				item.Image = p.Images[0]
			}
			q.Items = append(q.Items, item)
		}

		item := q.Items[index[id]]
		if item.Quantity > p.Stock {
			return nil, &StockError{ProductID: line.ProductID, Name: p.Name, Available: p.Stock, Requested: item.Quantity}
		}
	}

	for _, item := range q.Items {
		q.SubtotalCents += ToCents(item.Price) * int64(item.Quantity)
	}
	q.ShippingCents = ShippingCents(shippingMethod)
	q.TaxCents = TaxCents(q.SubtotalCents)
	q.TotalCents = q.SubtotalCents + q.ShippingCents + q.TaxCents
	return q, nil
}

// SplitByVendor groups items per shop in first-seen order and takes the
// commission off each shop's subtotal.
func SplitByVendor(items []models.OrderItem, commissionRate float64) []models.VendorOrder {
	var out []models.VendorOrder
	index := map[primitive.ObjectID]int{}
	subtotals := []int64{}

	for _, item := range items {
		i, ok := index[item.VendorID]
		if !ok {
			i = len(out)
			index[item.VendorID] = i
			out = append(out, models.VendorOrder{
				VendorID:   item.VendorID,
				VendorName: item.VendorName,
				Status:     models.OrderPending,
			})
			subtotals = append(subtotals, 0)
		}
		out[i].Items = append(out[i].Items, item)
		subtotals[i] += ToCents(item.Price) * int64(item.Quantity)
	}

	for i := range out {
		commission := int64(math.Round(float64(subtotals[i]) * commissionRate))
		out[i].Subtotal = FromCents(subtotals[i])
		out[i].Commission = FromCents(commission)
		out[i].VendorAmount = FromCents(subtotals[i] - commission)
	}
	return out
}

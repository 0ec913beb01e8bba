package handlers

import (
	"net/http"
	"testing"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newVendorHandler() (*VendorHandler, *MockVendorRepository, *MockProductRepository, *MockReviewRepository) {
	vendors, products, reviews := new(MockVendorRepository), new(MockProductRepository), new(MockReviewRepository)
	return NewVendorHandler(vendors, products, reviews, logger.NewNop()), vendors, products, reviews
}

const shopBody = `{"shopName":"Kiln Co","description":"Wheel thrown stoneware","category":"Home Decor"}`

func TestCreateVendor(t *testing.T) {
	h := newHarness()
	uid := primitive.NewObjectID()

	t.Run("starts unapproved", func(t *testing.T) {
		handler, vendors, _, _ := newVendorHandler()
		vendors.On("Create", mock.Anything, mock.MatchedBy(func(v *models.Vendor) bool {
			return v.UserID == uid && v.ShopName == "Kiln Co" && !v.IsApproved && v.Tags != nil
		})).Return(nil)

		rec, _ := h.serve(t, handler.Create, request{method: http.MethodPost, target: "/vendors", body: shopBody, userID: uid.Hex(), role: "vendor"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("second shop", func(t *testing.T) {
		handler, vendors, _, _ := newVendorHandler()
		vendors.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrDuplicate)

		rec, body := h.serve(t, handler.Create, request{method: http.MethodPost, target: "/vendors", body: shopBody, userID: uid.Hex(), role: "vendor"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "VENDOR_EXISTS", body["code"])
	})

	t.Run("unknown category", func(t *testing.T) {
		handler, _, _, _ := newVendorHandler()
		rec, body := h.serve(t, handler.Create, request{
			method: http.MethodPost, target: "/vendors",
			body:   `{"shopName":"Kiln Co","description":"Stoneware","category":"Food"}`,
			userID: uid.Hex(), role: "vendor",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})
}

func TestVendorSearch(t *testing.T) {
	h := newHarness()
	handler, vendors, _, _ := newVendorHandler()

	rec, body := h.serve(t, handler.Search, request{method: http.MethodGet, target: "/vendors/search?q=%20"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "SEARCH_QUERY_REQUIRED", body["code"])

	vendors.On("List", mock.Anything, mock.MatchedBy(func(f models.VendorFilter) bool {
		return f.Search == "kiln" && f.Approved != nil && *f.Approved && f.Limit == 12
	})).Return([]models.Vendor{{ShopName: "Kiln Co"}}, int64(1), nil)

	rec, body = h.serve(t, handler.Search, request{method: http.MethodGet, target: "/vendors/search?q=kiln"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["vendors"], 1)
}

func TestVendorPublicProfile_HidesPendingShops(t *testing.T) {
	h := newHarness()
	id := primitive.NewObjectID()

	tests := []struct {
		name   string
		shop   *models.Vendor
		status int
	}{
		{"approved", &models.Vendor{ID: id, IsApproved: true, IsActive: true}, http.StatusOK},
		{"pending", &models.Vendor{ID: id, IsActive: true}, http.StatusNotFound},
		{"closed", &models.Vendor{ID: id, IsApproved: true}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, vendors, _, _ := newVendorHandler()
			vendors.On("GetByID", mock.Anything, id.Hex()).Return(tt.shop, nil)

			rec, _ := h.serve(t, handler.Get, request{method: http.MethodGet, target: "/vendors/" + id.Hex(), params: []string{"id", id.Hex()}})
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestVendorReviews_SpansListings(t *testing.T) {
	h := newHarness()
	handler, vendors, products, reviews := newVendorHandler()
	id := primitive.NewObjectID()
	p1, p2 := primitive.NewObjectID(), primitive.NewObjectID()

	vendors.On("GetByID", mock.Anything, id.Hex()).Return(&models.Vendor{ID: id, IsApproved: true, IsActive: true}, nil)
	products.On("List", mock.Anything, mock.MatchedBy(func(f models.ProductFilter) bool {
		return f.VendorID != nil && *f.VendorID == id
	})).Return([]models.Product{{ID: p1}, {ID: p2}}, int64(2), nil)
	reviews.On("ListByProducts", mock.Anything, []primitive.ObjectID{p1, p2}, int64(0), int64(10)).
		Return([]models.Review{{Rating: 5}}, int64(1), nil)

	rec, body := h.serve(t, handler.Reviews, request{method: http.MethodGet, target: "/vendors/" + id.Hex() + "/reviews", params: []string{"id", id.Hex()}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["reviews"], 1)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["totalReviews"])
}

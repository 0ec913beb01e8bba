package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VendorHandler serves shop profiles
type VendorHandler struct {
	vendors  repositories.VendorRepository
	products repositories.ProductRepository
	reviews  repositories.ReviewRepository
	log      *logger.Logger
}

func NewVendorHandler(vendors repositories.VendorRepository, products repositories.ProductRepository, reviews repositories.ReviewRepository, log *logger.Logger) *VendorHandler {
	return &VendorHandler{vendors: vendors, products: products, reviews: reviews, log: log}
}

// RegisterVendorRoutes registers /vendors. vendorOnly must include auth.
func (h *VendorHandler) RegisterVendorRoutes(g *echo.Group, vendorOnly ...echo.MiddlewareFunc) {
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/categories", h.Categories)
	g.GET("/me", h.Mine, vendorOnly...)
	g.PUT("/me", h.UpdateMine, vendorOnly...)
	g.POST("", h.Create, vendorOnly...)
	g.GET("/:id", h.Get)
	g.GET("/:id/products", h.Products)
	g.GET("/:id/reviews", h.Reviews)
}

func (h *VendorHandler) list(c echo.Context, search string) error {
	page := paging.FromQuery(c, 12, 100)
	approved := true
	vendors, total, err := h.vendors.List(c.Request().Context(), models.VendorFilter{
		Category: c.QueryParam("category"),
		Search:   search,
		Approved: &approved,
		Skip:     page.Skip(),
		Limit:    page.Limit,
	})
	if err != nil {
		return httperr.Internal("FETCH_VENDORS_ERROR", "Server error fetching vendors", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"vendors":    vendors,
		"pagination": page.Meta(total, "totalVendors"),
	})
}

// List returns approved shops, best rated first.
func (h *VendorHandler) List(c echo.Context) error {
	return h.list(c, "")
}

func (h *VendorHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return httperr.BadRequest("SEARCH_QUERY_REQUIRED", "Search query is required")
	}
	return h.list(c, q)
}

func (h *VendorHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"categories": models.Categories})
}

// public loads a shop visible to shoppers.
func (h *VendorHandler) public(c echo.Context) (*models.Vendor, error) {
	shop, err := h.vendors.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, lookupErr(err, "VENDOR_NOT_FOUND", "Vendor not found", "FETCH_VENDOR_ERROR", "Server error fetching vendor")
	}
	if !shop.IsApproved || !shop.IsActive {
		return nil, httperr.NotFound("VENDOR_NOT_FOUND", "Vendor profile not available")
	}
	return shop, nil
}

func (h *VendorHandler) Get(c echo.Context) error {
	shop, err := h.public(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"vendor": shop})
}

func (h *VendorHandler) Products(c echo.Context) error {
	shop, err := h.public(c)
	if err != nil {
		return err
	}
	page := paging.FromQuery(c, 12, 100)
	products, total, err := h.products.List(c.Request().Context(), models.ProductFilter{
		VendorID: &shop.ID,
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
		Skip:     page.Skip(),
		Limit:    page.Limit,
	})
	if err != nil {
		return httperr.Internal("FETCH_PRODUCTS_ERROR", "Server error fetching vendor products", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"products":   models.Views(products),
		"pagination": page.Meta(total, "totalProducts"),
	})
}

// Reviews pages the reviews across every active listing of the shop.
func (h *VendorHandler) Reviews(c echo.Context) error {
	shop, err := h.public(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	listings, _, err := h.products.List(ctx, models.ProductFilter{VendorID: &shop.ID})
	if err != nil {
		return httperr.Internal("FETCH_REVIEWS_ERROR", "Server error fetching vendor reviews", err)
	}

	ids := make([]primitive.ObjectID, 0, len(listings))
	for _, p := range listings {
		ids = append(ids, p.ID)
	}
	page := paging.FromQuery(c, 10, 50)
	reviews, total, err := h.reviews.ListByProducts(ctx, ids, page.Skip(), page.Limit)
	if err != nil {
		return httperr.Internal("FETCH_REVIEWS_ERROR", "Server error fetching vendor reviews", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reviews":    reviews,
		"pagination": page.Meta(total, "totalReviews"),
	})
}

// Create opens the caller's shop. It starts unapproved.
func (h *VendorHandler) Create(c echo.Context) error {
	var req models.VendorRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	shop := &models.Vendor{UserID: uid}
	shop.Apply(&req)
	if err := h.vendors.Create(c.Request().Context(), shop); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.Conflict("VENDOR_EXISTS", "Vendor profile already exists")
		}
		return httperr.Internal("CREATE_VENDOR_ERROR", "Server error creating vendor profile", err)
	}
	h.log.Info("vendor profile created", "vendor_id", shop.ID.Hex(), "user_id", uid.Hex())

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Vendor profile created successfully. Awaiting admin approval.",
		"vendor":  shop,
	})
}

func (h *VendorHandler) mine(c echo.Context) (*models.Vendor, error) {
	uid, err := callerID(c)
	if err != nil {
		return nil, err
	}
	shop, err := h.vendors.GetByUser(c.Request().Context(), uid)
	if err != nil {
		return nil, lookupErr(err, "VENDOR_NOT_FOUND", "Vendor profile not found", "FETCH_VENDOR_ERROR", "Server error fetching vendor")
	}
	return shop, nil
}

func (h *VendorHandler) Mine(c echo.Context) error {
	shop, err := h.mine(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"vendor": shop})
}

func (h *VendorHandler) UpdateMine(c echo.Context) error {
	var req models.VendorRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	shop, err := h.mine(c)
	if err != nil {
		return err
	}
	shop.Apply(&req)
	if err := h.vendors.Update(c.Request().Context(), shop); err != nil {
		return lookupErr(err, "VENDOR_NOT_FOUND", "Vendor profile not found", "UPDATE_VENDOR_ERROR", "Server error updating vendor profile")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Vendor profile updated successfully",
		"vendor":  shop,
	})
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/pkg/cache"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	categoriesKey = "products:categories"
	categoriesTTL = 10 * time.Minute
)

// ProductHandler serves the catalogue and vendor listing management
type ProductHandler struct {
	products repositories.ProductRepository
	vendors  repositories.VendorRepository
	cache    *cache.Cache
	log      *logger.Logger
}

// NewProductHandler creates a new ProductHandler. cache may be nil.
func NewProductHandler(products repositories.ProductRepository, vendors repositories.VendorRepository, c *cache.Cache, log *logger.Logger) *ProductHandler {
	return &ProductHandler{products: products, vendors: vendors, cache: c, log: log}
}

// RegisterProductRoutes registers /products. vendorOnly must include auth.
func (h *ProductHandler) RegisterProductRoutes(g *echo.Group, vendorOnly ...echo.MiddlewareFunc) {
	g.GET("", h.List)
	g.GET("/featured", h.Featured)
	g.GET("/categories", h.Categories)
	g.GET("/suggestions", h.Suggestions)
	g.GET("/:id", h.Get)

	g.POST("", h.Create, vendorOnly...)
	g.PUT("/:id", h.Update, vendorOnly...)
	g.DELETE("/:id", h.Delete, vendorOnly...)
}

func parsePrice(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func (h *ProductHandler) List(c echo.Context) error {
	page := paging.FromQuery(c, 12, 100)
	filter := models.ProductFilter{
		Category: c.QueryParam("category"),
		MinPrice: parsePrice(c.QueryParam("minPrice")),
		MaxPrice: parsePrice(c.QueryParam("maxPrice")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Sort:     c.QueryParam("sort"),
		Skip:     page.Skip(),
		Limit:    page.Limit,
	}
	if raw := c.QueryParam("vendorId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return httperr.BadRequest("INVALID_VENDOR_ID", "Invalid vendor ID")
		}
		filter.VendorID = &id
	}

	products, total, err := h.products.List(c.Request().Context(), filter)
	if err != nil {
		return httperr.Internal("FETCH_PRODUCTS_ERROR", "Server error fetching products", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"products":   models.Views(products),
		"pagination": page.Meta(total, "totalProducts"),
	})
}

func (h *ProductHandler) Featured(c echo.Context) error {
	products, err := h.products.Featured(c.Request().Context())
	if err != nil {
		return httperr.Internal("FETCH_PRODUCTS_ERROR", "Server error fetching featured products", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": models.Views(products)})
}

func (h *ProductHandler) Categories(c echo.Context) error {
	counts, err := cache.Remember(c.Request().Context(), h.cache, categoriesKey, categoriesTTL, h.products.CategoryCounts)
	if err != nil {
		return httperr.Internal("FETCH_CATEGORIES_ERROR", "Server error fetching categories", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": counts})
}

func (h *ProductHandler) Suggestions(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if len(q) < 2 {
		return httperr.BadRequest("INVALID_SEARCH_QUERY", "Search query must be at least 2 characters")
	}
	suggestions, err := h.products.Suggestions(c.Request().Context(), q)
	if err != nil {
		return httperr.Internal("SUGGESTIONS_ERROR", "Server error fetching search suggestions", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"suggestions": suggestions})
}

// Get returns an active product and counts the view.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return lookupErr(err, "PRODUCT_NOT_FOUND", "Product not found", "FETCH_PRODUCT_ERROR", "Server error fetching product")
	}
	if !p.IsActive {
		return httperr.NotFound("PRODUCT_NOT_FOUND", "Product not found")
	}
	if err := h.products.IncrementViews(ctx, p.ID); err != nil {
		h.log.Warn("failed to count product view", "product_id", p.ID.Hex(), "error", err)
	} else {
		p.ViewCount++
	}

	resp := echo.Map{"product": p.View()}
	if shop, err := h.vendors.GetByID(ctx, p.VendorID.Hex()); err == nil {
		resp["vendor"] = shop
	}
	return c.JSON(http.StatusOK, resp)
}

// approvedShop returns the caller's shop when it may sell.
func approvedShop(ctx context.Context, vendors repositories.VendorRepository, userID primitive.ObjectID) (*models.Vendor, error) {
	shop, err := vendors.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, httperr.Forbidden("VENDOR_PROFILE_REQUIRED", "Create a vendor profile first")
		}
		return nil, httperr.Internal("VENDOR_LOOKUP_ERROR", "Failed to load vendor profile", err)
	}
	if !shop.IsApproved {
		return nil, httperr.Forbidden("VENDOR_NOT_APPROVED", "Vendor account is pending approval")
	}
	return shop, nil
}

// ownedProduct loads a product the caller's approved shop owns.
func (h *ProductHandler) ownedProduct(c echo.Context) (*models.Product, *models.Vendor, error) {
	uid, err := callerID(c)
	if err != nil {
		return nil, nil, err
	}
	ctx := c.Request().Context()
	shop, err := approvedShop(ctx, h.vendors, uid)
	if err != nil {
		return nil, nil, err
	}
	p, err := h.products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return nil, nil, lookupErr(err, "PRODUCT_NOT_FOUND", "Product not found", "FETCH_PRODUCT_ERROR", "Server error fetching product")
	}
	if p.VendorID != shop.ID {
		return nil, nil, httperr.Forbidden("NOT_OWNER", "Not authorized to modify this product")
	}
	return p, shop, nil
}

func (h *ProductHandler) forgetCategories(ctx context.Context) {
	if err := h.cache.Delete(ctx, categoriesKey); err != nil {
		h.log.Warn("failed to invalidate category cache", "error", err)
	}
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req models.ProductRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	shop, err := approvedShop(ctx, h.vendors, uid)
	if err != nil {
		return err
	}

	p := &models.Product{VendorID: shop.ID, VendorName: shop.ShopName}
	p.Apply(&req)
	if err := h.products.Create(ctx, p); err != nil {
		return httperr.Internal("CREATE_PRODUCT_ERROR", "Server error creating product", err)
	}
	h.forgetCategories(ctx)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product created successfully",
		"product": p.View(),
	})
}

func (h *ProductHandler) Update(c echo.Context) error {
	var req models.ProductRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	p, _, err := h.ownedProduct(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	p.Apply(&req)
	if err := h.products.Update(ctx, p); err != nil {
		return lookupErr(err, "PRODUCT_NOT_FOUND", "Product not found", "UPDATE_PRODUCT_ERROR", "Server error updating product")
	}
	h.forgetCategories(ctx)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product updated successfully",
		"product": p.View(),
	})
}

// Delete hides the listing; past orders still reference it.
func (h *ProductHandler) Delete(c echo.Context) error {
	p, _, err := h.ownedProduct(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.products.Deactivate(ctx, p.ID); err != nil {
		return lookupErr(err, "PRODUCT_NOT_FOUND", "Product not found", "DELETE_PRODUCT_ERROR", "Server error deleting product")
	}
	h.forgetCategories(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

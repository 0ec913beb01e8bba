package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/internal/market/services"
	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
)

// ReviewHandler serves product reviews
type ReviewHandler struct {
	reviews  repositories.ReviewRepository
	products repositories.ProductRepository
	vendors  repositories.VendorRepository
	users    repositories.UserRepository
	orders   repositories.OrderRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewReviewHandler(reviews repositories.ReviewRepository, products repositories.ProductRepository, vendors repositories.VendorRepository, users repositories.UserRepository, orders repositories.OrderRepository, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		products: products,
		vendors:  vendors,
		users:    users,
		orders:   orders,
		log:      log,
		now:      time.Now,
	}
}

// RegisterReviewRoutes registers the review routes on the api root, since
// they hang off both /products and /reviews.
func (h *ReviewHandler) RegisterReviewRoutes(g *echo.Group, auth, vendorOnly echo.MiddlewareFunc) {
	g.GET("/products/:id/reviews", h.List)
	g.POST("/products/:id/reviews", h.Create, auth)
	g.PUT("/reviews/:id/response", h.Respond, auth, vendorOnly)
	g.POST("/reviews/:id/helpful", h.Helpful, auth)
}

func (h *ReviewHandler) List(c echo.Context) error {
	productID, err := pathID(c, "id", "PRODUCT_NOT_FOUND", "Product not found")
	if err != nil {
		return err
	}
	page := paging.FromQuery(c, 10, 50)
	reviews, total, err := h.reviews.ListByProduct(c.Request().Context(), productID, page.Skip(), page.Limit)
	if err != nil {
		return httperr.Internal("FETCH_REVIEWS_ERROR", "Server error fetching reviews", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reviews":    reviews,
		"pagination": page.Meta(total, "totalReviews"),
	})
}

// Create stores the caller's review and refreshes the product and shop
// ratings.
func (h *ReviewHandler) Create(c echo.Context) error {
	var req models.ReviewRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	product, err := h.products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return lookupErr(err, "PRODUCT_NOT_FOUND", "Product not found", "CREATE_REVIEW_ERROR", "Server error creating review")
	}
	if !product.IsActive {
		return httperr.NotFound("PRODUCT_NOT_FOUND", "Product not found")
	}

	user, err := h.users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		return lookupErr(err, "USER_NOT_FOUND", "User not found", "CREATE_REVIEW_ERROR", "Server error creating review")
	}

	verified, err := h.orders.HasPurchased(ctx, user.ID, product.ID)
	if err != nil {
		h.log.Warn("purchase check failed", "user_id", user.ID.Hex(), "product_id", product.ID.Hex(), "error", err)
	}

	review := &models.Review{
		ProductID:      product.ID,
		CustomerID:     user.ID,
		CustomerName:   user.Name,
		CustomerAvatar: user.Avatar,
		Rating:         req.Rating,
		Title:          strings.TrimSpace(req.Title),
		Comment:        strings.TrimSpace(req.Comment),
		IsVerified:     verified,
	}
	if err := h.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.Conflict("ALREADY_REVIEWED", "You have already reviewed this product")
		}
		return httperr.Internal("CREATE_REVIEW_ERROR", "Server error creating review", err)
	}

	h.refreshRatings(ctx, product)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Review created successfully",
		"review":  review,
	})
}

// refreshRatings recomputes the product and shop averages. Failures are
// logged; the review itself is already stored.
func (h *ReviewHandler) refreshRatings(ctx context.Context, product *models.Product) {
	summary, err := h.reviews.ProductRating(ctx, product.ID)
	if err == nil {
		summary.Average = services.RoundRating(summary.Average)
		err = h.products.SetRating(ctx, product.ID, summary)
	}
	if err != nil {
		h.log.Error("failed to refresh product rating", "product_id", product.ID.Hex(), "error", err)
	}

	summary, err = h.reviews.VendorRating(ctx, product.VendorID)
	if err == nil {
		summary.Average = services.RoundRating(summary.Average)
		err = h.vendors.SetRating(ctx, product.VendorID, summary)
	}
	if err != nil {
		h.log.Error("failed to refresh vendor rating", "vendor_id", product.VendorID.Hex(), "error", err)
	}
}

// Respond lets the shop owning the reviewed product answer once; a second
// call replaces the answer.
func (h *ReviewHandler) Respond(c echo.Context) error {
	var req models.ReviewResponseRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	review, err := h.reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		return lookupErr(err, "REVIEW_NOT_FOUND", "Review not found", "REVIEW_RESPONSE_ERROR", "Server error responding to review")
	}
	product, err := h.products.GetByID(ctx, review.ProductID.Hex())
	if err != nil {
		return lookupErr(err, "PRODUCT_NOT_FOUND", "Product not found", "REVIEW_RESPONSE_ERROR", "Server error responding to review")
	}
	shop, err := h.vendors.GetByUser(ctx, uid)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return httperr.Internal("REVIEW_RESPONSE_ERROR", "Server error responding to review", err)
	}
	if shop == nil || shop.ID != product.VendorID {
		return httperr.Forbidden("NOT_OWNER", "Only the product's vendor can respond to this review")
	}

	review.VendorResponse = &models.VendorResponse{Comment: strings.TrimSpace(req.Comment), RespondedAt: h.now()}
	if err := h.reviews.Update(ctx, review); err != nil {
		return lookupErr(err, "REVIEW_NOT_FOUND", "Review not found", "REVIEW_RESPONSE_ERROR", "Server error responding to review")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Response added successfully",
		"review":  review,
	})
}

func (h *ReviewHandler) Helpful(c echo.Context) error {
	var req models.HelpfulRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("INVALID_PAYLOAD", "Invalid request payload")
	}
	if req.IsHelpful == nil {
		return httperr.BadRequest("IS_HELPFUL_REQUIRED", "isHelpful must be true or false")
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	review, err := h.reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		return lookupErr(err, "REVIEW_NOT_FOUND", "Review not found", "HELPFUL_VOTE_ERROR", "Server error recording vote")
	}
	if review.CustomerID == uid {
		return httperr.BadRequest("OWN_REVIEW", "You cannot vote on your own review")
	}

	services.ApplyHelpfulVote(review, models.HelpfulVote{UserID: uid, IsHelpful: *req.IsHelpful, VotedAt: h.now()})
	if err := h.reviews.Update(ctx, review); err != nil {
		return lookupErr(err, "REVIEW_NOT_FOUND", "Review not found", "HELPFUL_VOTE_ERROR", "Server error recording vote")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Vote recorded",
		"isHelpful": review.IsHelpful,
	})
}

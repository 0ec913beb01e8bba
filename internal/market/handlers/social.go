package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
)

// FavoriteHandler serves a customer's saved products
type FavoriteHandler struct {
	favorites repositories.FavoriteRepository
	products  repositories.ProductRepository
	log       *logger.Logger
}

func NewFavoriteHandler(favorites repositories.FavoriteRepository, products repositories.ProductRepository, log *logger.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, products: products, log: log}
}

func (h *FavoriteHandler) RegisterFavoriteRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("", h.List, auth)
	g.POST("/:productId", h.Add, auth)
	g.DELETE("/:productId", h.Remove, auth)
	g.GET("/:productId/check", h.Check, auth)
	g.GET("/:productId/count", h.Count)
}

func (h *FavoriteHandler) Add(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	product, err := h.products.GetByID(ctx, c.Param("productId"))
	if err != nil {
		return lookupErr(err, "PRODUCT_NOT_FOUND", "Product not found", "ADD_FAVORITE_ERROR", "Server error adding favorite")
	}
	if !product.IsActive {
		return httperr.NotFound("PRODUCT_NOT_FOUND", "Product not found")
	}

	fav := &models.Favorite{User: uid, Product: product.ID}
	if err := h.favorites.Add(ctx, fav); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.Conflict("ALREADY_FAVORITED", "Product already in favorites")
		}
		return httperr.Internal("ADD_FAVORITE_ERROR", "Server error adding favorite", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Product added to favorites",
		"favorite": fav,
	})
}

func (h *FavoriteHandler) Remove(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId", "FAVORITE_NOT_FOUND", "Favorite not found")
	if err != nil {
		return err
	}
	if err := h.favorites.Remove(c.Request().Context(), uid, productID); err != nil {
		return lookupErr(err, "FAVORITE_NOT_FOUND", "Favorite not found", "REMOVE_FAVORITE_ERROR", "Server error removing favorite")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product removed from favorites"})
}

func (h *FavoriteHandler) List(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	page := paging.FromQuery(c, 20, 100)
	favs, total, err := h.favorites.List(c.Request().Context(), uid, page.Skip(), page.Limit)
	if err != nil {
		return httperr.Internal("FETCH_FAVORITES_ERROR", "Server error fetching favorites", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"favorites":  favs,
		"pagination": page.Meta(total, "totalFavorites"),
	})
}

func (h *FavoriteHandler) Check(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId", "PRODUCT_NOT_FOUND", "Product not found")
	if err != nil {
		return err
	}
	ok, err := h.favorites.Exists(c.Request().Context(), uid, productID)
	if err != nil {
		return httperr.Internal("CHECK_FAVORITE_ERROR", "Server error checking favorite", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"isFavorited": ok})
}

func (h *FavoriteHandler) Count(c echo.Context) error {
	productID, err := pathID(c, "productId", "PRODUCT_NOT_FOUND", "Product not found")
	if err != nil {
		return err
	}
	n, err := h.favorites.CountByProduct(c.Request().Context(), productID)
	if err != nil {
		return httperr.Internal("COUNT_FAVORITES_ERROR", "Server error counting favorites", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// FollowHandler lets customers follow vendor accounts
type FollowHandler struct {
	follows repositories.FollowRepository
	users   repositories.UserRepository
	log     *logger.Logger
}

func NewFollowHandler(follows repositories.FollowRepository, users repositories.UserRepository, log *logger.Logger) *FollowHandler {
	return &FollowHandler{follows: follows, users: users, log: log}
}

func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/following", h.Following, auth)
	g.POST("/:vendorUserId", h.Follow, auth)
	g.DELETE("/:vendorUserId", h.Unfollow, auth)
	g.GET("/:vendorUserId/count", h.Count)
	g.GET("/:vendorUserId/status", h.Status, auth)
}

func (h *FollowHandler) Follow(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	if c.Param("vendorUserId") == uid.Hex() {
		return httperr.BadRequest("CANNOT_FOLLOW_SELF", "You cannot follow yourself")
	}
	ctx := c.Request().Context()

	target, err := h.users.GetByID(ctx, c.Param("vendorUserId"))
	if err != nil {
		return lookupErr(err, "VENDOR_NOT_FOUND", "Vendor not found", "FOLLOW_ERROR", "Server error following vendor")
	}
	if target.Role != models.RoleVendor {
		return httperr.BadRequest("NOT_A_VENDOR", "You can only follow vendors")
	}

	follow := &models.Follow{Follower: uid, Following: target.ID}
	if err := h.follows.Follow(ctx, follow); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.Conflict("ALREADY_FOLLOWING", "You are already following this vendor")
		}
		return httperr.Internal("FOLLOW_ERROR", "Server error following vendor", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Successfully followed vendor",
		"follow":  follow,
	})
}

func (h *FollowHandler) Unfollow(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	target, err := pathID(c, "vendorUserId", "FOLLOW_NOT_FOUND", "You are not following this vendor")
	if err != nil {
		return err
	}
	if err := h.follows.Unfollow(c.Request().Context(), uid, target); err != nil {
		return lookupErr(err, "FOLLOW_NOT_FOUND", "You are not following this vendor", "UNFOLLOW_ERROR", "Server error unfollowing vendor")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully unfollowed vendor"})
}

func (h *FollowHandler) Following(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	vendors, err := h.follows.Following(c.Request().Context(), uid)
	if err != nil {
		return httperr.Internal("FETCH_FOLLOWING_ERROR", "Server error fetching followed vendors", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"following": vendors, "count": len(vendors)})
}

func (h *FollowHandler) Count(c echo.Context) error {
	target, err := pathID(c, "vendorUserId", "VENDOR_NOT_FOUND", "Vendor not found")
	if err != nil {
		return err
	}
	n, err := h.follows.CountFollowers(c.Request().Context(), target)
	if err != nil {
		return httperr.Internal("COUNT_FOLLOWERS_ERROR", "Server error counting followers", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"followerCount": n})
}

func (h *FollowHandler) Status(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	target, err := pathID(c, "vendorUserId", "VENDOR_NOT_FOUND", "Vendor not found")
	if err != nil {
		return err
	}
	ok, err := h.follows.IsFollowing(c.Request().Context(), uid, target)
	if err != nil {
		return httperr.Internal("FOLLOW_STATUS_ERROR", "Server error checking follow status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"isFollowing": ok})
}

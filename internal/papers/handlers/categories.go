package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// CategoryHandler serves paper categories
type CategoryHandler struct {
	categories repositories.CategoryRepository
	log        *logger.Logger
}

func NewCategoryHandler(categories repositories.CategoryRepository, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, log: log}
}

// RegisterCategoryRoutes registers /categories. Listing is public; adminOnly
// guards the writes.
func (h *CategoryHandler) RegisterCategoryRoutes(g *echo.Group, adminOnly ...echo.MiddlewareFunc) {
	g.GET("", h.List)
	g.POST("", h.Create, adminOnly...)
	g.PUT("/:id", h.Update, adminOnly...)
	g.DELETE("/:id", h.Delete, adminOnly...)
}

func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categories.List(c.Request().Context())
	if err != nil {
		return httperr.Internal("FETCH_CATEGORIES_ERROR", "Failed to fetch categories", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req models.CategoryRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	category := &models.Category{Name: strings.TrimSpace(req.Name), Description: strings.TrimSpace(req.Description)}
	if err := h.categories.Create(c.Request().Context(), category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.Conflict("CATEGORY_EXISTS", "A category with this name already exists")
		}
		return httperr.Internal("CREATE_CATEGORY_ERROR", "Failed to create category", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Category created successfully",
		"category": category,
	})
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id", "CATEGORY_NOT_FOUND", "Category not found")
	if err != nil {
		return err
	}
	var req models.CategoryRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}

	category := &models.Category{ID: id, Name: strings.TrimSpace(req.Name), Description: strings.TrimSpace(req.Description)}
	if err := h.categories.Update(c.Request().Context(), category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.Conflict("CATEGORY_EXISTS", "A category with this name already exists")
		}
		return lookupErr(err, "CATEGORY_NOT_FOUND", "Category not found", "UPDATE_CATEGORY_ERROR", "Failed to update category")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Category updated successfully",
		"category": category,
	})
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id", "CATEGORY_NOT_FOUND", "Category not found")
	if err != nil {
		return err
	}
	if err := h.categories.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repositories.ErrCategoryInUse) {
			return httperr.Conflict("CATEGORY_IN_USE", "Cannot delete a category that has papers")
		}
		return lookupErr(err, "CATEGORY_NOT_FOUND", "Category not found", "DELETE_CATEGORY_ERROR", "Failed to delete category")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}

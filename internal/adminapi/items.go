package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/internal/market"
)

type itemPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image"`
}

func (h *Handler) listItems(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Item{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if db.Name() == "postgres" {
			db = db.Where("title ILIKE ?", "%"+q+"%")
		} else {
			db = db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
	}
	if vendor := c.QueryParam("vendor_id"); vendor != "" {
		db = db.Where("vendor_id = ?", vendor)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query items", err.Error())
	}

	var rows []domain.Item
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query items", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func (h *Handler) featuredItems(c echo.Context) error {
	items, err := h.app.Items().ListFeatured(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query featured items", err.Error())
	}
	limit := int(h.app.GetSettingsInt64Value("market", "featured_limit"))
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return ok(c, items)
}

// searchItems resolves a free text query through the search collaborator,
// falling back to a title filter when search is disabled.
func (h *Handler) searchItems(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Query text is required", nil)
	}
	if h.app.SearchEngine() == nil {
		return h.listItems(c)
	}

	page, pageSize := parsePagination(c)
	items, total, err := h.app.Catalog().SearchItems(c.Request().Context(), q, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SEARCH_ERROR", "Search request failed", err.Error())
	}
	return paged(c, items, total, page, pageSize)
}

func (h *Handler) getItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID", nil)
	}
	item, err := h.app.Items().GetByID(c.Request().Context(), id)
	if errors.Is(err, market.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query item", err.Error())
	}
	return ok(c, item)
}

func (h *Handler) createItem(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil || (user.Usertype != domain.UserTypeVendor && user.Usertype != domain.UserTypeAdmin) {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Only vendors can list items", nil)
	}

	var payload itemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse item", nil)
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Title is required", nil)
	}

	item := domain.Item{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Image:       strings.TrimSpace(payload.Image),
		VendorID:    user.ID,
	}
	if err := h.app.Catalog().CreateItem(c.Request().Context(), &item); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	return ok(c, item)
}

func (h *Handler) updateItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID", nil)
	}

	user, err := h.currentUser(c)
	if err != nil {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Login required", nil)
	}

	item, err := h.app.Items().GetByID(c.Request().Context(), id)
	if errors.Is(err, market.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query item", err.Error())
	}
	if item.VendorID != user.ID && user.Usertype != domain.UserTypeAdmin {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Not the item's vendor", nil)
	}

	var payload itemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse item", nil)
	}
	if title := strings.TrimSpace(payload.Title); title != "" {
		item.Title = title
	}
	if payload.Description != "" {
		item.Description = payload.Description
	}
	if payload.Price > 0 {
		item.Price = payload.Price
	}
	if payload.Stock >= 0 {
		item.Stock = payload.Stock
	}
	if img := strings.TrimSpace(payload.Image); img != "" {
		item.Image = img
	}

	if err := h.app.Catalog().UpdateItem(c.Request().Context(), item); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	return ok(c, item)
}

func (h *Handler) toggleFeature(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID", nil)
	}

	featured, err := h.app.Catalog().ToggleFeature(c.Request().Context(), id)
	if errors.Is(err, market.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to toggle feature", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id, "featured": featured})
}

func (h *Handler) deleteItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID", nil)
	}

	user, err := h.currentUser(c)
	if err != nil {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Login required", nil)
	}
	item, err := h.app.Items().GetByID(c.Request().Context(), id)
	if errors.Is(err, market.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query item", err.Error())
	}
	if item.VendorID != user.ID && user.Usertype != domain.UserTypeAdmin {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Not the item's vendor", nil)
	}

	if err := h.app.Catalog().DeleteItem(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete item", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

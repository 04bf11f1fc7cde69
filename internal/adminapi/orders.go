package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/internal/market"
)

func (h *Handler) customerOrders(c echo.Context) error {
	userID, okID := h.ws.CurrentUserID(c)
	if !okID {
		return fail(c, http.StatusUnauthorized, "LOGIN_REQUIRED", "Login required", nil)
	}
	page, pageSize := parsePagination(c)
	orders, total, err := h.app.Orders().ListByCustomer(c.Request().Context(), userID, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, orders, total, page, pageSize)
}

func (h *Handler) vendorOrders(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "LOGIN_REQUIRED", "Login required", nil)
	}
	if user.Usertype != domain.UserTypeVendor && user.Usertype != domain.UserTypeAdmin {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Only vendors have an order ledger", nil)
	}
	page, pageSize := parsePagination(c)
	orders, total, err := h.app.Orders().ListByVendor(c.Request().Context(), user.ID, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, orders, total, page, pageSize)
}

// completeOrder removes a fulfilled order from the vendor's ledger.
func (h *Handler) completeOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	user, err := h.currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "LOGIN_REQUIRED", "Login required", nil)
	}

	order, err := h.app.Orders().GetByID(c.Request().Context(), id)
	if errors.Is(err, market.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}
	if order.VendorID != user.ID && user.Usertype != domain.UserTypeAdmin {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Not the order's vendor", nil)
	}

	if err := h.app.Orders().Delete(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to complete order", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

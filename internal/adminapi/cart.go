package adminapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/internal/market"
)

// customerCart resolves the logged in customer's cart.
func (h *Handler) customerCart(c echo.Context) (*domain.Cart, error) {
	userID, okID := h.ws.CurrentUserID(c)
	if !okID {
		return nil, market.ErrNotFound
	}
	return h.app.CartStore().GetByCustomer(c.Request().Context(), userID)
}

func (h *Handler) viewCart(c echo.Context) error {
	cart, err := h.customerCart(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Cart not found", nil)
	}
	view, err := h.app.Carts().View(c.Request().Context(), cart.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load cart", err.Error())
	}
	return ok(c, view)
}

func (h *Handler) addCartItem(c echo.Context) error {
	itemID, err := parseIDParam(c, "itemid")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID", nil)
	}
	cart, err := h.customerCart(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Cart not found", nil)
	}

	updated, err := h.app.Carts().AddItem(c.Request().Context(), cart.ID, itemID)
	switch {
	case errors.Is(err, market.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
	case errors.Is(err, market.ErrConflict):
		return fail(c, http.StatusConflict, "CONFLICT", "Concurrent cart update, please retry", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add item", err.Error())
	}
	return ok(c, updated)
}

func (h *Handler) setCartQuantity(c echo.Context) error {
	itemID, err := parseIDParam(c, "itemid")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID", nil)
	}
	quantity, err := strconv.Atoi(c.QueryParam("quantity"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid quantity", nil)
	}
	cart, err := h.customerCart(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Cart not found", nil)
	}

	updated, err := h.app.Carts().SetQuantity(c.Request().Context(), cart.ID, itemID, quantity)
	switch {
	case errors.Is(err, market.ErrLineNotFound):
		return fail(c, http.StatusNotFound, "LINE_NOT_FOUND", "Item is not in the cart", nil)
	case errors.Is(err, market.ErrConflict):
		return fail(c, http.StatusConflict, "CONFLICT", "Concurrent cart update, please retry", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to set quantity", err.Error())
	}
	return ok(c, updated)
}

func (h *Handler) removeCartItem(c echo.Context) error {
	itemID, err := parseIDParam(c, "itemid")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID", nil)
	}
	cart, err := h.customerCart(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Cart not found", nil)
	}

	updated, err := h.app.Carts().RemoveItem(c.Request().Context(), cart.ID, itemID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to remove item", err.Error())
	}
	return ok(c, updated)
}

func (h *Handler) checkout(c echo.Context) error {
	cart, err := h.customerCart(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Cart not found", nil)
	}

	orders, err := h.app.Checkout().Checkout(c.Request().Context(), cart.ID)
	var stockErr *market.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK",
			"Some items do not have enough stock", map[string]interface{}{"item_ids": stockErr.ItemIDs})
	case errors.Is(err, market.ErrEmptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart has no items", nil)
	case errors.Is(err, market.ErrDuplicateCheckout):
		return fail(c, http.StatusConflict, "DUPLICATE_CHECKOUT", "Checkout already in progress", nil)
	case errors.Is(err, market.ErrConflict):
		return fail(c, http.StatusConflict, "CONFLICT", "Concurrent update, please retry", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Checkout failed", err.Error())
	}
	return ok(c, orders)
}

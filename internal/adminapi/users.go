package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/internal/market"
)

type registerPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Usertype  string `json:"usertype"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Usertype string `json:"usertype"`
}

func (h *Handler) register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	if strings.TrimSpace(payload.Password) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Password is required", nil)
	}
	if payload.Usertype == "" {
		payload.Usertype = domain.UserTypeCustomer
	}

	user := domain.User{
		Username:  payload.Username,
		Email:     payload.Email,
		Usertype:  payload.Usertype,
		Firstname: payload.Firstname,
		Lastname:  payload.Lastname,
		Phone:     payload.Phone,
		Address:   payload.Address,
	}
	err := h.app.Accounts().Register(c.Request().Context(), &user, payload.Password)
	switch {
	case errors.Is(err, market.ErrUserExists):
		return fail(c, http.StatusConflict, "USER_EXISTS", "Username or email already registered", nil)
	case err != nil:
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	return ok(c, user)
}

func (h *Handler) login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}

	user, err := h.app.Accounts().Authenticate(
		c.Request().Context(), payload.Username, payload.Password, payload.Usertype)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "BAD_CREDENTIALS", "No such user exists", nil)
	}

	if err := h.ws.Login(c, user); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to start session", nil)
	}
	return ok(c, user)
}

func (h *Handler) logout(c echo.Context) error {
	_ = h.ws.Logout(c)
	return ok(c, nil)
}

func (h *Handler) profile(c echo.Context) error {
	userID, _ := h.ws.CurrentUserID(c)
	user, err := h.app.Accounts().GetByID(c.Request().Context(), userID)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}
	return ok(c, user)
}

// currentUser loads the logged in account for handlers that need the row.
func (h *Handler) currentUser(c echo.Context) (*domain.User, error) {
	userID, okID := h.ws.CurrentUserID(c)
	if !okID {
		return nil, market.ErrNotFound
	}
	return h.app.Accounts().GetByID(c.Request().Context(), userID)
}

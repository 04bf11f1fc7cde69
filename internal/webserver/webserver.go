package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/talkincode/gomarket/internal/app"
	"github.com/talkincode/gomarket/internal/domain"
	"go.uber.org/zap"
)

const (
	sessionName    = "gomarket_session"
	sessionUserKey = "user_id"
	sessionTypeKey = "usertype"

	// ContextAppKey is where the application context is stashed on every
	// request, explicit dependency injection instead of package globals.
	ContextAppKey = "gomarket_app"
)

// WebServer wraps echo with cookie-session auth and route groups.
type WebServer struct {
	app   app.AppContext
	root  *echo.Echo
	store *sessions.CookieStore
	pub   *echo.Group
	api   *echo.Group
}

func NewWebServer(application app.AppContext) *WebServer {
	secret := application.Config().Web.Secret
	if secret == "" {
		secret = random.String(32)
		zap.L().Warn("web secret not configured, sessions will not survive restarts")
	}

	s := &WebServer{
		app:   application,
		root:  echo.New(),
		store: sessions.NewCookieStore([]byte(secret)),
	}
	s.store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}

	s.root.HideBanner = true
	s.root.Use(middleware.Recover())
	s.root.Use(s.injectApp)
	s.root.Use(s.requestLog)

	s.pub = s.root.Group("/api")
	s.api = s.root.Group("/api", s.requireLogin)
	return s
}

func (s *WebServer) injectApp(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(ContextAppKey, s.app)
		return next(c)
	}
}

func (s *WebServer) requestLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		zap.L().Debug("http request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("elapsed", time.Since(start)))
		return err
	}
}

func (s *WebServer) requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := s.CurrentUserID(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "login required",
			})
		}
		return next(c)
	}
}

// Login stores the user's identity in the session cookie.
func (s *WebServer) Login(c echo.Context, user *domain.User) error {
	sess, _ := s.store.Get(c.Request(), sessionName)
	sess.Values[sessionUserKey] = user.ID
	sess.Values[sessionTypeKey] = user.Usertype
	return sess.Save(c.Request(), c.Response())
}

// Logout clears the session.
func (s *WebServer) Logout(c echo.Context) error {
	sess, _ := s.store.Get(c.Request(), sessionName)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CurrentUserID returns the logged in user's ID, if any.
func (s *WebServer) CurrentUserID(c echo.Context) (int64, bool) {
	sess, err := s.store.Get(c.Request(), sessionName)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[sessionUserKey].(int64)
	return id, ok && id != 0
}

// CurrentUsertype returns the logged in user's account type, if any.
func (s *WebServer) CurrentUsertype(c echo.Context) (string, bool) {
	sess, err := s.store.Get(c.Request(), sessionName)
	if err != nil {
		return "", false
	}
	t, ok := sess.Values[sessionTypeKey].(string)
	return t, ok
}

// PubGET registers an unauthenticated route.
func (s *WebServer) PubGET(path string, h echo.HandlerFunc)  { s.pub.GET(path, h) }
func (s *WebServer) PubPOST(path string, h echo.HandlerFunc) { s.pub.POST(path, h) }

// ApiGET registers a session-authenticated route.
func (s *WebServer) ApiGET(path string, h echo.HandlerFunc)    { s.api.GET(path, h) }
func (s *WebServer) ApiPOST(path string, h echo.HandlerFunc)   { s.api.POST(path, h) }
func (s *WebServer) ApiPUT(path string, h echo.HandlerFunc)    { s.api.PUT(path, h) }
func (s *WebServer) ApiDELETE(path string, h echo.HandlerFunc) { s.api.DELETE(path, h) }

// Echo exposes the underlying echo instance, used in tests.
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Start serves until the listener fails or is shut down.
func (s *WebServer) Start() error {
	cfg := s.app.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("web server starting", zap.String("addr", addr))
	return s.root.Start(addr)
}

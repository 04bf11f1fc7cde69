package adminapi

import (
	"github.com/talkincode/gomarket/internal/app"
	"github.com/talkincode/gomarket/internal/webserver"
)

// Handler binds the HTTP surface to the application context.
type Handler struct {
	app app.AppContext
	ws  *webserver.WebServer
}

// Register wires all marketplace routes onto the web server.
func Register(ws *webserver.WebServer, application app.AppContext) {
	h := &Handler{app: application, ws: ws}

	// auth
	ws.PubPOST("/auth/register", h.register)
	ws.PubPOST("/auth/login", h.login)
	ws.PubPOST("/auth/logout", h.logout)
	ws.ApiGET("/auth/profile", h.profile)

	// catalog
	ws.PubGET("/items", h.listItems)
	ws.PubGET("/items/featured", h.featuredItems)
	ws.PubGET("/items/search", h.searchItems)
	ws.PubGET("/items/:id", h.getItem)
	ws.ApiPOST("/items", h.createItem)
	ws.ApiPUT("/items/:id", h.updateItem)
	ws.ApiPOST("/items/:id/feature", h.toggleFeature)
	ws.ApiDELETE("/items/:id", h.deleteItem)

	// cart
	ws.ApiGET("/cart", h.viewCart)
	ws.ApiPOST("/cart/items/:itemid", h.addCartItem)
	ws.ApiPUT("/cart/items/:itemid", h.setCartQuantity)
	ws.ApiDELETE("/cart/items/:itemid", h.removeCartItem)
	ws.ApiPOST("/cart/checkout", h.checkout)

	// orders
	ws.ApiGET("/orders/customer", h.customerOrders)
	ws.ApiGET("/orders/vendor", h.vendorOrders)
	ws.ApiDELETE("/orders/:id", h.completeOrder)
}

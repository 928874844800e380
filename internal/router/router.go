package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/hotel-room-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/hotel-room-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: the handler accepts a
	// refresh_token body or an Authorization header and invalidates the
	// matching session(s).
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.GET("/me", a.Me)

	// Same handler at the top level so clients can log out with only a
	// refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints. Guests can
// inspect rooms before registering; everything that mutates state lives
// behind authentication. The browse middleware slice lets the caller
// attach the response cache to these read-only routes.
func RegisterPublic(e *echo.Echo, r *handler.RoomHandler, browse ...echo.MiddlewareFunc) {
	e.GET("/v1/rooms", r.ListRooms, browse...)
	e.GET("/v1/rooms/:id", r.GetRoom, browse...)
}

// RegisterAPI registers the authenticated room, booking and notification
// routes. Check-in, check-out and booking edits are staff operations, so
// they sit behind the ADMIN role along with room mutation and queue
// administration; customers create, view and cancel their own bookings.
func RegisterAPI(e *echo.Echo, jwtSecret string, rooms *handler.RoomHandler, bookings *handler.BookingHandler, notifications *handler.NotificationHandler) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))

	// Rooms. Browsing is public (see RegisterPublic); mutation and the
	// status override are administrative.
	admin.POST("/rooms", rooms.CreateRoom)
	admin.PUT("/rooms/:id", rooms.UpdateRoom)
	admin.PATCH("/rooms/:id/status", rooms.SetRoomStatus)
	admin.DELETE("/rooms/:id", rooms.DeleteRoom)
	admin.GET("/rooms/stats", rooms.RoomStats)

	// Bookings.
	auth.POST("/bookings", bookings.CreateBooking)
	auth.GET("/bookings", bookings.ListBookings)
	auth.GET("/bookings/:id", bookings.GetBooking)
	auth.POST("/bookings/:id/cancel", bookings.Cancel)
	admin.PUT("/bookings/:id", bookings.UpdateBooking)
	admin.POST("/bookings/:id/check-in", bookings.CheckIn)
	admin.POST("/bookings/:id/check-out", bookings.CheckOut)
	admin.POST("/bookings/:id/complete-maintenance", bookings.CompleteMaintenance)
	admin.GET("/bookings/stats", bookings.BookingStats)

	// Notifications.
	auth.GET("/notifications", notifications.ListNotifications)
	auth.GET("/notifications/:id", notifications.GetNotification)
	auth.POST("/notifications/:id/read", notifications.MarkRead)
	admin.POST("/notifications", notifications.CreateNotification)
	admin.PUT("/notifications/:id", notifications.UpdateNotification)
	admin.DELETE("/notifications/:id", notifications.DeleteNotification)
}

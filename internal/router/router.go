package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/hemolink/blood-bank-api/internal/handler"    // import the handlers that implement business logic
	"github.com/hemolink/blood-bank-api/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The /healthz endpoint can be used by load balancers or monitoring
	// systems to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register, login,
	// token refresh and the OTP login flow.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access only issues a new
	// short-lived access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// One-time-code login: request a code, then exchange it for tokens.
	g.POST("/otp/request", a.RequestOTP)
	g.POST("/otp/verify", a.VerifyOTP)
	// Logout does not require JWT authentication; the handler accepts a
	// refresh_token body or an Authorization header and revokes accordingly.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.  Both roles are accepted
	// here; role-specific endpoints are registered by RegisterDonor and
	// RegisterAdmin.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("DONOR", "ADMIN"))
	auth.GET("/me", a.Me)

	// Alias kept at the top level so clients can call either
	// /v1/auth/logout or /v1/logout with a refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints.  Guests can
// list campaigns, inspect a campaign's sessions and check per-day slot
// availability before deciding to register.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	// Expose the list of all campaigns with their sessions
	e.GET("/v1/campaigns", p.ListCampaigns)
	// Campaign details by id
	e.GET("/v1/campaigns/:id", p.GetCampaign)
	// Hourly slot availability for a campaign on a given day (?date=YYYY-MM-DD).
	// Slots report availability only; per-slot booking counts are not exposed.
	e.GET("/v1/campaigns/:id/slots", p.GetCampaignSlots)
}

// RegisterNotifications registers the notification feed for any
// authenticated user.
func RegisterNotifications(e *echo.Echo, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("DONOR", "ADMIN"),
	)
	g.GET("/notifications", n.List)
	g.PATCH("/notifications/:id/read", n.MarkRead)
	g.PATCH("/notifications/read-all", n.MarkAllRead)
}

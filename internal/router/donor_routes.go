package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/handler"
	"github.com/hemolink/blood-bank-api/internal/middleware"
)

// RegisterDonor registers donor-scoped endpoints under /v1.  All routes
// require a valid JWT and the DONOR role.  Donors can book an appointment,
// view and cancel their own reservations, and check their eligibility.
func RegisterDonor(e *echo.Echo, h *handler.DonorHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("DONOR"),
	)
	// Note: GET /v1/campaigns, GET /v1/campaigns/:id and
	// GET /v1/campaigns/:id/slots are registered on the public router so
	// that guests can browse before signing up.  Donor-specific endpoints
	// begin here.
	g.POST("/reservations", h.CreateReservation)
	g.GET("/my-reservations", h.MyReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.DELETE("/reservations/:id", h.CancelReservation)
	g.GET("/eligibility", h.Eligibility)
}

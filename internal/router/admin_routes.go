package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/handler"    // admin handlers
	"github.com/hemolink/blood-bank-api/internal/middleware" // JWT + role middlewares
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1.
// All routes require a valid JWT and ADMIN role.
func RegisterAdmin(e *echo.Echo, campaigns *handler.AdminCampaignHandler, appointments *handler.AdminAppointmentHandler,
	banks *handler.BloodBankHandler, dashboard *handler.DashboardHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Campaigns ----
	// NOTE: Listing campaigns is handled by the public browse API.
	g.POST("/campaigns", campaigns.CreateCampaign)
	g.PUT("/campaigns/:id", campaigns.UpdateCampaign)
	g.PATCH("/campaigns/:id", campaigns.UpdateCampaign) // allow partial/semantic updates via PATCH as well
	g.DELETE("/campaigns/:id", campaigns.DeleteCampaign)

	// ---- Appointments ----
	g.GET("/campaigns/:id/reservations", appointments.ListCampaignReservations)
	g.PATCH("/reservations/:id/status", appointments.UpdateReservationStatus)
	g.POST("/reservations/:id/complete", appointments.CompleteDonation)

	// ---- Blood banks ----
	g.POST("/blood-banks", banks.CreateBank)
	g.GET("/blood-banks", banks.ListBanks)
	g.PUT("/blood-banks/:id", banks.UpdateBank)
	g.PATCH("/blood-banks/:id", banks.UpdateBank)
	g.DELETE("/blood-banks/:id", banks.DeleteBank)
	g.GET("/blood-banks/:id/inventory", banks.GetInventory)
	g.POST("/blood-banks/:id/inventory", banks.AdjustInventory)

	// ---- Dashboard ----
	g.GET("/dashboard", dashboard.Stats)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/repository"
)

// DashboardHandler aggregates the counters shown on the admin dashboard.
type DashboardHandler struct {
	Reservations *repository.ReservationRepo
	Sessions     *repository.SessionRepo
	Banks        *repository.BloodBankRepo
	Users        *repository.UserRepo
}

func NewDashboardHandler(r *repository.ReservationRepo, s *repository.SessionRepo, b *repository.BloodBankRepo, u *repository.UserRepo) *DashboardHandler {
	if r == nil || s == nil || b == nil || u == nil {
		panic("nil dependency passed to NewDashboardHandler")
	}
	return &DashboardHandler{Reservations: r, Sessions: s, Banks: b, Users: u}
}

// Stats returns reservation counts by status, completed donation totals,
// upcoming session count, donor count and blood-unit totals by type.
func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	byStatus, err := h.Reservations.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	donations, err := h.Reservations.CountCompletedDonations(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	today := time.Now().UTC().Format("2006-01-02")
	upcoming, err := h.Sessions.CountUpcoming(ctx, today)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	donors, err := h.Users.CountByRole(ctx, "DONOR")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	unitsByType, err := h.Banks.TotalsByType(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"reservations_by_status": byStatus,
		"completed_donations":    donations,
		"upcoming_sessions":      upcoming,
		"donors":                 donors,
		"units_by_type":          unitsByType,
	})
}

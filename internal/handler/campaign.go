package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/model"
	"github.com/hemolink/blood-bank-api/internal/repository"
	"github.com/hemolink/blood-bank-api/internal/service"
)

// PublicHandler exposes unauthenticated browse endpoints: campaign listings,
// campaign details with their sessions, and per-day slot availability.
type PublicHandler struct {
	Campaigns    *repository.CampaignRepo
	Sessions     *repository.SessionRepo
	Appointments *service.AppointmentService
}

func NewPublicHandler(c *repository.CampaignRepo, s *repository.SessionRepo, a *service.AppointmentService) *PublicHandler {
	if c == nil || s == nil || a == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Campaigns: c, Sessions: s, Appointments: a}
}

type sessionPart struct {
	ID        uint64 `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

type campaignPart struct {
	ID        uint64        `json:"id"`
	Location  string        `json:"location"`
	Organizer string        `json:"organizer"`
	Address   string        `json:"address"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Sessions  []sessionPart `json:"sessions,omitempty"`
}

func toSessionParts(sessions []model.CampaignSession) []sessionPart {
	out := make([]sessionPart, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionPart{
			ID: s.ID, Date: s.Date, StartTime: s.StartTime, EndTime: s.EndTime, Status: s.Status,
		})
	}
	return out
}

// ListCampaigns returns every campaign with its scheduled sessions.
func (h *PublicHandler) ListCampaigns(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	campaigns, err := h.Campaigns.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]campaignPart, 0, len(campaigns))
	for _, cp := range campaigns {
		sessions, err := h.Sessions.ListByCampaign(ctx, cp.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		out = append(out, campaignPart{
			ID: cp.ID, Location: cp.Location, Organizer: cp.Organizer, Address: cp.Address,
			Latitude: cp.Latitude, Longitude: cp.Longitude, Sessions: toSessionParts(sessions),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"campaigns": out})
}

// GetCampaign returns one campaign with its sessions.
func (h *PublicHandler) GetCampaign(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cp, err := h.Campaigns.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	sessions, err := h.Sessions.ListByCampaign(ctx, cp.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"campaign": campaignPart{
		ID: cp.ID, Location: cp.Location, Organizer: cp.Organizer, Address: cp.Address,
		Latitude: cp.Latitude, Longitude: cp.Longitude, Sessions: toSessionParts(sessions),
	}})
}

// GetCampaignSlots returns the hourly slot availability for a campaign on a
// given day (?date=YYYY-MM-DD). Each slot reports whether it still has
// capacity; counts themselves are not exposed.
func (h *PublicHandler) GetCampaignSlots(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Appointments.ComputeSlots(ctx, id, date)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"slots": slots})
}

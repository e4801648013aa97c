package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/model"
	"github.com/hemolink/blood-bank-api/internal/repository"
	"github.com/hemolink/blood-bank-api/internal/service"
	"github.com/hemolink/blood-bank-api/internal/utils"
)

// AdminCampaignHandler bundles dependencies for admin campaign management.
// Updates and deletes go through the appointment manager so the reservation
// cascade runs; creation only needs the repositories.
type AdminCampaignHandler struct {
	Store        *repository.Store
	Campaigns    *repository.CampaignRepo
	Sessions     *repository.SessionRepo
	Appointments *service.AppointmentService
}

func NewAdminCampaignHandler(st *repository.Store, c *repository.CampaignRepo, s *repository.SessionRepo, a *service.AppointmentService) *AdminCampaignHandler {
	if st == nil || c == nil || s == nil || a == nil {
		panic("nil dependency passed to NewAdminCampaignHandler")
	}
	return &AdminCampaignHandler{Store: st, Campaigns: c, Sessions: s, Appointments: a}
}

type sessionReq struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type campaignReq struct {
	Location  string       `json:"location"`
	Organizer string       `json:"organizer"`
	Address   string       `json:"address"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Sessions  []sessionReq `json:"sessions"`
}

func (r *campaignReq) toModel(id uint64) model.Campaign {
	return model.Campaign{
		ID:        id,
		Location:  r.Location,
		Organizer: r.Organizer,
		Address:   r.Address,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

func (r *campaignReq) toSessions() ([]model.CampaignSession, error) {
	out := make([]model.CampaignSession, 0, len(r.Sessions))
	for _, s := range r.Sessions {
		date, err := utils.NormalizeSessionDate(s.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, model.CampaignSession{Date: date, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return out, nil
}

// CreateCampaign creates a campaign together with its session schedule.
func (h *AdminCampaignHandler) CreateCampaign(c echo.Context) error {
	var req campaignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Location == "" || req.Organizer == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location and organizer required"})
	}
	campaign := req.toModel(0)
	if !campaign.ValidCoordinates() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "coordinates outside valid range"})
	}
	sessions, err := req.toSessions()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := h.Campaigns.Create(ctx, &campaign); err != nil {
			return err
		}
		return h.Sessions.ReplaceForCampaign(ctx, campaign.ID, sessions)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create campaign failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"campaign_id": campaign.ID})
}

// UpdateCampaign updates campaign details, replaces the whole session set
// and cancels every active reservation that no longer matches a session
// window. The number of cancelled reservations is returned so admin clients
// can surface the fallout of a schedule change.
func (h *AdminCampaignHandler) UpdateCampaign(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req campaignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessions := make([]model.CampaignSession, 0, len(req.Sessions))
	for _, s := range req.Sessions {
		sessions = append(sessions, model.CampaignSession{Date: s.Date, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	cancelled, err := h.Appointments.ApplyCampaignSessionChange(ctx, req.toModel(id), sessions)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"campaign_id": id, "cancelled_reservations": cancelled})
}

// DeleteCampaign removes a campaign, its sessions and its reservations,
// notifying donors who held active appointments.
func (h *AdminCampaignHandler) DeleteCampaign(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Appointments.DeleteCampaign(ctx, id); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

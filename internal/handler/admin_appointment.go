package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/model"
	"github.com/hemolink/blood-bank-api/internal/queue"
	"github.com/hemolink/blood-bank-api/internal/repository"
	"github.com/hemolink/blood-bank-api/internal/service"
	"github.com/hemolink/blood-bank-api/internal/utils"
)

// AdminAppointmentHandler bundles dependencies for admin appointment
// management: per-campaign reservation listings, status transitions and
// the donation completion flow.
type AdminAppointmentHandler struct {
	Appointments *service.AppointmentService
	Reservations *repository.ReservationRepo
	Campaigns    *repository.CampaignRepo
}

func NewAdminAppointmentHandler(a *service.AppointmentService, r *repository.ReservationRepo, c *repository.CampaignRepo) *AdminAppointmentHandler {
	if a == nil || r == nil || c == nil {
		panic("nil dependency passed to NewAdminAppointmentHandler")
	}
	return &AdminAppointmentHandler{Appointments: a, Reservations: r, Campaigns: c}
}

// ListCampaignReservations returns every reservation for a campaign,
// regardless of status.
func (h *AdminAppointmentHandler) ListCampaignReservations(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByCampaign(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateReservationStatus applies an explicit status change. Only
// pending->confirmed/cancelled and confirmed->cancelled are allowed;
// completion must go through the donation flow.
func (h *AdminAppointmentHandler) UpdateReservationStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	switch status {
	case model.ReservationConfirmed, model.ReservationCancelled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be confirmed or cancelled"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Appointments.TransitionStatus(ctx, id, status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

type completeDonationReq struct {
	CompletedDate string `json:"completed_date"` // optional, defaults to today
	VolumeML      int    `json:"volume_ml"`      // optional, credits inventory when set
	BloodBankID   uint64 `json:"blood_bank_id"`  // optional, required with volume_ml
}

// CompleteDonation records that the donation behind a reservation actually
// took place: it stamps the completion, opens the three-month eligibility
// window, optionally credits blood-bank inventory, and publishes a
// donation.completed event for downstream consumers. Publish failures are
// logged by the publisher and never fail the request.
func (h *AdminAppointmentHandler) CompleteDonation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req completeDonationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.VolumeML < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "volume_ml must be positive"})
	}
	if req.VolumeML > 0 && req.BloodBankID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "blood_bank_id required with volume_ml"})
	}

	in := service.CompleteDonationInput{
		ReservationID: id,
		VolumeML:      req.VolumeML,
		BloodBankID:   req.BloodBankID,
	}
	if req.CompletedDate != "" {
		date, err := utils.NormalizeSessionDate(req.CompletedDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid completed_date"})
		}
		t, err := time.ParseInLocation(utils.DateLayout, date, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid completed_date"})
		}
		in.CompletedAt = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Appointments.CompleteDonation(ctx, in)
	if err != nil {
		return serviceError(c, err)
	}

	location := ""
	if campaign, err := h.Campaigns.GetByID(ctx, res.CampaignID); err == nil {
		location = campaign.Location
	}
	ev := queue.DonationCompletedEvent{
		EventID:          uuid.NewString(),
		ReservationID:    res.ID,
		UserID:           res.UserID,
		CampaignID:       res.CampaignID,
		CampaignLocation: location,
		BloodType:        res.BloodType,
		VolumeML:         req.VolumeML,
		Units:            req.VolumeML / model.UnitVolumeML,
		BloodBankID:      req.BloodBankID,
		CompletedAt:      res.DonationCompletedDate.Format(utils.DateLayout),
		NextEligibleDate: res.NextEligibleDate.Format(utils.DateLayout),
	}
	go func() { _ = queue.PublishDonationCompleted(context.Background(), ev) }()

	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

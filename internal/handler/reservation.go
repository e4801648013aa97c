package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/repository"
	"github.com/hemolink/blood-bank-api/internal/service"
)

// DonorHandler bundles dependencies for donor-scoped endpoints: booking,
// listing and cancelling the donor's own reservations, and the eligibility
// check.
type DonorHandler struct {
	Appointments *service.AppointmentService
	Reservations *repository.ReservationRepo
	Users        *repository.UserRepo
}

func NewDonorHandler(a *service.AppointmentService, r *repository.ReservationRepo, u *repository.UserRepo) *DonorHandler {
	if a == nil || r == nil || u == nil {
		panic("nil dependency passed to NewDonorHandler")
	}
	return &DonorHandler{Appointments: a, Reservations: r, Users: u}
}

type createReservationReq struct {
	CampaignID    uint64 `json:"campaign_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	BloodType     string `json:"blood_type"`
	PreferredTime string `json:"preferred_time"`
	SessionDate   string `json:"session_date"`
}

type reservationPart struct {
	ID            uint64 `json:"id"`
	CampaignID    uint64 `json:"campaign_id"`
	BloodType     string `json:"blood_type"`
	PreferredTime string `json:"preferred_time"`
	SessionDate   string `json:"session_date"`
	Status        string `json:"status"`
}

// CreateReservation books a donation appointment for the authenticated
// donor. Contact fields left empty in the body are filled from the donor's
// profile and stored as a snapshot on the reservation.
func (h *DonorHandler) CreateReservation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CampaignID == 0 || req.PreferredTime == "" || req.SessionDate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "campaign_id, preferred_time and session_date required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.BloodType == "" {
		u, err := h.Users.GetByID(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
		}
		if strings.TrimSpace(req.Name) == "" {
			req.Name = u.Name
		}
		if strings.TrimSpace(req.Email) == "" {
			req.Email = u.Email
		}
		if strings.TrimSpace(req.Phone) == "" {
			req.Phone = u.Phone
		}
		if req.BloodType == "" {
			req.BloodType = u.BloodType
		}
	}

	res, err := h.Appointments.CreateReservation(ctx, service.CreateReservationInput{
		CampaignID:    req.CampaignID,
		UserID:        uid,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		BloodType:     req.BloodType,
		PreferredTime: req.PreferredTime,
		SessionDate:   req.SessionDate,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": reservationPart{
		ID: res.ID, CampaignID: res.CampaignID, BloodType: res.BloodType,
		PreferredTime: res.PreferredTime, SessionDate: res.SessionDate, Status: res.Status,
	}})
}

// MyReservations lists the donor's reservations, newest first, joined with
// campaign details for display.
func (h *DonorHandler) MyReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// GetReservation returns one of the donor's reservations by id.
func (h *DonorHandler) GetReservation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// CancelReservation cancels one of the donor's own active reservations,
// freeing their single active-appointment slot.
func (h *DonorHandler) CancelReservation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Appointments.CancelReservation(ctx, id, uid); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Eligibility reports whether the donor may book a donation today, and when
// not, why and from which date they may book again.
func (h *DonorHandler) Eligibility(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	elig, err := h.Appointments.CheckEligibility(ctx, uid, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, elig)
}

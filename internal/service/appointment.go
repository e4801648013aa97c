package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hemolink/blood-bank-api/internal/clock"
	"github.com/hemolink/blood-bank-api/internal/model"
	"github.com/hemolink/blood-bank-api/internal/repository"
	"github.com/hemolink/blood-bank-api/internal/utils"
)

// SlotCapacity is the number of donors bookable per hourly slot.
const SlotCapacity = 3

// slotMinutes is the fixed slot size a session window is partitioned into.
const slotMinutes = 60

// TxRunner runs a function inside one storage transaction. Every check-then-
// act sequence below goes through it so concurrent requests cannot race past
// the validator between the check and the write.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReservationStore is the reservation persistence surface the manager needs.
// Implemented by repository.ReservationRepo; tests substitute an in-memory fake.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	ActiveByUser(ctx context.Context, userID uint64) (*model.Reservation, error)
	LatestCompletedByUser(ctx context.Context, userID uint64) (*model.Reservation, error)
	CountForSlot(ctx context.Context, campaignID uint64, date, slot string) (int, error)
	ActiveByCampaign(ctx context.Context, campaignID uint64) ([]model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	MarkCompleted(ctx context.Context, id uint64, completedAt, nextEligible time.Time) error
	DeleteByCampaign(ctx context.Context, campaignID uint64) error
}

// SessionStore is the session persistence surface the manager needs.
type SessionStore interface {
	ByCampaignAndDate(ctx context.Context, campaignID uint64, date string) (*model.CampaignSession, error)
	ReplaceForCampaign(ctx context.Context, campaignID uint64, sessions []model.CampaignSession) error
	DeleteByCampaign(ctx context.Context, campaignID uint64) error
}

// CampaignStore is the campaign persistence surface the manager needs.
type CampaignStore interface {
	GetByID(ctx context.Context, id uint64) (model.Campaign, error)
	Update(ctx context.Context, c *model.Campaign) error
	Delete(ctx context.Context, id uint64) error
}

// InventoryCrediter credits whole blood units into a bank's inventory when a
// donation completes. Implemented by repository.BloodBankRepo.
type InventoryCrediter interface {
	AdjustInventory(ctx context.Context, bankID uint64, bloodType string, delta int) error
}

// AppointmentService coordinates the donation-appointment lifecycle: booking
// validation, slot availability, the completion transition and the cascades
// triggered by campaign edits. All mutations run inside a single transaction
// supplied by the TxRunner.
type AppointmentService struct {
	tx           TxRunner
	reservations ReservationStore
	sessions     SessionStore
	campaigns    CampaignStore
	inventory    InventoryCrediter
	notifier     Notifier
	clock        clock.Clock
}

// NewAppointmentService wires the manager. All dependencies must be non-nil.
func NewAppointmentService(tx TxRunner, res ReservationStore, ses SessionStore, camp CampaignStore,
	inv InventoryCrediter, n Notifier, clk clock.Clock) *AppointmentService {
	if tx == nil || res == nil || ses == nil || camp == nil || inv == nil || n == nil || clk == nil {
		panic("nil dependency passed to NewAppointmentService")
	}
	return &AppointmentService{
		tx:           tx,
		reservations: res,
		sessions:     ses,
		campaigns:    camp,
		inventory:    inv,
		notifier:     n,
		clock:        clk,
	}
}

// CreateReservationInput carries a booking request. Contact fields are
// stored as a snapshot on the reservation, independent of later profile
// edits.
type CreateReservationInput struct {
	CampaignID    uint64
	UserID        uint64
	Name          string
	Email         string
	Phone         string
	BloodType     string
	PreferredTime string // "HH:MM", must be one of the session's hourly slots
	SessionDate   string // "YYYY-MM-DD" or "MM/DD/YYYY"
}

// CreateReservation validates and books a donation appointment:
//
//  1. the donor must have no active (pending/confirmed, not yet donated)
//     reservation, otherwise ErrActiveAppointment;
//  2. the requested day must not precede the donor's next-eligible date,
//     otherwise *EligibilityError carrying that date;
//  3. the campaign must hold a session that day (ErrNoSessionForDate), the
//     preferred time must be one of its hourly slots (ErrBadTimeSlot) and
//     the slot must be under capacity (ErrSlotFull).
//
// The whole check-then-insert sequence runs in one transaction, so two
// concurrent requests for the same donor cannot both pass the first check.
func (s *AppointmentService) CreateReservation(ctx context.Context, in CreateReservationInput) (model.Reservation, error) {
	date, err := utils.NormalizeSessionDate(in.SessionDate)
	if err != nil {
		return model.Reservation{}, err
	}
	if !model.ValidBloodType(in.BloodType) {
		return model.Reservation{}, ErrBadBloodType
	}

	res := model.Reservation{
		CampaignID:    in.CampaignID,
		UserID:        in.UserID,
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		BloodType:     in.BloodType,
		PreferredTime: in.PreferredTime,
		SessionDate:   date,
		Status:        model.ReservationPending,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		active, err := s.reservations.ActiveByUser(ctx, in.UserID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrActiveAppointment
		}

		latest, err := s.reservations.LatestCompletedByUser(ctx, in.UserID)
		if err != nil {
			return err
		}
		if latest != nil && latest.NextEligibleDate != nil {
			if dayString(*latest.NextEligibleDate) > date {
				return &EligibilityError{NextEligible: *latest.NextEligibleDate}
			}
		}

		session, err := s.sessions.ByCampaignAndDate(ctx, in.CampaignID, date)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrNoSessionForDate
		}
		if !slotInWindow(session.StartTime, session.EndTime, in.PreferredTime) {
			return ErrBadTimeSlot
		}

		count, err := s.reservations.CountForSlot(ctx, in.CampaignID, date, in.PreferredTime)
		if err != nil {
			return err
		}
		if count >= SlotCapacity {
			return ErrSlotFull
		}

		return s.reservations.Create(ctx, &res)
	})
	if err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// Eligibility is the answer to "may this donor book a donation as of a
// given day".
type Eligibility struct {
	Eligible         bool       `json:"eligible"`
	Reason           string     `json:"reason,omitempty"`
	NextEligibleDate *time.Time `json:"next_eligible_date,omitempty"`
}

// CheckEligibility reports whether the donor could book an appointment on
// asOf. It is read-only and never mutates state.
func (s *AppointmentService) CheckEligibility(ctx context.Context, userID uint64, asOf time.Time) (Eligibility, error) {
	active, err := s.reservations.ActiveByUser(ctx, userID)
	if err != nil {
		return Eligibility{}, err
	}
	if active != nil {
		return Eligibility{Eligible: false, Reason: "an active appointment already exists"}, nil
	}
	latest, err := s.reservations.LatestCompletedByUser(ctx, userID)
	if err != nil {
		return Eligibility{}, err
	}
	if latest != nil && latest.NextEligibleDate != nil {
		next := *latest.NextEligibleDate
		if dayString(next) > dayString(asOf) {
			return Eligibility{
				Eligible:         false,
				Reason:           "inside the post-donation eligibility window",
				NextEligibleDate: &next,
			}, nil
		}
	}
	return Eligibility{Eligible: true}, nil
}

// Slot is one bookable hour of a session window.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// ComputeSlots partitions the session window for campaign+date into hourly
// slots and marks each available when fewer than SlotCapacity reservations
// occupy it. The window end is exclusive: a 09:00-13:00 session yields
// 09:00, 10:00, 11:00 and 12:00. Pure function of stored state.
func (s *AppointmentService) ComputeSlots(ctx context.Context, campaignID uint64, rawDate string) ([]Slot, error) {
	date, err := utils.NormalizeSessionDate(rawDate)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.ByCampaignAndDate(ctx, campaignID, date)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSessionForDate
	}
	start, err := utils.ParseClock(session.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseClock(session.EndTime)
	if err != nil {
		return nil, err
	}
	slots := make([]Slot, 0, (end-start)/slotMinutes)
	for t := start; t+slotMinutes <= end; t += slotMinutes {
		at := utils.FormatClock(t)
		count, err := s.reservations.CountForSlot(ctx, campaignID, date, at)
		if err != nil {
			return nil, err
		}
		slots = append(slots, Slot{Time: at, Available: count < SlotCapacity})
	}
	return slots, nil
}

// CompleteDonationInput parameterizes the completion transition. CompletedAt
// defaults to the current time. When BloodBankID and VolumeML are set, the
// bank's inventory is credited floor(VolumeML/450) whole units.
type CompleteDonationInput struct {
	ReservationID uint64
	CompletedAt   *time.Time
	VolumeML      int
	BloodBankID   uint64
}

// CompleteDonation marks a reservation's donation complete: it stamps the
// completion date, computes the next-eligible date (completion plus three
// calendar months), moves the status to completed, optionally credits
// blood-bank inventory and notifies the donor. Completing an already
// completed reservation fails with ErrAlreadyCompleted and mutates nothing.
func (s *AppointmentService) CompleteDonation(ctx context.Context, in CompleteDonationInput) (model.Reservation, error) {
	var out model.Reservation
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetByID(ctx, in.ReservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if res.DonationCompleted {
			return ErrAlreadyCompleted
		}

		completedAt := s.clock.Now()
		if in.CompletedAt != nil {
			completedAt = in.CompletedAt.UTC()
		}
		next := utils.NextEligibleDate(completedAt)

		if err := s.reservations.MarkCompleted(ctx, res.ID, completedAt, next); err != nil {
			return err
		}
		if in.BloodBankID != 0 && in.VolumeML > 0 {
			if units := in.VolumeML / model.UnitVolumeML; units > 0 {
				if err := s.inventory.AdjustInventory(ctx, in.BloodBankID, res.BloodType, units); err != nil {
					return err
				}
			}
		}

		res.DonationCompleted = true
		res.DonationCompletedDate = &completedAt
		res.NextEligibleDate = &next
		res.Status = model.ReservationCompleted
		out = res

		s.notifier.Notify(ctx, res.UserID, "Donation recorded",
			fmt.Sprintf("Thank you for donating! You will be eligible to donate again on %s.", dayString(next)),
			model.NotificationSuccess)
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	return out, nil
}

// ErrInvalidTransition reports a status change the reservation state
// machine does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionStatus applies an explicit admin status change. Allowed moves:
// pending to confirmed or cancelled, confirmed to cancelled. Completion is
// only reachable through CompleteDonation.
func (s *AppointmentService) TransitionStatus(ctx context.Context, reservationID uint64, newStatus string) (model.Reservation, error) {
	var out model.Reservation
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetByID(ctx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		allowed := map[string][]string{
			model.ReservationPending:   {model.ReservationConfirmed, model.ReservationCancelled},
			model.ReservationConfirmed: {model.ReservationCancelled},
		}
		ok := false
		for _, to := range allowed[res.Status] {
			if to == newStatus {
				ok = true
				break
			}
		}
		if !ok {
			return ErrInvalidTransition
		}
		if err := s.reservations.UpdateStatus(ctx, res.ID, newStatus); err != nil {
			return err
		}
		res.Status = newStatus
		out = res
		if newStatus == model.ReservationConfirmed {
			s.notifier.Notify(ctx, res.UserID, "Appointment confirmed",
				fmt.Sprintf("Your donation appointment on %s at %s is confirmed.", res.SessionDate, res.PreferredTime),
				model.NotificationInfo)
		}
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	return out, nil
}

// CancelReservation cancels a donor's own active reservation. It returns
// repository.ErrForbidden when the reservation belongs to another user and
// ErrInvalidTransition when it is no longer active.
func (s *AppointmentService) CancelReservation(ctx context.Context, reservationID, userID uint64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetByID(ctx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if res.UserID != userID {
			return repository.ErrForbidden
		}
		if !res.Active() {
			return ErrInvalidTransition
		}
		// Past appointments are history, not cancellable bookings.
		if dayString(s.clock.Now()) > res.SessionDate {
			return ErrInvalidTransition
		}
		return s.reservations.UpdateStatus(ctx, res.ID, model.ReservationCancelled)
	})
}

// ApplyCampaignSessionChange updates campaign details, fully replaces its
// session set (delete-all then insert-new) and cancels every active
// reservation whose day and preferred time no longer fall inside any new
// session window. The window match is inclusive of the end time here,
// matching how bookings have historically been honored on edits even though
// ComputeSlots treats the end as exclusive. Cancelled donors are notified.
// Returns the number of cancelled reservations.
func (s *AppointmentService) ApplyCampaignSessionChange(ctx context.Context, campaign model.Campaign, newSessions []model.CampaignSession) (int, error) {
	if !campaign.ValidCoordinates() {
		return 0, ErrBadCoordinates
	}
	normalized, err := normalizeSessions(newSessions)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.campaigns.Update(ctx, &campaign); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if err := s.sessions.ReplaceForCampaign(ctx, campaign.ID, normalized); err != nil {
			return err
		}
		active, err := s.reservations.ActiveByCampaign(ctx, campaign.ID)
		if err != nil {
			return err
		}
		for _, res := range active {
			if matchesAnySession(res, normalized) {
				continue
			}
			if err := s.reservations.UpdateStatus(ctx, res.ID, model.ReservationCancelled); err != nil {
				return err
			}
			s.notifier.Notify(ctx, res.UserID, "Schedule changed",
				fmt.Sprintf("The schedule for %s changed and your appointment on %s no longer matches a session. Please rebook.",
					campaign.Location, res.SessionDate),
				model.NotificationAlert)
			cancelled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cancelled, nil
}

// DeleteCampaign notifies every donor holding an active reservation, then
// deletes reservations, sessions and finally the campaign, in FK order.
// Destructive and non-reversible.
func (s *AppointmentService) DeleteCampaign(ctx context.Context, campaignID uint64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		campaign, err := s.campaigns.GetByID(ctx, campaignID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		active, err := s.reservations.ActiveByCampaign(ctx, campaignID)
		if err != nil {
			return err
		}
		for _, res := range active {
			s.notifier.Notify(ctx, res.UserID, "Campaign cancelled",
				fmt.Sprintf("The donation campaign at %s was cancelled and your appointment on %s was removed.",
					campaign.Location, res.SessionDate),
				model.NotificationAlert)
		}
		if err := s.reservations.DeleteByCampaign(ctx, campaignID); err != nil {
			return err
		}
		if err := s.sessions.DeleteByCampaign(ctx, campaignID); err != nil {
			return err
		}
		return s.campaigns.Delete(ctx, campaignID)
	})
}

// dayString renders the date part of t, which is how all day-granularity
// comparisons are made in this package.
func dayString(t time.Time) string { return t.UTC().Format(utils.DateLayout) }

// slotInWindow reports whether at is a bookable hourly slot of the
// [start, end) window: aligned to the window start and fully inside it.
func slotInWindow(start, end, at string) bool {
	s, err := utils.ParseClock(start)
	if err != nil {
		return false
	}
	e, err := utils.ParseClock(end)
	if err != nil {
		return false
	}
	t, err := utils.ParseClock(at)
	if err != nil {
		return false
	}
	return t >= s && t+slotMinutes <= e && (t-s)%slotMinutes == 0
}

// matchesAnySession reports whether the reservation's day and preferred
// time fall inside any of the given session windows. Inclusive end bound.
func matchesAnySession(res model.Reservation, sessions []model.CampaignSession) bool {
	pref, err := utils.ParseClock(res.PreferredTime)
	if err != nil {
		return false
	}
	for _, ses := range sessions {
		if ses.Date != res.SessionDate {
			continue
		}
		start, err := utils.ParseClock(ses.StartTime)
		if err != nil {
			continue
		}
		end, err := utils.ParseClock(ses.EndTime)
		if err != nil {
			continue
		}
		if pref >= start && pref <= end {
			return true
		}
	}
	return false
}

// normalizeSessions canonicalizes session dates and validates the time
// windows before they are written.
func normalizeSessions(sessions []model.CampaignSession) ([]model.CampaignSession, error) {
	out := make([]model.CampaignSession, len(sessions))
	for i, ses := range sessions {
		date, err := utils.NormalizeSessionDate(ses.Date)
		if err != nil {
			return nil, err
		}
		start, err := utils.ParseClock(ses.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := utils.ParseClock(ses.EndTime)
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, fmt.Errorf("session %s: end time %s not after start time %s", date, ses.EndTime, ses.StartTime)
		}
		out[i] = ses
		out[i].Date = date
	}
	return out, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/hemolink/blood-bank-api/internal/clock"
	"github.com/hemolink/blood-bank-api/internal/model"
	"github.com/hemolink/blood-bank-api/internal/repository"
)

type notice struct {
	userID  uint64
	title   string
	message string
	kind    string
}

// fakeStore implements TxRunner and every store interface in memory so the
// appointment manager can be exercised without a database.
type fakeStore struct {
	nextID       uint64
	reservations map[uint64]*model.Reservation
	sessions     []model.CampaignSession
	campaigns    map[uint64]model.Campaign
	inventory    map[uint64]map[string]int
	notices      []notice
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reservations: make(map[uint64]*model.Reservation),
		campaigns:    make(map[uint64]model.Campaign),
		inventory:    make(map[uint64]map[string]int),
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) Create(ctx context.Context, res *model.Reservation) error {
	f.nextID++
	res.ID = f.nextID
	cp := *res
	f.reservations[res.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	if r, ok := f.reservations[id]; ok {
		return *r, nil
	}
	return model.Reservation{}, sql.ErrNoRows
}

func (f *fakeStore) ActiveByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	for _, r := range f.reservations {
		if r.UserID == userID && r.Active() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) LatestCompletedByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	var latest *model.Reservation
	for _, r := range f.reservations {
		if r.UserID != userID || !r.DonationCompleted {
			continue
		}
		if latest == nil || r.DonationCompletedDate.After(*latest.DonationCompletedDate) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeStore) CountForSlot(ctx context.Context, campaignID uint64, date, slot string) (int, error) {
	n := 0
	for _, r := range f.reservations {
		if r.CampaignID == campaignID && r.SessionDate == date && r.PreferredTime == slot {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ActiveByCampaign(ctx context.Context, campaignID uint64) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for id := uint64(1); id <= f.nextID; id++ {
		if r, ok := f.reservations[id]; ok && r.CampaignID == campaignID &&
			(r.Status == model.ReservationPending || r.Status == model.ReservationConfirmed) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id uint64, status string) error {
	r, ok := f.reservations[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = status
	return nil
}

func (f *fakeStore) MarkCompleted(ctx context.Context, id uint64, completedAt, nextEligible time.Time) error {
	r, ok := f.reservations[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.DonationCompleted = true
	r.DonationCompletedDate = &completedAt
	r.NextEligibleDate = &nextEligible
	r.Status = model.ReservationCompleted
	return nil
}

func (f *fakeStore) DeleteByCampaign(ctx context.Context, campaignID uint64) error {
	for id, r := range f.reservations {
		if r.CampaignID == campaignID {
			delete(f.reservations, id)
		}
	}
	return nil
}

func (f *fakeStore) ByCampaignAndDate(ctx context.Context, campaignID uint64, date string) (*model.CampaignSession, error) {
	for _, s := range f.sessions {
		if s.CampaignID == campaignID && s.Date == date {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ReplaceForCampaign(ctx context.Context, campaignID uint64, sessions []model.CampaignSession) error {
	kept := f.sessions[:0]
	for _, s := range f.sessions {
		if s.CampaignID != campaignID {
			kept = append(kept, s)
		}
	}
	f.sessions = kept
	for _, s := range sessions {
		s.CampaignID = campaignID
		f.sessions = append(f.sessions, s)
	}
	return nil
}

func (f *fakeStore) sessionsDeleteByCampaign(campaignID uint64) {
	kept := f.sessions[:0]
	for _, s := range f.sessions {
		if s.CampaignID != campaignID {
			kept = append(kept, s)
		}
	}
	f.sessions = kept
}

func (f *fakeStore) GetCampaign(ctx context.Context, id uint64) (model.Campaign, error) {
	if c, ok := f.campaigns[id]; ok {
		return c, nil
	}
	return model.Campaign{}, sql.ErrNoRows
}

func (f *fakeStore) Update(ctx context.Context, c *model.Campaign) error {
	if _, ok := f.campaigns[c.ID]; !ok {
		return sql.ErrNoRows
	}
	f.campaigns[c.ID] = *c
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id uint64) error {
	delete(f.campaigns, id)
	return nil
}

func (f *fakeStore) AdjustInventory(ctx context.Context, bankID uint64, bloodType string, delta int) error {
	if f.inventory[bankID] == nil {
		f.inventory[bankID] = make(map[string]int)
	}
	v := f.inventory[bankID][bloodType] + delta
	if v < 0 {
		v = 0
	}
	f.inventory[bankID][bloodType] = v
	return nil
}

func (f *fakeStore) Notify(ctx context.Context, userID uint64, title, message, kind string) {
	f.notices = append(f.notices, notice{userID: userID, title: title, message: message, kind: kind})
}

// campaignStore adapts fakeStore to the CampaignStore interface, whose
// GetByID would otherwise collide with the reservation GetByID.
type campaignStore struct{ *fakeStore }

func (c campaignStore) GetByID(ctx context.Context, id uint64) (model.Campaign, error) {
	return c.GetCampaign(ctx, id)
}

type sessionStore struct{ *fakeStore }

func (s sessionStore) DeleteByCampaign(ctx context.Context, campaignID uint64) error {
	s.sessionsDeleteByCampaign(campaignID)
	return nil
}

func newTestService(now time.Time) (*AppointmentService, *fakeStore) {
	f := newFakeStore()
	svc := NewAppointmentService(f, f, sessionStore{f}, campaignStore{f}, f, f, clock.NewFixed(now))
	return svc, f
}

var testNow = time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

func seedCampaign(f *fakeStore, id uint64, sessions ...model.CampaignSession) {
	f.campaigns[id] = model.Campaign{ID: id, Location: "City Hall", Organizer: "Red Crescent", Latitude: 3.14, Longitude: 101.69}
	for _, s := range sessions {
		s.CampaignID = id
		f.sessions = append(f.sessions, s)
	}
}

func bookingInput(userID uint64) CreateReservationInput {
	return CreateReservationInput{
		CampaignID:    1,
		UserID:        userID,
		Name:          "Aina Rahman",
		Email:         "aina@example.com",
		Phone:         "555-0101",
		BloodType:     "O+",
		PreferredTime: "10:00",
		SessionDate:   "2025-06-01",
	}
}

func TestCreateReservation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("books a pending reservation in an open slot", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})

		res, err := svc.CreateReservation(ctx, bookingInput(7))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Status != model.ReservationPending {
			t.Fatalf("expected status pending, got %s", res.Status)
		}
		if res.DonationCompleted {
			t.Fatalf("new reservation must not be donation-completed")
		}
		if res.ID == 0 {
			t.Fatalf("expected generated ID")
		}
	})

	t.Run("rejects a second booking while one is active", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})

		if _, err := svc.CreateReservation(ctx, bookingInput(7)); err != nil {
			t.Fatalf("first booking failed: %v", err)
		}
		in := bookingInput(7)
		in.PreferredTime = "11:00"
		if _, err := svc.CreateReservation(ctx, in); !errors.Is(err, ErrActiveAppointment) {
			t.Fatalf("expected ErrActiveAppointment, got %v", err)
		}

		active := 0
		for _, r := range f.reservations {
			if r.UserID == 7 && r.Active() {
				active++
			}
		}
		if active != 1 {
			t.Fatalf("expected exactly one active reservation, got %d", active)
		}
	})

	t.Run("enforces the eligibility window from the latest completed donation", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1,
			model.CampaignSession{Date: "2025-03-01", StartTime: "09:00", EndTime: "13:00"},
			model.CampaignSession{Date: "2025-04-15", StartTime: "09:00", EndTime: "13:00"})

		completed := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		next := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
		f.nextID = 1
		f.reservations[1] = &model.Reservation{
			ID: 1, CampaignID: 1, UserID: 7, BloodType: "O+",
			SessionDate: "2025-01-10", PreferredTime: "09:00",
			Status: model.ReservationCompleted, DonationCompleted: true,
			DonationCompletedDate: &completed, NextEligibleDate: &next,
		}

		in := bookingInput(7)
		in.SessionDate = "2025-03-01"
		in.PreferredTime = "09:00"
		_, err := svc.CreateReservation(ctx, in)
		var elig *EligibilityError
		if !errors.As(err, &elig) {
			t.Fatalf("expected EligibilityError, got %v", err)
		}
		if got := elig.NextEligible.Format("2006-01-02"); got != "2025-04-10" {
			t.Fatalf("expected next eligible 2025-04-10, got %s", got)
		}

		in.SessionDate = "2025-04-15"
		if _, err := svc.CreateReservation(ctx, in); err != nil {
			t.Fatalf("booking after the window should succeed, got %v", err)
		}
	})

	t.Run("accepts the legacy MM/DD/YYYY date form", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})

		in := bookingInput(7)
		in.SessionDate = "06/01/2025"
		res, err := svc.CreateReservation(ctx, in)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.SessionDate != "2025-06-01" {
			t.Fatalf("expected canonical date 2025-06-01, got %s", res.SessionDate)
		}
	})

	t.Run("fails when the campaign has no session that day", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-02", StartTime: "09:00", EndTime: "13:00"})

		if _, err := svc.CreateReservation(ctx, bookingInput(7)); !errors.Is(err, ErrNoSessionForDate) {
			t.Fatalf("expected ErrNoSessionForDate, got %v", err)
		}
	})

	t.Run("fails when the preferred time is not an hourly slot of the window", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})

		in := bookingInput(7)
		in.PreferredTime = "13:00" // window end is exclusive
		if _, err := svc.CreateReservation(ctx, in); !errors.Is(err, ErrBadTimeSlot) {
			t.Fatalf("expected ErrBadTimeSlot for the exclusive end, got %v", err)
		}
		in.PreferredTime = "10:30" // not aligned to the hour grid
		if _, err := svc.CreateReservation(ctx, in); !errors.Is(err, ErrBadTimeSlot) {
			t.Fatalf("expected ErrBadTimeSlot for unaligned time, got %v", err)
		}
	})

	t.Run("fails when the slot is at capacity", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})

		for u := uint64(1); u <= SlotCapacity; u++ {
			if _, err := svc.CreateReservation(ctx, bookingInput(u)); err != nil {
				t.Fatalf("seed booking %d failed: %v", u, err)
			}
		}
		if _, err := svc.CreateReservation(ctx, bookingInput(99)); !errors.Is(err, ErrSlotFull) {
			t.Fatalf("expected ErrSlotFull, got %v", err)
		}
	})

	t.Run("rejects malformed dates and unknown blood types", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})

		in := bookingInput(7)
		in.SessionDate = "June 1st"
		if _, err := svc.CreateReservation(ctx, in); err == nil {
			t.Fatalf("expected error for malformed date")
		}
		in = bookingInput(7)
		in.BloodType = "Q+"
		if _, err := svc.CreateReservation(ctx, in); !errors.Is(err, ErrBadBloodType) {
			t.Fatalf("expected ErrBadBloodType, got %v", err)
		}
	})
}

func TestCheckEligibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("a donor with no history is eligible", func(t *testing.T) {
		svc, _ := newTestService(testNow)
		got, err := svc.CheckEligibility(ctx, 7, testNow)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !got.Eligible {
			t.Fatalf("expected eligible, got %+v", got)
		}
	})

	t.Run("an active appointment blocks eligibility", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})
		if _, err := svc.CreateReservation(ctx, bookingInput(7)); err != nil {
			t.Fatalf("booking failed: %v", err)
		}
		got, err := svc.CheckEligibility(ctx, 7, testNow)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Eligible {
			t.Fatalf("expected not eligible while an appointment is active")
		}
	})

	t.Run("the cooldown window blocks and then releases", func(t *testing.T) {
		svc, f := newTestService(testNow)
		completed := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		next := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
		f.nextID = 1
		f.reservations[1] = &model.Reservation{
			ID: 1, UserID: 7, Status: model.ReservationCompleted, DonationCompleted: true,
			DonationCompletedDate: &completed, NextEligibleDate: &next,
		}

		got, err := svc.CheckEligibility(ctx, 7, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Eligible || got.NextEligibleDate == nil || !got.NextEligibleDate.Equal(next) {
			t.Fatalf("expected blocked until %s, got %+v", next, got)
		}

		got, err = svc.CheckEligibility(ctx, 7, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !got.Eligible {
			t.Fatalf("expected eligible on the next-eligible day itself, got %+v", got)
		}
	})
}

func TestComputeSlots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("partitions the window hourly and flags full slots", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})
		for u := uint64(1); u <= 3; u++ {
			if _, err := svc.CreateReservation(ctx, bookingInput(u)); err != nil {
				t.Fatalf("seed booking failed: %v", err)
			}
		}

		slots, err := svc.ComputeSlots(ctx, 1, "2025-06-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := []Slot{
			{Time: "09:00", Available: true},
			{Time: "10:00", Available: false},
			{Time: "11:00", Available: true},
			{Time: "12:00", Available: true},
		}
		if len(slots) != len(want) {
			t.Fatalf("expected %d slots, got %d (%v)", len(want), len(slots), slots)
		}
		for i := range want {
			if slots[i] != want[i] {
				t.Fatalf("slot %d: expected %+v, got %+v", i, want[i], slots[i])
			}
		}
	})

	t.Run("fails when no session exists for the date", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1)
		if _, err := svc.ComputeSlots(ctx, 1, "2025-06-01"); !errors.Is(err, ErrNoSessionForDate) {
			t.Fatalf("expected ErrNoSessionForDate, got %v", err)
		}
	})
}

func TestCompleteDonation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	seedConfirmed := func(f *fakeStore) uint64 {
		f.nextID++
		id := f.nextID
		f.reservations[id] = &model.Reservation{
			ID: id, CampaignID: 1, UserID: 7, BloodType: "O+",
			SessionDate: "2025-05-20", PreferredTime: "10:00",
			Status: model.ReservationConfirmed,
		}
		return id
	}

	t.Run("stamps completion and the three-month eligibility window", func(t *testing.T) {
		svc, f := newTestService(testNow)
		id := seedConfirmed(f)

		completed := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		res, err := svc.CompleteDonation(ctx, CompleteDonationInput{ReservationID: id, CompletedAt: &completed})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.DonationCompleted || res.Status != model.ReservationCompleted {
			t.Fatalf("expected completed reservation, got %+v", res)
		}
		if got := res.NextEligibleDate.Format("2006-01-02"); got != "2025-04-10" {
			t.Fatalf("expected next eligible 2025-04-10, got %s", got)
		}
		if len(f.notices) != 1 || f.notices[0].kind != model.NotificationSuccess {
			t.Fatalf("expected one success notification, got %+v", f.notices)
		}
	})

	t.Run("defaults the completion date to now", func(t *testing.T) {
		svc, f := newTestService(testNow)
		id := seedConfirmed(f)

		res, err := svc.CompleteDonation(ctx, CompleteDonationInput{ReservationID: id})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.DonationCompletedDate.Equal(testNow) {
			t.Fatalf("expected completion at %s, got %s", testNow, res.DonationCompletedDate)
		}
		if want := testNow.AddDate(0, 3, 0); !res.NextEligibleDate.Equal(want) {
			t.Fatalf("expected next eligible %s, got %s", want, res.NextEligibleDate)
		}
	})

	t.Run("rejects a second completion and leaves the window untouched", func(t *testing.T) {
		svc, f := newTestService(testNow)
		id := seedConfirmed(f)

		first := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		if _, err := svc.CompleteDonation(ctx, CompleteDonationInput{ReservationID: id, CompletedAt: &first}); err != nil {
			t.Fatalf("first completion failed: %v", err)
		}
		later := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		if _, err := svc.CompleteDonation(ctx, CompleteDonationInput{ReservationID: id, CompletedAt: &later}); !errors.Is(err, ErrAlreadyCompleted) {
			t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
		}
		if got := f.reservations[id].NextEligibleDate.Format("2006-01-02"); got != "2025-04-10" {
			t.Fatalf("next eligible date mutated on rejected completion: %s", got)
		}
	})

	t.Run("credits inventory in whole 450ml units", func(t *testing.T) {
		svc, f := newTestService(testNow)
		id := seedConfirmed(f)

		_, err := svc.CompleteDonation(ctx, CompleteDonationInput{ReservationID: id, VolumeML: 950, BloodBankID: 3})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := f.inventory[3]["O+"]; got != 2 {
			t.Fatalf("expected 2 units credited, got %d", got)
		}
	})

	t.Run("a sub-unit volume credits nothing", func(t *testing.T) {
		svc, f := newTestService(testNow)
		id := seedConfirmed(f)

		if _, err := svc.CompleteDonation(ctx, CompleteDonationInput{ReservationID: id, VolumeML: 300, BloodBankID: 3}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := f.inventory[3]["O+"]; got != 0 {
			t.Fatalf("expected no units credited, got %d", got)
		}
	})

	t.Run("unknown reservation fails with ErrNotFound", func(t *testing.T) {
		svc, _ := newTestService(testNow)
		if _, err := svc.CompleteDonation(ctx, CompleteDonationInput{ReservationID: 42}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTransitionStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	seed := func(f *fakeStore, status string) uint64 {
		f.nextID++
		f.reservations[f.nextID] = &model.Reservation{
			ID: f.nextID, CampaignID: 1, UserID: 7,
			SessionDate: "2025-06-01", PreferredTime: "10:00", Status: status,
		}
		return f.nextID
	}

	t.Run("pending to confirmed notifies the donor", func(t *testing.T) {
		svc, f := newTestService(testNow)
		id := seed(f, model.ReservationPending)
		res, err := svc.TransitionStatus(ctx, id, model.ReservationConfirmed)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Status != model.ReservationConfirmed {
			t.Fatalf("expected confirmed, got %s", res.Status)
		}
		if len(f.notices) != 1 {
			t.Fatalf("expected one notification, got %d", len(f.notices))
		}
	})

	t.Run("terminal states reject transitions", func(t *testing.T) {
		svc, f := newTestService(testNow)
		for _, status := range []string{model.ReservationCancelled, model.ReservationCompleted} {
			id := seed(f, status)
			if _, err := svc.TransitionStatus(ctx, id, model.ReservationConfirmed); !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition from %s, got %v", status, err)
			}
		}
	})

	t.Run("completed is unreachable via explicit transition", func(t *testing.T) {
		svc, f := newTestService(testNow)
		id := seed(f, model.ReservationConfirmed)
		if _, err := svc.TransitionStatus(ctx, id, model.ReservationCompleted); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestCancelReservation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svcFor := func(status string) (*AppointmentService, *fakeStore, uint64) {
		svc, f := newTestService(testNow)
		f.nextID++
		f.reservations[f.nextID] = &model.Reservation{
			ID: f.nextID, CampaignID: 1, UserID: 7,
			SessionDate: "2025-06-01", PreferredTime: "10:00", Status: status,
		}
		return svc, f, f.nextID
	}

	t.Run("a donor can cancel their own active reservation", func(t *testing.T) {
		svc, f, id := svcFor(model.ReservationPending)
		if err := svc.CancelReservation(ctx, id, 7); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if f.reservations[id].Status != model.ReservationCancelled {
			t.Fatalf("expected cancelled, got %s", f.reservations[id].Status)
		}
	})

	t.Run("someone else's reservation is forbidden", func(t *testing.T) {
		svc, _, id := svcFor(model.ReservationPending)
		if err := svc.CancelReservation(ctx, id, 8); !errors.Is(err, repository.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("a past appointment cannot be cancelled", func(t *testing.T) {
		svc, f, id := svcFor(model.ReservationConfirmed)
		f.reservations[id].SessionDate = "2025-05-01" // before the fixed clock's day
		if err := svc.CancelReservation(ctx, id, 7); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("an inactive reservation cannot be cancelled again", func(t *testing.T) {
		svc, _, id := svcFor(model.ReservationCancelled)
		if err := svc.CancelReservation(ctx, id, 7); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestApplyCampaignSessionChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("cancels reservations outside every new window and notifies", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})
		f.nextID++
		f.reservations[f.nextID] = &model.Reservation{
			ID: f.nextID, CampaignID: 1, UserID: 7,
			SessionDate: "2025-06-01", PreferredTime: "10:00",
			Status: model.ReservationConfirmed,
		}

		campaign := f.campaigns[1]
		count, err := svc.ApplyCampaignSessionChange(ctx, campaign, []model.CampaignSession{
			{Date: "2025-06-01", StartTime: "14:00", EndTime: "18:00"},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 cancellation, got %d", count)
		}
		if f.reservations[1].Status != model.ReservationCancelled {
			t.Fatalf("expected reservation cancelled, got %s", f.reservations[1].Status)
		}
		if len(f.notices) != 1 || f.notices[0].userID != 7 || f.notices[0].kind != model.NotificationAlert {
			t.Fatalf("expected one alert to user 7, got %+v", f.notices)
		}

		// Cascade completeness: no active reservation may sit outside the new windows.
		for _, r := range f.reservations {
			if r.Active() && !matchesAnySession(*r, f.sessions) {
				t.Fatalf("active reservation %d outside all session windows", r.ID)
			}
		}
	})

	t.Run("keeps reservations still inside a window, end bound inclusive", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})
		f.nextID++
		f.reservations[1] = &model.Reservation{
			ID: 1, CampaignID: 1, UserID: 7,
			SessionDate: "2025-06-01", PreferredTime: "13:00",
			Status: model.ReservationConfirmed,
		}

		// 13:00 is exactly the new end time; the cascade match is inclusive.
		count, err := svc.ApplyCampaignSessionChange(ctx, f.campaigns[1], []model.CampaignSession{
			{Date: "2025-06-01", StartTime: "10:00", EndTime: "13:00"},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 0 {
			t.Fatalf("expected no cancellations, got %d", count)
		}
		if f.reservations[1].Status != model.ReservationConfirmed {
			t.Fatalf("reservation at the inclusive bound should survive, got %s", f.reservations[1].Status)
		}
	})

	t.Run("rejects out-of-range coordinates", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1)
		campaign := f.campaigns[1]
		campaign.Latitude = 91
		if _, err := svc.ApplyCampaignSessionChange(ctx, campaign, nil); !errors.Is(err, ErrBadCoordinates) {
			t.Fatalf("expected ErrBadCoordinates, got %v", err)
		}
	})

	t.Run("unknown campaign fails with ErrNotFound", func(t *testing.T) {
		svc, _ := newTestService(testNow)
		campaign := model.Campaign{ID: 99, Latitude: 0, Longitude: 0}
		if _, err := svc.ApplyCampaignSessionChange(ctx, campaign, nil); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDeleteCampaign(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("notifies active donors then removes everything", func(t *testing.T) {
		svc, f := newTestService(testNow)
		seedCampaign(f, 1, model.CampaignSession{Date: "2025-06-01", StartTime: "09:00", EndTime: "13:00"})
		for _, st := range []string{model.ReservationPending, model.ReservationConfirmed, model.ReservationCancelled} {
			f.nextID++
			f.reservations[f.nextID] = &model.Reservation{
				ID: f.nextID, CampaignID: 1, UserID: f.nextID,
				SessionDate: "2025-06-01", PreferredTime: "10:00", Status: st,
			}
		}

		if err := svc.DeleteCampaign(ctx, 1); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(f.notices) != 2 {
			t.Fatalf("expected 2 notifications (active donors only), got %d", len(f.notices))
		}
		if len(f.reservations) != 0 || len(f.sessions) != 0 {
			t.Fatalf("expected reservations and sessions removed, got %d/%d", len(f.reservations), len(f.sessions))
		}
		if _, ok := f.campaigns[1]; ok {
			t.Fatalf("expected campaign removed")
		}
	})

	t.Run("unknown campaign fails with ErrNotFound", func(t *testing.T) {
		svc, _ := newTestService(testNow)
		if err := svc.DeleteCampaign(ctx, 5); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hemolink/blood-bank-api/internal/model"
)

// ReservationRepo provides CRUD operations for campaign reservations.
// A reservation is a donor's booking for a specific campaign session and
// carries the donation-completion sub-state (completion date and the
// computed next-eligible date). All timestamps are stored in UTC; session
// dates and slot times are stored as DATE and TIME columns and travel
// through this layer as canonical "YYYY-MM-DD" / "HH:MM" strings.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, campaign_id, user_id, name, email, phone, blood_type,
       TIME_FORMAT(preferred_time, '%H:%i'), DATE_FORMAT(session_date, '%Y-%m-%d'),
       status, donation_completed, donation_completed_date, next_eligible_date, created_at`

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var r model.Reservation
	var completed, next sql.NullTime
	err := row.Scan(&r.ID, &r.CampaignID, &r.UserID, &r.Name, &r.Email, &r.Phone,
		&r.BloodType, &r.PreferredTime, &r.SessionDate, &r.Status,
		&r.DonationCompleted, &completed, &next, &r.CreatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	if completed.Valid {
		t := completed.Time
		r.DonationCompletedDate = &t
	}
	if next.Valid {
		t := next.Time
		r.NextEligibleDate = &t
	}
	return r, nil
}

// Create inserts a new reservation and populates the generated ID and
// creation timestamp on the given record. Status and the donation flags
// must already be set by the caller.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO campaign_reservations
	           (campaign_id, user_id, name, email, phone, blood_type, preferred_time, session_date, status, donation_completed)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := exec(ctx, r.db).ExecContext(ctx, q,
		res.CampaignID, res.UserID, res.Name, res.Email, res.Phone,
		res.BloodType, res.PreferredTime, res.SessionDate, res.Status, res.DonationCompleted)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT created_at FROM campaign_reservations WHERE id = ?`
	return exec(ctx, r.db).QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt)
}

// GetByID returns a single reservation. sql.ErrNoRows is returned when the
// identifier does not resolve.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM campaign_reservations WHERE id = ?`
	return scanReservation(exec(ctx, r.db).QueryRowContext(ctx, q, id))
}

// ActiveByUser returns the user's single active reservation (status pending
// or confirmed with the donation not yet completed), or nil when the user
// has none. At most one such row can exist per user.
func (r *ReservationRepo) ActiveByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM campaign_reservations
	           WHERE user_id = ? AND status IN ('pending','confirmed') AND donation_completed = 0
	           ORDER BY created_at DESC LIMIT 1`
	res, err := scanReservation(exec(ctx, r.db).QueryRowContext(ctx, q, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// LatestCompletedByUser returns the user's most recent completed donation
// ordered by completion date, or nil when the user has never completed one.
func (r *ReservationRepo) LatestCompletedByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM campaign_reservations
	           WHERE user_id = ? AND donation_completed = 1
	           ORDER BY donation_completed_date DESC LIMIT 1`
	res, err := scanReservation(exec(ctx, r.db).QueryRowContext(ctx, q, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CountForSlot counts reservations occupying one hourly slot of a campaign
// session. Deliberately no status filter: cancelled rows still count, which
// mirrors how availability has always been derived.
func (r *ReservationRepo) CountForSlot(ctx context.Context, campaignID uint64, date, slot string) (int, error) {
	const q = `SELECT COUNT(*) FROM campaign_reservations
	           WHERE campaign_id = ? AND session_date = ? AND preferred_time = ?`
	var n int
	err := exec(ctx, r.db).QueryRowContext(ctx, q, campaignID, date, slot).Scan(&n)
	return n, err
}

// ActiveByCampaign returns every pending or confirmed reservation on a
// campaign. Used by the session-change cascade and by campaign deletion.
func (r *ReservationRepo) ActiveByCampaign(ctx context.Context, campaignID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM campaign_reservations
	           WHERE campaign_id = ? AND status IN ('pending','confirmed')
	           ORDER BY session_date, preferred_time, id`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// UpdateStatus sets the reservation status. The caller is responsible for
// only requesting transitions allowed by the state machine.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	const q = `UPDATE campaign_reservations SET status = ? WHERE id = ?`
	_, err := exec(ctx, r.db).ExecContext(ctx, q, status, id)
	return err
}

// MarkCompleted stamps the donation as completed in a single statement:
// flag, completion date, the precomputed next-eligible date and the
// terminal status.
func (r *ReservationRepo) MarkCompleted(ctx context.Context, id uint64, completedAt, nextEligible time.Time) error {
	const q = `UPDATE campaign_reservations
	           SET donation_completed = 1, donation_completed_date = ?, next_eligible_date = ?, status = 'completed'
	           WHERE id = ?`
	_, err := exec(ctx, r.db).ExecContext(ctx, q, completedAt, nextEligible, id)
	return err
}

// DeleteByCampaign removes every reservation belonging to a campaign. Only
// called from the campaign-delete cascade after affected users have been
// notified.
func (r *ReservationRepo) DeleteByCampaign(ctx context.Context, campaignID uint64) error {
	const q = `DELETE FROM campaign_reservations WHERE campaign_id = ?`
	_, err := exec(ctx, r.db).ExecContext(ctx, q, campaignID)
	return err
}

// ReservationDetail pairs a reservation with campaign display fields for
// donor-facing listings.
type ReservationDetail struct {
	ID                    uint64     `json:"id"`
	CampaignID            uint64     `json:"campaign_id"`
	Location              string     `json:"location"`
	Organizer             string     `json:"organizer"`
	Address               string     `json:"address"`
	BloodType             string     `json:"blood_type"`
	PreferredTime         string     `json:"preferred_time"`
	SessionDate           string     `json:"session_date"`
	Status                string     `json:"status"`
	DonationCompleted     bool       `json:"donation_completed"`
	DonationCompletedDate *time.Time `json:"donation_completed_date,omitempty"`
	NextEligibleDate      *time.Time `json:"next_eligible_date,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// ListByUser returns all of a user's reservations, newest first, joined
// with campaign details for display. An empty slice is returned when the
// user has none.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.campaign_id, c.location, c.organizer, c.address,
	                  r.blood_type, TIME_FORMAT(r.preferred_time, '%H:%i'),
	                  DATE_FORMAT(r.session_date, '%Y-%m-%d'), r.status,
	                  r.donation_completed, r.donation_completed_date, r.next_eligible_date, r.created_at
	           FROM campaign_reservations r
	           JOIN campaigns c ON c.id = r.campaign_id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var completed, next sql.NullTime
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.Location, &d.Organizer, &d.Address,
			&d.BloodType, &d.PreferredTime, &d.SessionDate, &d.Status,
			&d.DonationCompleted, &completed, &next, &d.CreatedAt); err != nil {
			return nil, err
		}
		if completed.Valid {
			t := completed.Time
			d.DonationCompletedDate = &t
		}
		if next.Valid {
			t := next.Time
			d.NextEligibleDate = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByCampaign returns every reservation on a campaign regardless of
// status, ordered by session date and slot. Used by admin views.
func (r *ReservationRepo) ListByCampaign(ctx context.Context, campaignID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM campaign_reservations
	           WHERE campaign_id = ?
	           ORDER BY session_date, preferred_time, id`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CountByStatus returns reservation counts grouped by status for the
// admin dashboard.
func (r *ReservationRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	const q = `SELECT status, COUNT(*) FROM campaign_reservations GROUP BY status`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// CountCompletedDonations returns the total number of completed donations.
func (r *ReservationRepo) CountCompletedDonations(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM campaign_reservations WHERE donation_completed = 1`
	var n int
	err := exec(ctx, r.db).QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

package model

import "time"

// Reservation statuses. Transitions are monotonic except for explicit
// cancellation: PENDING -> CONFIRMED/CANCELLED, CONFIRMED -> CANCELLED/COMPLETED;
// CANCELLED and COMPLETED are terminal.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

// Reservation records a donor's booking for a blood-donation campaign
// session. Contact fields are snapshot copies taken at booking time and
// do not track later profile edits.
//
// Fields:
//  ID                    – primary key identifier.
//  CampaignID            – campaign the booking belongs to.
//  UserID                – donor who made the booking.
//  Name/Email/Phone      – contact snapshot at booking time.
//  BloodType             – canonical blood type (A+ .. O-).
//  PreferredTime         – chosen hourly slot, "HH:MM".
//  SessionDate           – chosen session day, "YYYY-MM-DD".
//  Status                – reservation state (see constants above).
//  DonationCompleted     – whether the donation actually took place.
//  DonationCompletedDate – when it took place (nil until completed).
//  NextEligibleDate      – completion date plus the three-month
//                          eligibility window (nil until completed).
//  CreatedAt             – creation timestamp.
type Reservation struct {
	ID                    uint64     // campaign_reservations.id
	CampaignID            uint64     // campaign_reservations.campaign_id
	UserID                uint64     // campaign_reservations.user_id
	Name                  string     // campaign_reservations.name
	Email                 string     // campaign_reservations.email
	Phone                 string     // campaign_reservations.phone
	BloodType             string     // campaign_reservations.blood_type
	PreferredTime         string     // campaign_reservations.preferred_time
	SessionDate           string     // campaign_reservations.session_date
	Status                string     // campaign_reservations.status
	DonationCompleted     bool       // campaign_reservations.donation_completed
	DonationCompletedDate *time.Time // campaign_reservations.donation_completed_date (nullable)
	NextEligibleDate      *time.Time // campaign_reservations.next_eligible_date (nullable)
	CreatedAt             time.Time  // campaign_reservations.created_at
}

// Active reports whether the reservation still occupies the donor's single
// active-appointment slot.
func (r *Reservation) Active() bool {
	return (r.Status == ReservationPending || r.Status == ReservationConfirmed) && !r.DonationCompleted
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// DonationCompletedEvent is published when a donation is recorded for a
// reservation. It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type DonationCompletedEvent struct {
	EventID          string `json:"event_id"`
	ReservationID    uint64 `json:"reservation_id"`
	UserID           uint64 `json:"user_id"`
	CampaignID       uint64 `json:"campaign_id"`
	CampaignLocation string `json:"campaign_location"`
	BloodType        string `json:"blood_type"`
	VolumeML         int    `json:"volume_ml"`
	Units            int    `json:"units"`
	BloodBankID      uint64 `json:"blood_bank_id,omitempty"`
	CompletedAt      string `json:"completed_at"`
	NextEligibleDate string `json:"next_eligible_date"`
}

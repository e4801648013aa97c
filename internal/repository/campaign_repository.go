package repository

import (
	"context"
	"database/sql"

	"github.com/hemolink/blood-bank-api/internal/model"
)

// CampaignRepo persists donation campaigns and their session windows.
// Sessions are always written as a full set: editing a campaign deletes
// every existing session row and inserts the new ones, never diffs.
type CampaignRepo struct {
	db *sql.DB
}

// NewCampaignRepo returns a new CampaignRepo bound to the given database.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

// Create inserts a campaign and populates its generated ID.
func (r *CampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	const q = `INSERT INTO campaigns (location, organizer, address, latitude, longitude)
	           VALUES (?, ?, ?, ?, ?)`
	result, err := exec(ctx, r.db).ExecContext(ctx, q, c.Location, c.Organizer, c.Address, c.Latitude, c.Longitude)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update overwrites the campaign's location, organizer, address and
// coordinates. sql.ErrNoRows is returned when the campaign does not exist.
func (r *CampaignRepo) Update(ctx context.Context, c *model.Campaign) error {
	const q = `UPDATE campaigns SET location = ?, organizer = ?, address = ?, latitude = ?, longitude = ?
	           WHERE id = ?`
	result, err := exec(ctx, r.db).ExecContext(ctx, q, c.Location, c.Organizer, c.Address, c.Latitude, c.Longitude, c.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing row from an update that changed nothing.
		var id uint64
		if err := exec(ctx, r.db).QueryRowContext(ctx, `SELECT id FROM campaigns WHERE id = ?`, c.ID).Scan(&id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the campaign row itself. Sessions and reservations must
// already be gone; the FK order is enforced by the service cascade.
func (r *CampaignRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM campaigns WHERE id = ?`
	_, err := exec(ctx, r.db).ExecContext(ctx, q, id)
	return err
}

// GetByID returns a single campaign. sql.ErrNoRows when absent.
func (r *CampaignRepo) GetByID(ctx context.Context, id uint64) (model.Campaign, error) {
	const q = `SELECT id, location, organizer, address, latitude, longitude, created_at
	           FROM campaigns WHERE id = ?`
	var c model.Campaign
	err := exec(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Location, &c.Organizer, &c.Address, &c.Latitude, &c.Longitude, &c.CreatedAt)
	return c, err
}

// List returns all campaigns, newest first.
func (r *CampaignRepo) List(ctx context.Context) ([]model.Campaign, error) {
	const q = `SELECT id, location, organizer, address, latitude, longitude, created_at
	           FROM campaigns ORDER BY created_at DESC`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Campaign, 0)
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(&c.ID, &c.Location, &c.Organizer, &c.Address, &c.Latitude, &c.Longitude, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SessionRepo persists the date/time windows belonging to campaigns.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

const sessionCols = `id, campaign_id, DATE_FORMAT(session_date, '%Y-%m-%d'),
       TIME_FORMAT(start_time, '%H:%i'), TIME_FORMAT(end_time, '%H:%i'), status`

// ByCampaignAndDate returns the session scheduled for a campaign on a given
// day, or nil when the campaign has no session that day.
func (r *SessionRepo) ByCampaignAndDate(ctx context.Context, campaignID uint64, date string) (*model.CampaignSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM campaign_sessions
	           WHERE campaign_id = ? AND session_date = ? LIMIT 1`
	var s model.CampaignSession
	err := exec(ctx, r.db).QueryRowContext(ctx, q, campaignID, date).Scan(
		&s.ID, &s.CampaignID, &s.Date, &s.StartTime, &s.EndTime, &s.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByCampaign returns a campaign's sessions in chronological order.
func (r *SessionRepo) ListByCampaign(ctx context.Context, campaignID uint64) ([]model.CampaignSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM campaign_sessions
	           WHERE campaign_id = ? ORDER BY session_date, start_time`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CampaignSession, 0)
	for rows.Next() {
		var s model.CampaignSession
		if err := rows.Scan(&s.ID, &s.CampaignID, &s.Date, &s.StartTime, &s.EndTime, &s.Status); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReplaceForCampaign deletes every session of the campaign and inserts the
// given set. Must run inside the caller's transaction together with the
// reservation cascade.
func (r *SessionRepo) ReplaceForCampaign(ctx context.Context, campaignID uint64, sessions []model.CampaignSession) error {
	if err := r.DeleteByCampaign(ctx, campaignID); err != nil {
		return err
	}
	const q = `INSERT INTO campaign_sessions (campaign_id, session_date, start_time, end_time, status)
	           VALUES (?, ?, ?, ?, ?)`
	for i := range sessions {
		status := sessions[i].Status
		if status == "" {
			status = "scheduled"
		}
		result, err := exec(ctx, r.db).ExecContext(ctx, q,
			campaignID, sessions[i].Date, sessions[i].StartTime, sessions[i].EndTime, status)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		sessions[i].ID = uint64(id)
		sessions[i].CampaignID = campaignID
	}
	return nil
}

// DeleteByCampaign removes all sessions belonging to a campaign.
func (r *SessionRepo) DeleteByCampaign(ctx context.Context, campaignID uint64) error {
	const q = `DELETE FROM campaign_sessions WHERE campaign_id = ?`
	_, err := exec(ctx, r.db).ExecContext(ctx, q, campaignID)
	return err
}

// CountUpcoming counts sessions on or after the given day across all
// campaigns. Used by the admin dashboard.
func (r *SessionRepo) CountUpcoming(ctx context.Context, fromDate string) (int, error) {
	const q = `SELECT COUNT(*) FROM campaign_sessions WHERE session_date >= ?`
	var n int
	err := exec(ctx, r.db).QueryRowContext(ctx, q, fromDate).Scan(&n)
	return n, err
}

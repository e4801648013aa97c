package model

import "time"

// Campaign represents a blood-donation drive at a physical location.
// A campaign owns one or more sessions; editing a campaign replaces
// the whole session set rather than diffing it.
//
// Fields:
//  ID        – primary key identifier.
//  Location  – venue name shown to donors.
//  Organizer – organizing body.
//  Address   – street address of the venue.
//  Latitude  – geographic latitude, -90..90.
//  Longitude – geographic longitude, -180..180.
//  CreatedAt – creation timestamp.
type Campaign struct {
	ID        uint64    // campaigns.id
	Location  string    // campaigns.location
	Organizer string    // campaigns.organizer
	Address   string    // campaigns.address
	Latitude  float64   // campaigns.latitude
	Longitude float64   // campaigns.longitude
	CreatedAt time.Time // campaigns.created_at
}

// ValidCoordinates reports whether the campaign's coordinates fall inside
// valid geodetic ranges.
func (c *Campaign) ValidCoordinates() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// CampaignSession is a scheduled date/time window within a campaign during
// which donations occur. Dates are "YYYY-MM-DD" and times "HH:MM", both
// interpreted in the campaign's local calendar.
//
// Fields:
//  ID         – primary key identifier.
//  CampaignID – owning campaign.
//  Date       – session day.
//  StartTime  – window start.
//  EndTime    – window end (after StartTime).
//  Status     – session state ("scheduled" unless cancelled upstream).
type CampaignSession struct {
	ID         uint64 // campaign_sessions.id
	CampaignID uint64 // campaign_sessions.campaign_id
	Date       string // campaign_sessions.session_date
	StartTime  string // campaign_sessions.start_time
	EndTime    string // campaign_sessions.end_time
	Status     string // campaign_sessions.status
}

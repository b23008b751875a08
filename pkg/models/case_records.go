package models

import (
	"strings"
	"time"
)

// Case is an investigation file. Only the fields the engine reads are mapped.
type Case struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	ClientID          *int64    `json:"client_id,omitempty"`
	SanitizeForPublic bool      `json:"sanitize_for_public"` // widens redaction to contact and location details
	LocationName      string    `json:"location_name,omitempty"`
	LocationAddress   string    `json:"location_address,omitempty"`
	LocationCity      string    `json:"location_city,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Client is the person who opened a case.
type Client struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// FullName joins first and last name with a single space.
func (c *Client) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// WitnessAccount is a statement taken from a witness during a case.
type WitnessAccount struct {
	ID               int64     `json:"id"`
	CaseID           int64     `json:"case_id"`
	DisplayName      string    `json:"display_name"`
	Address          string    `json:"address,omitempty"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	IncidentLocation string    `json:"incident_location,omitempty"`
	Statement        string    `json:"statement,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Activity is a logged investigation step (site visit, interview, ...).
type Activity struct {
	ID     int64  `json:"id"`
	CaseID int64  `json:"case_id"`
	Title  string `json:"title"`
}

// Report is a written report attached to a case.
type Report struct {
	ID        int64     `json:"id"`
	CaseID    int64     `json:"case_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is a named place that can be linked to any record.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// Evidence is a catalogued item (recording, photo, object).
type Evidence struct {
	ID     int64  `json:"id"`
	CaseID int64  `json:"case_id"`
	Title  string `json:"title"`
}

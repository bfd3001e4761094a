// Package license holds the licensee record shape, the read-only directory
// contract, and the gate that turns credentials into an authenticated
// session.
package license

import (
	"strings"
	"time"
)

// Status is the entitlement state of a license. Anything other than active
// refuses login.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsActive() bool {
	return s == StatusActive
}

// ParseStatus normalizes a raw status cell. Unknown values collapse to
// inactive: a registry typo must never grant access.
func ParseStatus(raw string) Status {
	if strings.ToLower(strings.TrimSpace(raw)) == string(StatusActive) {
		return StatusActive
	}
	return StatusInactive
}

// Record is one row of the license registry. The registry is owned by an
// external directory; the core only reads.
type Record struct {
	Email           string
	Password        string // bcrypt hash or legacy plaintext
	LicenseeName    string
	Structure       string
	TierLabel       string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	RemainingPhotos int
	Status          Status
}

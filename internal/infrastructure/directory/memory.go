// Package directory provides read-only license registry backends: an
// in-memory seed for evaluation, a CSV flat file, and a SQLite database.
// All of them serve the same lookup contract and none of them ever write.
package directory

import (
	"context"
	"time"

	"glycoanalyzer/internal/domain/license"
)

// MemoryDirectory serves lookups from a fixed in-memory set of records.
// The map is never mutated after construction, so concurrent lookups need
// no locking.
type MemoryDirectory struct {
	records map[string]license.Record
}

func NewMemoryDirectory(records ...license.Record) *MemoryDirectory {
	m := make(map[string]license.Record, len(records))
	for _, rec := range records {
		m[license.NormalizeEmail(rec.Email)] = rec
	}
	return &MemoryDirectory{records: m}
}

// NewSeededDirectory returns a memory directory holding the evaluation
// license shipped with the product.
func NewSeededDirectory() *MemoryDirectory {
	return NewMemoryDirectory(license.Record{
		Email:           "test@medecin.com",
		Password:        "TEST@SD2025#",
		LicenseeName:    "Dr. Test Médecin",
		Structure:       "Centre de Santé Test",
		TierLabel:       "Découverte",
		CreatedAt:       time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		ExpiresAt:       time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		RemainingPhotos: 50,
		Status:          license.StatusActive,
	})
}

func (d *MemoryDirectory) Lookup(_ context.Context, email string) (*license.Record, error) {
	rec, ok := d.records[license.NormalizeEmail(email)]
	if !ok {
		return nil, license.ErrRecordNotFound
	}
	clone := rec
	return &clone, nil
}

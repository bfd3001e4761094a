package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"glycoanalyzer/internal/domain/license"
	"glycoanalyzer/internal/shared/logger"
)

// Expected CSV header columns, in registry order.
var csvColumns = []string{
	"email", "password", "nom_medecin", "structure", "type_licence",
	"date_creation", "date_expiration", "photos_restantes", "statut",
}

// CSVDirectory loads a flat-file license registry once at construction and
// serves lookups from memory. The file is owned by the external directory;
// rows are validated here, at the read boundary, so a malformed registry
// fails loudly at startup instead of silently at login.
type CSVDirectory struct {
	*MemoryDirectory
}

func NewCSVDirectory(path string, log logger.Interface) (*CSVDirectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open license registry: %w", err)
	}
	defer f.Close()

	records, err := parseRegistry(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse license registry %s: %w", path, err)
	}

	log.Infow("license registry loaded", "path", path, "licenses", len(records))

	return &CSVDirectory{MemoryDirectory: NewMemoryDirectory(records...)}, nil
}

func parseRegistry(r io.Reader) ([]license.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []license.Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		line++

		rec, err := rowToRecord(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range csvColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return idx, nil
}

func rowToRecord(row []string, idx map[string]int) (license.Record, error) {
	cell := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	email := license.NormalizeEmail(cell("email"))
	if email == "" {
		return license.Record{}, fmt.Errorf("empty email")
	}

	createdAt, err := parseRegistryDate(cell("date_creation"))
	if err != nil {
		return license.Record{}, fmt.Errorf("date_creation: %w", err)
	}
	expiresAt, err := parseRegistryDate(cell("date_expiration"))
	if err != nil {
		return license.Record{}, fmt.Errorf("date_expiration: %w", err)
	}

	remaining, err := strconv.Atoi(cell("photos_restantes"))
	if err != nil || remaining < 0 {
		return license.Record{}, fmt.Errorf("photos_restantes %q is not a non-negative integer", cell("photos_restantes"))
	}

	return license.Record{
		Email:           email,
		Password:        cell("password"),
		LicenseeName:    cell("nom_medecin"),
		Structure:       cell("structure"),
		TierLabel:       cell("type_licence"),
		CreatedAt:       createdAt,
		ExpiresAt:       expiresAt,
		RemainingPhotos: remaining,
		Status:          license.ParseStatus(cell("statut")),
	}, nil
}

func parseRegistryDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"glycoanalyzer/internal/domain/patient"
	"glycoanalyzer/internal/domain/triage"
)

// ImageRef identifies the source photo of a result without retaining the
// bytes in the batch.
type ImageRef struct {
	ID          string `json:"id"`
	SizeBytes   int    `json:"size_bytes"`
	ContentType string `json:"content_type"`
}

func newImageRef(image []byte) ImageRef {
	return ImageRef{
		ID:          uuid.NewString(),
		SizeBytes:   len(image),
		ContentType: http.DetectContentType(image),
	}
}

// Result is one finalized analysis: exactly one Result exists per
// successfully classified photo. The patient snapshot is immutable once
// embedded here.
type Result struct {
	Patient    patient.Record `json:"patient"`
	Value      float64        `json:"valeur"`
	Tier       triage.Tier    `json:"statut"`
	Message    string         `json:"message"`
	AnalyzedAt time.Time      `json:"date"`
	Image      ImageRef       `json:"photo"`
}

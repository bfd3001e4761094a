// Package patient models the ephemeral patient record attached to analysis
// results. Records have no identity of their own; they live inside one
// clinician session until the batch is reset.
package patient

import (
	"time"

	"glycoanalyzer/internal/shared/errors"
)

// DiabetesType is the declared diabetes classification.
type DiabetesType string

const (
	DiabetesType1       DiabetesType = "Type 1"
	DiabetesType2       DiabetesType = "Type 2"
	DiabetesGestational DiabetesType = "Grossesse"
)

// Treatment is the current treatment plan.
type Treatment string

const (
	TreatmentInsulin          Treatment = "Insuline"
	TreatmentOralAntidiabetic Treatment = "ADO"
	TreatmentLifestyleOnly    Treatment = "Mesures hygiéno-diététiques"
)

func (d DiabetesType) IsValid() bool {
	switch d {
	case DiabetesType1, DiabetesType2, DiabetesGestational:
		return true
	}
	return false
}

func (t Treatment) IsValid() bool {
	switch t {
	case TreatmentInsulin, TreatmentOralAntidiabetic, TreatmentLifestyleOnly:
		return true
	}
	return false
}

// Record is a patient snapshot. Immutable once attached to a result.
type Record struct {
	FullName     string       `json:"nom_complet"`
	Telephone    string       `json:"telephone"`
	DiabetesType DiabetesType `json:"type_diabete"`
	Treatment    Treatment    `json:"traitement"`
	RegisteredAt time.Time    `json:"date_ajout"`
}

// New validates intake fields and builds a Record. All fields are required;
// the telephone must be exactly nine numeric characters (Senegalese mobile
// format, no country prefix).
func New(fullName, telephone string, diabetesType DiabetesType, treatment Treatment, now time.Time) (Record, error) {
	if fullName == "" {
		return Record{}, errors.NewMissingFieldError("nom_complet")
	}
	if telephone == "" {
		return Record{}, errors.NewMissingFieldError("telephone")
	}
	if diabetesType == "" {
		return Record{}, errors.NewMissingFieldError("type_diabete")
	}
	if treatment == "" {
		return Record{}, errors.NewMissingFieldError("traitement")
	}

	if !validPhone(telephone) {
		return Record{}, errors.NewInvalidPhoneError()
	}
	if !diabetesType.IsValid() {
		return Record{}, errors.NewBadRequestError("type de diabète inconnu", string(diabetesType))
	}
	if !treatment.IsValid() {
		return Record{}, errors.NewBadRequestError("traitement inconnu", string(treatment))
	}

	return Record{
		FullName:     fullName,
		Telephone:    telephone,
		DiabetesType: diabetesType,
		Treatment:    treatment,
		RegisteredAt: now,
	}, nil
}

func validPhone(s string) bool {
	if len(s) != 9 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

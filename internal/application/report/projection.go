package report

import (
	"fmt"
	"strings"
	"time"

	"glycoanalyzer/internal/domain/session"
	"glycoanalyzer/internal/domain/triage"
)

// Projection is the flat record handed to document renderers (PDF layout,
// email body). It carries every field a downstream artifact needs and
// nothing about presentation.
type Projection struct {
	FullName     string      `json:"nom_complet"`
	Telephone    string      `json:"telephone"`
	DiabetesType string      `json:"type_diabete"`
	Treatment    string      `json:"traitement"`
	Value        float64     `json:"valeur"`
	Tier         triage.Tier `json:"statut"`
	Message      string      `json:"message"`
	AnalyzedAt   time.Time   `json:"date"`
	ImageID      string      `json:"photo_id"`
}

func FromResult(r session.Result) Projection {
	return Projection{
		FullName:     r.Patient.FullName,
		Telephone:    r.Patient.Telephone,
		DiabetesType: string(r.Patient.DiabetesType),
		Treatment:    string(r.Patient.Treatment),
		Value:        r.Value,
		Tier:         r.Tier,
		Message:      r.Message,
		AnalyzedAt:   r.AnalyzedAt,
		ImageID:      r.Image.ID,
	}
}

// StatusLabel is the display form of the tier used across report surfaces.
func (p Projection) StatusLabel() string {
	switch p.Tier {
	case triage.TierHypo:
		return "🟠 HYPOGLYCÉMIE"
	case triage.TierHyper:
		return "🔴 HYPERGLYCÉMIE"
	default:
		return "🟢 NORMAL"
	}
}

// Markdown renders the glycemic report body. Callers convert it to HTML
// through the markdown service before emailing.
func (p Projection) Markdown(generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# RAPPORT GLYCÉMIQUE\n\n")

	b.WriteString("## INFORMATIONS PATIENT\n\n")
	fmt.Fprintf(&b, "- Nom complet: %s\n", p.FullName)
	fmt.Fprintf(&b, "- Téléphone: %s\n", p.Telephone)
	fmt.Fprintf(&b, "- Type de diabète: %s\n", p.DiabetesType)
	fmt.Fprintf(&b, "- Traitement: %s\n\n", p.Treatment)

	b.WriteString("## RÉSULTATS ANALYSE\n\n")
	fmt.Fprintf(&b, "- Date et heure: %s\n", p.AnalyzedAt.Format("02/01/2006 à 15:04"))
	fmt.Fprintf(&b, "- Valeur glycémique: %.2f g/L\n", p.Value)
	fmt.Fprintf(&b, "- Statut: %s\n", p.StatusLabel())
	fmt.Fprintf(&b, "- Recommandation: %s\n\n", p.Message)

	fmt.Fprintf(&b, "*Rapport généré le %s*\n", generatedAt.Format("02/01/2006 à 15:04"))

	return b.String()
}

// FileName mirrors the naming convention of exported report documents.
func (p Projection) FileName() string {
	name := strings.ReplaceAll(p.FullName, " ", "_")
	return fmt.Sprintf("rapport_%s_%s.md", name, p.AnalyzedAt.Format("20060102_1504"))
}

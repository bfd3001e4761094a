// Package triage maps a glycemic value (g/L) to a clinical tier and an
// advisory message. Thresholds are fixed clinical constants, not
// configuration.
package triage

import "math"

// Tier represents the clinical classification bucket.
type Tier string

const (
	TierHypo   Tier = "Hypo"
	TierNormal Tier = "Normal"
	TierHyper  Tier = "Hyper"
)

// Threshold constants, closed on the Normal side:
// value < HypoBelow is Hypo, value > HyperAbove is Hyper.
const (
	HypoBelow  = 0.70
	HyperAbove = 1.10
)

// Advisory messages returned alongside each tier.
const (
	MessageHypo   = "Consultation urgente recommandée - Contacter le médecin"
	MessageHyper  = "Appel médecin nécessaire - Ajustement traitement possible"
	MessageNormal = "Situation stable - Continuer surveillance habituelle"
)

func (t Tier) String() string {
	return string(t)
}

// Classify returns the tier and advisory for a glycemic value. It is total:
// every float maps to exactly one tier. Callers must pass the value they
// intend to store, already rounded, so the stored value and tier cannot
// disagree at a threshold boundary.
func Classify(value float64) (Tier, string) {
	switch {
	case value < HypoBelow:
		return TierHypo, MessageHypo
	case value > HyperAbove:
		return TierHyper, MessageHyper
	default:
		return TierNormal, MessageNormal
	}
}

// Round2 rounds a glycemic value to two decimal places, the precision used
// for storage and display.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

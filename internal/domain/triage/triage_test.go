package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		tier  Tier
	}{
		{"just below hypo threshold", 0.69, TierHypo},
		{"hypo threshold is normal", 0.70, TierNormal},
		{"hyper threshold is normal", 1.10, TierNormal},
		{"just above hyper threshold", 1.11, TierHyper},
		{"zero", 0.0, TierHypo},
		{"mid normal", 0.95, TierNormal},
		{"clearly hyper", 2.50, TierHyper},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, message := Classify(tt.value)
			assert.Equal(t, tt.tier, tier)
			assert.NotEmpty(t, message)
		})
	}
}

func TestClassifyMessages(t *testing.T) {
	_, hypoMsg := Classify(0.50)
	assert.Equal(t, MessageHypo, hypoMsg)

	_, normalMsg := Classify(1.00)
	assert.Equal(t, MessageNormal, normalMsg)

	_, hyperMsg := Classify(1.50)
	assert.Equal(t, MessageHyper, hyperMsg)
}

func TestClassifyIsTotal(t *testing.T) {
	// Every value lands in exactly one tier.
	for v := -1.0; v <= 3.0; v += 0.01 {
		tier, _ := Classify(v)
		assert.Contains(t, []Tier{TierHypo, TierNormal, TierHyper}, tier)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.20, Round2(1.204))
	assert.Equal(t, 1.21, Round2(1.205))
	assert.Equal(t, 0.70, Round2(0.699999))
	assert.Equal(t, 0.69, Round2(0.694))
}

func TestClassifyRoundedValueAtBoundary(t *testing.T) {
	// 0.699999 rounds to 0.70 which is Normal; classifying the rounded
	// value keeps the stored value and tier consistent.
	rounded := Round2(0.699999)
	tier, _ := Classify(rounded)
	assert.Equal(t, TierNormal, tier)
}

package domain

// RainfallPolicy is the two-segment effective rainfall rule: rain at or below
// ThresholdMm is lost to interception and runoff, and ExcessFraction of the
// rain above the threshold reaches the root zone.
type RainfallPolicy struct {
	ThresholdMm    float64 `json:"threshold_mm"`
	ExcessFraction float64 `json:"excess_fraction"`
}

// DefaultRainfallPolicy counts 75% of rain above 5 mm.
func DefaultRainfallPolicy() RainfallPolicy {
	return RainfallPolicy{ThresholdMm: 5, ExcessFraction: 0.75}
}

// Effective returns the effective rainfall for a day's precipitation.
// The threshold itself contributes nothing.
func (p RainfallPolicy) Effective(precipMm float64) float64 {
	if precipMm <= p.ThresholdMm {
		return 0
	}
	return clamp((precipMm-p.ThresholdMm)*p.ExcessFraction, 0, precipMm)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

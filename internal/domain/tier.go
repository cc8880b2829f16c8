package domain

// Tier is the magnitude severity class used to style tables and spreadsheets.
type Tier int

const (
	TierNeutral Tier = iota
	TierMedium
	TierHigh
)

// Lower bounds (inclusive) of the non-neutral tiers.
const (
	HighMagnitude   = 5.0
	MediumMagnitude = 3.0
)

// SeverityTier classifies a magnitude. Every real magnitude maps to exactly
// one tier; a nil magnitude (and NaN) is neutral.
func SeverityTier(mag *float64) Tier {
	if mag == nil {
		return TierNeutral
	}
	switch m := *mag; {
	case m >= HighMagnitude:
		return TierHigh
	case m >= MediumMagnitude:
		return TierMedium
	default:
		return TierNeutral
	}
}

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "neutral"
	}
}

// MarshalText renders the tier by name in JSON payloads and message headers.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

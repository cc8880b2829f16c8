package domain

// Summary holds the headline statistics shown above the records.
type Summary struct {
	Total        int       `json:"total"`
	MaxMagnitude *float64  `json:"max_magnitude"`
	AvgMagnitude *float64  `json:"avg_magnitude"`
	Tiers        TierCount `json:"tiers"`
}

// TierCount is the number of records per severity tier.
type TierCount struct {
	High    int `json:"high"`
	Medium  int `json:"medium"`
	Neutral int `json:"neutral"`
}

// Summarize computes the table statistics. Records without a magnitude count
// toward Total and the neutral tier but are skipped for max and average; both
// are nil when no record has a magnitude.
func Summarize(table Table) Summary {
	s := Summary{Total: len(table)}

	var sum float64
	var n int
	for _, r := range table {
		switch r.Tier() {
		case TierHigh:
			s.Tiers.High++
		case TierMedium:
			s.Tiers.Medium++
		default:
			s.Tiers.Neutral++
		}

		if r.Magnitude == nil {
			continue
		}
		m := *r.Magnitude
		if s.MaxMagnitude == nil || m > *s.MaxMagnitude {
			s.MaxMagnitude = Float64(m)
		}
		sum += m
		n++
	}

	if n > 0 {
		s.AvgMagnitude = Float64(sum / float64(n))
	}
	return s
}

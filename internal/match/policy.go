package match

import "callsheet/internal/config"

// Policy centralizes fuzzy-matching thresholds and score weights.
type Policy struct {
	// Threshold is the minimum combined score for a fuzzy pair.
	Threshold float64
	// CastWeight scores Jaccard overlap of cast numbers.
	CastWeight float64
	// TextWeight scores normalized edit distance of heading/location text.
	TextWeight float64
	// FlagWeight scores INT/EXT + day/night equality as a binary bonus.
	FlagWeight float64
}

// DefaultPolicy returns defaults tuned as reasonable starting points; tune
// against real production samples via the [matching] config section.
func DefaultPolicy() Policy {
	return Policy{
		Threshold:  0.6,
		CastWeight: 0.4,
		TextWeight: 0.4,
		FlagWeight: 0.2,
	}
}

// PolicyFromConfig builds a Policy from the matching config section.
func PolicyFromConfig(cfg config.Matching) Policy {
	return Policy{
		Threshold:  cfg.Threshold,
		CastWeight: cfg.CastWeight,
		TextWeight: cfg.TextWeight,
		FlagWeight: cfg.FlagWeight,
	}.normalized()
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.Threshold <= 0 || p.Threshold >= 1 {
		p.Threshold = d.Threshold
	}
	if p.CastWeight < 0 {
		p.CastWeight = d.CastWeight
	}
	if p.TextWeight < 0 {
		p.TextWeight = d.TextWeight
	}
	if p.FlagWeight < 0 {
		p.FlagWeight = d.FlagWeight
	}
	if p.CastWeight+p.TextWeight+p.FlagWeight == 0 {
		p.CastWeight = d.CastWeight
		p.TextWeight = d.TextWeight
		p.FlagWeight = d.FlagWeight
	}
	return p
}

package kicktip

import (
	"fmt"
	"strings"
)

// Classification is the human-facing verdict for one fixture
type Classification struct {
	Confidence      ConfidenceLabel
	Recommendations []Recommendation
}

// RecommendedBet renders the recommendations as a single display string
func (c *Classification) RecommendedBet() string {
	if len(c.Recommendations) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c.Recommendations))
	for _, r := range c.Recommendations {
		parts = append(parts, r.Market)
	}
	return strings.Join(parts, " | ")
}

// Classifier turns a model output into a confidence grade and a ranked
// list of betting recommendations
type Classifier struct {
	config *EngineConfig
}

// NewClassifier creates a classifier bound to the given configuration
func NewClassifier(config *EngineConfig) *Classifier {
	return &Classifier{config: config}
}

// Classify grades the output and collects every threshold rule that
// fires, in a fixed priority order, keeping at most MaxRecommendations
func (c *Classifier) Classify(out *ModelOutput) *Classification {
	result := &Classification{
		Confidence:      c.confidence(out.Distribution),
		Recommendations: c.recommendations(out),
	}
	return result
}

// confidence grades how far the leading outcome sits above the runner-up
func (c *Classifier) confidence(d OutcomeDistribution) ConfidenceLabel {
	gap := d.Gap()
	switch {
	case gap >= c.config.VeryHighConfidenceGap:
		return ConfidenceVeryHigh
	case gap >= c.config.HighConfidenceGap:
		return ConfidenceHigh
	case gap >= c.config.MediumConfidenceGap:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// recommendations walks the rule table in priority order. Outright
// results come first, then double chance, then the goals markets.
// When nothing fires, a single hedged lean on the leading side is
// emitted so every fixture gets at least one line.
func (c *Classifier) recommendations(out *ModelOutput) []Recommendation {
	d := out.Distribution
	cfg := c.config
	var recs []Recommendation

	add := func(market, rationale string) {
		if len(recs) < cfg.MaxRecommendations {
			recs = append(recs, Recommendation{Market: market, Rationale: rationale})
		}
	}

	// Outright three-way
	if d.Home >= cfg.HomeWinThreshold {
		add("1", fmt.Sprintf("home win at %.1f%%", d.Home))
	} else if d.Away >= cfg.AwayWinThreshold {
		add("2", fmt.Sprintf("away win at %.1f%%", d.Away))
	} else if d.Draw >= cfg.DrawThreshold {
		add("X", fmt.Sprintf("draw at %.1f%%", d.Draw))
	}

	// Double chance, only when no outright fired for that side
	if d.Home < cfg.HomeWinThreshold && d.Home+d.Draw >= cfg.DoubleChanceThreshold && d.Home >= d.Away {
		add("1X", fmt.Sprintf("home or draw at %.1f%%", d.Home+d.Draw))
	} else if d.Away < cfg.AwayWinThreshold && d.Away+d.Draw >= cfg.DoubleChanceThreshold && d.Away > d.Home {
		add("X2", fmt.Sprintf("draw or away at %.1f%%", d.Away+d.Draw))
	}

	// Goals markets
	if out.Over25 >= cfg.OverThreshold {
		add("Over 2.5", fmt.Sprintf("over 2.5 goals at %.1f%%", out.Over25))
	} else if out.Over25 <= cfg.UnderThreshold {
		add("Under 2.5", fmt.Sprintf("under 2.5 goals at %.1f%%", 100.0-out.Over25))
	}

	if out.BothTeamsScore >= cfg.BttsYesThreshold {
		add("BTTS Yes", fmt.Sprintf("both teams score at %.1f%%", out.BothTeamsScore))
	} else if out.BothTeamsScore <= cfg.BttsNoThreshold {
		add("BTTS No", fmt.Sprintf("clean sheet likely at %.1f%%", 100.0-out.BothTeamsScore))
	}

	// Conjunctive combo when both legs clear their bars decisively
	if d.Home >= cfg.HomeWinThreshold && out.Over25 >= cfg.OverThreshold {
		add("1 & Over 2.5", fmt.Sprintf("home win with goals at %.1f%% and %.1f%%", d.Home, out.Over25))
	} else if d.Away >= cfg.AwayWinThreshold && out.Over25 >= cfg.OverThreshold {
		add("2 & Over 2.5", fmt.Sprintf("away win with goals at %.1f%% and %.1f%%", d.Away, out.Over25))
	}

	if len(recs) > 0 {
		return recs
	}

	// Nothing decisive; lean on the leading side with the draw as cover
	switch {
	case d.Home >= d.Away && d.Home >= d.Draw:
		add("1X (lean)", fmt.Sprintf("slight home lean at %.1f%%", d.Home+d.Draw))
	case d.Away > d.Home && d.Away >= d.Draw:
		add("X2 (lean)", fmt.Sprintf("slight away lean at %.1f%%", d.Away+d.Draw))
	default:
		add("X (lean)", fmt.Sprintf("draw leads at %.1f%%", d.Draw))
	}
	return recs
}

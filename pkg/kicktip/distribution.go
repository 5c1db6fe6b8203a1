package kicktip

import (
	"fmt"
	"math"
)

// distributionTolerance is how far the three percentages may drift
// from summing to exactly 100
const distributionTolerance = 0.5

// OutcomeDistribution is a validated three-way probability split in
// percentages. Construct with NewOutcomeDistribution; a zero value is
// not a valid distribution.
type OutcomeDistribution struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// NewOutcomeDistribution validates the triple and returns it.
// Percentages must be non-negative and sum to 100 within tolerance.
func NewOutcomeDistribution(home, draw, away float64) (OutcomeDistribution, error) {
	d := OutcomeDistribution{Home: home, Draw: draw, Away: away}
	if err := d.Validate(); err != nil {
		return OutcomeDistribution{}, err
	}
	return d, nil
}

// Validate checks the distribution invariants
func (d OutcomeDistribution) Validate() error {
	if d.Home < 0 || d.Draw < 0 || d.Away < 0 {
		return fmt.Errorf("%w: negative component (%.2f/%.2f/%.2f)",
			ErrInvariantViolation, d.Home, d.Draw, d.Away)
	}
	if math.Abs(d.Sum()-100.0) > distributionTolerance {
		return fmt.Errorf("%w: components sum to %.2f", ErrInvariantViolation, d.Sum())
	}
	return nil
}

// Sum returns the total mass of the distribution
func (d OutcomeDistribution) Sum() float64 {
	return d.Home + d.Draw + d.Away
}

// Max returns the largest component
func (d OutcomeDistribution) Max() float64 {
	return math.Max(d.Home, math.Max(d.Draw, d.Away))
}

// Gap returns the difference between the largest and second largest
// component, the classifier's decisiveness measure
func (d OutcomeDistribution) Gap() float64 {
	a, b := d.Home, d.Draw
	if a < b {
		a, b = b, a
	}
	if d.Away > a {
		b = a
		a = d.Away
	} else if d.Away > b {
		b = d.Away
	}
	return a - b
}

// normalized scales the triple so it sums to exactly 100.
// A zero-mass triple comes back as a uniform split.
func (d OutcomeDistribution) normalized() OutcomeDistribution {
	sum := d.Sum()
	if sum <= 0 {
		third := 100.0 / 3.0
		return OutcomeDistribution{Home: third, Draw: third, Away: third}
	}
	scale := 100.0 / sum
	return OutcomeDistribution{
		Home: d.Home * scale,
		Draw: d.Draw * scale,
		Away: d.Away * scale,
	}
}

// rounded returns the distribution with components rounded to one
// decimal place, pushing the rounding remainder onto the largest component
func (d OutcomeDistribution) rounded() OutcomeDistribution {
	r := OutcomeDistribution{
		Home: math.Round(d.Home*10) / 10,
		Draw: math.Round(d.Draw*10) / 10,
		Away: math.Round(d.Away*10) / 10,
	}
	diff := 100.0 - r.Sum()
	switch {
	case r.Home >= r.Draw && r.Home >= r.Away:
		r.Home = math.Round((r.Home+diff)*10) / 10
	case r.Away >= r.Draw:
		r.Away = math.Round((r.Away+diff)*10) / 10
	default:
		r.Draw = math.Round((r.Draw+diff)*10) / 10
	}
	return r
}

// ImpliedOdds converts the distribution into fair decimal odds
func (d OutcomeDistribution) ImpliedOdds() MarketOdds {
	return MarketOdds{
		Home: impliedPrice(d.Home),
		Draw: impliedPrice(d.Draw),
		Away: impliedPrice(d.Away),
	}
}

func impliedPrice(pct float64) float64 {
	if pct <= 0 {
		return 0
	}
	return math.Round(100.0/pct*100) / 100
}

// distributionFromOdds converts decimal market odds into an implied
// distribution, renormalized to strip the bookmaker overround
func distributionFromOdds(odds *MarketOdds) (OutcomeDistribution, bool) {
	if !odds.Present() {
		return OutcomeDistribution{}, false
	}
	raw := OutcomeDistribution{
		Home: 100.0 / odds.Home,
		Draw: 100.0 / odds.Draw,
		Away: 100.0 / odds.Away,
	}
	return raw.normalized(), true
}

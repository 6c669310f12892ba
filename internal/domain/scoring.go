package domain

// AnswerSet maps a question id to the score of the chosen option.
type AnswerSet map[string]int

// Total sums every recorded score. Unanswered questions contribute nothing.
func (a AnswerSet) Total() int {
	total := 0
	for _, score := range a {
		total += score
	}
	return total
}

// tierUpperBounds are the inclusive upper totals of tiers 1..5; anything above the last is tier 6.
var tierUpperBounds = [...]int{6, 12, 18, 24, 30}

// ClassifyTotal maps a total score onto its tier.
func ClassifyTotal(total int) Tier {
	for i, upper := range tierUpperBounds {
		if total <= upper {
			return Tier(i + 1)
		}
	}
	return Tier6
}

// ComputeClassification scores the answers and returns the matching classification.
func ComputeClassification(answers AnswerSet) Classification {
	c, err := LookupClassification(ClassifyTotal(answers.Total()))
	if err != nil {
		// ClassifyTotal only yields tiers 1..6.
		panic(err)
	}
	return c
}

// TierBand returns the inclusive range of totals that classify as t.
// The top tier is open-ended, reported with hi = -1.
func TierBand(t Tier) (lo, hi int, err error) {
	if !t.Valid() {
		return 0, 0, ErrTierOutOfRange
	}
	if t > Tier1 {
		lo = tierUpperBounds[t-2] + 1
	}
	if t == Tier6 {
		return lo, -1, nil
	}
	return lo, tierUpperBounds[t-1], nil
}

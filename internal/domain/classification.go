package domain

import (
	"fmt"
	"slices"
)

// Tier is a Fitzpatrick skin type, 1 (palest, most sun-sensitive) through 6.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
	Tier5
	Tier6
)

// Valid reports whether t is one of the six defined tiers.
func (t Tier) Valid() bool {
	return t >= Tier1 && t <= Tier6
}

var romanNumerals = [...]string{"I", "II", "III", "IV", "V", "VI"}

// Roman returns the tier as a roman numeral, e.g. "IV".
func (t Tier) Roman() string {
	if !t.Valid() {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return romanNumerals[t-1]
}

// Eligibility rates CO2 laser suitability, ordered worst to best.
type Eligibility int

const (
	EligibilityNotRecommended Eligibility = iota
	EligibilityLimited
	EligibilityModerate
	EligibilityGood
	EligibilityExcellent
)

func (e Eligibility) String() string {
	switch e {
	case EligibilityExcellent:
		return "excellent"
	case EligibilityGood:
		return "good"
	case EligibilityModerate:
		return "moderate"
	case EligibilityLimited:
		return "limited"
	default:
		return "not-recommended"
	}
}

// Label is the human-readable rating sent to the lead system.
func (e Eligibility) Label() string {
	switch e {
	case EligibilityExcellent:
		return "Excellent Candidate"
	case EligibilityGood:
		return "Good Candidate"
	case EligibilityModerate:
		return "Moderate Candidate"
	case EligibilityLimited:
		return "Limited Candidate"
	default:
		return "Not Recommended"
	}
}

// Suitable reports whether the rating qualifies for CO2 laser treatment.
func (e Eligibility) Suitable() bool {
	return e >= EligibilityModerate
}

// MarshalText encodes the eligibility as its kebab-case id.
func (e Eligibility) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Classification is the static clinical description attached to a tier.
type Classification struct {
	Tier           Tier        `json:"tier"`
	Type           string      `json:"type"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Eligibility    Eligibility `json:"eligibility"`
	IsSuitable     bool        `json:"isSuitable"`
	Message        string      `json:"message"`
	Considerations []string    `json:"considerations"`
}

// DisplayName combines type and name, e.g. "Type I - Very Fair".
func (c Classification) DisplayName() string {
	return c.Type + " - " + c.Name
}

func newClassification(t Tier, name, description string, e Eligibility, message string, considerations ...string) Classification {
	return Classification{
		Tier:           t,
		Type:           "Type " + t.Roman(),
		Name:           name,
		Description:    description,
		Eligibility:    e,
		IsSuitable:     e.Suitable(),
		Message:        message,
		Considerations: considerations,
	}
}

var classificationTable = [...]Classification{
	newClassification(Tier1, "Very Fair",
		"Always burns, never tans. Extremely sun-sensitive skin.",
		EligibilityExcellent,
		"Excellent candidate for CO2 laser resurfacing. Your skin type typically responds very well to ablative laser treatments with predictable healing.",
		"Higher sensitivity may require adjusted treatment parameters",
		"Excellent collagen response expected",
		"Follow strict sun protection protocol post-treatment",
	),
	newClassification(Tier2, "Fair",
		"Usually burns, tans minimally. Very sun-sensitive skin.",
		EligibilityExcellent,
		"Excellent candidate for CO2 laser resurfacing. Your skin type responds very well to treatment with low risk of complications.",
		"Optimal healing potential",
		"Low risk of post-inflammatory hyperpigmentation",
		"Standard treatment protocols apply",
	),
	newClassification(Tier3, "Medium",
		"Sometimes mild burn, tans uniformly. Moderately sun-sensitive.",
		EligibilityGood,
		"Good candidate for CO2 laser resurfacing. Your skin type generally responds well with proper treatment planning.",
		"Pre-treatment skin conditioning may be recommended",
		"Careful parameter selection for optimal results",
		"Monitor for pigmentation changes during healing",
	),
	newClassification(Tier4, "Olive",
		"Burns minimally, always tans well. Minimal sun sensitivity.",
		EligibilityModerate,
		"Moderate candidate for CO2 laser resurfacing. Treatment is possible but requires careful assessment and may need modified protocols.",
		"Higher risk of post-inflammatory hyperpigmentation",
		"Pre-treatment with skin lightening agents often recommended",
		"Conservative treatment settings typically used",
		"Extended consultation recommended",
	),
	newClassification(Tier5, "Brown",
		"Rarely burns, tans darkly easily. Sun-insensitive skin.",
		EligibilityLimited,
		"CO2 laser resurfacing carries significant risks for your skin type. We recommend exploring alternative treatments that can achieve similar results more safely.",
		"Significant risk of hyperpigmentation and scarring with CO2",
		"Alternative treatments like chemical peels or microneedling often preferred",
		"Specialised protocols available for darker skin types",
		"Comprehensive consultation essential to discuss all options",
	),
	newClassification(Tier6, "Dark Brown/Black",
		"Never burns, deeply pigmented. Sun-insensitive skin.",
		EligibilityNotRecommended,
		"CO2 laser resurfacing is not recommended for your skin type due to high complication risks. However, we have excellent alternative treatments that are safe and effective for your skin.",
		"Very high risk of hyperpigmentation, hypopigmentation, and scarring with CO2",
		"Safe and effective alternatives available",
		"Options include: gentle chemical peels, microneedling, or specialised darker skin protocols",
		"Our specialists can recommend the best approach for your goals",
	),
}

// LookupClassification returns the record for t. The returned value is a copy.
func LookupClassification(t Tier) (Classification, error) {
	if !t.Valid() {
		return Classification{}, fmt.Errorf("%w: %d", ErrTierOutOfRange, int(t))
	}
	c := classificationTable[t-1]
	c.Considerations = slices.Clone(c.Considerations)
	return c, nil
}

// Classifications lists every tier's record in ascending order.
func Classifications() []Classification {
	out := make([]Classification, 0, len(classificationTable))
	for t := Tier1; t <= Tier6; t++ {
		c, _ := LookupClassification(t)
		out = append(out, c)
	}
	return out
}

package domain

import (
	"regexp"
	"strings"
	"time"
)

// Contact form field names, as used in edits and validation errors.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldPhone     = "phone"
)

// AssessmentSource identifies this quiz as the origin of a lead.
const AssessmentSource = "Fitzpatrick Skin Type Quiz"

// LeadContact is the contact detail captured after the questions.
type LeadContact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Set updates a single field by name.
func (c *LeadContact) Set(field, value string) error {
	switch field {
	case FieldFirstName:
		c.FirstName = value
	case FieldLastName:
		c.LastName = value
	case FieldEmail:
		c.Email = value
	case FieldPhone:
		c.Phone = value
	default:
		return ErrUnknownField
	}
	return nil
}

// FieldErrors maps a contact field name to a user-facing message. Empty means valid.
type FieldErrors map[string]string

// Valid reports whether no field failed.
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateContact checks every rule and reports all failing fields at once.
func ValidateContact(c LeadContact) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(c.FirstName) == "" {
		errs[FieldFirstName] = "First name is required"
	}
	if strings.TrimSpace(c.Email) == "" || !emailPattern.MatchString(c.Email) {
		errs[FieldEmail] = "Valid email is required"
	}
	if strings.TrimSpace(c.Phone) == "" {
		errs[FieldPhone] = "Phone number is required"
	}
	return errs
}

// LeadTags are the lead-system tags applied by suitability.
type LeadTags struct {
	Suitable    string
	NotSuitable string
}

// DefaultLeadTags are used when configuration does not override them.
func DefaultLeadTags() LeadTags {
	return LeadTags{
		Suitable:    "CO2 Laser - Qualified",
		NotSuitable: "CO2 Laser - Not Suitable",
	}
}

// SubmissionPayload is the webhook body for one completed assessment.
type SubmissionPayload struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	FitzpatrickType  int    `json:"fitzpatrick_type"`
	FitzpatrickName  string `json:"fitzpatrick_name"`
	Suitability      string `json:"co2_laser_suitability"`
	Suitable         bool   `json:"co2_laser_suitable"`
	Tags             string `json:"tags"`
	AssessmentSource string `json:"assessment_source"`
	SubmittedAt      string `json:"submitted_at"`
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// BuildSubmissionPayload snapshots a lead and its classification at time now.
func BuildSubmissionPayload(contact LeadContact, c Classification, tags LeadTags, now time.Time) SubmissionPayload {
	tag := tags.NotSuitable
	if c.IsSuitable {
		tag = tags.Suitable
	}
	return SubmissionPayload{
		FirstName:        contact.FirstName,
		LastName:         contact.LastName,
		Email:            contact.Email,
		Phone:            contact.Phone,
		FitzpatrickType:  int(c.Tier),
		FitzpatrickName:  c.DisplayName(),
		Suitability:      c.Eligibility.Label(),
		Suitable:         c.IsSuitable,
		Tags:             tag,
		AssessmentSource: AssessmentSource,
		SubmittedAt:      now.UTC().Format(isoMillis),
	}
}

package domain

import "fmt"

// DefaultQuestionBankID names the built-in Fitzpatrick questionnaire.
const DefaultQuestionBankID = "fitzpatrick"

// Option is one answer to a question. Options are listed from lowest to highest score.
type Option struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Question is a single step of the assessment.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// QuestionBank is the ordered list of questions a session walks through.
type QuestionBank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Validate checks that the bank can drive a session.
func (b QuestionBank) Validate() error {
	if len(b.Questions) == 0 {
		return fmt.Errorf("%w: %q has no questions", ErrInvalidQuestionBank, b.ID)
	}
	seen := make(map[string]struct{}, len(b.Questions))
	for i, q := range b.Questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrInvalidQuestionBank, i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidQuestionBank, q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: question %q has no options", ErrInvalidQuestionBank, q.ID)
		}
		for _, opt := range q.Options {
			if opt.Score < 0 {
				return fmt.Errorf("%w: question %q has a negative score", ErrInvalidQuestionBank, q.ID)
			}
		}
	}
	return nil
}

// MaxScore is the highest total reachable by answering every question.
func (b QuestionBank) MaxScore() int {
	total := 0
	for _, q := range b.Questions {
		best := 0
		for _, opt := range q.Options {
			if opt.Score > best {
				best = opt.Score
			}
		}
		total += best
	}
	return total
}

// DefaultQuestionBank returns a fresh copy of the built-in questionnaire.
func DefaultQuestionBank() QuestionBank {
	return QuestionBank{
		ID: DefaultQuestionBankID,
		Questions: []Question{
			{
				ID:     "eye_color",
				Prompt: "What is your natural eye colour?",
				Options: []Option{
					{Label: "Light blue, light grey, or light green", Score: 0},
					{Label: "Blue, grey, or green", Score: 1},
					{Label: "Hazel or light brown", Score: 2},
					{Label: "Dark brown", Score: 3},
					{Label: "Brownish black", Score: 4},
				},
			},
			{
				ID:     "hair_color",
				Prompt: "What is your natural hair colour?",
				Options: []Option{
					{Label: "Red or light blonde", Score: 0},
					{Label: "Blonde", Score: 1},
					{Label: "Dark blonde or light brown", Score: 2},
					{Label: "Dark brown", Score: 3},
					{Label: "Black", Score: 4},
				},
			},
			{
				ID:     "skin_color",
				Prompt: "What is your natural skin colour (unexposed areas)?",
				Options: []Option{
					{Label: "Ivory white", Score: 0},
					{Label: "Fair or pale", Score: 1},
					{Label: "Fair to beige with golden undertone", Score: 2},
					{Label: "Olive or light brown", Score: 3},
					{Label: "Dark brown or black", Score: 4},
				},
			},
			{
				ID:     "freckles",
				Prompt: "How many freckles do you have on unexposed areas?",
				Options: []Option{
					{Label: "Many", Score: 0},
					{Label: "Several", Score: 1},
					{Label: "A few", Score: 2},
					{Label: "Very few", Score: 3},
					{Label: "None", Score: 4},
				},
			},
			{
				ID:     "sun_reaction",
				Prompt: "How does your skin react to sun exposure?",
				Options: []Option{
					{Label: "Always burns, blisters, and peels", Score: 0},
					{Label: "Often burns, blisters, and peels", Score: 1},
					{Label: "Burns moderately", Score: 2},
					{Label: "Burns rarely", Score: 3},
					{Label: "Rarely or never burns", Score: 4},
				},
			},
			{
				ID:     "tanning",
				Prompt: "Does your skin tan?",
				Options: []Option{
					{Label: "Never, I just burn and peel", Score: 0},
					{Label: "Seldom", Score: 1},
					{Label: "Sometimes", Score: 2},
					{Label: "Often", Score: 3},
					{Label: "Always, I never burn", Score: 4},
				},
			},
		},
	}
}

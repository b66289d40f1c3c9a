package consent

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category is a data category offered on the enrollment screen.
type Category struct {
	ID          string
	Title       string
	Description string
	Required    bool
}

var catalog = []Category{
	{
		ID:          "demographic",
		Title:       "Demographic Data",
		Description: "Share basic demographic information like age, gender, and ethnicity for research categorization.",
		Required:    true,
	},
	{
		ID:          "medical_history",
		Title:       "Medical History",
		Description: "Share relevant medical history information for better contextual understanding of research findings.",
		Required:    true,
	},
	{
		ID:          "treatment_outcomes",
		Title:       "Treatment Outcomes",
		Description: "Share data about how treatments affected your condition to improve future treatments.",
	},
	{
		ID:          "genetic",
		Title:       "Genetic Information",
		Description: "Share de-identified genetic data for research on genetic factors in disease and treatment.",
	},
	{
		ID:          "future_research",
		Title:       "Future Research",
		Description: "Allow your de-identified data to be used in future clinical research studies.",
	},
}

// Categories returns the catalogue in display order.
func Categories() []Category {
	return append([]Category(nil), catalog...)
}

// LookupCategory finds a catalogue entry by id.
func LookupCategory(id string) (Category, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// DisplayName turns a data type key into a label: the catalogue title when
// known, otherwise the key with underscores as spaces and words capitalised.
func DisplayName(dataType string) string {
	if c, ok := LookupCategory(dataType); ok {
		return c.Title
	}
	words := strings.Fields(strings.ReplaceAll(dataType, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

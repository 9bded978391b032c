package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
)

// Variant selects one of the fixed evaluation templates.
type Variant int

const (
	Summary Variant = iota + 1
	Suggestions
	PercentageMatch
	JobDescription
)

// ErrUnknownVariant is returned when a selector does not name a known variant.
var ErrUnknownVariant = errors.New("unknown prompt variant")

var (
	//go:embed prompts/summary.md
	summaryTemplate string
	//go:embed prompts/suggestions.md
	suggestionsTemplate string
	//go:embed prompts/percentage_match.md
	percentageMatchTemplate string
	//go:embed prompts/job_description.md
	jobDescriptionTemplate string
)

type definition struct {
	name     string
	label    string
	template string
}

var definitions = map[Variant]definition{
	Summary:         {name: "summary", label: "Summary Resume", template: summaryTemplate},
	Suggestions:     {name: "suggestions", label: "Suggestions", template: suggestionsTemplate},
	PercentageMatch: {name: "percentage-match", label: "Percentage Match and Missing Keywords", template: percentageMatchTemplate},
	JobDescription:  {name: "job-description", label: "PDF to JD", template: jobDescriptionTemplate},
}

// Variants returns every variant in selector order.
func Variants() []Variant {
	return []Variant{Summary, Suggestions, PercentageMatch, JobDescription}
}

// ParseVariant accepts either the numeric key ("1".."4") or the variant name.
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range Variants() {
		if s == v.Key() || s == v.String() {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Valid reports whether v is one of the declared variants.
func (v Variant) Valid() bool {
	_, ok := definitions[v]
	return ok
}

// Key is the numeric selector used by the web form.
func (v Variant) Key() string {
	return fmt.Sprintf("%d", int(v))
}

func (v Variant) String() string {
	if d, ok := definitions[v]; ok {
		return d.name
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// Label is the human-facing action name.
func (v Variant) Label() string {
	return definitions[v].label
}

// Template returns the instruction text sent to the model for v.
func (v Variant) Template() (string, error) {
	d, ok := definitions[v]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	return d.template, nil
}

// ProducesDocument reports whether the variant output is meant to be exported as a PDF.
func (v Variant) ProducesDocument() bool {
	return v == JobDescription
}

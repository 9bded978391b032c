// Package screening runs a batch of resumes against a job description through the model.
package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sairaj-wayal-20/ATS-sys/internal/ai"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/prompt"
)

// UnknownName is shown when the first page of a resume has no text.
const UnknownName = "Unknown"

// NoResumesMessage is shown to the user when a batch has no files.
const NoResumesMessage = "Please upload the resumes"

// ErrNoResumes is returned for a batch without files.
var ErrNoResumes = errors.New("no resumes uploaded")

// Submission is one uploaded resume.
type Submission struct {
	FileName string
	Data     []byte
}

// Batch is the input of a single evaluation run.
type Batch struct {
	JobDescription string
	Variant        prompt.Variant
	Resumes        []Submission
}

// Preprocessed is a resume ready to be sent to the model.
type Preprocessed struct {
	Image    ai.Image
	Name     string
	FileName string
}

// Result is the outcome for one submission. Exactly one of Response and Error is set.
type Result struct {
	Name     string `json:"name,omitempty"`
	FileName string `json:"file_name"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (r Result) Failed() bool {
	return r.Error != ""
}

// ErrorMessage formats a failed result for display.
func (r Result) ErrorMessage() string {
	return fmt.Sprintf("Error processing file %s: %s", r.FileName, r.Error)
}

// Title is the heading shown above a successful response.
func (r Result) Title() string {
	return fmt.Sprintf("Response for %s (%s)", r.Name, r.FileName)
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Failed() {
			s.Failed++
			continue
		}
		s.Succeeded++
	}
	return s
}

// Runner is the pipeline as seen by the presentation shells.
type Runner interface {
	Run(ctx context.Context, batch Batch) ([]Result, error)
}

// DisplayName returns the first non-empty line of text, trimmed, or UnknownName.
func DisplayName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			return name
		}
	}
	return UnknownName
}

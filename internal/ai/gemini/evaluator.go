package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Sairaj-wayal-20/ATS-sys/internal/ai"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type partsGenerator interface {
	GenerateContent(ctx context.Context, parts ...*genai.Part) (string, error)
}

// Evaluator submits a resume image with the job description and prompt to Gemini.
type Evaluator struct {
	generator partsGenerator
	logger    *zap.Logger
	maxLogLen int
}

const defaultMaxLogLength = 200

func NewEvaluator(generator partsGenerator, logger *zap.Logger, maxLogLength int) *Evaluator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Evaluator{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

var _ ai.Evaluator = (*Evaluator)(nil)

// Evaluate sends the parts in the order job description, image, prompt.
// An empty job description is left out of the request.
func (e *Evaluator) Evaluate(ctx context.Context, jobDescription string, image ai.Image, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	raw, err := image.Bytes()
	if err != nil {
		return "", fmt.Errorf("prepare resume image: %w", err)
	}

	parts := buildParts(jobDescription, raw, image.MIMEType, prompt)

	e.logger.Debug("gemini generate content request",
		zap.Int("parts", len(parts)),
		zap.Int("image_bytes", len(raw)),
		zap.Int("job_description_length", utf8.RuneCountInString(jobDescription)),
		zap.String("job_description_preview", utils.TruncateForLog(jobDescription, e.maxLogLen)),
	)

	response, err := e.generator.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}

	e.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(response)),
		zap.String("response_preview", utils.TruncateForLog(response, e.maxLogLen)),
	)

	return response, nil
}

func buildParts(jobDescription string, image []byte, mimeType, prompt string) []*genai.Part {
	parts := make([]*genai.Part, 0, 3)
	if strings.TrimSpace(jobDescription) != "" {
		parts = append(parts, genai.NewPartFromText(jobDescription))
	}
	parts = append(parts, genai.NewPartFromBytes(image, mimeType))
	parts = append(parts, genai.NewPartFromText(prompt))
	return parts
}

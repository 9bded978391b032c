package screening

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sairaj-wayal-20/ATS-sys/internal/ai"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/document"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/logger"
)

// Renderer turns the first page of a PDF into JPEG bytes.
type Renderer interface {
	Ready() error
	RenderFirstPage(ctx context.Context, data []byte) ([]byte, error)
}

// TextSource extracts the text of the first page of a PDF.
type TextSource interface {
	FirstPage(data []byte) (string, error)
}

// Pipeline evaluates resumes one at a time, in input order.
type Pipeline struct {
	renderer  Renderer
	text      TextSource
	evaluator ai.Evaluator
	logger    *zap.Logger

	pageCount func([]byte) (int, error)
}

var _ Runner = (*Pipeline)(nil)

func New(renderer Renderer, text TextSource, evaluator ai.Evaluator, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}

	return &Pipeline{
		renderer:  renderer,
		text:      text,
		evaluator: evaluator,
		logger:    log,
		pageCount: document.PageCount,
	}
}

// Run returns one result per resume. A failing file is reported in its result and the batch
// continues. An unusable renderer fails the whole batch and no results are returned.
func (p *Pipeline) Run(ctx context.Context, batch Batch) ([]Result, error) {
	template, err := batch.Variant.Template()
	if err != nil {
		return nil, err
	}

	if len(batch.Resumes) == 0 {
		return nil, ErrNoResumes
	}

	if err := p.renderer.Ready(); err != nil {
		return nil, err
	}

	log := p.logger.With(
		zap.String(logger.FieldBatch, uuid.NewString()),
		zap.String("variant", batch.Variant.String()),
	)
	log.Info("batch started", zap.Int("resumes", len(batch.Resumes)))

	results := make([]Result, 0, len(batch.Resumes))
	for _, submission := range batch.Resumes {
		if err := ctx.Err(); err != nil {
			log.Warn("batch interrupted", zap.Int("processed", len(results)), zap.Error(err))
			return nil, err
		}

		result, err := p.evaluate(ctx, log, batch.JobDescription, template, submission)
		if err != nil {
			log.Error("batch aborted", zap.Error(err))
			return nil, err
		}
		results = append(results, result)
	}

	summary := Summarize(results)
	log.Info("batch finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)

	return results, nil
}

// evaluate returns an error only when the batch cannot continue.
func (p *Pipeline) evaluate(ctx context.Context, log *zap.Logger, jobDescription, template string, submission Submission) (Result, error) {
	fileLog := logger.WithFields(log, logger.FileFields(submission.FileName, "")...)

	resume, err := p.Preprocess(ctx, submission)
	if err != nil {
		if errors.Is(err, document.ErrBackendUnavailable) {
			return Result{}, err
		}
		fileLog.Warn("resume preprocessing failed", zap.Error(err))
		return Result{FileName: submission.FileName, Error: err.Error()}, nil
	}

	fileLog = logger.WithFields(log, logger.FileFields(resume.FileName, resume.Name)...)

	response, err := p.evaluator.Evaluate(ctx, jobDescription, resume.Image, template)
	if err != nil {
		fileLog.Warn("resume evaluation failed", zap.Error(err))
		return Result{FileName: submission.FileName, Error: err.Error()}, nil
	}

	fileLog.Info("resume evaluated")

	return Result{
		Name:     resume.Name,
		FileName: resume.FileName,
		Response: response,
	}, nil
}

// Preprocess validates the PDF, renders its first page and extracts the display name.
// Image and name always come from the same bytes.
func (p *Pipeline) Preprocess(ctx context.Context, submission Submission) (Preprocessed, error) {
	if _, err := p.pageCount(submission.Data); err != nil {
		return Preprocessed{}, fmt.Errorf("invalid pdf: %w", err)
	}

	image, err := p.renderer.RenderFirstPage(ctx, submission.Data)
	if err != nil {
		return Preprocessed{}, fmt.Errorf("render first page: %w", err)
	}

	text, err := p.text.FirstPage(submission.Data)
	if err != nil {
		return Preprocessed{}, fmt.Errorf("extract text: %w", err)
	}

	return Preprocessed{
		Image:    ai.NewJPEG(image),
		Name:     DisplayName(text),
		FileName: submission.FileName,
	}, nil
}

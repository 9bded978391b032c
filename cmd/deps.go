package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Sairaj-wayal-20/ATS-sys/internal/ai"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/ai/gemini"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/document"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/logger"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/screening"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/secrets"
)

const (
	providerGemini = "gemini"
	apiKeyEnv      = "GOOGLE_API_KEY"
)

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	return logger.New(logger.Options{
		JSON:  v.GetBool("json"),
		Debug: v.GetBool("debug"),
	})
}

// newPipeline builds the model client once and hands it to the screening pipeline.
func newPipeline(ctx context.Context, config *Config, log *zap.Logger) (*screening.Pipeline, error) {
	evaluator, err := newEvaluator(ctx, config.AI, log)
	if err != nil {
		return nil, err
	}

	rasterizer := document.NewRasterizer(config.Renderer)
	if err := rasterizer.Ready(); err != nil {
		// Not fatal here: every batch reports it until the binary is installed.
		log.Warn("pdf renderer is not ready", zap.Error(err),
			zap.String("hint", "install poppler-utils or set renderer.pdftoppm-path"),
		)
	}

	return screening.New(rasterizer, document.NewTextExtractor(), evaluator, log), nil
}

func newEvaluator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Evaluator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != providerGemini {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	geminiCfg := cfg.Gemini

	var apiKey string
	if !strings.EqualFold(strings.TrimSpace(geminiCfg.Backend), gemini.BackendVertexAI) {
		key, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: geminiCfg.APIKeyFile,
			Env:  apiKeyEnv,
		})
		if err != nil {
			return nil, fmt.Errorf("%w, or point ai.gemini.api-key-file at a key file", err)
		}
		apiKey = key
	}

	genLogger := logger.WithFields(log, logger.CommonFields(providerGemini, geminiCfg.Model)...).With(
		zap.Int("ai_retry_attempts", geminiCfg.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:     apiKey,
		Model:      geminiCfg.Model,
		Backend:    geminiCfg.Backend,
		Project:    geminiCfg.Project,
		Location:   geminiCfg.Location,
		MaxRetries: geminiCfg.MaxRetries,
		Timeout:    geminiCfg.Timeout,
	}, genLogger)
	if err != nil {
		return nil, err
	}

	evaluatorLogger := logger.WithFields(log, logger.CommonFields(providerGemini, generator.Model())...)

	return gemini.NewEvaluator(generator, evaluatorLogger, geminiCfg.MaxLogLength), nil
}

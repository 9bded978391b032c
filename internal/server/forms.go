package server

import (
	"fmt"
	"net/url"

	"github.com/mitchellh/mapstructure"
)

type evaluationForm struct {
	JobDescription string `mapstructure:"input_text"`
	PromptType     string `mapstructure:"prompt_type"`
}

type downloadForm struct {
	ResponseText string `mapstructure:"response_text"`
	Name         string `mapstructure:"name"`
}

// decodeForm copies the first value of every form field into out.
func decodeForm(values url.Values, out any) error {
	flat := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			flat[key] = vals[0]
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("create form decoder: %w", err)
	}

	if err := decoder.Decode(flat); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}

	return nil
}

package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

const MIMETypeJPEG = "image/jpeg"

// Image is a model-ready inline image. Data holds the base64 encoding of the raw bytes.
type Image struct {
	MIMEType string
	Data     string
}

// NewJPEG packages raw JPEG bytes.
func NewJPEG(raw []byte) Image {
	return Image{
		MIMEType: MIMETypeJPEG,
		Data:     base64.StdEncoding.EncodeToString(raw),
	}
}

// Bytes decodes the payload back to raw bytes.
func (i Image) Bytes() ([]byte, error) {
	if i.MIMEType == "" {
		return nil, errors.New("image mime type is required")
	}
	if i.Data == "" {
		return nil, errors.New("image payload is empty")
	}
	raw, err := base64.StdEncoding.DecodeString(i.Data)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return raw, nil
}

type Evaluator interface {
	Evaluate(ctx context.Context, jobDescription string, image Image, prompt string) (string, error)
}

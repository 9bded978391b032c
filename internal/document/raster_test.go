package document

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"os/exec"
	"testing"
)

func stubLookPath(t *testing.T, fn func(string) (string, error)) {
	t.Helper()
	original := lookPath
	lookPath = fn
	t.Cleanup(func() { lookPath = original })
}

func TestNewRasterizerDefaults(t *testing.T) {
	r := NewRasterizer(RasterizerConfig{JPEGQuality: 140})
	if r.binary != "pdftoppm" || r.dpi != 150 || r.quality != 90 {
		t.Fatalf("unexpected defaults: %+v", r)
	}

	r = NewRasterizer(RasterizerConfig{Binary: " /opt/poppler/bin/pdftoppm ", DPI: 72, JPEGQuality: 60})
	if r.binary != "/opt/poppler/bin/pdftoppm" || r.dpi != 72 || r.quality != 60 {
		t.Fatalf("unexpected config: %+v", r)
	}
}

func TestRasterizerMissingBinary(t *testing.T) {
	stubLookPath(t, func(file string) (string, error) {
		return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
	})

	r := NewRasterizer(RasterizerConfig{})

	if err := r.Ready(); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}

	_, err := r.RenderFirstPage(context.Background(), []byte("%PDF-1.4"))
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestRasterizerEmptyInput(t *testing.T) {
	r := NewRasterizer(RasterizerConfig{})
	if _, err := r.RenderFirstPage(context.Background(), nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestRasterizerRendersFirstPage(t *testing.T) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		t.Skip("pdftoppm is not installed")
	}

	data := buildPDF(t,
		[]placedText{{x: 40, y: 60, text: "Jane Doe"}},
		[]placedText{{x: 40, y: 60, text: "ignored"}},
	)

	r := NewRasterizer(RasterizerConfig{DPI: 72})
	out, err := r.RenderFirstPage(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	// Letter at 72 dpi.
	if cfg.Width != 612 || cfg.Height != 792 {
		t.Fatalf("unexpected image size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRasterizerRejectsGarbage(t *testing.T) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		t.Skip("pdftoppm is not installed")
	}

	r := NewRasterizer(RasterizerConfig{})
	_, err := r.RenderFirstPage(context.Background(), []byte("not a pdf"))
	if err == nil {
		t.Fatal("expected render error")
	}
	if errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("garbage input must not look like a missing backend: %v", err)
	}
}

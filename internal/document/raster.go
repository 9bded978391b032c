package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultRendererBinary = "pdftoppm"
	defaultDPI            = 150
	defaultJPEGQuality    = 90
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// RasterizerConfig selects the poppler binary and output quality.
type RasterizerConfig struct {
	Binary      string `mapstructure:"pdftoppm-path"`
	DPI         int    `mapstructure:"dpi"`
	JPEGQuality int    `mapstructure:"jpeg-quality"`
}

// Rasterizer renders the first page of a PDF to JPEG by running pdftoppm.
type Rasterizer struct {
	binary  string
	dpi     int
	quality int
}

func NewRasterizer(cfg RasterizerConfig) *Rasterizer {
	r := &Rasterizer{
		binary:  strings.TrimSpace(cfg.Binary),
		dpi:     cfg.DPI,
		quality: cfg.JPEGQuality,
	}
	if r.binary == "" {
		r.binary = defaultRendererBinary
	}
	if r.dpi <= 0 {
		r.dpi = defaultDPI
	}
	if r.quality <= 0 || r.quality > 100 {
		r.quality = defaultJPEGQuality
	}
	return r
}

// Ready reports ErrBackendUnavailable when the renderer binary cannot be found.
func (r *Rasterizer) Ready() error {
	_, err := r.resolve()
	return err
}

func (r *Rasterizer) resolve() (string, error) {
	path, err := lookPath(r.binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, r.binary, err)
	}
	return path, nil
}

// RenderFirstPage returns page one of data encoded as JPEG.
func (r *Rasterizer) RenderFirstPage(ctx context.Context, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	binary, err := r.resolve()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "ats-render-")
	if err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return nil, fmt.Errorf("write render input: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	args := []string{
		"-f", "1", "-l", "1",
		"-singlefile",
		"-jpeg", "-jpegopt", "quality=" + strconv.Itoa(r.quality),
		"-r", strconv.Itoa(r.dpi),
		input, prefix,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil, fmt.Errorf("render first page: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	out, err := os.ReadFile(prefix + ".jpg")
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}

	if _, err := jpeg.DecodeConfig(bytes.NewReader(out)); err != nil {
		return nil, fmt.Errorf("rendered page is not a jpeg: %w", err)
	}

	return out, nil
}

package document

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// PageCount parses data with relaxed validation and returns the number of pages.
// Documents without pages are rejected with ErrNoPages.
func PageCount(data []byte) (count int, err error) {
	if len(data) == 0 {
		return 0, ErrEmpty
	}

	disableConfigDir.Do(api.DisableConfigDir)
	defer recoverParse("count pages", &err)

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	count, err = api.PageCount(bytes.NewReader(data), cfg)
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	if count < 1 {
		return 0, ErrNoPages
	}

	return count, nil
}

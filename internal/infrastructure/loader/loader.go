// Package loader extracts raw text from uploaded artifacts. The format
// is inferred from the file extension; the result must clear the
// minimum text length before the pipeline accepts it.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/docdigest/docdigest/internal/core/domain"
)

type Loader struct {
	maxBytes int64
	minChars int
}

func New(maxUploadMB, minChars int) *Loader {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	if minChars <= 0 {
		minChars = domain.MinTextChars
	}
	return &Loader{
		maxBytes: int64(maxUploadMB) << 20,
		minChars: minChars,
	}
}

func (l *Loader) Load(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "load document",
			fmt.Errorf("file exceeds %d MB limit", l.maxBytes>>20))
	}
	if len(data) == 0 {
		return "", domain.WrapError(domain.ErrEmptyDocument, "load document",
			errors.New("upload is empty"))
	}

	var text string
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".txt", ".text", "":
		text, err = extractPlainText(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".xlsx":
		text, err = extractXLSX(data)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "load document",
			fmt.Errorf("unknown extension %q", ext))
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if len([]rune(text)) < l.minChars {
		return "", domain.WrapError(domain.ErrEmptyDocument, "load document",
			fmt.Errorf("extracted %d chars, need at least %d", len([]rune(text)), l.minChars))
	}
	return text, nil
}

package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/docdigest/docdigest/internal/core/domain"
)

// extractDOCX pulls paragraph text out of the WordprocessingML part of
// the archive. Runs inside a paragraph concatenate; paragraphs join
// with a space.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse docx", err)
	}

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse docx",
			errors.New("word/document.xml missing"))
	}

	rc, err := document.Open()
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse docx", err)
	}
	defer rc.Close()

	return collectParagraphText(rc)
}

func collectParagraphText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	inRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse docx", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
			}
		case xml.CharData:
			if inRun {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

package loader

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docdigest/docdigest/internal/core/domain"
)

func extractXLSX(data []byte) (string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse xlsx", err)
	}
	defer file.Close()

	var b strings.Builder
	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse xlsx", err)
		}
		for _, row := range rows {
			for _, cell := range row {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(cell)
			}
		}
	}
	return b.String(), nil
}

package loader

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/docdigest/docdigest/internal/core/domain"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// extractPlainText sniffs the encoding: BOM first, then valid UTF-8,
// then GB18030 as the legacy fallback for Chinese uploads.
func extractPlainText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), data)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder(), data)
	case utf8.Valid(data):
		return string(data), nil
	default:
		return decodeWith(simplifiedchinese.GB18030.NewDecoder(), data)
	}
}

func decodeWith(decoder *encoding.Decoder, data []byte) (string, error) {
	decoded, err := decoder.Bytes(data)
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "decode text", err)
	}
	return string(decoded), nil
}

package encoding

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// sniffWindow bounds the bytes handed to chardet.
const sniffWindow = 4096

// StripBOM removes a leading byte order mark. UTF-8 BOMs are dropped;
// UTF-16 LE/BE content is transcoded to UTF-8. The boolean reports whether a
// BOM was found, in which case the result is known to be UTF-8.
func StripBOM(raw []byte) ([]byte, bool, error) {
	if bytes.HasPrefix(raw, bomUTF8) {
		return raw[len(bomUTF8):], true, nil
	}

	var endian unicode.Endianness

	switch {
	case bytes.HasPrefix(raw, bomUTF16LE):
		endian = unicode.LittleEndian
	case bytes.HasPrefix(raw, bomUTF16BE):
		endian = unicode.BigEndian
	default:
		return raw, false, nil
	}

	out, err := unicode.UTF16(endian, unicode.UseBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode utf-16: %w", err)
	}

	return out, true, nil
}

// Sniff returns chardet's best guess for the charset of raw. Valid UTF-8
// short-circuits to "UTF-8". It is used for diagnostics only; decoding always
// follows the fixed candidate order.
func Sniff(raw []byte) string {
	buf := raw
	if len(buf) > sniffWindow {
		buf = buf[:sniffWindow]

		// Drop a multi-byte character cut by the window.
		for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
			if utf8.RuneStart(buf[i]) {
				if !utf8.FullRune(buf[i:]) {
					buf = buf[:i]
				}

				break
			}
		}
	}

	if utf8.Valid(buf) {
		return "UTF-8"
	}

	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err != nil {
		return "unknown"
	}

	return result.Charset
}

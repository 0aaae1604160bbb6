package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

type Encoding string

const (
	UTF8      Encoding = "utf-8"
	Latin1    Encoding = "latin1"
	CP1252    Encoding = "cp1252"
	ISO8859_1 Encoding = "iso-8859-1"
)

// Candidates is the order in which CSV text encodings are tried.
var Candidates = []Encoding{UTF8, Latin1, CP1252, ISO8859_1}

var ErrInvalidUTF8 = errors.New("invalid utf-8")

// Decode converts raw bytes in the given encoding to a UTF-8 string.
// UTF-8 decoding is strict: any invalid byte sequence is an error.
func Decode(raw []byte, enc Encoding) (string, error) {
	switch enc {
	case UTF8:
		if !utf8.Valid(raw) {
			return "", ErrInvalidUTF8
		}

		return string(raw), nil
	case Latin1, ISO8859_1:
		return decodeCharmap(raw, charmap.ISO8859_1)
	case CP1252:
		return decodeCharmap(raw, charmap.Windows1252)
	}

	return "", fmt.Errorf("unknown encoding %q", enc)
}

func decodeCharmap(raw []byte, cm *charmap.Charmap) (string, error) {
	out, err := cm.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", cm, err)
	}

	return string(out), nil
}

// DecodeLossy decodes raw as UTF-8, replacing invalid bytes with U+FFFD.
func DecodeLossy(raw []byte) string {
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

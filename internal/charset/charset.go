// Package charset normalizes the text encoding of input files.
package charset

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ToUTF8 returns data as UTF-8. A UTF-8 byte order mark is dropped. Input
// that is not valid UTF-8 is decoded as Latin-1 (ISO 8859-1), the encoding
// most legacy survey exports use.
func ToUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}

// IsLatin1 reports whether ToUTF8 would decode data as Latin-1.
func IsLatin1(data []byte) bool {
	return !utf8.Valid(bytes.TrimPrefix(data, utf8BOM))
}

package parser

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported by DetectAndDecode.
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-bom"
	EncodingUTF16LE = "utf-16le"
	EncodingUTF16BE = "utf-16be"
	EncodingLatin1  = "latin-1"
)

// BOM constants
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode detects the encoding of the input data, strips any BOM,
// and returns the decoded UTF-8 bytes along with the detected encoding name.
// HR and directory exports arrive from spreadsheet tools in all of these.
func DetectAndDecode(data []byte) ([]byte, string, error) {
	switch {
	case len(data) == 0:
		return data, EncodingUTF8, nil
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], EncodingUTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), data, EncodingUTF16LE)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder(), data, EncodingUTF16BE)
	case utf8.Valid(data):
		return data, EncodingUTF8, nil
	}

	// Not UTF-8 and no BOM: Latin-1 maps every byte to a code point, so it
	// never fails.
	return decodeWith(charmap.ISO8859_1.NewDecoder(), data, EncodingLatin1)
}

func decodeWith(dec *encoding.Decoder, data []byte, name string) ([]byte, string, error) {
	out, err := dec.Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s decode failed: %w", name, err)
	}
	return out, name, nil
}

package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ErrEmptyFile is returned when a catalog has no rows.
var ErrEmptyFile = errors.New("empty file")

// ErrInvalidCSV wraps csv parse failures.
var ErrInvalidCSV = errors.New("invalid csv")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encoding names reported by DecodeText.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// DecodeText converts catalog bytes to UTF-8. A UTF-8 BOM is stripped. Input
// that is not valid UTF-8 is decoded as Shift-JIS, the usual encoding of
// Japanese catalogs; remaining invalid sequences become U+FFFD.
func DecodeText(data []byte) ([]byte, string) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, EncodingUTF8
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err == nil {
		return sanitizeUTF8(decoded), EncodingShiftJIS
	}
	return sanitizeUTF8(data), EncodingUTF8
}

// DecodeCSV decodes and tokenizes a catalog into a grid. Rows shorter than
// the first row are padded with empty cells; longer rows are kept as is.
func DecodeCSV(data []byte) ([][]string, error) {
	grid, _, err := decodeCatalog(data)
	return grid, err
}

// decodeCatalog is DecodeCSV that also reports the encoding DecodeText chose.
func decodeCatalog(data []byte) ([][]string, string, error) {
	text, encoding := DecodeText(data)
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, encoding, ErrEmptyFile
	}

	records, err := parseCSV(text)
	if err != nil {
		return nil, encoding, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
	}
	if len(records) == 0 {
		return nil, encoding, ErrEmptyFile
	}

	width := len(records[0])
	for i, row := range records {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			records[i] = padded
		}
	}
	return records, encoding, nil
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	return bytes.ToValidUTF8(data, []byte("\uFFFD"))
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if CleanCell(v) != "" {
			return false
		}
	}
	return true
}

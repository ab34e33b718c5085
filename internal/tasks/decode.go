package tasks

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/desertthunder/founders/internal/shared"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Table is a decoded upload: a lowercased header and its data rows in file order.
type Table struct {
	Header []string
	Rows   []Row
	// Encoding names the text encoding or container the table was read from.
	Encoding string
}

// DecodeTable turns uploaded bytes into a [Table].
//
// XLSX workbooks (and other zip containers, which must then be workbooks) are read from their first sheet.
// Content recognized as some other binary format (images, PDFs, archives) is rejected. Everything else is
// read as delimited text: UTF-8 (BOM optional), UTF-16 with a BOM, or Windows-1252 as the fallback for invalid UTF-8.
// Returns a [*DecodeError] for unreadable content and a [*SchemaError] when there is no header.
func DecodeTable(data []byte) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &SchemaError{Err: ErrNoHeader}
	}

	mime := mimetype.Detect(data)
	if isA(mime, xlsxMIME) || isA(mime, "application/zip") {
		return decodeWorkbook(data)
	}
	if !hasUTF16BOM(data) && !textual(mime) {
		return nil, &DecodeError{Reason: fmt.Sprintf("content type %s", mime.String()), Err: shared.ErrUnsupportedType}
	}

	text, encoding, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	records, lines, err := readDelimited(text)
	if err != nil {
		return nil, err
	}

	table, err := newTable(records, lines)
	if err != nil {
		return nil, err
	}
	table.Encoding = encoding
	return table, nil
}

// isA reports whether mime is want or descends from it.
func isA(mime *mimetype.MIME, want string) bool {
	for m := mime; m != nil; m = m.Parent() {
		if m.Is(want) {
			return true
		}
	}
	return false
}

// textual reports whether mime may hold delimited text. Detection falls back to
// application/octet-stream for text carrying stray control bytes (a NUL, a DOS EOF marker),
// so only formats positively recognized as something else are refused.
func textual(mime *mimetype.MIME) bool {
	return isA(mime, "text/plain") || mime.Is("application/octet-stream")
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

// decodeText returns data as a UTF-8 string without a BOM, a trailing DOS EOF marker, or NUL characters.
func decodeText(data []byte) (string, string, error) {
	if hasUTF16BOM(data) || utf8.Valid(data) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", "", &DecodeError{Reason: "invalid unicode text", Err: err}
		}
		encoding := "utf-8"
		if hasUTF16BOM(data) {
			encoding = "utf-16"
		}
		return clean(string(out)), encoding, nil
	}

	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", "", &DecodeError{Reason: "text is neither utf-8 nor windows-1252", Err: err}
	}
	return clean(string(out)), "windows-1252", nil
}

func clean(text string) string {
	text = strings.TrimRight(text, "\x1a")
	return strings.ReplaceAll(text, "\x00", "")
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the first line, ignoring quoted text.
func sniffDelimiter(text string) rune {
	line, _, _ := strings.Cut(text, "\n")

	counts := map[rune]int{}
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case !quoted && (r == ',' || r == ';' || r == '\t'):
			counts[r]++
		}
	}

	best := ','
	for _, r := range []rune{';', '\t'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}

// readDelimited returns the records along with the physical line each one starts on.
// Quoted cells may span lines and blank lines are skipped, so record index and line differ.
func readDelimited(text string) ([][]string, []int, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, &DecodeError{Reason: "malformed delimited text", Err: err}
		}
		line, _ := r.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return records, lines, nil
}

func decodeWorkbook(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: "unreadable workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &SchemaError{Err: ErrNoHeader}
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("unreadable sheet %q", sheets[0]), Err: err}
	}

	table, err := newTable(records, nil)
	if err != nil {
		return nil, err
	}
	table.Encoding = "xlsx"
	return table, nil
}

// newTable builds rows from raw records. The first record is the header.
// lines holds each record's physical line; when nil, record i sits on row i+1, as in a sheet.
// Records whose cells are all blank are dropped but the rows after them keep their numbers.
func newTable(records [][]string, lines []int) (*Table, error) {
	if len(records) == 0 || blank(records[0]) {
		return nil, &SchemaError{Err: ErrNoHeader}
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = normalizeHeader(h)
	}

	table := &Table{Header: header, Rows: make([]Row, 0, len(records)-1)}
	for i, record := range records {
		if i == 0 || blank(record) {
			continue
		}
		number := i + 1
		if lines != nil {
			number = lines[i]
		}
		table.Rows = append(table.Rows, newRow(number, header, record))
	}
	return table, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

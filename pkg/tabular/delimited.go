package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sdejongh/tabsnap/pkg/ratelimit"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DelimitedReader reads delimited text such as CSV or TSV.
// Rows may have different field counts; quotes are parsed leniently.
type DelimitedReader struct {
	// Comma is the field delimiter (',' when zero)
	Comma rune

	// Encoding names the text encoding (UTF-8 when empty).
	// UTF-8 input must be valid; invalid bytes make the file unreadable.
	Encoding string

	// SkipRows drops this many physical lines before parsing
	SkipRows int

	// Limiter throttles file reads (unlimited when nil)
	Limiter *ratelimit.Limiter
}

// NewCSVReader returns the default reader for .csv files
func NewCSVReader() *DelimitedReader {
	return &DelimitedReader{Comma: ','}
}

// Name returns a short description of the reader settings
func (r *DelimitedReader) Name() string {
	name := fmt.Sprintf("delimited(%q", r.comma())
	if r.Encoding != "" {
		name += ", " + r.Encoding
	}
	if r.SkipRows > 0 {
		name += fmt.Sprintf(", skip %d", r.SkipRows)
	}
	return name + ")"
}

// SetLimiter throttles subsequent reads with l
func (r *DelimitedReader) SetLimiter(l *ratelimit.Limiter) {
	r.Limiter = l
}

// Validate checks the delimiter and encoding
func (r *DelimitedReader) Validate() error {
	c := r.comma()
	if c == '\r' || c == '\n' || c == '"' || c == utf8.RuneError {
		return fmt.Errorf("invalid delimiter %q", c)
	}
	if r.SkipRows < 0 {
		return fmt.Errorf("skip rows must not be negative")
	}
	if r.isUTF8() {
		return nil
	}
	_, err := lookupEncoding(r.Encoding)
	return err
}

// Read parses the whole file into rows
func (r *DelimitedReader) Read(ctx context.Context, path string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	data, err := readFile(ctx, path, r.Limiter)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Table{}, ctxErr
		}
		return Table{}, &UnreadableFileError{Path: path, Err: err}
	}

	text, err := r.decode(data)
	if err != nil {
		return Table{}, &UnreadableFileError{Path: path, Err: err}
	}

	text = skipLines(text, r.SkipRows)

	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = r.comma()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return Table{}, &UnreadableFileError{Path: path, Err: err}
	}

	return Table{Rows: rows, Mode: WidthDelimited}, nil
}

func (r *DelimitedReader) comma() rune {
	if r.Comma == 0 {
		return ','
	}
	return r.Comma
}

func (r *DelimitedReader) isUTF8() bool {
	switch strings.ToLower(r.Encoding) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

func (r *DelimitedReader) decode(data []byte) ([]byte, error) {
	if r.isUTF8() {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return nil, errors.New("invalid UTF-8 text")
		}
		return data, nil
	}

	enc, err := lookupEncoding(r.Encoding)
	if err != nil {
		return nil, err
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Encoding, err)
	}
	return decoded, nil
}

// lookupEncoding resolves an encoding name. Plain "utf-16" honours a byte
// order mark and assumes little endian without one.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// skipLines drops the first n lines of text
func skipLines(text []byte, n int) []byte {
	for ; n > 0 && len(text) > 0; n-- {
		i := bytes.IndexByte(text, '\n')
		if i < 0 {
			return nil
		}
		text = text[i+1:]
	}
	return text
}

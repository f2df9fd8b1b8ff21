// Package csvimport reads and validates spreadsheet uploads row by row.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	defaultMaxRows = 5000
	sniffSize      = 4096
)

// Reader yields header-keyed rows from a CSV stream
type Reader struct {
	csv     *csv.Reader
	headers []string
	index   map[string]int
	rows    int
	maxRows int
}

// Option configures a Reader
type Option func(*readerConfig)

type readerConfig struct {
	delimiter rune
	maxRows   int
}

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) Option {
	return func(c *readerConfig) { c.delimiter = d }
}

// WithMaxRows caps the number of data rows; zero keeps the default
func WithMaxRows(n int) Option {
	return func(c *readerConfig) {
		if n > 0 {
			c.maxRows = n
		}
	}
}

// NewReader strips a UTF-8 BOM, checks the encoding and reads the header row.
// Header names are matched case-insensitively.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	cfg := readerConfig{delimiter: ',', maxRows: defaultMaxRows}
	for _, opt := range opts {
		opt(&cfg)
	}

	buf := bufio.NewReaderSize(r, sniffSize)
	head, err := buf.Peek(sniffSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	truncated := len(head) == sniffSize
	bom := len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF
	if bom {
		head = head[3:]
	}
	if !validUTF8Prefix(head, truncated) {
		return nil, ErrInvalidEncoding
	}
	if bom {
		_, _ = buf.Discard(3)
	}

	cr := csv.NewReader(buf)
	cr.Comma = cfg.delimiter
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	record, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	rd := &Reader{
		csv:     cr,
		headers: make([]string, len(record)),
		index:   make(map[string]int, len(record)),
		maxRows: cfg.maxRows,
	}
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		rd.headers[i] = name
		if name != "" {
			rd.index[name] = i
		}
	}
	if len(rd.index) == 0 {
		return nil, ErrMissingHeader
	}
	return rd, nil
}

// validUTF8Prefix tolerates a multi-byte rune cut off at the end of a
// truncated sample
func validUTF8Prefix(b []byte, truncated bool) bool {
	if utf8.Valid(b) {
		return true
	}
	if !truncated {
		return false
	}
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			return utf8.Valid(b[:len(b)-i])
		}
	}
	return false
}

// Headers returns the normalized header names in file order
func (r *Reader) Headers() []string {
	return r.headers
}

// Missing lists the required columns absent from the header
func (r *Reader) Missing(required ...string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := r.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Next returns the next non-blank row, or io.EOF
func (r *Reader) Next() (*Row, error) {
	for {
		record, err := r.csv.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := r.csv.FieldPos(0)

		row := &Row{Line: line, values: make(map[string]string, len(r.index))}
		for name, i := range r.index {
			if i < len(record) {
				row.values[name] = strings.TrimSpace(record[i])
			}
		}
		if row.IsBlank() {
			continue
		}

		r.rows++
		if r.rows > r.maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, r.maxRows)
		}
		return row, nil
	}
}

// ReadAll drains the remaining rows
func (r *Reader) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := r.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// Row is one data line. Line is the 1-based line in the file.
type Row struct {
	Line   int
	values map[string]string
}

// NewRow builds a row from column values
func NewRow(line int, values map[string]string) *Row {
	normalized := make(map[string]string, len(values))
	for k, v := range values {
		normalized[strings.ToLower(k)] = strings.TrimSpace(v)
	}
	return &Row{Line: line, values: normalized}
}

// Get returns a column value, empty when the column is absent
func (r *Row) Get(column string) string {
	return r.values[column]
}

// IsBlank reports whether every cell is empty
func (r *Row) IsBlank() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

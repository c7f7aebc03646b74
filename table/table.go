// Package table decodes an uploaded spreadsheet into an untyped table of text cells.
package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")
	ErrNoHeader          = errors.New("no header row")
)

const (
	DefaultMaxBytes = 32 << 20
	DefaultMaxRows  = 1_000_000
)

// Format names the decoder that produced a table
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// RawTable is the decoded content of an upload. Column names are kept exactly as found in
// the header row.
type RawTable struct {
	Columns []string
	Rows    [][]string
	Format  Format
}

// Cell returns the cell of a row and column, or an empty string for short rows
func (t *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// NormalizeName trims surrounding whitespace and lower cases a column name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Options bound the size of a decoded upload
type Options struct {
	MaxBytes int64
	MaxRows  int
}

// NewDefaultOptions returns the default upload bounds
func NewDefaultOptions() *Options {
	return &Options{
		MaxBytes: DefaultMaxBytes,
		MaxRows:  DefaultMaxRows,
	}
}

type Option func(*Options)

// WithMaxBytes caps the number of bytes read from the upload
func WithMaxBytes(n int64) Option {
	return func(o *Options) {
		o.MaxBytes = n
	}
}

// WithMaxRows caps the number of data rows
func WithMaxRows(n int) Option {
	return func(o *Options) {
		o.MaxRows = n
	}
}

// DecodeError reports a file that could not be decoded
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode %q, %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TooLargeError reports an upload that exceeds a configured bound
type TooLargeError struct {
	What  string
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("upload exceeds the limit of %d %s", e.Limit, e.What)
}

// Decode reads the upload and dispatches on the extension of filename to the csv or xlsx
// decoder. The first row is the header and the remaining rows are data.
func Decode(filename string, r io.Reader, opts ...Option) (*RawTable, error) {
	opt := NewDefaultOptions()
	for _, o := range opts {
		o(opt)
	}

	var decode func([]byte) (*RawTable, error)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		decode = decodeCSV
	case ".xlsx":
		decode = decodeXLSX
	default:
		return nil, fmt.Errorf("%q, %w", filename, ErrUnsupportedFormat)
	}

	data, err := readLimited(r, opt.MaxBytes)
	if err != nil {
		return nil, err
	}

	tbl, err := decode(data)
	if err != nil {
		return nil, &DecodeError{Filename: filename, Err: err}
	}
	if opt.MaxRows > 0 && len(tbl.Rows) > opt.MaxRows {
		return nil, &TooLargeError{What: "rows", Limit: int64(opt.MaxRows)}
	}
	return tbl, nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read upload, %w", err)
	}
	if n > maxBytes {
		return nil, &TooLargeError{What: "bytes", Limit: maxBytes}
	}
	return buf.Bytes(), nil
}

func newTable(records [][]string, format Format) (*RawTable, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	header := make([]string, len(records[0]))
	copy(header, records[0])
	return &RawTable{
		Columns: header,
		Rows:    records[1:],
		Format:  format,
	}, nil
}

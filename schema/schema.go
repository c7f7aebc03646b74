// Package schema validates and coerces an untyped table into a revenue series on read.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/revenue-forecaster/series"
	"github.com/aouyang1/revenue-forecaster/table"
	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ColumnDate    = "date"
	ColumnRevenue = "revenue"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyCell     = errors.New("empty cell")
)

// SchemaError reports required columns absent from the header
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return ErrMissingColumn.Error()
}

func (e *SchemaError) Unwrap() error {
	return ErrMissingColumn
}

// CoercionError reports a cell that could not be converted. Row counts data rows from 1.
type CoercionError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("unable to coerce %s value %q at row %d, %v", e.Column, e.Value, e.Row, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// Options controls how date cells are interpreted
type Options struct {
	Location *time.Location
	DayFirst bool
}

// NewDefaultOptions parses dates in UTC preferring month first for ambiguous dates
func NewDefaultOptions() *Options {
	return &Options{
		Location: time.UTC,
	}
}

type Option func(*Options)

// WithLocation sets the location of dates without a zone
func WithLocation(loc *time.Location) Option {
	return func(o *Options) {
		if loc != nil {
			o.Location = loc
		}
	}
}

// WithDayFirst reads ambiguous dates such as 03/04/2024 as the 3rd of April
func WithDayFirst(dayFirst bool) Option {
	return func(o *Options) {
		o.DayFirst = dayFirst
	}
}

// Normalize matches the date and revenue columns regardless of case and surrounding
// whitespace, coerces every row, and returns the points stably sorted by time. Rows sharing a
// timestamp keep their input order. An empty table yields an empty series.
func Normalize(raw *table.RawTable, opts ...Option) (series.Series, error) {
	opt := NewDefaultOptions()
	for _, o := range opts {
		o(opt)
	}

	dateIdx, revIdx := -1, -1
	for i, col := range raw.Columns {
		switch table.NormalizeName(col) {
		case ColumnDate:
			if dateIdx < 0 {
				dateIdx = i
			}
		case ColumnRevenue:
			if revIdx < 0 {
				revIdx = i
			}
		}
	}

	var missing []string
	if dateIdx < 0 {
		missing = append(missing, ColumnDate)
	}
	if revIdx < 0 {
		missing = append(missing, ColumnRevenue)
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	s := make(series.Series, 0, len(raw.Rows))
	for i := range raw.Rows {
		dateCell := raw.Cell(i, dateIdx)
		t, err := parseDate(dateCell, raw.Format, opt)
		if err != nil {
			return nil, &CoercionError{Row: i + 1, Column: ColumnDate, Value: dateCell, Err: err}
		}

		revCell := raw.Cell(i, revIdx)
		val, err := ParseRevenue(revCell)
		if err != nil {
			return nil, &CoercionError{Row: i + 1, Column: ColumnRevenue, Value: revCell, Err: err}
		}
		s = append(s, series.Point{Time: t, Value: val})
	}

	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Time.Before(s[j].Time)
	})
	return s, nil
}

func parseDate(cell string, format table.Format, opt *Options) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, ErrEmptyCell
	}

	if format == table.FormatXLSX {
		if serial, err := strconv.ParseFloat(cell, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, err
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), opt.Location), nil
		}
	}

	return dateparse.ParseIn(cell, opt.Location, dateparse.PreferMonthFirst(!opt.DayFirst))
}

// ParseRevenue reads a revenue amount keeping its textual precision. Surrounding whitespace,
// thousands separators and a leading currency symbol are tolerated.
func ParseRevenue(cell string) (decimal.Decimal, error) {
	v := strings.TrimSpace(cell)
	if v == "" {
		return decimal.Zero, ErrEmptyCell
	}

	var neg bool
	if strings.HasPrefix(v, "-") {
		neg = true
		v = strings.TrimSpace(v[1:])
	}
	for _, sym := range []string{"$", "€", "£", "¥"} {
		if strings.HasPrefix(v, sym) {
			v = strings.TrimSpace(strings.TrimPrefix(v, sym))
			break
		}
	}
	v = strings.ReplaceAll(v, ",", "")

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

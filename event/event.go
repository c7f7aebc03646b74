// Package event builds calendar events, such as public holidays, that are modelled as
// separate regressors of a forecast.
package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd  = errors.New("event start time is after end time")
	ErrUnsetTime      = errors.New("unset event start or end time")
	ErrNoEventName    = errors.New("no event name")
	ErrUnknownCountry = errors.New("unknown holiday country")
)

var countryHolidays = map[string][]*cal.Holiday{
	"US": us.Holidays,
	"GB": gb.Holidays,
	"CA": ca.Holidays,
}

// represents a time span to model separately
type Event struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// Contains reports whether t falls within [Start, End)
func (e Event) Contains(t time.Time) bool {
	return (t.After(e.Start) || t.Equal(e.Start)) && t.Before(e.End)
}

// Countries returns the supported holiday country codes in sorted order
func Countries() []string {
	codes := make([]string, 0, len(countryHolidays))
	for code := range countryHolidays {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// CountryHolidays returns the public holiday calendar of a country code such as US or GB
func CountryHolidays(country string) ([]*cal.Holiday, error) {
	hols, exists := countryHolidays[strings.ToUpper(strings.TrimSpace(country))]
	if !exists {
		return nil, fmt.Errorf("%q, %w", country, ErrUnknownCountry)
	}
	return hols, nil
}

// Holiday returns one event per year a holiday is observed overlapping the start and end
// time. Each event is a full day in the location of start, widened by durBefore and
// durAfter. Every occurrence shares the same name so that a single weight is learned for
// the holiday across years.
func Holiday(hol *cal.Holiday, start, end time.Time, durBefore, durAfter time.Duration) []Event {
	loc := start.Location()
	name := Name(hol.Name)

	events := []Event{}
	for i := start.Year() - 1; i <= end.Year()+1; i++ {
		_, observed := hol.Calc(i)
		if observed.IsZero() {
			continue
		}
		y, m, d := observed.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)

		ev := Event{
			Name:  name,
			Start: day.Add(-durBefore),
			End:   day.AddDate(0, 0, 1).Add(durAfter),
		}
		if ev.End.After(start) && !ev.Start.After(end) {
			events = append(events, ev)
		}
	}
	return events
}

// Holidays returns every holiday event of a country between the start and end time
func Holidays(country string, start, end time.Time, durBefore, durAfter time.Duration) ([]Event, error) {
	hols, err := CountryHolidays(country)
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, hol := range hols {
		events = append(events, Holiday(hol, start, end, durBefore, durAfter)...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// Name converts a holiday name into a lower case identifier e.g. "New Year's Day" becomes
// new_years_day
func Name(holName string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(holName)) {
		switch {
		case r == ' ' || r == '-':
			sb.WriteRune('_')
		case r == '\'' || r == '.' || r == ',' || r == '(' || r == ')':
			continue
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

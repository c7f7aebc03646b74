package options

import (
	"fmt"
	"io"
	"time"

	"github.com/aouyang1/revenue-forecaster/event"
	"github.com/aouyang1/revenue-forecaster/feature"
	"github.com/aouyang1/revenue-forecaster/forecast/util"
)

// HolidayOptions adds one indicator feature per public holiday of a country. Every
// occurrence of a holiday shares the feature so its effect carries into future years.
type HolidayOptions struct {
	Country   string        `json:"country"`
	DurBefore time.Duration `json:"duration_before"`
	DurAfter  time.Duration `json:"duration_after"`
}

func (h HolidayOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	country := h.Country
	if country == "" {
		country = "None"
	}
	_, err := fmt.Fprintf(w, "%s%sHolidays: %s\n", prefix, util.IndentExpand(indent, indentGrowth), country)
	return err
}

// GenerateFeatures returns the holiday indicator features for the time points which may be
// in any order. No country yields an empty set.
func (h HolidayOptions) GenerateFeatures(t []time.Time) (*feature.Set, error) {
	eFeat := feature.NewSet()
	if h.Country == "" || len(t) == 0 {
		return eFeat, nil
	}

	start, end := t[0], t[0]
	for _, tPnt := range t {
		if tPnt.Before(start) {
			start = tPnt
		}
		if tPnt.After(end) {
			end = tPnt
		}
	}
	events, err := event.Holidays(h.Country, start, end, h.DurBefore, h.DurAfter)
	if err != nil {
		return nil, fmt.Errorf("unable to generate holidays, %w", err)
	}

	byName := make(map[string][]event.Event)
	var names []string
	for _, ev := range events {
		if _, exists := byName[ev.Name]; !exists {
			names = append(names, ev.Name)
		}
		byName[ev.Name] = append(byName[ev.Name], ev)
	}

	for _, name := range names {
		occurrences := byName[name]
		feat := feature.NewEvent(name)
		eFeat.Set(feat, feat.Generate(t, func(tPnt time.Time) bool {
			for _, ev := range occurrences {
				if ev.Contains(tPnt) {
					return true
				}
			}
			return false
		}))
	}
	return eFeat, nil
}

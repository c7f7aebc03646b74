package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCannotInferFreq = errors.New("cannot infer frequency from time slice")
	ErrNegativePeriods = errors.New("number of periods must be non-negative")
)

// Frequency is the spacing between consecutive observations. Calendar based spacing is
// tracked in months or days since neither is a fixed duration across month lengths or
// daylight saving changes. Exactly one of Months, Days or Interval is set.
type Frequency struct {
	Months int `json:"months,omitempty"`
	// Day is the day of month monthly steps land on, clamped to the length of the month.
	Day      int           `json:"day,omitempty"`
	Days     int           `json:"days,omitempty"`
	Interval time.Duration `json:"interval,omitempty"`
}

// Next returns the k-th step after t
func (f Frequency) Next(t time.Time, k int) time.Time {
	switch {
	case f.Months > 0:
		day := f.Day
		if day == 0 {
			day = t.Day()
		}
		return addMonths(t, f.Months*k, day)
	case f.Days > 0:
		return t.AddDate(0, 0, f.Days*k)
	default:
		return t.Add(time.Duration(k) * f.Interval)
	}
}

func (f Frequency) String() string {
	switch {
	case f.Months > 0:
		return fmt.Sprintf("%d month(s) on day %d", f.Months, f.Day)
	case f.Days > 0:
		return fmt.Sprintf("%d day(s)", f.Days)
	default:
		return f.Interval.String()
	}
}

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}

	lastTime = t[len(t)-1]
	return lastTime
}

// EstimateFreq infers the spacing of a sorted time slice. Repeated time points are ignored.
// When every point sits on the same day of month, clamped to shorter months, and consecutive
// points are whole months apart the frequency is expressed in months. Points sharing a
// wall clock time are stepped in calendar days. Otherwise the most common gap is used.
// Ties go to the smaller step.
func (t TimeSlice) EstimateFreq() (Frequency, error) {
	distinct := make([]time.Time, 0, len(t))
	for i, tPnt := range t {
		if i > 0 && !tPnt.After(t[i-1]) {
			continue
		}
		distinct = append(distinct, tPnt)
	}
	if len(distinct) < 2 {
		return Frequency{}, ErrCannotInferFreq
	}

	if months, day, ok := monthlySteps(distinct); ok {
		return Frequency{Months: months, Day: day}, nil
	}
	if days, ok := dailySteps(distinct); ok {
		return Frequency{Days: days}, nil
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(distinct); i++ {
		frequencies[distinct[i].Sub(distinct[i-1])] += 1
	}
	return Frequency{Interval: mostCommon(frequencies)}, nil
}

// monthlySteps reports the month step and anchor day when every point shares a wall clock
// time and lands on the anchor day clamped to its month. The anchor is the largest day seen
// so a series on the 30th stays on the 30th after February.
func monthlySteps(t []time.Time) (int, int, bool) {
	if !sameClock(t) {
		return 0, 0, false
	}
	var anchor int
	for _, tPnt := range t {
		anchor = max(anchor, tPnt.Day())
	}
	for _, tPnt := range t {
		if tPnt.Day() != min(anchor, daysIn(tPnt)) {
			return 0, 0, false
		}
	}

	monthCnts := make(map[int]int)
	for i := 1; i < len(t); i++ {
		months := monthsBetween(t[i-1], t[i])
		if months <= 0 {
			return 0, 0, false
		}
		monthCnts[months] += 1
	}
	return mostCommon(monthCnts), anchor, true
}

// dailySteps reports the most common step in calendar days when every point shares a wall
// clock time
func dailySteps(t []time.Time) (int, bool) {
	if !sameClock(t) {
		return 0, false
	}
	dayCnts := make(map[int]int)
	for i := 1; i < len(t); i++ {
		dayCnts[daysBetween(t[i-1], t[i])] += 1
	}
	return mostCommon(dayCnts), true
}

func mostCommon[K int | time.Duration](cnts map[K]int) K {
	var maxCnt int
	var best K
	for k, cnt := range cnts {
		if cnt > maxCnt || (cnt == maxCnt && k < best) {
			maxCnt = cnt
			best = k
		}
	}
	return best
}

func sameClock(t []time.Time) bool {
	hh, mm, ss := t[0].Clock()
	ns := t[0].Nanosecond()
	for _, tPnt := range t[1:] {
		h, m, s := tPnt.Clock()
		if h != hh || m != mm || s != ss || tPnt.Nanosecond() != ns {
			return false
		}
	}
	return true
}

// Extend returns a copy of the time slice with the specified number of future periods
// appended after the last time point at the estimated frequency.
func (t TimeSlice) Extend(periods int) ([]time.Time, error) {
	if periods < 0 {
		return nil, ErrNegativePeriods
	}

	out := make([]time.Time, len(t), len(t)+periods)
	copy(out, t)
	if periods == 0 {
		return out, nil
	}

	freq, err := t.EstimateFreq()
	if err != nil {
		return nil, err
	}

	last := t.EndTime()
	for i := 1; i <= periods; i++ {
		out = append(out, freq.Next(last, i))
	}
	return out, nil
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// addMonths moves t by n calendar months onto day, clamped to the length of the target month
func addMonths(t time.Time, n, day int) time.Time {
	y, m, _ := t.Date()
	hh, mm, ss := t.Clock()

	first := time.Date(y, m+time.Month(n), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	d := min(day, daysIn(first))
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

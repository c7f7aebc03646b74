package options

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/revenue-forecaster/feature"
	"github.com/aouyang1/revenue-forecaster/forecast/util"
)

const (
	LabelSeasDaily  = "daily"
	LabelSeasWeekly = "weekly"
	LabelSeasYearly = "yearly"

	DefaultDailyOrders  = 4
	DefaultWeeklyOrders = 3
	DefaultYearlyOrders = 10

	// PeriodYear is the average length of a year in the gregorian calendar
	PeriodYear = time.Duration(365.25 * 24 * float64(time.Hour))
)

var (
	ErrUnknownTimeFeature = errors.New("unknown time feature")
	ErrInvalidSeasonality = errors.New("invalid seasonality config")
)

// Seasonality options configures the number of seasonality components to fit for. When Auto
// is set the daily, weekly and yearly seasonalities are added depending on the span and
// spacing of the training data.
type SeasonalityOptions struct {
	Auto               bool                `json:"auto"`
	SeasonalityConfigs []SeasonalityConfig `json:"seasonality_configs"`
}

func (s SeasonalityOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if s.Auto {
		noCfg = " Auto"
	}
	if len(s.SeasonalityConfigs) > 0 {
		noCfg = ""
		fmt.Fprintf(tbl, "%s%sName\tPeriod\tOrders\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	}
	fmt.Fprintf(w, "%s%sSeasonality:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg)
	for _, seasCfg := range s.SeasonalityConfigs {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t%d\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			seasCfg.Name, seasCfg.Period, seasCfg.Orders)
	}
	return tbl.Flush()
}

// NewDefaultSeasonalityOptions generates a seasonality config that picks the seasonal
// components from the training data
func NewDefaultSeasonalityOptions() SeasonalityOptions {
	return SeasonalityOptions{
		Auto: true,
	}
}

// Resolve returns the seasonality configs to fit for the training times. Explicit configs
// are always kept. With Auto set, yearly seasonality is added when the data spans at least
// two years, weekly when it spans two weeks with observations less than a week apart, and
// daily when it spans two days with observations less than a day apart.
func (s SeasonalityOptions) Resolve(t []time.Time) []SeasonalityConfig {
	configs := append([]SeasonalityConfig(nil), s.SeasonalityConfigs...)
	if !s.Auto || len(t) < 2 {
		return removeDuplicates(configs)
	}

	span := t[len(t)-1].Sub(t[0])
	minDelta := minPositiveDelta(t)

	if span >= 2*PeriodYear {
		configs = append(configs, NewYearlySeasonalityConfig(DefaultYearlyOrders))
	}
	if span >= 2*7*24*time.Hour && minDelta > 0 && minDelta < 7*24*time.Hour {
		configs = append(configs, NewWeeklySeasonalityConfig(DefaultWeeklyOrders))
	}
	if span >= 2*24*time.Hour && minDelta > 0 && minDelta < 24*time.Hour {
		configs = append(configs, NewDailySeasonalityConfig(DefaultDailyOrders))
	}
	return removeDuplicates(configs)
}

// GenerateFeatures creates the sine and cosine features of every seasonality config
func (s SeasonalityOptions) GenerateFeatures(epoch []float64) (*feature.Set, error) {
	x := feature.NewSet()
	for _, seasCfg := range s.SeasonalityConfigs {
		if seasCfg.Period <= 0 || seasCfg.Orders <= 0 {
			return nil, fmt.Errorf("seasonality %q has period %s and %d orders, %w",
				seasCfg.Name, seasCfg.Period, seasCfg.Orders, ErrInvalidSeasonality)
		}
		period := seasCfg.Period.Seconds()
		for order := 1; order <= seasCfg.Orders; order++ {
			sinFeat := feature.NewSeasonality(seasCfg.Name, feature.FourierCompSin, order)
			cosFeat := feature.NewSeasonality(seasCfg.Name, feature.FourierCompCos, order)
			x.Set(sinFeat, sinFeat.Generate(epoch, order, period))
			x.Set(cosFeat, cosFeat.Generate(epoch, order, period))
		}
	}
	return x, nil
}

func minPositiveDelta(t []time.Time) time.Duration {
	var minDelta time.Duration
	for i := 1; i < len(t); i++ {
		delta := t[i].Sub(t[i-1])
		if delta <= 0 {
			continue
		}
		if minDelta == 0 || delta < minDelta {
			minDelta = delta
		}
	}
	return minDelta
}

// removeDuplicates keeps the first config of each name and orders the result by period
func removeDuplicates(configs []SeasonalityConfig) []SeasonalityConfig {
	seen := make(map[string]struct{}, len(configs))
	res := make([]SeasonalityConfig, 0, len(configs))
	for _, seasCfg := range configs {
		if seasCfg.Name == "" {
			continue
		}
		if _, exists := seen[seasCfg.Name]; exists {
			continue
		}
		seen[seasCfg.Name] = struct{}{}
		res = append(res, seasCfg)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Period < res[j].Period
	})
	return res
}

// SeasonalityConfig represents a single seasonality configuration to model. This will generate
// Fourier series of the specified period and number of orders. E.g. a period of 24*time.Hour
// with 3 orders will create 6 Fourier series of order 1, 2, 3 and for the sine/cosine components
// where order 1 will have a period of 1 day and order 2 will have a period of 12 hours.
type SeasonalityConfig struct {
	Name   string        `json:"name"`
	Orders int           `json:"orders"`
	Period time.Duration `json:"period"`
}

// NewSeasonalityConfig creates a new seasonality config given a name, period and orders
func NewSeasonalityConfig(name string, period time.Duration, orders int) SeasonalityConfig {
	if orders < 0 {
		orders = 0
	}

	return SeasonalityConfig{
		Name:   name,
		Orders: orders,
		Period: period,
	}
}

// NewDailySeasonalityConfig creates a daily seasonality config given a specified number of orders
func NewDailySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasDaily, 24*time.Hour, orders)
}

// NewWeeklySeasonalityConfig creates a weekly seasonality config given a specified number of orders
func NewWeeklySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasWeekly, 7*24*time.Hour, orders)
}

// NewYearlySeasonalityConfig creates a yearly seasonality config given a specified number of orders
func NewYearlySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasYearly, PeriodYear, orders)
}

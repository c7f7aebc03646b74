package options

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/revenue-forecaster/feature"
	"github.com/aouyang1/revenue-forecaster/forecast/util"
)

const (
	DefaultAutoNumChangepoints = 25
	DefaultChangepointRange    = 0.8
)

// Changepoint describes a point in time where the trend is allowed to change its slope
type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func NewChangepoint(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}

// ChangepointOptions configures the trend changepoints. With Auto set, up to
// AutoNumChangepoints are placed on observed times evenly spread through the first Range
// fraction of the training data, replacing any explicit changepoints.
type ChangepointOptions struct {
	Changepoints        []Changepoint `json:"changepoints"`
	Auto                bool          `json:"auto"`
	AutoNumChangepoints int           `json:"auto_num_changepoints"`
	Range               float64       `json:"range"`
}

func (c ChangepointOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if c.Auto {
		noCfg = " Auto"
	}
	if len(c.Changepoints) > 0 {
		noCfg = ""
		fmt.Fprintf(tbl, "%s%sName\tDatetime\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	}
	fmt.Fprintf(w, "%s%sChangepoints:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg)
	for _, chpt := range c.Changepoints {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			chpt.Name, chpt.T)
	}
	return tbl.Flush()
}

// NewDefaultChangepointOptions generates a set of default changepoint options
func NewDefaultChangepointOptions() ChangepointOptions {
	return ChangepointOptions{
		Auto:                true,
		AutoNumChangepoints: DefaultAutoNumChangepoints,
		Range:               DefaultChangepointRange,
	}
}

// GenerateAutoChangepoints places changepoints on the sorted training times. The first
// Range fraction of the history is split into evenly spaced indices, skipping the very first
// observation, and repeated times are only used once. Fewer changepoints are placed when the
// history is too short.
func (c *ChangepointOptions) GenerateAutoChangepoints(t []time.Time) []Changepoint {
	if !c.Auto {
		return nil
	}

	if c.AutoNumChangepoints == 0 {
		c.AutoNumChangepoints = DefaultAutoNumChangepoints
	}
	if c.Range <= 0 || c.Range > 1 {
		c.Range = DefaultChangepointRange
	}

	histSize := int(math.Floor(float64(len(t)) * c.Range))
	n := c.AutoNumChangepoints
	if n+1 > histSize {
		n = histSize - 1
	}

	chpts := make([]Changepoint, 0, max(n, 0))
	if n > 0 {
		step := float64(histSize-1) / float64(n)
		var last time.Time
		for i := 1; i <= n; i++ {
			idx := int(math.RoundToEven(step * float64(i)))
			chpntTime := t[idx]
			if chpntTime.Equal(t[0]) || chpntTime.Equal(last) {
				continue
			}
			last = chpntTime
			chpts = append(chpts, NewChangepoint(fmt.Sprintf("auto_%02d", len(chpts)), chpntTime))
		}
	}

	// replace existing changepoints
	c.Changepoints = chpts
	return chpts
}

// GenerateFeatures creates the slope change feature of each changepoint. Changepoints
// outside of the training window are skipped since they could never have been fit.
func (c ChangepointOptions) GenerateFeatures(epoch []float64, trainStartTime, trainEndTime time.Time) *feature.Set {
	feat := feature.NewSet()
	for i, chpt := range c.Changepoints {
		if chpt.T.After(trainEndTime) || !chpt.T.After(trainStartTime) {
			continue
		}
		chpntName := fmt.Sprintf("%02d", i)
		if chpt.Name != "" {
			chpntName = chpt.Name
		}
		chpntSlope := feature.NewChangepoint(chpntName, feature.ChangepointCompSlope)
		feat.Set(chpntSlope, chpntSlope.Generate(epoch, chpt.T, trainStartTime, trainEndTime))
	}
	return feat
}

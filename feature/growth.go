package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	GrowthLinear = "linear"
)

type Growth struct {
	Name string `json:"name"`
}

func NewGrowth(name string) *Growth {
	return &Growth{name}
}

// String returns the string representation of the growth feature
func (g Growth) String() string {
	return fmt.Sprintf("growth_%s", g.Name)
}

// Get returns the value of an arbitrary label and returns the value along with whether
// the label exists
func (g Growth) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return g.Name, true
	}
	return "", false
}

// Type returns the type of this feature
func (g Growth) Type() FeatureType {
	return FeatureTypeGrowth
}

// Decode converts the feature into a map of label values
func (g Growth) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = g.Name
	return res
}

// UnmarshalJSON is the custom unmarshalling to convert a map[string]string
// to a growth feature
func (g *Growth) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	g.Name = labelStr.Name
	return nil
}

// Generate scales the epoch values so the training window maps onto [0, 1]. Points
// outside of the training window extrapolate linearly. A zero width window yields zeros.
func (g Growth) Generate(epoch []float64, trainStartTime, trainEndTime time.Time) []float64 {
	res := make([]float64, len(epoch))
	start := float64(trainStartTime.UnixNano()) / 1e9
	span := trainEndTime.Sub(trainStartTime).Seconds()
	if span <= 0 {
		return res
	}

	switch g.Name {
	case GrowthLinear:
		for i, e := range epoch {
			res[i] = (e - start) / span
		}
	}
	return res
}

func Linear() *Growth {
	return NewGrowth(GrowthLinear)
}

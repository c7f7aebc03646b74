package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Time is an intermediate feature derived directly from the time index. It is used to
// build the other features and is never fit on its own.
type Time struct {
	Name string `json:"name"`
}

func NewTime(name string) *Time {
	return &Time{name}
}

func (t Time) String() string {
	return fmt.Sprintf("tfeat_%s", t.Name)
}

func (t Time) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return t.Name, true
	}
	return "", false
}

func (t Time) Type() FeatureType {
	return FeatureTypeTime
}

func (t Time) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = t.Name
	return res
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	t.Name = labelStr.Name
	return nil
}

// Generate converts each time point into fractional seconds since the unix epoch
func (t Time) Generate(tSeries []time.Time) []float64 {
	epoch := make([]float64, len(tSeries))
	for i, tPnt := range tSeries {
		epoch[i] = float64(tPnt.UnixNano()) / 1e9
	}
	return epoch
}

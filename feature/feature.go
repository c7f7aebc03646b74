// Package feature describes the labelled regressors that make up the design matrix of a
// forecast along with the generators that produce their values from a time index.
package feature

type FeatureType string

const (
	FeatureTypeChangepoint FeatureType = "changepoint"
	FeatureTypeSeasonality FeatureType = "seasonality"
	FeatureTypeTime        FeatureType = "time"
	FeatureTypeGrowth      FeatureType = "growth"
	FeatureTypeEvent       FeatureType = "event"
)

type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
	UnmarshalJSON([]byte) error
}

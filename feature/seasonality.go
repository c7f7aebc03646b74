package feature

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

type FourierComp string

const (
	FourierCompSin FourierComp = "sin"
	FourierCompCos FourierComp = "cos"
)

type Seasonality struct {
	Name        string      `json:"name"`
	FourierComp FourierComp `json:"fourier_component"`
	Order       int         `json:"order"`
}

func NewSeasonality(name string, fcomp FourierComp, order int) *Seasonality {
	return &Seasonality{name, fcomp, order}
}

func (s Seasonality) String() string {
	return fmt.Sprintf("seas_%s_%02d_%s", s.Name, s.Order, s.FourierComp)
}

func (s Seasonality) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return s.Name, true
	case "fourier_component":
		return string(s.FourierComp), true
	case "order":
		return strconv.Itoa(s.Order), true
	}
	return "", false
}

func (s Seasonality) Type() FeatureType {
	return FeatureTypeSeasonality
}

func (s Seasonality) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = s.Name
	res["fourier_component"] = string(s.FourierComp)
	res["order"] = strconv.Itoa(s.Order)
	return res
}

func (s *Seasonality) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name        string      `json:"name"`
		FourierComp FourierComp `json:"fourier_component"`
		Order       string      `json:"order"`
	}
	err := json.Unmarshal(data, &labelStr)
	if err != nil {
		return err
	}
	s.Name = labelStr.Name
	s.FourierComp = labelStr.FourierComp
	s.Order, err = strconv.Atoi(labelStr.Order)
	if err != nil {
		return err
	}
	return nil
}

// Generate computes the sine or cosine term of the given order for a period expressed in
// seconds. An unknown fourier component yields zeros.
func (s Seasonality) Generate(epoch []float64, order int, period float64) []float64 {
	res := make([]float64, len(epoch))
	if period <= 0 {
		return res
	}
	omega := 2.0 * math.Pi * float64(order) / period
	for i, e := range epoch {
		rad := omega * e
		switch s.FourierComp {
		case FourierCompSin:
			res[i] = math.Sin(rad)
		case FourierCompCos:
			res[i] = math.Cos(rad)
		}
	}
	return res
}

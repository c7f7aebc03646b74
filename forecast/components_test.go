package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentsNames(t *testing.T) {
	testData := map[string]struct {
		comp     Components
		expected []string
	}{
		"empty": {
			comp:     Components{},
			expected: []string{},
		},
		"trend first": {
			comp: Components{
				"yearly":          {0},
				ComponentHolidays: {0},
				ComponentTrend:    {0},
				"weekly":          {0},
			},
			expected: []string{ComponentTrend, ComponentHolidays, "weekly", "yearly"},
		},
		"no trend": {
			comp:     Components{"weekly": {0}},
			expected: []string{"weekly"},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, td.comp.Names())
		})
	}
}

package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyState(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		expected string
	}{
		{name: "alaska excluded", state: "02", expected: RegionAlaska},
		{name: "hawaii excluded", state: "15", expected: RegionHawaii},
		{name: "new mexico included", state: "35", expected: RegionContiguous},
		{name: "alabama, first code", state: "01", expected: RegionContiguous},
		{name: "wyoming, boundary", state: "56", expected: RegionContiguous},
		{name: "american samoa", state: "60", expected: RegionTerritory},
		{name: "puerto rico", state: "72", expected: RegionTerritory},
		{name: "unpadded code", state: "2", expected: RegionAlaska},
		{name: "surrounding whitespace", state: " 35 ", expected: RegionContiguous},
		{name: "not a number", state: "XX", expected: RegionUnknown},
		{name: "empty", state: "", expected: RegionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyState(tt.state))
		})
	}
}

func TestInScope(t *testing.T) {
	assert.False(t, InScope("02"))
	assert.True(t, InScope("35"))
	assert.False(t, InScope("72"))
	assert.True(t, InScope("56"))
	assert.False(t, InScope("57"))
	assert.False(t, InScope("15"))
	assert.True(t, InScope("XX"))
}

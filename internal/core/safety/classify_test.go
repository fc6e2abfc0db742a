package safety_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/safety"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.POIClass
	}{
		{"Police Station", domain.POIProtective},
		{"POLICE", domain.POIProtective},
		{"metro_station", domain.POIProtective},
		{"Primary School", domain.POIProtective},
		{"Liquor_Store", domain.POIHazardous},
		{"sports_bar", domain.POIHazardous},
		{"Nightclub", domain.POIHazardous},
		{"industrial estate", domain.POIHazardous},
		// Protective terms win when both match.
		{"bar near police post", domain.POIProtective},
		{"cafe", domain.POINeutral},
		{"", domain.POINeutral},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, safety.Classify(tt.raw))
		})
	}
}

func TestDelta(t *testing.T) {
	late := domain.NewScoringContext(23)
	afternoon := domain.NewScoringContext(13)

	assert.Equal(t, 2.0, safety.Delta(safety.Classify("Police Station"), late.IsNight))
	assert.Equal(t, 2.0, safety.Delta(safety.Classify("Police Station"), afternoon.IsNight))
	assert.Equal(t, -5.0, safety.Delta(safety.Classify("Liquor_Store"), late.IsNight))
	assert.Equal(t, -3.0, safety.Delta(safety.Classify("Liquor_Store"), afternoon.IsNight))
	assert.Zero(t, safety.Delta(domain.POINeutral, true))
}

func TestScoringContext_NightHours(t *testing.T) {
	night := []int{0, 1, 5, 20, 23}
	day := []int{6, 12, 19}

	for _, h := range night {
		assert.True(t, domain.NewScoringContext(h).IsNight, "hour %d", h)
	}
	for _, h := range day {
		assert.False(t, domain.NewScoringContext(h).IsNight, "hour %d", h)
	}
}

package service

import (
	"context"
	"testing"

	"lexcase-backend/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceCompleter returns one canned output per call, in order
type sequenceCompleter struct {
	outputs []string
	calls   int
}

func (s *sequenceCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (string, error) {
	out := s.outputs[s.calls]
	s.calls++
	return out, nil
}

const locationJSON = `{
	"property_buying_risk": 0.3,
	"property_renting_risk": 0.2,
	"flood_risk": 0.7,
	"crime_rate": 0.4,
	"air_quality_index": 0.8,
	"proximity_to_amenities": 0.9,
	"transportation_score": 0.6,
	"neighborhood_rating": 0.5,
	"environmental_hazards": 0.1,
	"economic_growth_potential": 0.75
}`

func TestAnalyzeLocation(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{output: locationJSON}
	svc, err := NewGISService(completer, nil)
	require.NoError(t, err)

	analysis, err := svc.AnalyzeLocation(context.Background(), "12 Riverside Road")
	require.NoError(t, err)

	assert.Equal(t, 0.7, analysis.FloodRisk)
	assert.Equal(t, 0.75, analysis.EconomicGrowthPotential)

	require.Len(t, completer.reqs, 1)
	assert.Contains(t, completer.reqs[0].Prompt, "12 Riverside Road")
}

func TestAnalyzeLocationEmptyAddress(t *testing.T) {
	t.Parallel()

	svc, err := NewGISService(&fakeCompleter{output: locationJSON}, nil)
	require.NoError(t, err)

	_, err = svc.AnalyzeLocation(context.Background(), "  ")
	require.Error(t, err)
}

func TestAnalyzeLocationRetriesMalformedOutput(t *testing.T) {
	t.Parallel()

	completer := &sequenceCompleter{outputs: []string{
		"I cannot score this address.",
		locationJSON,
	}}
	svc, err := NewGISService(completer, nil)
	require.NoError(t, err)

	analysis, err := svc.AnalyzeLocation(context.Background(), "12 Riverside Road")
	require.NoError(t, err)
	assert.Equal(t, 2, completer.calls)
	assert.Equal(t, 0.3, analysis.PropertyBuyingRisk)
}

func TestParseLocationAnalysisRejectsMissingMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"null metric", `{
			"property_buying_risk": null,
			"property_renting_risk": 0.2,
			"flood_risk": 0.7,
			"crime_rate": 0.4,
			"air_quality_index": 0.8,
			"proximity_to_amenities": 0.9,
			"transportation_score": 0.6,
			"neighborhood_rating": 0.5,
			"environmental_hazards": 0.1,
			"economic_growth_potential": 0.75
		}`},
		{"one metric omitted", `{
			"property_renting_risk": 0.2,
			"flood_risk": 0.7,
			"crime_rate": 0.4,
			"air_quality_index": 0.8,
			"proximity_to_amenities": 0.9,
			"transportation_score": 0.6,
			"neighborhood_rating": 0.5,
			"environmental_hazards": 0.1,
			"economic_growth_potential": 0.75
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analysis, err := parseLocationAnalysis(tt.raw)
			require.ErrorIs(t, err, ErrMalformedModelOutput)
			assert.Nil(t, analysis)
		})
	}
}

func TestAnalyzeLocationRetriesIncompleteOutput(t *testing.T) {
	t.Parallel()

	completer := &sequenceCompleter{outputs: []string{
		`{}`,
		locationJSON,
	}}
	svc, err := NewGISService(completer, nil)
	require.NoError(t, err)

	analysis, err := svc.AnalyzeLocation(context.Background(), "12 Riverside Road")
	require.NoError(t, err)
	assert.Equal(t, 2, completer.calls)
	assert.Equal(t, 0.4, analysis.CrimeRate)
}

func TestAnalyzeLocationClampsMetrics(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{output: `{
		"property_buying_risk": 1.8,
		"property_renting_risk": -0.4,
		"flood_risk": 0.5,
		"crime_rate": 0,
		"air_quality_index": 1,
		"proximity_to_amenities": 0.5,
		"transportation_score": 0.5,
		"neighborhood_rating": 0.5,
		"environmental_hazards": 0.5,
		"economic_growth_potential": 0.5
	}`}
	svc, err := NewGISService(completer, nil)
	require.NoError(t, err)

	analysis, err := svc.AnalyzeLocation(context.Background(), "12 Riverside Road")
	require.NoError(t, err)
	assert.Equal(t, 1.0, analysis.PropertyBuyingRisk)
	assert.Equal(t, 0.0, analysis.PropertyRentingRisk)
}

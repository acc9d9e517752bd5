package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lexcase-backend/llm"

	"go.uber.org/zap"
)

const (
	locationMaxRetries     = 3
	locationInitialBackoff = 1 * time.Second
)

// LocationAnalysis scores an address on risk and desirability metrics.
// All values are normalized to the 0..1 range.
type LocationAnalysis struct {
	PropertyBuyingRisk      float64 `json:"property_buying_risk"`
	PropertyRentingRisk     float64 `json:"property_renting_risk"`
	FloodRisk               float64 `json:"flood_risk"`
	CrimeRate               float64 `json:"crime_rate"`
	AirQualityIndex         float64 `json:"air_quality_index"`
	ProximityToAmenities    float64 `json:"proximity_to_amenities"`
	TransportationScore     float64 `json:"transportation_score"`
	NeighborhoodRating      float64 `json:"neighborhood_rating"`
	EnvironmentalHazards    float64 `json:"environmental_hazards"`
	EconomicGrowthPotential float64 `json:"economic_growth_potential"`
}

// GISService analyzes locations named in case assets. Analysis is
// model-derived and nothing is persisted, so a failed attempt can be retried
// safely.
type GISService struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewGISService creates a new GIS analysis service
func NewGISService(completer llm.Completer, logger *zap.Logger) (*GISService, error) {
	if completer == nil {
		return nil, errors.New("completion client not set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GISService{completer: completer, logger: logger}, nil
}

// AnalyzeLocation scores an address. Malformed model output is retried a
// bounded number of times before the call fails.
func (g *GISService) AnalyzeLocation(ctx context.Context, address string) (*LocationAnalysis, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errors.New("address must not be empty")
	}

	promptText, err := locationTemplate.Render(map[string]string{
		"address": address,
	})
	if err != nil {
		return nil, fmt.Errorf("render location prompt: %w", err)
	}

	backoff := locationInitialBackoff
	var lastErr error
	for attempt := 1; attempt <= locationMaxRetries; attempt++ {
		raw, err := g.completer.Complete(ctx, llm.CompletionRequest{
			System:      locationSystem,
			Prompt:      promptText,
			Temperature: 0.2,
		})
		if err != nil {
			lastErr = fmt.Errorf("generate location analysis: %w", err)
		} else {
			analysis, parseErr := parseLocationAnalysis(raw)
			if parseErr == nil {
				return analysis, nil
			}
			lastErr = parseErr
			g.logger.Warn("model returned malformed location analysis",
				zap.String("address", address),
				zap.Int("attempt", attempt),
				zap.Error(parseErr))
		}

		if attempt < locationMaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return nil, lastErr
}

// modelLocation is the shape the model is instructed to return. Pointer
// fields distinguish an omitted or null metric from a genuine zero, so an
// incomplete analysis is rejected instead of passing as all zeroes.
type modelLocation struct {
	PropertyBuyingRisk      *float64 `json:"property_buying_risk"`
	PropertyRentingRisk     *float64 `json:"property_renting_risk"`
	FloodRisk               *float64 `json:"flood_risk"`
	CrimeRate               *float64 `json:"crime_rate"`
	AirQualityIndex         *float64 `json:"air_quality_index"`
	ProximityToAmenities    *float64 `json:"proximity_to_amenities"`
	TransportationScore     *float64 `json:"transportation_score"`
	NeighborhoodRating      *float64 `json:"neighborhood_rating"`
	EnvironmentalHazards    *float64 `json:"environmental_hazards"`
	EconomicGrowthPotential *float64 `json:"economic_growth_potential"`
}

// parseLocationAnalysis parses completion output strictly as the analysis
// schema, requires every metric to be present, and clamps values into 0..1
func parseLocationAnalysis(raw string) (*LocationAnalysis, error) {
	cleaned := stripCodeFences(raw)

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()

	var parsed modelLocation
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing content after analysis object", ErrMalformedModelOutput)
	}

	metrics := map[string]*float64{
		"property_buying_risk":      parsed.PropertyBuyingRisk,
		"property_renting_risk":     parsed.PropertyRentingRisk,
		"flood_risk":                parsed.FloodRisk,
		"crime_rate":                parsed.CrimeRate,
		"air_quality_index":         parsed.AirQualityIndex,
		"proximity_to_amenities":    parsed.ProximityToAmenities,
		"transportation_score":      parsed.TransportationScore,
		"neighborhood_rating":       parsed.NeighborhoodRating,
		"environmental_hazards":     parsed.EnvironmentalHazards,
		"economic_growth_potential": parsed.EconomicGrowthPotential,
	}
	for name, v := range metrics {
		if v == nil {
			return nil, fmt.Errorf("%w: metric %q missing", ErrMalformedModelOutput, name)
		}
		if *v < 0 {
			*v = 0
		}
		if *v > 1 {
			*v = 1
		}
	}

	return &LocationAnalysis{
		PropertyBuyingRisk:      *parsed.PropertyBuyingRisk,
		PropertyRentingRisk:     *parsed.PropertyRentingRisk,
		FloodRisk:               *parsed.FloodRisk,
		CrimeRate:               *parsed.CrimeRate,
		AirQualityIndex:         *parsed.AirQualityIndex,
		ProximityToAmenities:    *parsed.ProximityToAmenities,
		TransportationScore:     *parsed.TransportationScore,
		NeighborhoodRating:      *parsed.NeighborhoodRating,
		EnvironmentalHazards:    *parsed.EnvironmentalHazards,
		EconomicGrowthPotential: *parsed.EconomicGrowthPotential,
	}, nil
}

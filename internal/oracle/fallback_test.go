package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/study-planner-api/internal/models"
)

func TestFallbackEstimateHoursPerPaperType(t *testing.T) {
	cases := []struct {
		paperType string
		units     int
		expected  float64
	}{
		{paperType: "Extended Essay", units: 1, expected: 20},
		{paperType: "Internal Assessment", units: 2, expected: 30},
		{paperType: "Mock IA", units: 2, expected: 30},
		{paperType: "Paper 2 Italian", units: 2, expected: 16},
		{paperType: "Paper 3", units: 2, expected: 20},
		{paperType: "Paper 2", units: 5, expected: 40},
		{paperType: "Paper 1", units: 3, expected: 18},
		{paperType: "Mock", units: 2, expected: 16},
	}

	estimator := NewFallbackEstimator()
	for _, tc := range cases {
		t.Run(tc.paperType, func(t *testing.T) {
			units := make([]string, tc.units)
			for i := range units {
				units[i] = "unit"
			}
			estimate, err := estimator.EstimateExamPrep(context.Background(), EstimateRequest{
				PaperType: tc.paperType,
				Units:     units,
			})
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, estimate.Hours, 0.0001)
			assert.Equal(t, models.EstimateSourceFallback, estimate.Source)
		})
	}
}

func TestFallbackEstimateMinimumFourHours(t *testing.T) {
	estimator := NewFallbackEstimator()

	estimate, err := estimator.EstimateExamPrep(context.Background(), EstimateRequest{PaperType: "Paper 1"})

	require.NoError(t, err)
	assert.InDelta(t, 4, estimate.Hours, 0.0001)
}

func TestFallbackEstimateBreakdownPerUnit(t *testing.T) {
	estimator := NewFallbackEstimator()

	estimate, err := estimator.EstimateExamPrep(context.Background(), EstimateRequest{
		PaperType: "Paper 2",
		Units:     []string{"algebra", "geometry"},
	})

	require.NoError(t, err)
	require.Len(t, estimate.Breakdown, 2)
	assert.InDelta(t, 8, estimate.Breakdown["algebra"], 0.0001)
	assert.InDelta(t, 8, estimate.Breakdown["geometry"], 0.0001)
	assert.NotEmpty(t, estimate.Reasoning)
	assert.NotEmpty(t, estimate.Recommendation)
}

func TestFallbackGenerateSessionsCyclesUnitsWithRisingDifficulty(t *testing.T) {
	estimator := NewFallbackEstimator()

	events, err := estimator.GenerateSessions(context.Background(), GenerateRequest{
		Subject:      "Mathematics",
		Units:        []string{"algebra", "geometry"},
		SessionCount: 6,
	})

	require.NoError(t, err)
	require.Len(t, events, 8)
	assert.Equal(t, EventToolStart, events[0].Kind)
	assert.Equal(t, EventToolEnd, events[len(events)-1].Kind)

	drafts := Drafts(events)
	require.Len(t, drafts, 6)
	assert.Equal(t, "algebra", drafts[0].Topic)
	assert.Equal(t, "geometry", drafts[1].Topic)
	assert.Equal(t, models.DifficultyEasy, drafts[0].Difficulty)
	assert.Equal(t, models.DifficultyMedium, drafts[2].Difficulty)
	assert.Equal(t, models.DifficultyHard, drafts[4].Difficulty)
}

func TestFallbackGenerateSessionsWithoutUnitsUsesSubject(t *testing.T) {
	estimator := NewFallbackEstimator()

	events, err := estimator.GenerateSessions(context.Background(), GenerateRequest{
		Subject:      "Mathematics",
		SessionCount: 2,
	})

	require.NoError(t, err)
	drafts := Drafts(events)
	require.Len(t, drafts, 2)
	assert.Equal(t, "Mathematics", drafts[0].Topic)
}

func TestFallbackGenerateSessionsZeroCount(t *testing.T) {
	estimator := NewFallbackEstimator()

	events, err := estimator.GenerateSessions(context.Background(), GenerateRequest{SessionCount: 0})

	require.NoError(t, err)
	assert.Nil(t, events)
}

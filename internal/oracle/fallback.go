package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// FallbackEstimator is a deterministic, always-available estimator used when
// the external service is disabled, times out, or returns an out-of-contract
// payload. Hours are derived from the exam type and unit count.
type FallbackEstimator struct{}

// NewFallbackEstimator returns the deterministic estimator.
func NewFallbackEstimator() *FallbackEstimator {
	return &FallbackEstimator{}
}

// hasToken reports whether word appears as a standalone space-separated
// token in s. "ia" must not match inside words like "Italian".
func hasToken(s, word string) bool {
	for _, field := range strings.Fields(s) {
		if field == word {
			return true
		}
	}
	return false
}

// hoursPerUnit maps an exam-type substring to the prep hours one unit needs.
// Matched in order so the more specific types win.
func hoursPerUnit(paperType string) float64 {
	lowered := strings.ToLower(paperType)
	switch {
	case strings.Contains(lowered, "extended essay"):
		return 20
	case strings.Contains(lowered, "internal assessment"), hasToken(lowered, "ia"):
		return 15
	case strings.Contains(lowered, "paper 3"):
		return 10
	case strings.Contains(lowered, "paper 2"):
		return 8
	case strings.Contains(lowered, "paper 1"):
		return 6
	default:
		return 8
	}
}

// EstimateExamPrep implements Estimator.
func (e *FallbackEstimator) EstimateExamPrep(_ context.Context, req EstimateRequest) (Estimate, error) {
	perUnit := hoursPerUnit(req.PaperType)

	hours := float64(len(req.Units)) * perUnit
	if hours < 4 {
		hours = 4
	}

	breakdown := make(map[string]float64, len(req.Units))
	for _, unit := range req.Units {
		breakdown[unit] = perUnit
	}

	return Estimate{
		Hours:     hours,
		Breakdown: breakdown,
		Reasoning: fmt.Sprintf("Rule-based estimate: %d unit(s) at %.0f hours each for %s.",
			len(req.Units), perUnit, req.PaperType),
		Recommendation: "Start with the units you feel least confident about and review the rest closer to the exam.",
		Source:         models.EstimateSourceFallback,
	}, nil
}

// GenerateSessions implements SessionGenerator deterministically: one draft
// per requested session, cycling through the unit list with difficulty rising
// in thirds. The planner already decides dates and durations.
func (e *FallbackEstimator) GenerateSessions(_ context.Context, req GenerateRequest) ([]ScheduleEvent, error) {
	if req.SessionCount <= 0 {
		return nil, nil
	}

	tiers := []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}
	events := []ScheduleEvent{{Kind: EventToolStart}}

	for i := 0; i < req.SessionCount; i++ {
		topic := req.Subject
		if len(req.Units) > 0 {
			topic = req.Units[i%len(req.Units)]
		}
		tier := tiers[min(i*len(tiers)/req.SessionCount, len(tiers)-1)]
		events = append(events, ScheduleEvent{
			Kind:    EventToolData,
			Session: &SessionDraft{Topic: topic, Difficulty: tier},
		})
	}

	events = append(events, ScheduleEvent{Kind: EventToolEnd})
	return events, nil
}

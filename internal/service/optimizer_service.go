package service

import (
	"math"
	"sort"
	"time"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// OptimizerService recommends what the next study session should look like:
// duration, subject, and the topics most in need of review.
type OptimizerService struct {
	now func() time.Time
}

// OptimizerServiceParams configures construction.
type OptimizerServiceParams struct {
	Now func() time.Time
}

// NewOptimizerService constructs the optimizer.
func NewOptimizerService(params OptimizerServiceParams) *OptimizerService {
	if params.Now == nil {
		params.Now = time.Now
	}
	return &OptimizerService{now: params.Now}
}

// SuggestSessionParams carries the data a suggestion is computed from.
type SuggestSessionParams struct {
	History  []models.TaskAttempt
	Sessions []models.StudySession
	Exams    []models.Exam
	Subjects []models.Subject
}

// SuggestNextSession recommends a duration from recent session lengths, picks
// the subject whose upcoming exam carries the most risk, and surfaces the
// three topics scoring worst on the struggling-plus-stale metric.
func (s *OptimizerService) SuggestNextSession(params SuggestSessionParams) models.SessionSuggestion {
	now := s.now()

	duration := recommendDuration(params.Sessions)

	subjectNames := make(map[string]string, len(params.Subjects))
	for _, subject := range params.Subjects {
		subjectNames[subject.ID] = subject.Name
	}

	subjectID, priority, found := s.pickSubject(params.Exams, params.History, now)
	if !found {
		return models.SessionSuggestion{
			RecommendedDuration: duration,
			SuggestedSubject:    "General Review",
			SuggestedTopics:     []string{},
			Reasoning:           "maintenance and review",
		}
	}

	name := subjectNames[subjectID]
	if name == "" {
		name = subjectID
	}

	var reasoning string
	switch {
	case priority > 5:
		reasoning = "urgent exam preparation needed"
	case priority > 2:
		reasoning = "moderate preparation recommended"
	default:
		reasoning = "maintenance and review"
	}

	return models.SessionSuggestion{
		RecommendedDuration: duration,
		SuggestedSubject:    name,
		SuggestedTopics:     pickTopics(params.History, subjectID, now),
		Reasoning:           reasoning,
	}
}

// recommendDuration averages the five most recent session lengths with a
// burnout guard on both ends. Sessions arrive newest-first.
func recommendDuration(sessions []models.StudySession) int {
	window := sessions
	if len(window) > 5 {
		window = window[:5]
	}

	var total float64
	for _, session := range window {
		total += float64(session.DurationMinutes)
	}

	var avg float64
	if len(window) > 0 {
		avg = total / float64(len(window))
	}

	switch {
	case avg < 20:
		return 25
	case avg > 60:
		return 45
	default:
		return int(math.Round(avg))
	}
}

// pickSubject keeps the single highest-risk subject among upcoming exams.
// A subject with no attempt history at all wins immediately: unknown means
// risky.
func (s *OptimizerService) pickSubject(exams []models.Exam, history []models.TaskAttempt, now time.Time) (string, float64, bool) {
	attemptsBySubject := make(map[string][]models.TaskAttempt)
	for _, attempt := range history {
		attemptsBySubject[attempt.SubjectID] = append(attemptsBySubject[attempt.SubjectID], attempt)
	}

	var bestSubject string
	var bestPriority float64
	found := false

	for i := range exams {
		exam := &exams[i]
		if !exam.ExamDate.After(now) {
			continue
		}

		attempts := attemptsBySubject[exam.SubjectID]
		if len(attempts) == 0 {
			return exam.SubjectID, math.Inf(1), true
		}

		correct := 0
		for _, attempt := range attempts {
			if attempt.Correct {
				correct++
			}
		}
		successRate := float64(correct) / float64(len(attempts))

		daysUntil := exam.ExamDate.Sub(now).Hours() / 24
		priority := (1 / math.Max(daysUntil, 0.5)) * (1 - successRate) * exam.Weight

		if !found || priority > bestPriority {
			bestSubject = exam.SubjectID
			bestPriority = priority
			found = true
		}
	}

	return bestSubject, bestPriority, found
}

// pickTopics ranks the subject's topics by a combined struggling-and-stale
// score and returns the top three.
func pickTopics(history []models.TaskAttempt, subjectID string, now time.Time) []string {
	type topicStats struct {
		total    int
		correct  int
		lastSeen time.Time
	}

	stats := make(map[string]*topicStats)
	order := make([]string, 0)
	for _, attempt := range history {
		if attempt.SubjectID != subjectID || attempt.Topic == "" {
			continue
		}
		ts, ok := stats[attempt.Topic]
		if !ok {
			ts = &topicStats{}
			stats[attempt.Topic] = ts
			order = append(order, attempt.Topic)
		}
		ts.total++
		if attempt.Correct {
			ts.correct++
		}
		if attempt.AttemptedAt.After(ts.lastSeen) {
			ts.lastSeen = attempt.AttemptedAt
		}
	}

	type scored struct {
		topic string
		need  float64
	}
	needs := make([]scored, 0, len(order))
	for _, topic := range order {
		ts := stats[topic]
		successRate := float64(ts.correct) / float64(ts.total)
		daysSince := now.Sub(ts.lastSeen).Hours() / 24
		needs = append(needs, scored{
			topic: topic,
			need:  (1 - successRate) + daysSince/7,
		})
	}

	// Stable sort keeps insertion order on exact ties.
	sort.SliceStable(needs, func(i, j int) bool {
		return needs[i].need > needs[j].need
	})

	topics := make([]string, 0, 3)
	for _, entry := range needs {
		topics = append(topics, entry.topic)
		if len(topics) == 3 {
			break
		}
	}
	return topics
}

package oracle

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/prepdeck/study-planner-api/internal/models"
)

// EventKind discriminates the typed events produced by the stream parser.
type EventKind string

const (
	EventToolStart EventKind = "tool_start"
	EventToolData  EventKind = "tool_data"
	EventToolEnd   EventKind = "tool_end"
	EventNarrative EventKind = "narrative"
)

// SessionDraft is a session topic announced by the generation service. The
// planner fills in the date, time of day, and duration before persisting.
type SessionDraft struct {
	Topic      string            `json:"topic"`
	Difficulty models.Difficulty `json:"difficulty"`
}

// ScheduleEvent is one parsed event from the generation stream. Session is
// non-nil only for EventToolData; Text is set only for EventNarrative.
type ScheduleEvent struct {
	Kind    EventKind
	Session *SessionDraft
	Text    string
}

// ParseScheduleStream reads a line-delimited generation stream and converts
// it into typed events. Tool-data lines whose payload fails to decode are
// dropped rather than failing the whole stream; the count of dropped lines is
// returned so the caller can log and backfill from the deterministic plan.
func ParseScheduleStream(r io.Reader) ([]ScheduleEvent, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var events []ScheduleEvent
	dropped := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == string(EventToolStart):
			events = append(events, ScheduleEvent{Kind: EventToolStart})
		case line == string(EventToolEnd):
			events = append(events, ScheduleEvent{Kind: EventToolEnd})
		case strings.HasPrefix(line, string(EventToolData)+" "):
			payload := strings.TrimPrefix(line, string(EventToolData)+" ")
			var draft SessionDraft
			if err := json.Unmarshal([]byte(payload), &draft); err != nil || draft.Topic == "" {
				dropped++
				continue
			}
			draft.Difficulty = normalizeDifficulty(draft.Difficulty)
			events = append(events, ScheduleEvent{Kind: EventToolData, Session: &draft})
		default:
			events = append(events, ScheduleEvent{Kind: EventNarrative, Text: line})
		}
	}

	if err := scanner.Err(); err != nil {
		return events, dropped, fmt.Errorf("read generation stream: %w", err)
	}

	return events, dropped, nil
}

// Drafts extracts the session drafts from a parsed event stream, in order.
func Drafts(events []ScheduleEvent) []SessionDraft {
	var drafts []SessionDraft
	for _, ev := range events {
		if ev.Kind == EventToolData && ev.Session != nil {
			drafts = append(drafts, *ev.Session)
		}
	}
	return drafts
}

func normalizeDifficulty(d models.Difficulty) models.Difficulty {
	switch models.Difficulty(strings.ToLower(string(d))) {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard, models.DifficultyExpert:
		return models.Difficulty(strings.ToLower(string(d)))
	default:
		return models.DifficultyMedium
	}
}

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// ScheduleRow is one rendered study session line.
type ScheduleRow struct {
	Date       string
	TimeOfDay  string
	Topic      string
	Difficulty string
	Duration   string
	Status     string
}

// Schedule is a plan's session table plus display metadata.
type Schedule struct {
	Title   string
	Summary string
	Rows    []ScheduleRow
}

var scheduleHeaders = []string{"Date", "Time of day", "Topic", "Difficulty", "Duration (min)", "Status"}

func (r ScheduleRow) record() []string {
	return []string{r.Date, r.TimeOfDay, r.Topic, r.Difficulty, r.Duration, r.Status}
}

// CSVExporter renders a schedule into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the schedule.
func (e *CSVExporter) Render(schedule Schedule) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(scheduleHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range schedule.Rows {
		if err := writer.Write(row.record()); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

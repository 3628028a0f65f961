// Package task holds the user's task records and the recurring-task
// reset logic. Tasks are created both from the task API and from the
// model's add_task tool calls.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is how often a recurring task repeats.
type Frequency string

// The closed set of task frequencies.
const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// ParseFrequency maps a string to a Frequency, case-insensitively.
// An empty input yields an empty Frequency (one-off task).
func ParseFrequency(value string) (Frequency, error) {
	if value == "" {
		return "", nil
	}
	switch f := Frequency(strings.ToUpper(value)); f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return f, nil
	}
	return "", fmt.Errorf("invalid frequency value: %s", value)
}

// Task is one task record.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Frequency   Frequency  `json:"frequency,omitempty"`
	Recurring   bool       `json:"recurring"`
	Completed   bool       `json:"completed"`

	// SpecificDate is the optional due date.
	SpecificDate *time.Time `json:"specific_date,omitempty"`

	// SpecificTime is the optional time of day, "HH:MM".
	SpecificTime string `json:"specific_time,omitempty"`

	// CompletionCount and MissedCount accumulate across recurring
	// resets.
	CompletionCount int `json:"completion_count"`
	MissedCount     int `json:"missed_count"`

	// CompletedAt is the most recent completion, if any.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

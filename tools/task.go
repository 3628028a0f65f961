package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/coachly/coachd/core"
	"github.com/coachly/coachd/task"
)

var validate = validator.New()

// addTaskInput is the add_task tool input. Validation mirrors the task
// domain: frequency is a closed set, time of day is HH:MM, the date is
// ISO formatted.
type addTaskInput struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	Frequency    string `json:"frequency" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	SpecificDate string `json:"specific_date" validate:"omitempty,datetime=2006-01-02"`
	SpecificTime string `json:"specific_time" validate:"omitempty,datetime=15:04"`
	Recurring    bool   `json:"recurring"`
}

// NewAddTaskTool creates the add_task tool over the store. All input
// failures come back as descriptive tool errors so the model can
// correct itself and retry.
func NewAddTaskTool(store *task.Store) core.Tool {
	return New("add_task").
		Description("Adds a new task to the user's task list.").
		Schema(ObjectSchema(map[string]interface{}{
			"title":         StringProperty("Title of the task"),
			"description":   StringProperty("Description of the task"),
			"frequency":     StringEnumProperty("Frequency of the task", "DAILY", "WEEKLY", "MONTHLY", "YEARLY"),
			"specific_date": StringProperty("Specific date for the task in ISO format (YYYY-MM-DD)"),
			"specific_time": StringProperty("Specific time for the task (HH:MM)"),
			"recurring":     BooleanProperty("Whether the task is recurring"),
		}, "title")).
		Handler(func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
			var input addTaskInput
			if err := json.Unmarshal(params.Input, &input); err != nil {
				return toolError("invalid input: %v", err), nil
			}
			input.Frequency = strings.ToUpper(input.Frequency)
			if err := validate.Struct(input); err != nil {
				return toolError("%s", describeValidation(err)), nil
			}

			frequency, err := task.ParseFrequency(input.Frequency)
			if err != nil {
				return toolError("%v", err), nil
			}

			t := &task.Task{
				UserID:       params.UserID,
				Title:        input.Title,
				Description:  input.Description,
				Frequency:    frequency,
				SpecificTime: input.SpecificTime,
				Recurring:    input.Recurring,
			}
			if input.SpecificDate != "" {
				date, err := time.Parse("2006-01-02", input.SpecificDate)
				if err != nil {
					return toolError("invalid specific_date format, use YYYY-MM-DD: %v", err), nil
				}
				t.SpecificDate = &date
			}

			if err := store.Create(ctx, t); err != nil {
				return nil, fmt.Errorf("create task: %w", err)
			}

			return &core.ToolResult{
				Success: true,
				Data:    fmt.Sprintf("Task %q added successfully.", t.Title),
			}, nil
		})
}

// NewListTasksTool creates the list_tasks tool over the store.
func NewListTasksTool(store *task.Store) core.Tool {
	return New("list_tasks").
		Description("Lists the user's tasks with their status and schedule.").
		Schema(ObjectSchema(map[string]interface{}{})).
		Handler(func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
			tasks, err := store.ListByUser(ctx, params.UserID)
			if err != nil {
				return nil, fmt.Errorf("list tasks: %w", err)
			}
			if len(tasks) == 0 {
				return &core.ToolResult{Success: true, Data: "The task list is empty."}, nil
			}
			return &core.ToolResult{Success: true, Data: map[string]interface{}{
				"count": len(tasks),
				"tasks": tasks,
			}}, nil
		})
}

func toolError(format string, args ...interface{}) *core.ToolResult {
	return &core.ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// describeValidation turns validator errors into messages the model
// can act on.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	var parts []string
	for _, fe := range verrs {
		switch fe.Field() {
		case "Title":
			parts = append(parts, "title is required to add a task")
		case "Frequency":
			parts = append(parts, fmt.Sprintf("invalid frequency %q, must be one of DAILY, WEEKLY, MONTHLY, YEARLY", fe.Value()))
		case "SpecificDate":
			parts = append(parts, fmt.Sprintf("invalid specific_date %q, use YYYY-MM-DD", fe.Value()))
		case "SpecificTime":
			parts = append(parts, fmt.Sprintf("invalid specific_time %q, use HH:MM with 00-23 hours and 00-59 minutes", fe.Value()))
		default:
			parts = append(parts, fe.Error())
		}
	}
	return strings.Join(parts, "; ")
}

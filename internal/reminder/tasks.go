package reminder

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskReminderSweep = "reminders.sweep"

type SweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewSweepTask(payload SweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReminderSweep, data), nil
}

func ParseSweepPayload(task *asynq.Task) (SweepPayload, error) {
	var payload SweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SweepPayload{}, err
	}
	return payload, nil
}

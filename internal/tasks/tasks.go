package tasks

import (
	"fmt"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const TypeRenewalSweep = "renewal:sweep"
const TypeRenewalRemind = "renewal:remind"

const QueueReminders = "reminders"

type RenewalRemindPayload struct {
	UserId     string `json:"user_id"`
	VideoId    string `json:"video_id"`
	VideoTitle string `json:"video_title"`
}

func NewRenewalSweep() *asynq.Task {
	return asynq.NewTask(TypeRenewalSweep, nil)
}

func NewRenewalRemind(payload RenewalRemindPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return asynq.NewTask(TypeRenewalRemind, data, asynq.Queue(QueueReminders)), nil
}

func ParseRenewalRemind(task *asynq.Task) (RenewalRemindPayload, error) {
	var payload RenewalRemindPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RenewalRemindPayload{}, fmt.Errorf("json.Unmarshal: %w", err)
	}
	return payload, nil
}

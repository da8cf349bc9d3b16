package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeadExpire is scheduled once per direct lead, at the moment its
// exclusivity window closes.
const TaskLeadExpire = "leads.expire"

// TaskLeadExpireSweep promotes every overdue direct lead in one pass. It is
// the safety net for leads whose precise expiry task was lost.
const TaskLeadExpireSweep = "leads.expire.sweep"

type LeadExpirePayload struct {
	LeadID string `json:"leadId"`
}

func NewLeadExpireTask(payload LeadExpirePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadExpire, data), nil
}

func ParseLeadExpirePayload(task *asynq.Task) (LeadExpirePayload, error) {
	var payload LeadExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadExpirePayload{}, err
	}
	return payload, nil
}

func NewLeadExpireSweepTask() *asynq.Task {
	return asynq.NewTask(TaskLeadExpireSweep, nil)
}

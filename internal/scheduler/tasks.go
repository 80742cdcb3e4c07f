package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAssignmentDispatch = "assignments.dispatch"

const TaskAssignmentExpire = "assignments.expire"

type AssignmentDispatchPayload struct {
	AssignmentID string `json:"assignmentId"`
	TenantID     string `json:"tenantId"`
}

func NewAssignmentDispatchTask(payload AssignmentDispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssignmentDispatch, data), nil
}

func ParseAssignmentDispatchPayload(task *asynq.Task) (AssignmentDispatchPayload, error) {
	var payload AssignmentDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AssignmentDispatchPayload{}, err
	}
	return payload, nil
}

func NewAssignmentExpireTask() *asynq.Task {
	return asynq.NewTask(TaskAssignmentExpire, nil)
}

package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dunamismax/pnmflow/internal/domain"
	"github.com/hibiken/asynq"
)

const TypeProcessImage = "pnm:process"

type ProcessImagePayload struct {
	JobID       string                `json:"job_id"`
	SourceType  string                `json:"source_type"`
	WebhookURL  string                `json:"webhook_url,omitempty"`
	ObjectKey   string                `json:"object_key"`
	Pipeline    []domain.PipelineStep `json:"pipeline"`
	RequestedAt time.Time             `json:"requested_at"`
}

func NewProcessImageTask(payload ProcessImagePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal process payload: %w", err)
	}
	// The job id doubles as the task id so a double start cannot enqueue twice.
	return asynq.NewTask(TypeProcessImage, body, asynq.TaskID(payload.JobID)), nil
}

func ParseProcessImagePayload(task *asynq.Task) (ProcessImagePayload, error) {
	var payload ProcessImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProcessImagePayload{}, fmt.Errorf("unmarshal process payload: %w", err)
	}
	if payload.JobID == "" {
		return ProcessImagePayload{}, fmt.Errorf("process payload has no job_id")
	}
	return payload, nil
}

package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	JobStatusCreated    = "created"
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusSucceeded  = "succeeded"
	JobStatusFailed     = "failed"

	SourceTypeLocalFile   = "local_file"
	SourceTypeS3Presigned = "s3_presigned"

	ActionConvert   = "convert"
	ActionGrayscale = "grayscale"
	ActionResize    = "resize"
	ActionBlur      = "blur"
	ActionThumbnail = "thumbnail"
)

type CreateJobRequest struct {
	UserID     string         `json:"user_id,omitempty"`
	SourceType string         `json:"source_type"`
	WebhookURL string         `json:"webhook_url,omitempty"`
	ObjectKey  string         `json:"object_key,omitempty"`
	Pipeline   []PipelineStep `json:"pipeline"`
}

// PipelineStep is one output of a job. Every step reads the job source and
// writes a binary PPM.
type PipelineStep struct {
	ID       string  `json:"id"`
	Action   string  `json:"action"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Sigma    float64 `json:"sigma,omitempty"`
	Compress bool    `json:"compress,omitempty"`
}

type Job struct {
	ID         string
	UserID     string
	Status     string
	SourceType string
	WebhookURL string
	Pipeline   []PipelineStep
	ObjectKey  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r CreateJobRequest) Validate() error {
	sourceType := strings.ToLower(strings.TrimSpace(r.SourceType))
	if sourceType == "" {
		return errors.New("source_type is required")
	}
	if sourceType != SourceTypeLocalFile && sourceType != SourceTypeS3Presigned {
		return fmt.Errorf("unsupported source_type: %s", r.SourceType)
	}
	if sourceType == SourceTypeLocalFile && strings.TrimSpace(r.ObjectKey) == "" {
		return errors.New("object_key is required for source_type=local_file")
	}
	if len(r.Pipeline) == 0 {
		return errors.New("pipeline must contain at least one step")
	}

	seen := make(map[string]struct{}, len(r.Pipeline))
	for i, step := range r.Pipeline {
		id := strings.TrimSpace(step.ID)
		if id == "" {
			return fmt.Errorf("pipeline[%d].id is required", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("pipeline[%d].id %q is duplicated", i, id)
		}
		seen[id] = struct{}{}
		if err := step.Validate(); err != nil {
			return fmt.Errorf("pipeline[%d]: %w", i, err)
		}
	}
	return nil
}

func (s PipelineStep) Validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Action)) {
	case "":
		return errors.New("action is required")
	case ActionConvert, ActionGrayscale:
		return nil
	case ActionResize:
		if s.Width <= 0 {
			return errors.New("resize requires width > 0")
		}
		return nil
	case ActionThumbnail:
		if s.Width <= 0 || s.Height <= 0 {
			return errors.New("thumbnail requires width > 0 and height > 0")
		}
		return nil
	case ActionBlur:
		if s.Sigma <= 0 {
			return errors.New("blur requires sigma > 0")
		}
		return nil
	default:
		return fmt.Errorf("unsupported action: %s", s.Action)
	}
}

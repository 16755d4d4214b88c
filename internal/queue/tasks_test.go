package queue

import (
	"testing"
	"time"

	"github.com/dunamismax/pnmflow/internal/domain"
	"github.com/hibiken/asynq"
)

func TestProcessImageTaskRoundTrip(t *testing.T) {
	payload := ProcessImagePayload{
		JobID:      "job-123",
		SourceType: domain.SourceTypeS3Presigned,
		ObjectKey:  "uploads/job-123/source",
		Pipeline: []domain.PipelineStep{
			{
				ID:       "gray",
				Action:   domain.ActionGrayscale,
				Compress: true,
			},
		},
		RequestedAt: time.Now().UTC(),
	}

	task, err := NewProcessImageTask(payload)
	if err != nil {
		t.Fatalf("NewProcessImageTask returned error: %v", err)
	}
	if task.Type() != TypeProcessImage {
		t.Fatalf("expected task type %q, got %q", TypeProcessImage, task.Type())
	}

	parsed, err := ParseProcessImagePayload(task)
	if err != nil {
		t.Fatalf("ParseProcessImagePayload returned error: %v", err)
	}

	if parsed.JobID != payload.JobID {
		t.Fatalf("expected job_id %q, got %q", payload.JobID, parsed.JobID)
	}
	if len(parsed.Pipeline) != 1 || !parsed.Pipeline[0].Compress {
		t.Fatalf("expected one compressed pipeline step, got %+v", parsed.Pipeline)
	}
}

func TestParseProcessImagePayloadRejectsMissingJobID(t *testing.T) {
	task := asynq.NewTask(TypeProcessImage, []byte(`{"source_type":"local_file"}`))
	if _, err := ParseProcessImagePayload(task); err == nil {
		t.Fatal("expected error for payload without job_id")
	}
}

package worker

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/dunamismax/pnmflow/internal/domain"
	"github.com/dunamismax/pnmflow/internal/pipeline"
	"github.com/dunamismax/pnmflow/internal/queue"
	"github.com/dunamismax/pnmflow/internal/store"
	"github.com/dunamismax/pnmflow/internal/webhook"
	"github.com/hibiken/asynq"
)

type fakeProcessor struct {
	result pipeline.Result
	err    error
	calls  []pipeline.Request
}

func (p *fakeProcessor) Process(_ context.Context, req pipeline.Request) (pipeline.Result, error) {
	p.calls = append(p.calls, req)
	return p.result, p.err
}

type captureWebhook struct {
	events []string
	err    error
}

func (w *captureWebhook) Send(_ context.Context, _ string, event string, _ any) error {
	w.events = append(w.events, event)
	return w.err
}

type captureUsageStore struct {
	called bool
	log    domain.UsageLog
}

func (s *captureUsageStore) CreateUsageLog(_ context.Context, usage domain.UsageLog) error {
	s.called = true
	s.log = usage
	return nil
}

func seedJob(t *testing.T, jobs *store.MemoryJobStore, id, sourceType string) {
	t.Helper()
	if err := jobs.Create(context.Background(), domain.Job{
		ID:         id,
		UserID:     "user-1",
		Status:     domain.JobStatusQueued,
		SourceType: sourceType,
		ObjectKey:  "input.ppm",
		Pipeline:   []domain.PipelineStep{{ID: "thumb", Action: domain.ActionResize, Width: 100}},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed job: %v", err)
	}
}

func processTask(t *testing.T, id, sourceType string) *asynq.Task {
	t.Helper()
	task, err := queue.NewProcessImageTask(queue.ProcessImagePayload{
		JobID:      id,
		SourceType: sourceType,
		WebhookURL: "https://hooks.test/pnm",
		ObjectKey:  "input.ppm",
		Pipeline:   []domain.PipelineStep{{ID: "thumb", Action: domain.ActionResize, Width: 100}},
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func TestHandleProcessImageSuccess(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	seedJob(t, jobs, "job-1", domain.SourceTypeLocalFile)
	local := &fakeProcessor{result: pipeline.Result{
		SourceBytes: 50,
		Outputs:     []pipeline.Output{{StepID: "thumb", Width: 4, Height: 3, Bytes: 47, Success: true}},
	}}
	object := &fakeProcessor{}
	hooks := &captureWebhook{}
	s := newServer(log.New(io.Discard, "", 0), 1, local, object, jobs, jobs)
	s.webhookClient = hooks

	if err := s.handleProcessImage(context.Background(), processTask(t, "job-1", domain.SourceTypeLocalFile)); err != nil {
		t.Fatalf("handle task: %v", err)
	}
	if len(local.calls) != 1 || len(object.calls) != 0 {
		t.Fatalf("expected local processor only, got local=%d object=%d", len(local.calls), len(object.calls))
	}
	job, _, _ := jobs.Get(context.Background(), "job-1")
	if job.Status != domain.JobStatusSucceeded {
		t.Fatalf("expected status succeeded, got %s", job.Status)
	}
	if len(hooks.events) != 1 || hooks.events[0] != webhook.EventJobCompleted {
		t.Fatalf("expected completed webhook, got %v", hooks.events)
	}
	if logs := jobs.UsageLogs(); len(logs) != 1 || logs[0].PixelsProcessed != 12 {
		t.Fatalf("expected one usage log with 12 pixels, got %+v", logs)
	}
}

func TestHandleProcessImageFailure(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	seedJob(t, jobs, "job-2", domain.SourceTypeS3Presigned)
	object := &fakeProcessor{err: errors.New("decode source: pnm: malformed image")}
	hooks := &captureWebhook{}
	s := newServer(log.New(io.Discard, "", 0), 1, &fakeProcessor{}, object, jobs, jobs)
	s.webhookClient = hooks

	if err := s.handleProcessImage(context.Background(), processTask(t, "job-2", domain.SourceTypeS3Presigned)); err == nil {
		t.Fatal("expected pipeline error")
	}
	job, _, _ := jobs.Get(context.Background(), "job-2")
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("expected status failed, got %s", job.Status)
	}
	if len(hooks.events) != 1 || hooks.events[0] != webhook.EventJobFailed {
		t.Fatalf("expected failed webhook, got %v", hooks.events)
	}
	if logs := jobs.UsageLogs(); len(logs) != 0 {
		t.Fatalf("expected no usage logs for failed job, got %d", len(logs))
	}
}

func TestHandleProcessImageSkipsRetryOnBadPayload(t *testing.T) {
	s := newServer(log.New(io.Discard, "", 0), 1, &fakeProcessor{}, &fakeProcessor{}, nil, nil)
	err := s.handleProcessImage(context.Background(), asynq.NewTask(queue.TypeProcessImage, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandleProcessImageWebhookFailureRetries(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	seedJob(t, jobs, "job-3", domain.SourceTypeLocalFile)
	s := newServer(log.New(io.Discard, "", 0), 1, &fakeProcessor{}, &fakeProcessor{}, jobs, jobs)
	s.webhookClient = &captureWebhook{err: errors.New("connection refused")}

	if err := s.handleProcessImage(context.Background(), processTask(t, "job-3", domain.SourceTypeLocalFile)); err == nil {
		t.Fatal("expected webhook error to surface for retry")
	}
}

func TestRecordUsageWritesUsageLog(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	seedJob(t, jobs, "job-1", domain.SourceTypeLocalFile)

	usageStore := &captureUsageStore{}
	s := newServer(log.New(io.Discard, "", 0), 1, nil, nil, jobs, usageStore)

	s.recordUsage(context.Background(), "job-1", pipeline.Result{
		SourceBytes: 1_000,
		Outputs: []pipeline.Output{
			{Width: 10, Height: 10, Bytes: 300},
			{Width: 20, Height: 20, Bytes: 400},
		},
	}, 250*time.Millisecond)

	if !usageStore.called {
		t.Fatal("expected usage log to be written")
	}
	if usageStore.log.UserID != "user-1" {
		t.Fatalf("expected user_id=user-1, got %s", usageStore.log.UserID)
	}
	if usageStore.log.PixelsProcessed != 500 {
		t.Fatalf("expected pixels_processed=500, got %d", usageStore.log.PixelsProcessed)
	}
	if usageStore.log.SourceBytes != 1_000 || usageStore.log.OutputBytes != 700 {
		t.Fatalf("expected source=1000 output=700, got source=%d output=%d", usageStore.log.SourceBytes, usageStore.log.OutputBytes)
	}
	if usageStore.log.ComputeTimeMS != 250 {
		t.Fatalf("expected compute_time_ms=250, got %d", usageStore.log.ComputeTimeMS)
	}
}

func TestRecordUsageDefaultsAnonymousAndMinimumCompute(t *testing.T) {
	usageStore := &captureUsageStore{}
	s := newServer(log.New(io.Discard, "", 0), 1, nil, nil, nil, usageStore)

	s.recordUsage(context.Background(), "job-2", pipeline.Result{
		SourceBytes: 100,
		Outputs:     []pipeline.Output{{Width: 5, Height: 5, Bytes: 200}},
	}, 0)

	if usageStore.log.UserID != "anonymous" {
		t.Fatalf("expected anonymous user, got %s", usageStore.log.UserID)
	}
	if usageStore.log.ComputeTimeMS != 1 {
		t.Fatalf("expected compute_time_ms=1, got %d", usageStore.log.ComputeTimeMS)
	}
}

package domain

import "testing"

func TestCreateJobRequestValidate(t *testing.T) {
	valid := CreateJobRequest{
		SourceType: SourceTypeS3Presigned,
		Pipeline: []PipelineStep{
			{
				ID:     "as_ppm",
				Action: ActionConvert,
			},
			{
				ID:     "thumb_small",
				Action: ActionResize,
				Width:  64,
			},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid request, got error: %v", err)
	}

	invalid := CreateJobRequest{}
	if err := invalid.Validate(); err == nil {
		t.Fatal("expected validation error for empty request")
	}

	missingObjectKey := CreateJobRequest{
		SourceType: SourceTypeLocalFile,
		Pipeline: []PipelineStep{
			{
				ID:     "as_ppm",
				Action: ActionConvert,
			},
		},
	}
	if err := missingObjectKey.Validate(); err == nil {
		t.Fatal("expected validation error for local_file object_key")
	}

	unsupportedSourceType := CreateJobRequest{
		SourceType: "http_url",
		Pipeline: []PipelineStep{
			{
				ID:     "as_ppm",
				Action: ActionConvert,
			},
		},
	}
	if err := unsupportedSourceType.Validate(); err == nil {
		t.Fatal("expected validation error for unsupported source_type")
	}

	duplicateIDs := CreateJobRequest{
		SourceType: SourceTypeS3Presigned,
		Pipeline: []PipelineStep{
			{ID: "out", Action: ActionConvert},
			{ID: "out", Action: ActionGrayscale},
		},
	}
	if err := duplicateIDs.Validate(); err == nil {
		t.Fatal("expected validation error for duplicated step ids")
	}
}

func TestPipelineStepValidate(t *testing.T) {
	tests := []struct {
		name    string
		step    PipelineStep
		wantErr bool
	}{
		{name: "convert", step: PipelineStep{Action: ActionConvert}},
		{name: "grayscale mixed case", step: PipelineStep{Action: " Grayscale "}},
		{name: "resize", step: PipelineStep{Action: ActionResize, Width: 10}},
		{name: "resize without width", step: PipelineStep{Action: ActionResize}, wantErr: true},
		{name: "thumbnail", step: PipelineStep{Action: ActionThumbnail, Width: 32, Height: 32}},
		{name: "thumbnail without height", step: PipelineStep{Action: ActionThumbnail, Width: 32}, wantErr: true},
		{name: "blur", step: PipelineStep{Action: ActionBlur, Sigma: 1.5}},
		{name: "blur without sigma", step: PipelineStep{Action: ActionBlur}, wantErr: true},
		{name: "missing action", step: PipelineStep{}, wantErr: true},
		{name: "unknown action", step: PipelineStep{Action: "watermark"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

package ratelimit

import (
	"testing"
	"time"
)

func TestNewRedisTokenBucketValidates(t *testing.T) {
	if _, err := NewRedisTokenBucket(nil, 10, time.Minute, ""); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		in      any
		want    int64
		wantErr bool
	}{
		{in: int64(7), want: 7},
		{in: 3, want: 3},
		{in: float64(2.9), want: 2},
		{in: "42", want: 42},
		{in: "x", wantErr: true},
		{in: []byte("1"), wantErr: true},
	}

	for _, tt := range tests {
		got, err := toInt64(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %#v", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %#v: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("expected %d for %#v, got %d", tt.want, tt.in, got)
		}
	}
}

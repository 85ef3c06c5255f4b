package publish

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/postpilot/postpilot/pkg/models"
)

func TestParseScheduleTime_DatetimeLocalString(t *testing.T) {
	got, err := ParseScheduleTime(json.RawMessage(`"2026-09-15T10:30"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 9, 15, 10, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseScheduleTime_SpaceSeparator(t *testing.T) {
	got, err := ParseScheduleTime(json.RawMessage(`"2026-09-15 10:30"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 9, 15, 10, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseScheduleTime_WithSeconds(t *testing.T) {
	got, err := ParseScheduleTime(json.RawMessage(`"2026-09-15T10:30:45"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 9, 15, 10, 30, 45, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseScheduleTime_RFC3339(t *testing.T) {
	got, err := ParseScheduleTime(json.RawMessage(`"2026-09-15T10:30:00Z"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseScheduleTime_EpochMillisNumber(t *testing.T) {
	got, err := ParseScheduleTime(json.RawMessage(`1789468200000`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.UnixMilli(1789468200000)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseScheduleTime_EpochMillisString(t *testing.T) {
	got, err := ParseScheduleTime(json.RawMessage(`"1789468200000"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.UnixMilli(1789468200000)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseScheduleTime_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty raw", ``},
		{"json null", `null`},
		{"empty string", `""`},
		{"whitespace string", `"   "`},
		{"garbage string", `"next tuesday-ish"`},
		{"wrong type", `true`},
		{"object", `{"at": "2026-09-15T10:30"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScheduleTime(json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var vErr *models.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if vErr.Field != "scheduleTime" {
				t.Errorf("expected field 'scheduleTime', got %q", vErr.Field)
			}
		})
	}
}

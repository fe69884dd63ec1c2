package service

import (
	"testing"
	"time"
)

func TestWeekStartOf(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "monday maps to itself",
			in:   time.Date(2026, 8, 17, 9, 30, 0, 0, time.UTC),
			want: time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "thursday maps back to monday",
			in:   time.Date(2026, 8, 20, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday maps back six days",
			in:   time.Date(2026, 8, 23, 0, 0, 1, 0, time.UTC),
			want: time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "year boundary",
			in:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStartOf(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStartOf(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWeekLabelRoundTrip(t *testing.T) {
	starts := []time.Time{
		time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), // 2026-W01
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}

	for _, start := range starts {
		label := WeekLabel(start)
		parsed, err := ParseWeekLabel(label)
		if err != nil {
			t.Fatalf("ParseWeekLabel(%q): %v", label, err)
		}
		if !parsed.Equal(start) {
			t.Errorf("round trip %q: got %v, want %v", label, parsed, start)
		}
	}
}

func TestParseWeekLabelInvalid(t *testing.T) {
	for _, label := range []string{"", "2026", "2026-W0", "2026-W54", "garbage"} {
		if _, err := ParseWeekLabel(label); err == nil {
			t.Errorf("ParseWeekLabel(%q) expected error", label)
		}
	}
}

package models

import (
	"testing"
	"time"
)

func TestWithinBusinessHours(t *testing.T) {
	cases := []struct {
		start, end string
		utcHour    int
		want       bool
	}{
		{"08:00", "18:00", 15, true},  // 12:00 local
		{"08:00", "18:00", 10, false}, // 07:00 local
		{"08:00", "18:00", 21, true},  // 18:00 local, borda inclusiva
		{"22:00", "06:00", 4, true},   // 01:00 local
		{"22:00", "06:00", 1, true},   // 22:00 local
		{"22:00", "06:00", 9, true},   // 06:00 local
		{"22:00", "06:00", 15, false}, // 12:00 local
	}
	for _, tc := range cases {
		cfg := AutoCloseConfig{BusinessHoursStart: tc.start, BusinessHoursEnd: tc.end}
		now := time.Date(2026, 3, 2, tc.utcHour, 0, 0, 0, time.UTC)
		got, err := cfg.WithinBusinessHours(now, -3)
		if err != nil {
			t.Fatalf("%s-%s: unexpected error %v", tc.start, tc.end, err)
		}
		if got != tc.want {
			t.Errorf("%s-%s at %02d:00 UTC: expected %v, got %v", tc.start, tc.end, tc.utcHour, tc.want, got)
		}
	}
}

func TestWithinBusinessHours_InvalidTime(t *testing.T) {
	cfg := AutoCloseConfig{BusinessHoursStart: "8h", BusinessHoursEnd: "18:00"}
	if _, err := cfg.WithinBusinessHours(time.Now(), -3); err == nil {
		t.Fatal("expected error for invalid start")
	}
}

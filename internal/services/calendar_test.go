package services

import (
	"testing"
	"time"
)

func TestIsWorkday(t *testing.T) {
	svc := NewCalendarService()

	tests := []struct {
		name   string
		date   time.Time
		region string
		want   bool
	}{
		{"tuesday in GB", time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), "GB", true},
		{"saturday in GB", time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC), "GB", false},
		{"christmas in GB", time.Date(2026, 12, 25, 10, 0, 0, 0, time.UTC), "GB", false},
		{"independence day in US", time.Date(2026, 7, 3, 10, 0, 0, 0, time.UTC), "US", false},
		{"christmas with no calendar", time.Date(2026, 12, 25, 10, 0, 0, 0, time.UTC), "NONE", true},
		{"weekend with no calendar", time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC), "NONE", false},
		{"unknown region weekday", time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), "XX", true},
		{"unknown region weekend", time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC), "XX", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsWorkday(tt.date, tt.region); got != tt.want {
				t.Errorf("IsWorkday(%s, %s) = %v, expected %v",
					tt.date.Format("2006-01-02"), tt.region, got, tt.want)
			}
		})
	}
}

func TestSupportedRegions(t *testing.T) {
	regions := NewCalendarService().SupportedRegions()
	if len(regions) == 0 {
		t.Fatal("expected at least one supported region")
	}

	found := false
	for _, r := range regions {
		if r == "GB" {
			found = true
		}
	}
	if !found {
		t.Error("expected GB in supported regions")
	}
}

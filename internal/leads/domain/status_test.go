package domain

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"direct to opportunity", StatusDirect, StatusOpportunity, true},
		{"direct to responded", StatusDirect, StatusResponded, true},
		{"direct to converted", StatusDirect, StatusConverted, true},
		{"opportunity to responded", StatusOpportunity, StatusResponded, true},
		{"opportunity to converted", StatusOpportunity, StatusConverted, true},
		{"responded to converted", StatusResponded, StatusConverted, true},
		{"opportunity back to direct", StatusOpportunity, StatusDirect, false},
		{"responded back to opportunity", StatusResponded, StatusOpportunity, false},
		{"responded back to direct", StatusResponded, StatusDirect, false},
		{"converted to responded", StatusConverted, StatusResponded, false},
		{"converted to direct", StatusConverted, StatusDirect, false},
		{"unknown status", Status("bogus"), StatusResponded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if !StatusConverted.IsTerminal() {
		t.Error("converted should be terminal")
	}
	for _, s := range []Status{StatusDirect, StatusOpportunity, StatusResponded} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now()

	if !IsExpired(StatusDirect, now.Add(-time.Minute), now) {
		t.Error("direct lead past its window should be expired")
	}
	if IsExpired(StatusDirect, now.Add(time.Minute), now) {
		t.Error("direct lead inside its window should not be expired")
	}
	// Boundary: exactly at the deadline counts as expired.
	if !IsExpired(StatusDirect, now, now) {
		t.Error("deadline instant should count as expired")
	}
	// Only direct leads expire.
	for _, s := range []Status{StatusOpportunity, StatusResponded, StatusConverted} {
		if IsExpired(s, now.Add(-time.Hour), now) {
			t.Errorf("%s should never expire", s)
		}
	}
}

func TestIsValid(t *testing.T) {
	for _, s := range []Status{StatusDirect, StatusOpportunity, StatusResponded, StatusConverted} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("pending").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

package entity

import "testing"

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusDraft, true},
		{StatusPending, true},
		{StatusApproved, true},
		{StatusRejected, true},
		{StatusCompleted, true},
		{Status("archived"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_BadgeCoversEveryStatus(t *testing.T) {
	seen := make(map[string]Status)
	for _, status := range Statuses {
		badge := status.Badge()
		if badge.Label == "Unknown" {
			t.Errorf("status %s has no badge", status)
		}
		if prev, dup := seen[badge.Label]; dup {
			t.Errorf("status %s reuses badge label of %s", status, prev)
		}
		seen[badge.Label] = status
	}

	if got := Status("archived").Badge().Label; got != "Unknown" {
		t.Errorf("unknown status badge = %q, want Unknown", got)
	}
}

func TestStepStatus_Badge(t *testing.T) {
	tests := []struct {
		status StepStatus
		label  string
		tone   string
	}{
		{StepWaiting, "Waiting", "neutral"},
		{StepPending, "Pending", "warning"},
		{StepApproved, "Approved", "success"},
		{StepRejected, "Rejected", "danger"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			badge := tt.status.Badge()
			if badge.Label != tt.label || badge.Tone != tt.tone {
				t.Errorf("StepStatus.Badge() = %+v, want label %s tone %s", badge, tt.label, tt.tone)
			}
		})
	}
}

func TestStepStatus_IsDecided(t *testing.T) {
	if StepWaiting.IsDecided() || StepPending.IsDecided() {
		t.Error("undecided step reported as decided")
	}
	if !StepApproved.IsDecided() || !StepRejected.IsDecided() {
		t.Error("decided step reported as undecided")
	}
}

func TestParseRequestID(t *testing.T) {
	year, seq, err := ParseRequestID("RFQ-2023-1286")
	if err != nil {
		t.Fatalf("ParseRequestID() error = %v", err)
	}
	if year != 2023 || seq != 1286 {
		t.Errorf("ParseRequestID() = %d, %d", year, seq)
	}

	for _, bad := range []string{"", "RFQ-2023", "PO-2023-1", "RFQ-x-1", "RFQ-2023-y"} {
		if _, _, err := ParseRequestID(bad); err == nil {
			t.Errorf("ParseRequestID(%q) expected error", bad)
		}
	}

	if got := FormatRequestID(2024, 1288); got != "RFQ-2024-1288" {
		t.Errorf("FormatRequestID() = %s", got)
	}
}

func TestNextSequence(t *testing.T) {
	if got := NextSequence(0); got != FirstSequence {
		t.Errorf("NextSequence(0) = %d, want %d", got, FirstSequence)
	}
	if got := NextSequence(1287); got != 1288 {
		t.Errorf("NextSequence(1287) = %d, want 1288", got)
	}
}

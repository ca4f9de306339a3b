package domain

import "testing"

func TestValidStatus(t *testing.T) {
	valid := []EmailStatus{
		StatusPending, StatusSent, StatusDelivered, StatusOpened,
		StatusClicked, StatusBounced, StatusComplained, StatusFailed,
		StatusDeliveryDelayed,
	}
	for _, s := range valid {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}

	for _, s := range []EmailStatus{"", "unknown", "SENT"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true", s)
		}
	}
}

func TestStatusTimestamp(t *testing.T) {
	tests := []struct {
		status EmailStatus
		field  string
		ok     bool
	}{
		{StatusSent, "sent_at", true},
		{StatusDelivered, "delivered_at", true},
		{StatusOpened, "opened_at", true},
		{StatusClicked, "clicked_at", true},
		{StatusBounced, "bounced_at", true},
		{StatusComplained, "complained_at", true},
		{StatusFailed, "failed_at", true},
		{StatusPending, "", false},
		{StatusDeliveryDelayed, "", false},
	}

	for _, tt := range tests {
		field, ok := StatusTimestamp(tt.status)
		if field != tt.field || ok != tt.ok {
			t.Errorf("StatusTimestamp(%q) = (%q, %v), want (%q, %v)",
				tt.status, field, ok, tt.field, tt.ok)
		}
	}
}

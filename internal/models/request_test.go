package models

import "testing"

func TestRequest_Status(t *testing.T) {
	tests := []struct {
		name     string
		accepted *bool
		status   string
		isAcc    bool
		isPend   bool
	}{
		{"pending", nil, RequestPending, false, true},
		{"accepted", ptr(true), RequestAccepted, true, false},
		{"rejected", ptr(false), RequestRejected, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Request{Accepted: tt.accepted}
			if got := r.Status(); got != tt.status {
				t.Errorf("Status() = %q, want %q", got, tt.status)
			}
			if got := r.IsAccepted(); got != tt.isAcc {
				t.Errorf("IsAccepted() = %v, want %v", got, tt.isAcc)
			}
			if got := r.IsPending(); got != tt.isPend {
				t.Errorf("IsPending() = %v, want %v", got, tt.isPend)
			}
		})
	}
}

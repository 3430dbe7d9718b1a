package workflow

import (
	"errors"
	"testing"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusPending, false},
		{StatusApproved, false},
		{StatusRejected, false},
		{StatusFinalApproved, true},
		{StatusRejectedByManager, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"pending", StatusPending, true},
		{"final approved", StatusFinalApproved, true},
		{"unknown", Status("SHIPPED"), false},
		{"empty", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		raw      string
		expected Status
	}{
		{"PENDING", StatusPending},
		{"pending", StatusPending},
		{"Pending", StatusPending},
		{"Approved", StatusApproved},
		{"accountant-approved", StatusApproved},
		{"rejected", StatusRejected},
		{"FINAL_APPROVED", StatusFinalApproved},
		{"manager-approved", StatusFinalApproved},
		{"rejected-by-manager", StatusRejectedByManager},
		{"", StatusPending},
		{"garbage", StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Canonical(tt.raw); got != tt.expected {
				t.Errorf("Canonical(%q) = %v, want %v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestFromFlags(t *testing.T) {
	tests := []struct {
		name       string
		accountant bool
		manager    bool
		expected   Status
	}{
		{"neither", false, false, StatusPending},
		{"accountant only", true, false, StatusApproved},
		{"both", true, true, StatusFinalApproved},
		{"manager without accountant", false, true, StatusFinalApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromFlags(tt.accountant, tt.manager); got != tt.expected {
				t.Errorf("FromFlags(%v, %v) = %v, want %v", tt.accountant, tt.manager, got, tt.expected)
			}
		})
	}
}

func TestStatus_DerivedFlags(t *testing.T) {
	if StatusPending.ApprovedByAccountant() {
		t.Error("PENDING should not count as accountant-approved")
	}
	if !StatusApproved.ApprovedByAccountant() {
		t.Error("APPROVED should count as accountant-approved")
	}
	if !StatusFinalApproved.ApprovedByAccountant() {
		t.Error("FINAL_APPROVED should count as accountant-approved")
	}
	if StatusApproved.ApprovedByManager() {
		t.Error("APPROVED should not count as manager-approved")
	}
	if !StatusFinalApproved.ApprovedByManager() {
		t.Error("FINAL_APPROVED should count as manager-approved")
	}
}

func TestTransition_AllowedPaths(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		actor  Actor
		target Status
	}{
		{"accountant approves pending", StatusPending, ActorAccountant, StatusApproved},
		{"accountant rejects pending", StatusPending, ActorAccountant, StatusRejected},
		{"manager finalizes approved", StatusApproved, ActorManager, StatusFinalApproved},
		{"manager rejects approved", StatusApproved, ActorManager, StatusRejectedByManager},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.actor, tt.target)
			if err != nil {
				t.Fatalf("Transition() error = %v", err)
			}
			if got != tt.target {
				t.Errorf("Transition() = %v, want %v", got, tt.target)
			}
		})
	}
}

func TestTransition_RejectedPaths(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		actor  Actor
		target Status
	}{
		{"employee cannot approve", StatusPending, ActorEmployee, StatusApproved},
		{"manager cannot approve pending", StatusPending, ActorManager, StatusFinalApproved},
		{"accountant cannot finalize", StatusApproved, ActorAccountant, StatusFinalApproved},
		{"accountant cannot re-approve", StatusApproved, ActorAccountant, StatusApproved},
		{"accountant cannot reject approved", StatusApproved, ActorAccountant, StatusRejected},
		{"manager cannot touch rejected", StatusRejected, ActorManager, StatusFinalApproved},
		{"manager cannot re-finalize", StatusFinalApproved, ActorManager, StatusFinalApproved},
		{"manager cannot flip terminal rejection", StatusRejectedByManager, ActorManager, StatusFinalApproved},
		{"accountant cannot reopen finalized", StatusFinalApproved, ActorAccountant, StatusRejected},
		{"skipping the accountant stage", StatusPending, ActorManager, StatusRejectedByManager},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.actor, tt.target)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("Transition() error = %v, want ErrInvalidTransition", err)
			}
			if got != tt.from {
				t.Errorf("status changed on rejected transition: got %v, want %v", got, tt.from)
			}
		})
	}
}

func TestTransition_InvalidStatus(t *testing.T) {
	if _, err := Transition(Status("JUNK"), ActorAccountant, StatusApproved); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Transition() error = %v, want ErrInvalidStatus", err)
	}
	if _, err := Transition(StatusPending, ActorAccountant, Status("JUNK")); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Transition() error = %v, want ErrInvalidStatus", err)
	}
}

func TestTransition_SecondApplicationFails(t *testing.T) {
	status, err := Transition(StatusPending, ActorAccountant, StatusApproved)
	if err != nil {
		t.Fatalf("first Transition() error = %v", err)
	}

	if _, err := Transition(status, ActorAccountant, StatusApproved); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Transition() error = %v, want ErrInvalidTransition", err)
	}

	status, err = Transition(status, ActorManager, StatusFinalApproved)
	if err != nil {
		t.Fatalf("finalize Transition() error = %v", err)
	}
	if _, err := Transition(status, ActorManager, StatusFinalApproved); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("re-finalize Transition() error = %v, want ErrInvalidTransition", err)
	}
}

func TestPermittedTargets(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		actor    Actor
		expected []Status
	}{
		{"accountant on pending", StatusPending, ActorAccountant, []Status{StatusApproved, StatusRejected}},
		{"manager on approved", StatusApproved, ActorManager, []Status{StatusFinalApproved, StatusRejectedByManager}},
		{"manager on pending", StatusPending, ActorManager, []Status{}},
		{"accountant on terminal", StatusFinalApproved, ActorAccountant, []Status{}},
		{"employee anywhere", StatusPending, ActorEmployee, []Status{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PermittedTargets(tt.from, tt.actor)
			if len(got) != len(tt.expected) {
				t.Fatalf("PermittedTargets() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("PermittedTargets()[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestApproveRejectTargets(t *testing.T) {
	if target, err := ApproveTarget(ActorAccountant); err != nil || target != StatusApproved {
		t.Errorf("ApproveTarget(accountant) = %v, %v", target, err)
	}
	if target, err := ApproveTarget(ActorManager); err != nil || target != StatusFinalApproved {
		t.Errorf("ApproveTarget(manager) = %v, %v", target, err)
	}
	if _, err := ApproveTarget(ActorEmployee); !errors.Is(err, ErrUnknownActor) {
		t.Errorf("ApproveTarget(employee) error = %v, want ErrUnknownActor", err)
	}
	if target, err := RejectTarget(ActorAccountant); err != nil || target != StatusRejected {
		t.Errorf("RejectTarget(accountant) = %v, %v", target, err)
	}
	if target, err := RejectTarget(ActorManager); err != nil || target != StatusRejectedByManager {
		t.Errorf("RejectTarget(manager) = %v, %v", target, err)
	}
	if _, err := RejectTarget(ActorEmployee); !errors.Is(err, ErrUnknownActor) {
		t.Errorf("RejectTarget(employee) error = %v, want ErrUnknownActor", err)
	}
}

package filings

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestAssertSubmittable(t *testing.T) {
	allStates := []State{
		StateDraft, StateReadyForSubmit, StateReviewPending, StateReviewed,
		StateApprovedByReview, StateSubmitted, StateInProgress,
		StateSucceeded, StateFailed,
	}

	allowed := map[Role]map[State]bool{
		RoleTaxpayer: {StateDraft: true, StateReadyForSubmit: true, StateFailed: true},
		RolePreparer: {StateApprovedByReview: true, StateFailed: true},
		RoleReviewer: {StateApprovedByReview: true, StateFailed: true},
	}

	for _, role := range []Role{RoleTaxpayer, RolePreparer, RoleReviewer} {
		for _, state := range allStates {
			actor := Actor{ID: uuid.New(), Role: role}
			err := AssertSubmittable(state, actor)

			if allowed[role][state] {
				if err != nil {
					t.Errorf("%s submitting from %s: unexpected error %v", role, state, err)
				}
				continue
			}

			if !errors.Is(err, ErrFilingLocked) {
				t.Errorf("%s submitting from %s: want ErrFilingLocked, got %v", role, state, err)
			}

			var locked *LockedError
			if !errors.As(err, &locked) {
				t.Errorf("%s submitting from %s: error does not carry state context", role, state)
				continue
			}
			if locked.State != state {
				t.Errorf("%s submitting from %s: locked error reports state %s", role, state, locked.State)
			}
			if !reflect.DeepEqual(locked.SubmittableFrom, SubmittableStates(role)) {
				t.Errorf(
					"%s submitting from %s: submittable states %v, want %v",
					role, state, locked.SubmittableFrom, SubmittableStates(role),
				)
			}
		}
	}
}

func TestTerminalStateRejectsResubmission(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: RoleTaxpayer}

	err := AssertSubmittable(StateSucceeded, actor)
	if !errors.Is(err, ErrFilingLocked) {
		t.Fatalf("succeeded filing must reject submission, got %v", err)
	}
	if !StateSucceeded.Terminal() {
		t.Fatal("succeeded must be terminal")
	}
	if StateFailed.Terminal() {
		t.Fatal("failed must be recoverable, not terminal")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateDraft, StateReadyForSubmit, true},
		{StateDraft, StateInProgress, true},
		{StateReadyForSubmit, StateReviewPending, true},
		{StateReviewPending, StateReviewed, true},
		{StateReviewed, StateApprovedByReview, true},
		{StateApprovedByReview, StateInProgress, true},
		{StateInProgress, StateSucceeded, true},
		{StateInProgress, StateFailed, true},
		{StateFailed, StateInProgress, true},

		// no skipping or moving backward
		{StateDraft, StateReviewed, false},
		{StateDraft, StateSucceeded, false},
		{StateReviewed, StateDraft, false},
		{StateSucceeded, StateInProgress, false},
		{StateSucceeded, StateDraft, false},
		{StateInProgress, StateDraft, false},
	}

	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAllowedActions(t *testing.T) {
	taxpayer := Actor{ID: uuid.New(), Role: RoleTaxpayer}
	reviewer := Actor{ID: uuid.New(), Role: RoleReviewer}

	tests := []struct {
		name  string
		state State
		actor Actor
		want  []Action
	}{
		{"draft taxpayer", StateDraft, taxpayer, []Action{ActionEdit, ActionSubmit, ActionRequestReview}},
		{"review pending taxpayer", StateReviewPending, taxpayer, nil},
		{"review pending reviewer", StateReviewPending, reviewer, []Action{ActionReview}},
		{"approved reviewer", StateApprovedByReview, reviewer, []Action{ActionSubmit}},
		{"approved taxpayer", StateApprovedByReview, taxpayer, nil},
		{"failed taxpayer", StateFailed, taxpayer, []Action{ActionResubmit}},
		{"succeeded taxpayer", StateSucceeded, taxpayer, []Action{ActionDownload}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AllowedActions(tc.state, tc.actor)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestStatusLabelProjection(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDraft, "in preparation"},
		{StateReviewPending, "under review"},
		{StateInProgress, "submitting"},
		{StateSucceeded, "filed"},
		{StateFailed, "submission failed"},
	}

	for _, tc := range tests {
		if got := tc.state.StatusLabel(); got != tc.want {
			t.Errorf("StatusLabel(%s) = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestParseState(t *testing.T) {
	if _, err := ParseState("draft"); err != nil {
		t.Fatalf("valid state rejected: %v", err)
	}
	if _, err := ParseState("bogus"); err == nil {
		t.Fatal("unknown state accepted")
	}
}

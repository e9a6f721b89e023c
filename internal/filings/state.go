package filings

import (
	"fmt"

	"github.com/google/uuid"
)

// State is a filing's lifecycle stage. States only move forward along the
// transition graph; the single backward edge is the recoverable failure
// path from InProgress to Failed.
type State string

// Lifecycle states.
const (
	StateDraft            State = "draft"
	StateReadyForSubmit   State = "ready_for_submission"
	StateReviewPending    State = "review_pending"
	StateReviewed         State = "reviewed"
	StateApprovedByReview State = "approved_by_review"
	StateSubmitted        State = "submitted"
	StateInProgress       State = "in_progress"
	StateSucceeded        State = "succeeded"
	StateFailed           State = "failed"
)

// Role is the actor's capability class supplied by the authorization
// context.
type Role string

// Actor roles.
const (
	RoleTaxpayer Role = "taxpayer"
	RolePreparer Role = "preparer"
	RoleReviewer Role = "reviewer"
)

// Actor is the authenticated principal attempting an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Professional reports whether the role belongs to a tax professional.
func (r Role) Professional() bool {
	return r == RolePreparer || r == RoleReviewer
}

// Action is a capability a role holds over a filing in a given state.
type Action string

// Filing actions exposed through AllowedActions.
const (
	ActionEdit          Action = "edit"
	ActionSubmit        Action = "submit"
	ActionRequestReview Action = "request_review"
	ActionReview        Action = "review"
	ActionApprove       Action = "approve"
	ActionResubmit      Action = "resubmit"
	ActionDownload      Action = "download"
)

// forward is the lifecycle transition graph. Failed re-enters the
// submittable path via resubmission.
var forward = map[State][]State{
	StateDraft:            {StateReadyForSubmit, StateInProgress},
	StateReadyForSubmit:   {StateReviewPending, StateInProgress},
	StateReviewPending:    {StateReviewed},
	StateReviewed:         {StateApprovedByReview},
	StateApprovedByReview: {StateInProgress},
	StateSubmitted:        {StateInProgress},
	StateInProgress:       {StateSucceeded, StateFailed},
	StateFailed:           {StateInProgress},
}

// submittable lists the states each role may start a submission from.
var submittable = map[Role][]State{
	RoleTaxpayer: {StateDraft, StateReadyForSubmit, StateFailed},
	RolePreparer: {StateApprovedByReview, StateFailed},
	RoleReviewer: {StateApprovedByReview, StateFailed},
}

// CanTransition reports whether the graph permits moving from one state
// to another.
func CanTransition(from, to State) bool {
	for _, next := range forward[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SubmittableStates returns the states the given role may submit from.
func SubmittableStates(role Role) []State {
	states := submittable[role]
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// AssertSubmittable raises a LockedError unless the actor's role may start
// a submission from the filing's current state.
func AssertSubmittable(state State, actor Actor) error {
	for _, s := range submittable[actor.Role] {
		if s == state {
			return nil
		}
	}
	return &LockedError{
		State:           state,
		Allowed:         AllowedActions(state, actor),
		SubmittableFrom: SubmittableStates(actor.Role),
	}
}

// AllowedActions returns the capability set for the actor over a filing
// in the given state. Collaborating surfaces (UI, advisor tooling) gate
// on this rather than re-deriving transitions.
func AllowedActions(state State, actor Actor) []Action {
	var actions []Action

	switch state {
	case StateDraft:
		actions = append(actions, ActionEdit, ActionSubmit, ActionRequestReview)
	case StateReadyForSubmit:
		actions = append(actions, ActionSubmit, ActionRequestReview)
	case StateReviewPending:
		if actor.Role.Professional() {
			actions = append(actions, ActionReview)
		}
	case StateReviewed:
		if actor.Role.Professional() {
			actions = append(actions, ActionApprove)
		}
	case StateApprovedByReview:
		if actor.Role.Professional() {
			actions = append(actions, ActionSubmit)
		}
	case StateFailed:
		actions = append(actions, ActionResubmit)
	case StateSucceeded:
		actions = append(actions, ActionDownload)
	}

	return actions
}

// Terminal reports whether the state ends the lifecycle. Failed is not
// terminal: it is recoverable by resubmission.
func (s State) Terminal() bool {
	return s == StateSucceeded
}

// StatusLabel projects the lifecycle state onto the free-text status
// column. The state enum is authoritative; this label exists only for
// list and reporting surfaces.
func (s State) StatusLabel() string {
	switch s {
	case StateDraft, StateReadyForSubmit:
		return "in preparation"
	case StateReviewPending, StateReviewed, StateApprovedByReview:
		return "under review"
	case StateSubmitted, StateInProgress:
		return "submitting"
	case StateSucceeded:
		return "filed"
	case StateFailed:
		return "submission failed"
	}
	return string(s)
}

// Valid reports whether the value is a known lifecycle state.
func (s State) Valid() bool {
	switch s {
	case StateDraft, StateReadyForSubmit, StateReviewPending, StateReviewed,
		StateApprovedByReview, StateSubmitted, StateInProgress,
		StateSucceeded, StateFailed:
		return true
	}
	return false
}

// ParseState converts a stored string to a State.
func ParseState(raw string) (State, error) {
	s := State(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown lifecycle state: %q", raw)
	}
	return s, nil
}

package requirement

import "doc-compliance/internal/domain/apperr"

// Action is a caller-driven workflow operation. Expiry is not an Action: only
// the sweeper moves approved to expired.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var allowed = map[Action][]Status{
	ActionSubmit:  {StatusPending, StatusRejected},
	ActionApprove: {StatusSubmitted},
	ActionReject:  {StatusSubmitted},
}

var target = map[Action]Status{
	ActionSubmit:  StatusSubmitted,
	ActionApprove: StatusApproved,
	ActionReject:  StatusRejected,
}

// Guard checks whether action may run from the current status and returns
// the resulting status.
func Guard(r *Requirement, action Action) (Status, error) {
	for _, s := range allowed[action] {
		if r.Status == s {
			return target[action], nil
		}
	}
	if action == ActionApprove && r.Status == StatusApproved {
		return "", apperr.AlreadyApproved(r.RequirementID)
	}
	return "", apperr.InvalidTransition("cannot %s requirement %s in status %s", action, r.RequirementID, r.Status)
}

package workflow

type SubmitInput struct {
	RequirementID string
	ActorID       string
}

type ApproveInput struct {
	RequirementID string
	ActorID       string
	Notes         *string
}

type RejectInput struct {
	RequirementID string
	ActorID       string
	Notes         string // required
}

package domain

import "errors"

// Error taxonomy for collaborator and pipeline failures. Collaborator
// errors are recovered per-stage (degrade or one bounded retry); they never
// abort a run. Only ErrUnreadableImage is fatal, and only before Perception.
var (
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrCollaboratorTimeout     = errors.New("collaborator timeout")
	ErrParse                   = errors.New("malformed collaborator response")
	ErrValidation              = errors.New("validation failed")
	ErrNoCandidates            = errors.New("retrieval produced no candidates")
	ErrRateLimited             = errors.New("collaborator rate limited")
	ErrNoMatch                 = errors.New("no match")
	ErrUnreadableImage         = errors.New("input image is corrupt or unreadable")
)

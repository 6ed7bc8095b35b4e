package wizard

import "errors"

// Sentinel errors for the wizard. Callers match them with errors.Is.
var (
	// ErrNotStarted means no wizard state is persisted.
	ErrNotStarted = errors.New("wizard not started")

	// ErrAlreadyComplete means every question already has an answer.
	ErrAlreadyComplete = errors.New("all questions already answered")

	// ErrInvalidState means the persisted record violates the index invariant.
	ErrInvalidState = errors.New("invalid wizard state")

	// ErrAborted is returned when the interactive form is cancelled.
	ErrAborted = errors.New("wizard aborted")
)

package tasks

import "errors"

var (
	// ErrNoPlanItems is returned when a document contains no checkbox items.
	ErrNoPlanItems = errors.New("no task items in plan")

	// ErrTaskNotFound is returned for an ID that is not in the plan.
	ErrTaskNotFound = errors.New("task not found")
)

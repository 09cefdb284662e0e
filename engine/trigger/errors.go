package trigger

import "errors"

// Context-construction errors. These are admission-class: raised before any
// workflow dispatch and never retried.
var (
	ErrMissingSubject = errors.New("trigger payload supplies no subject identifier")
	ErrMissingTenant  = errors.New("trigger payload supplies no tenant identifier")
)

package handler

import "errors"

// Admission error taxonomy. All of these are raised before any workflow
// dispatch and are never retried.
var (
	ErrUnknownHandler    = errors.New("no handler configured for trigger type")
	ErrHandlerDisabled   = errors.New("handler is disabled for trigger type")
	ErrUrgencyOutOfRange = errors.New("trigger urgency outside configured bounds")
	ErrMissingField      = errors.New("required payload field missing")
	ErrTenantExcluded    = errors.New("tenant is excluded for trigger type")
	ErrFilterRejected    = errors.New("admission filter rejected trigger")
)

// Codes attached to admission rejections in results.
const (
	codeUnknownHandler = "unknown_handler"
	codeDisabled       = "handler_disabled"
	codeUrgency        = "urgency_out_of_range"
	codeMissingField   = "missing_field"
	codeTenantExcluded = "tenant_excluded"
	codeFilterRejected = "filter_rejected"
	codeInvalidContext = "invalid_context"
)

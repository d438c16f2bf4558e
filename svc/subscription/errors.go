package subscription

import "errors"

var (
	ErrNotFound       = errors.New("subscription not found")
	ErrOwnerNotFound  = errors.New("subscription owner not found")
	ErrForbidden      = errors.New("not allowed to access this subscription")
	ErrUnauthorized   = errors.New("authentication required")
	ErrConflict       = errors.New("subscription was modified concurrently")
	ErrInvalidStatus  = errors.New("invalid subscription status transition")
	ErrStoreFailure   = errors.New("subscription store failure")
	ErrInvalidPayload = errors.New("invalid subscription payload")
)

package reminder

import "errors"

var (
	ErrRunNotFound       = errors.New("reminder run not found")
	ErrActiveRunExists   = errors.New("subscription already has an active reminder run")
	ErrTransientDelivery = errors.New("reminder delivery failed")
	ErrLockHeld          = errors.New("reminder run is locked by another invocation")
	ErrLockUnavailable   = errors.New("failed to acquire reminder run lock")
	ErrLedgerWriteFailed = errors.New("failed to record reminder delivery")
	ErrEnqueueFailed     = errors.New("failed to enqueue reminder wake-up")
	ErrStoreFailure      = errors.New("reminder run store failure")
	ErrInvalidRecipient  = errors.New("reminder recipient is missing")
	ErrRenderFailed      = errors.New("failed to render reminder email")
)

package account

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("not allowed to access this user")
	ErrFailedToIssueToken = errors.New("failed to issue access token")
	ErrStoreFailure       = errors.New("account store failure")
)

package services

import "errors"

// Operation errors surfaced to handlers, which map them onto HTTP statuses:
// not-found to 404, access errors to 403, state/validation errors to 400,
// everything else to 500.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrDoctorNotFound       = errors.New("doctor not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrProfileNotFound      = errors.New("profile not found")

	ErrNotificationAccess = errors.New("you do not have access to this notification")

	ErrSelfDelete      = errors.New("you cannot delete your own admin account")
	ErrNotSoftDeleted  = errors.New("only soft-deleted accounts are eligible")
	ErrAlreadyDeleted  = errors.New("this account is already marked as deleted")
	ErrAlreadyDoctor   = errors.New("user is already a doctor")
	ErrSameRole        = errors.New("user already holds this role")
	ErrNotTeamMember   = errors.New("user is not a team member")
	ErrIdentityTaken   = errors.New("username or email already exists")
	ErrNoFileAttached  = errors.New("no file attached to this notification")
	ErrInvalidFileType = errors.New("invalid file type. Please upload a JPEG, PNG, or GIF image")
)

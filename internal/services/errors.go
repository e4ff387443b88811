package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package either is one of these,
// wraps one of these, or is an infrastructure failure.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidDifficulty   = errors.New("invalid difficulty")
	ErrValidationFailed    = errors.New("validation failed")
	ErrConflict            = errors.New("conflict")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrTaskNotFound         = fmt.Errorf("task %w", ErrNotFound)
	ErrTeamNotFound         = fmt.Errorf("team %w", ErrNotFound)
	ErrWorkspaceNotFound    = fmt.Errorf("workspace %w", ErrNotFound)
	ErrCollaboratorNotFound = fmt.Errorf("collaborator %w", ErrNotFound)
	ErrMessageNotFound      = fmt.Errorf("message %w", ErrNotFound)
	ErrMemberNotFound       = fmt.Errorf("member %w", ErrNotFound)

	ErrNotTeamMember      = fmt.Errorf("%w: user is not a member of the team", ErrForbidden)
	ErrNotTaskAdmin       = fmt.Errorf("%w: only team admins or the task creator can perform this action", ErrForbidden)
	ErrNotTeamAdmin       = fmt.Errorf("%w: only team or workspace admins can perform this action", ErrForbidden)
	ErrNotWorkspaceMember = fmt.Errorf("%w: user is not a member of the workspace", ErrForbidden)
	ErrNotWorkspaceAdmin  = fmt.Errorf("%w: only workspace admins can perform this action", ErrForbidden)
	ErrNotMessageSender   = fmt.Errorf("%w: only the sender can change this message", ErrForbidden)
	ErrMessagingBlocked   = fmt.Errorf("%w: messaging is blocked", ErrForbidden)

	ErrInvalidTransition = fmt.Errorf("%w: archived tasks cannot be reopened", ErrInvalidStatus)

	ErrInvalidCredentials = errors.New("invalid username or password")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, msg)
}

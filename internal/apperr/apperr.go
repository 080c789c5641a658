// Package apperr defines the tagged failure reasons the core returns to its
// boundary layer. Validation errors are rejected before any write;
// state-precondition errors leave state untouched and are retryable.
package apperr

import "errors"

var (
	// Validation errors.
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidMovement     = errors.New("invalid movement type")
	ErrInvalidFrequency    = errors.New("invalid frequency")
	ErrInvalidAction       = errors.New("invalid action")
	ErrInvalidDecision     = errors.New("invalid decision")
	ErrInvalidUsername     = errors.New("invalid username")
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrPasswordTooShort    = errors.New("password too short")

	// State-precondition errors.
	ErrNotFound            = errors.New("not found")
	ErrChallengeInvalid    = errors.New("challenge inactive or hidden")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRequestNotPending   = errors.New("request not found or not pending")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrLastParent          = errors.New("at least one parent must remain")
	ErrSelfDelete          = errors.New("cannot delete yourself")
	ErrParentExists        = errors.New("setup already completed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

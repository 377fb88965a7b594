package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound          = errors.New("data not found")
	ErrConflictingData       = errors.New("data conflicts with existing data in unique column")
	ErrDependencyUnavailable = errors.New("storage or transport unavailable")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")
	ErrValidation = errors.New("request failed validation")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrExpiredToken               = errors.New("access token has expired")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")
	ErrUnauthorized               = errors.New("caller is unauthorized to access the resource")
	ErrForbidden                  = errors.New("caller is forbidden to access the resource")

	// * Business errors.
	ErrInvalidTransition          = errors.New("order status transition is not allowed")
	ErrCancellationReasonRequired = errors.New("cancellation requires a reason")
	ErrConcurrentModification     = errors.New("order was modified concurrently, retry with fresh state")

	// ErrEventAlreadyApplied marks an idempotent no-op, not a failure:
	// the payment event reference was applied to the order before.
	ErrEventAlreadyApplied = errors.New("payment event already applied")
)

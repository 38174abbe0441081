package exam

import "errors"

var (
	// ErrTestNotFound covers missing, soft-deleted, inactive and
	// out-of-window tests for learner-role actors, so existence is not
	// leaked to users who may not see them.
	ErrTestNotFound = errors.New("test not found")

	// ErrInvalidAccessKey is returned when a keyed test is requested
	// with a missing or wrong key.
	ErrInvalidAccessKey = errors.New("invalid access key for test")

	// ErrAttemptCompleted is returned on submit against an attempt that
	// already reached its terminal state. Completed attempts are never
	// rescored.
	ErrAttemptCompleted = errors.New("attempt already completed")

	// ErrAttemptExpired is returned when a submit arrives after the
	// test's duration limit has elapsed.
	ErrAttemptExpired = errors.New("attempt deadline has passed")

	// ErrDuplicateAttempt is returned by stores when inserting a second
	// open attempt for the same (test, user) pair.
	ErrDuplicateAttempt = errors.New("open attempt already exists")
)

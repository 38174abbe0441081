package exam

import (
	"time"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

// Actor is the authenticated identity an access decision is made for.
type Actor struct {
	ID   string
	Role models.Role
}

// CheckAccess decides whether the actor may view or start the test right
// now. It is a pure predicate with no side effects.
//
// The key check runs first and applies to every role: a wrong or missing
// key on a keyed test is an access failure regardless of the test's
// active flag. Learner-role actors additionally require the test to be
// active and inside its availability window; both failures surface as
// not-found so inactive tests stay invisible to them. Staff roles bypass
// the active and window checks.
func CheckAccess(test *models.Test, actor Actor, suppliedKey string, now time.Time) error {
	if test == nil {
		return ErrTestNotFound
	}

	if test.AccessKey != "" && suppliedKey != test.AccessKey {
		return ErrInvalidAccessKey
	}

	if actor.Role.IsStaff() {
		return nil
	}

	if !test.IsActive {
		return ErrTestNotFound
	}
	if !test.AvailableAt(now) {
		return ErrTestNotFound
	}
	return nil
}

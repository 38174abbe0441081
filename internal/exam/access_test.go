package exam

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

var (
	student = Actor{ID: "student-1", Role: models.RoleStudent}
	teacher = Actor{ID: "teacher-1", Role: models.RoleTeacher}
)

func TestCheckAccess_NilTest(t *testing.T) {
	assert.ErrorIs(t, CheckAccess(nil, student, "", time.Now()), ErrTestNotFound)
}

func TestCheckAccess_ActiveFlag(t *testing.T) {
	now := time.Now()
	inactive := &models.Test{ID: "t1", IsActive: false}

	// Learners must see inactive tests as absent, not forbidden.
	assert.ErrorIs(t, CheckAccess(inactive, student, "", now), ErrTestNotFound)

	// Staff bypass the active flag.
	assert.NoError(t, CheckAccess(inactive, teacher, "", now))

	active := &models.Test{ID: "t1", IsActive: true}
	assert.NoError(t, CheckAccess(active, student, "", now))
}

func TestCheckAccess_AccessKey(t *testing.T) {
	now := time.Now()
	keyed := &models.Test{ID: "t1", IsActive: true, AccessKey: "SECRET42"}

	cases := []struct {
		name  string
		actor Actor
		key   string
		want  error
	}{
		{name: "student with key", actor: student, key: "SECRET42", want: nil},
		{name: "student missing key", actor: student, key: "", want: ErrInvalidAccessKey},
		{name: "student wrong key", actor: student, key: "WRONG", want: ErrInvalidAccessKey},
		{name: "staff does not bypass key", actor: teacher, key: "", want: ErrInvalidAccessKey},
		{name: "staff with key", actor: teacher, key: "SECRET42", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckAccess(keyed, tc.actor, tc.key, now)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

// Wrong key on an inactive test must surface as an access failure, not
// not-found: the key check runs first for every role.
func TestCheckAccess_KeyCheckedBeforeActiveFlag(t *testing.T) {
	test := &models.Test{ID: "t1", IsActive: false, AccessKey: "SECRET42"}
	assert.ErrorIs(t, CheckAccess(test, student, "WRONG", time.Now()), ErrInvalidAccessKey)
}

func TestCheckAccess_AvailabilityWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	cases := []struct {
		name  string
		from  *time.Time
		until *time.Time
		actor Actor
		want  error
	}{
		{name: "no window", actor: student},
		{name: "inside window", from: &before, until: &after, actor: student},
		{name: "before window opens", from: &after, actor: student, want: ErrTestNotFound},
		{name: "after window closes", until: &before, actor: student, want: ErrTestNotFound},
		{name: "staff bypasses window", until: &before, actor: teacher},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			test := &models.Test{
				ID:             "t1",
				IsActive:       true,
				AvailableFrom:  tc.from,
				AvailableUntil: tc.until,
			}
			err := CheckAccess(test, tc.actor, "", now)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

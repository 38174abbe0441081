package models

// Role is a user's privilege class.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
	RoleGuest      Role = "guest"
)

// IsStaff reports whether the role may author and manage content.
func (r Role) IsStaff() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleTeacher:
		return true
	}
	return false
}

// IsAdmin reports whether the role has administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

type TestType string

const (
	TestTypeCourse   TestType = "course_test"
	TestTypePublic   TestType = "public_test"
	TestTypeMock     TestType = "mock_test"
	TestTypeEntrance TestType = "entrance_test"
)

// RequiresAccessKey reports whether tests of this type are gated behind
// a shared secret by default.
func (t TestType) RequiresAccessKey() bool {
	return t == TestTypeMock || t == TestTypeEntrance
}

type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionText           QuestionType = "text"
)

// ScoringModelSimple is the all-or-nothing per-question scorer.
const ScoringModelSimple = "simple"

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
	CourseCancelled CourseStatus = "cancelled"
)

type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentSuspended EnrollmentStatus = "suspended"
)

type LessonStatus string

const (
	LessonScheduled LessonStatus = "scheduled"
	LessonCompleted LessonStatus = "completed"
	LessonCancelled LessonStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentCancelled  PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	PayCash         PaymentMethod = "cash"
	PayCard         PaymentMethod = "card"
	PayPayme        PaymentMethod = "payme"
	PayClick        PaymentMethod = "click"
	PayBankTransfer PaymentMethod = "bank_transfer"
)

type NotificationType string

const (
	NotifyInfo     NotificationType = "info"
	NotifyWarning  NotificationType = "warning"
	NotifySuccess  NotificationType = "success"
	NotifyError    NotificationType = "error"
	NotifyReminder NotificationType = "reminder"
)

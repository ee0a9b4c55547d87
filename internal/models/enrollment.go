package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment request.
type EnrollmentStatus string

// Approved and rejected are terminal; there is no path back to pending.
const (
	EnrollmentStatusPending  EnrollmentStatus = "pending"
	EnrollmentStatusApproved EnrollmentStatus = "approved"
	EnrollmentStatusRejected EnrollmentStatus = "rejected"
)

// Enrollment captures a student's request to join a course. At most one
// record exists per (student, course) pair.
type Enrollment struct {
	StudentID    string           `db:"student_id" json:"studentId"`
	StudentEmail string           `db:"student_email" json:"studentEmail"`
	CourseID     string           `db:"course_id" json:"courseId"`
	CourseName   string           `db:"course_name" json:"courseName"`
	TeacherID    string           `db:"teacher_id" json:"teacherId"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	RequestedAt  time.Time        `db:"requested_at" json:"requestedAt"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updatedAt"`
	DecidedBy    *string          `db:"decided_by" json:"decidedBy,omitempty"`
	DecidedAt    *time.Time       `db:"decided_at" json:"decidedAt,omitempty"`
}

// GroupedEnrollments buckets a course's enrollments by status.
type GroupedEnrollments struct {
	Pending  []Enrollment `json:"pending"`
	Approved []Enrollment `json:"approved"`
	Rejected []Enrollment `json:"rejected"`
}

// EnrollmentSummary carries per-course counts.
type EnrollmentSummary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

package models

import "time"

// CourseStatus represents the lifecycle of a course.
type CourseStatus string

// Courses are soft-deleted, never physically removed.
const (
	CourseStatusActive  CourseStatus = "active"
	CourseStatusDeleted CourseStatus = "deleted"
)

// Course is owned exclusively by one teacher identity.
type Course struct {
	ID           string       `db:"id" json:"courseId"`
	Name         string       `db:"name" json:"name"`
	Description  string       `db:"description" json:"description"`
	TeacherID    string       `db:"teacher_id" json:"teacherId"`
	TeacherEmail string       `db:"teacher_email" json:"teacherEmail"`
	Status       CourseStatus `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// CourseForStudent annotates a course with the caller's enrollment status.
type CourseForStudent struct {
	Course
	EnrollmentStatus string `json:"enrollmentStatus"`
}

// EnrollmentStatusNone marks a course the student never requested to join.
const EnrollmentStatusNone = "not_enrolled"

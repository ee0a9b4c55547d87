package models

// Role is the platform role resolved once from the authorizer's group
// claims and consumed everywhere else as a typed value.
type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// Identity describes the authenticated caller of a request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsTeacher reports whether the identity holds the teacher role.
func (i Identity) IsTeacher() bool { return i.Role == RoleTeacher }

// IsStudent reports whether the identity holds the student role.
func (i Identity) IsStudent() bool { return i.Role == RoleStudent }

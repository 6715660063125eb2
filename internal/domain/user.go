package domain

import "time"

// Role is the closed set of account roles. Unknown role strings are
// rejected at every boundary (registration, role change, assignment).
type Role string

const (
	RolePatient   Role = "patient"
	RoleClinician Role = "clinician"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePatient, RoleClinician, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// IsClinical reports whether the role may act as an assignment source.
func (r Role) IsClinical() bool {
	return r == RoleClinician || r == RoleAdmin
}

// User represents an account in the system
type User struct {
	ID           string // UUID
	FullName     string
	Email        string // Unique, stored lower-cased
	PasswordHash string // Bcrypt hash (never returned in API responses)
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the resolved caller produced by authentication. It is passed
// explicitly into every downstream call, never stored in ambient state.
type Identity struct {
	ID       string
	FullName string
	Email    string
	Role     Role
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	Update(user *User) error
	List() ([]*User, error)
	ListPatients() ([]*User, error)
	ListPatientsAssignedTo(clinicianID string) ([]*User, error)
	ListAssignablePatients() ([]*User, error)
}

// AssignmentRepository maintains the clinician -> patient edges as a
// first-class relation. Add and Remove are single-statement and idempotent.
type AssignmentRepository interface {
	Add(clinicianID, patientID string) error
	Remove(clinicianID, patientID string) error
	Exists(clinicianID, patientID string) (bool, error)
	CliniciansFor(patientID string) ([]string, error)
}

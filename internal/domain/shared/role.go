package shared

// Role is the platform role carried by an authenticated principal
type Role string

const (
	RoleStudent Role = "estudiante"
	RoleTutor   Role = "tutor"
	RoleTeacher Role = "docente"
	RoleAdmin   Role = "admin"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

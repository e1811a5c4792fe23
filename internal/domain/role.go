package domain

// Role distinguishes the room owner from the players who answer.
type Role string

const (
	RoleOwner  Role = "owner"
	RolePlayer Role = "player"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsOwner reports whether the role controls the room.
func (r Role) IsOwner() bool {
	return r == RoleOwner
}

package models

// RoleKind represents the role a user holds within a task group.
// It decides what a member is allowed to do with the group itself.
type RoleKind string

const (
	// RoleKindAdmin grants full control over the task group, including deletion.
	RoleKindAdmin RoleKind = "ADMIN"
	// RoleKindDoer grants task execution only.
	RoleKindDoer RoleKind = "DOER"
)

// roleKindDescriptions maps each role code to its human readable description.
var roleKindDescriptions = map[RoleKind]string{
	RoleKindAdmin: "Task group administrator",
	RoleKindDoer:  "Task doer",
}

// Valid reports whether the role code is one of the registered kinds.
func (r RoleKind) Valid() bool {
	_, ok := roleKindDescriptions[r]
	return ok
}

// Description returns the human readable description for the role code.
func (r RoleKind) Description() string {
	return roleKindDescriptions[r]
}

// Client expands the stored code into its public {code, description} shape.
func (r RoleKind) Client() KindClient {
	return KindClient{
		Code:        string(r),
		Description: r.Description(),
	}
}

// RoleKinds returns all registered role kinds.
func RoleKinds() []RoleKind {
	return []RoleKind{RoleKindAdmin, RoleKindDoer}
}

package models

// This file holds the client projections: the external shapes returned by the
// API. Internal records never cross the API boundary directly; projections
// rename the surrogate key to "id", expand enumeration codes into
// {code, description} pairs, reduce resolved sub-records to their public
// subset, and omit secrets and audit columns.

// KindClient is the public shape of an enumeration code.
type KindClient struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// UserClient is the public shape of a user. The password hash and audit
// timestamps are never part of it.
type UserClient struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskGroupClient is the public shape of a task group.
type TaskGroupClient struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MembershipClient is the public shape of a membership. The resolved group and
// user are only present when they were loaded with the record.
type MembershipClient struct {
	TaskGroup *TaskGroupClient `json:"taskGroup,omitempty"`
	User      *UserClient      `json:"user,omitempty"`
	RoleKind  KindClient       `json:"roleKind"`
}

// TaskClient is the public shape of a task with its responsible user and
// owning group expanded.
type TaskClient struct {
	ID            uint64          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	FrequencyKind KindClient      `json:"frequencyKind"`
	Responsible   UserClient      `json:"responsible"`
	TaskGroup     TaskGroupClient `json:"taskGroup"`
}

// Client projects the user to its public shape.
func (u *User) Client() UserClient {
	return UserClient{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// Client projects the task group to its public shape.
func (g *TaskGroup) Client() TaskGroupClient {
	return TaskGroupClient{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
	}
}

// Client projects the membership to its public shape. Unloaded sub-records are
// left out instead of being rendered as zero values.
func (m *Membership) Client() MembershipClient {
	out := MembershipClient{
		RoleKind: m.RoleKind.Client(),
	}

	if m.TaskGroup.ID != 0 {
		g := m.TaskGroup.Client()
		out.TaskGroup = &g
	}

	if m.User.ID != 0 {
		u := m.User.Client()
		out.User = &u
	}

	return out
}

// Client projects the task to its public shape. Callers are expected to have
// loaded the responsible user and the owning group.
func (t *Task) Client() TaskClient {
	return TaskClient{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		FrequencyKind: t.FrequencyKind.Client(),
		Responsible:   t.Responsible.Client(),
		TaskGroup:     t.TaskGroup.Client(),
	}
}

// Package event defines the catalog of server-push events and the scopes
// used to address them to connections.
package event

import "time"

// Type identifies an event kind on the wire.
type Type string

const (
	TypeActionCreated Type = "action_created"
	TypeActionUpdated Type = "action_updated"
	TypeActionDeleted Type = "action_deleted"
	TypeForceLogout   Type = "force_logout"
)

// Event is implemented by every payload in the catalog.
type Event interface {
	Type() Type
}

// Action is the snapshot of an action embedded in action events. It carries
// enough state for a client to update its view without a follow-up fetch.
type Action struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActionCreated signals that a new action appeared in a project.
type ActionCreated struct {
	ProjectID string `json:"project_id"`
	Action    Action `json:"action"`
}

func (ActionCreated) Type() Type { return TypeActionCreated }

// ActionUpdated signals that an existing action changed.
type ActionUpdated struct {
	ProjectID string `json:"project_id"`
	Action    Action `json:"action"`
}

func (ActionUpdated) Type() Type { return TypeActionUpdated }

// ActionDeleted signals that an action was removed from a project.
type ActionDeleted struct {
	ProjectID string `json:"project_id"`
	ActionID  string `json:"action_id"`
}

func (ActionDeleted) Type() Type { return TypeActionDeleted }

// ForceLogout instructs every session of the targeted user to terminate.
type ForceLogout struct {
	Reason string `json:"reason,omitempty"`
}

func (ForceLogout) Type() Type { return TypeForceLogout }

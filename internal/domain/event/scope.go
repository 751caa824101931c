package event

import (
	"errors"
	"fmt"
)

// ScopeKind discriminates how a scope selects connections.
type ScopeKind string

const (
	// ScopeOwner targets every connection owned by a single identity.
	ScopeOwner ScopeKind = "owner"
	// ScopeBroadcast targets every registered connection.
	ScopeBroadcast ScopeKind = "broadcast"
)

// Scope selects the set of connections an event is delivered to.
type Scope struct {
	Kind  ScopeKind `json:"kind"`
	Owner string    `json:"owner,omitempty"`
}

// ByOwner returns a scope matching every connection owned by the given
// identity, across all of its devices and tabs.
func ByOwner(owner string) Scope {
	return Scope{Kind: ScopeOwner, Owner: owner}
}

// Broadcast returns a scope matching every connection.
func Broadcast() Scope {
	return Scope{Kind: ScopeBroadcast}
}

// Matches reports whether a connection with the given owner falls inside
// the scope. Unknown kinds match nothing.
func (s Scope) Matches(owner string) bool {
	switch s.Kind {
	case ScopeOwner:
		return s.Owner != "" && s.Owner == owner
	case ScopeBroadcast:
		return true
	default:
		return false
	}
}

// Validate checks that the scope is well formed.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeOwner:
		if s.Owner == "" {
			return errors.New("owner scope requires an owner")
		}
		return nil
	case ScopeBroadcast:
		return nil
	default:
		return fmt.Errorf("unknown scope kind %q", string(s.Kind))
	}
}

func (s Scope) String() string {
	if s.Kind == ScopeOwner {
		return "owner:" + s.Owner
	}
	return string(s.Kind)
}

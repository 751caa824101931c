// Package inbound declares the use cases the transport layer drives.
package inbound

import (
	"context"

	"pushhub/internal/domain/event"
)

// EventPublisher addresses a domain event to a delivery scope.
type EventPublisher interface {
	Publish(ctx context.Context, ev event.Event, scope event.Scope) error
}

// ActionNotifier pushes board changes to connected clients.
type ActionNotifier interface {
	NotifyActionCreated(ctx context.Context, action event.Action) error
	NotifyActionUpdated(ctx context.Context, action event.Action) error
	NotifyActionDeleted(ctx context.Context, projectID, actionID string) error
}

// SessionRevoker tells every device a user has open to drop its session.
type SessionRevoker interface {
	ForceLogout(ctx context.Context, userID, reason string) error
}

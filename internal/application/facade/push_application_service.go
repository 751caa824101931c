package facade

import (
	"context"

	"pushhub/internal/domain/event"
	"pushhub/internal/infrastructure/logger"
	"pushhub/internal/port/inbound"
)

// EventSink is where published events go; the hub satisfies it.
type EventSink interface {
	Publish(ctx context.Context, ev event.Event, scope event.Scope) error
}

// PushApplicationService turns application-level notifications into
// addressed domain events.
type PushApplicationService struct {
	sink   EventSink
	logger logger.Logger
}

var _ inbound.EventPublisher = (*PushApplicationService)(nil)
var _ inbound.ActionNotifier = (*PushApplicationService)(nil)
var _ inbound.SessionRevoker = (*PushApplicationService)(nil)

func NewPushApplicationService(sink EventSink, log logger.Logger) *PushApplicationService {
	return &PushApplicationService{
		sink:   sink,
		logger: log.WithField("service", "push"),
	}
}

func (s *PushApplicationService) Publish(ctx context.Context, ev event.Event, scope event.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return s.sink.Publish(ctx, ev, scope)
}

// Board changes go to everyone; clients filter by the project they show.

func (s *PushApplicationService) NotifyActionCreated(ctx context.Context, action event.Action) error {
	return s.Publish(ctx, event.ActionCreated{ProjectID: action.ProjectID, Action: action}, event.Broadcast())
}

func (s *PushApplicationService) NotifyActionUpdated(ctx context.Context, action event.Action) error {
	return s.Publish(ctx, event.ActionUpdated{ProjectID: action.ProjectID, Action: action}, event.Broadcast())
}

func (s *PushApplicationService) NotifyActionDeleted(ctx context.Context, projectID, actionID string) error {
	return s.Publish(ctx, event.ActionDeleted{ProjectID: projectID, ActionID: actionID}, event.Broadcast())
}

// ForceLogout targets only the named user's connections.
func (s *PushApplicationService) ForceLogout(ctx context.Context, userID, reason string) error {
	s.logger.Infof("Forcing logout for user %s", userID)
	return s.Publish(ctx, event.ForceLogout{Reason: reason}, event.ByOwner(userID))
}

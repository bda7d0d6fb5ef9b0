package domain

import "context"

// Routing keys of the events published on every committed write.
const (
	EventCurriculumCreated = "curriculum.created"
	EventCurriculumUpdated = "curriculum.updated"
	EventCurriculumDeleted = "curriculum.deleted"
	EventListaCreated      = "lista.created"
	EventListaUpdated      = "lista.updated"
	EventListaDeleted      = "lista.deleted"
	EventMembershipChanged = "membership.changed"
)

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

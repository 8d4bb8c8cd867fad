package domain

import "context"

type EventType string

const (
	EventProfileUpdated      EventType = "candidate.profile.updated"
	EventProfileImageUpdated EventType = "candidate.profile.image_updated"
	EventContactUpdated      EventType = "candidate.contact.updated"
)

// ProfileEvent is published after every successful profile write.
type ProfileEvent struct {
	EventType EventType `json:"eventType"`
	ProfileID int64     `json:"profileId"`
	UserID    string    `json:"userId"`
	Timestamp int64     `json:"timestamp"`
}

type EventPublisher interface {
	PublishProfileEvent(ctx context.Context, event *ProfileEvent) error
	Close() error
}

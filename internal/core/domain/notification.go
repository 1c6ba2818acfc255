package domain

import "context"

type NotificationName string

const CallsChangedNotification NotificationName = "calls_changed"

// Notification is a named broadcast. Sender identifies the poster and
// carries no payload of its own.
type Notification struct {
	Name   NotificationName
	Sender any
}

type Observer func(ctx context.Context, n Notification)

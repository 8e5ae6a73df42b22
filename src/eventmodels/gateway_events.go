package eventmodels

import "time"

type EventName string

type SessionAuthenticatedEvent struct {
	SessionID string
	Restored  bool
	At        time.Time
}

type SessionInvalidatedEvent struct {
	SessionID string
	Reason    string
	At        time.Time
}

type OrderPlacedEvent struct {
	AccountKey string
	Spread     bool
	Legs       int
	At         time.Time
}

type OrderCancelledEvent struct {
	AccountKey string
	OrderID    int64
	At         time.Time
}

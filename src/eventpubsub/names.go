package eventpubsub

import "github.com/SmooSenseAI/itrade/src/eventmodels"

const (
	SessionAuthenticated eventmodels.EventName = "session.authenticated"
	SessionInvalidated   eventmodels.EventName = "session.invalidated"
	OrderPlaced          eventmodels.EventName = "order.placed"
	OrderCancelled       eventmodels.EventName = "order.cancelled"
)

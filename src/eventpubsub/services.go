package eventpubsub

import (
	"fmt"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
)

// Bus is an in-process publish/subscribe hub. Subscribers run
// asynchronously, one at a time per subscription.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Publish(publisherName string, topic eventmodels.EventName, event interface{}) {
	if b == nil {
		return
	}

	log.Debugf("[%v] Published to topic %s", publisherName, topic)
	b.bus.Publish(string(topic), event)
}

func (b *Bus) Subscribe(subscriberName string, topic eventmodels.EventName, callbackFn interface{}) error {
	if err := b.bus.SubscribeAsync(string(topic), callbackFn, true); err != nil {
		return fmt.Errorf("[%v] failed to subscribe to %s: %w", subscriberName, topic, err)
	}

	log.Infof("[%v] Subscribed to topic %s", subscriberName, topic)
	return nil
}

// WaitAsync blocks until every in-flight async callback has returned.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}

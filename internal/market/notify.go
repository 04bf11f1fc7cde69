package market

// Event topics published after a transaction commits. The application wires
// them to the search indexer, an explicit post-commit notification step
// instead of implicit storage hooks.
const (
	TopicItemUpdated = "market.item.updated"
	TopicItemDeleted = "market.item.deleted"
	TopicCheckout    = "market.checkout.completed"
)

// Notifier publishes post-commit events. Satisfied by EventBus.
type Notifier interface {
	Publish(topic string, args ...interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, ...interface{}) {}

// NopNotifier discards all events, used when no bus is configured.
var NopNotifier Notifier = nopNotifier{}

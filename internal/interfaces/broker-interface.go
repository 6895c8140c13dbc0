package interfaces

// ConsumerHandler processes one inbound account event message.
type ConsumerHandler interface {
	HandleMessage(message string) error
}

// ProducerHandler publishes directory domain events. Services depend on
// this, never on the broker client directly.
type ProducerHandler interface {
	PublishMessage(key, value []byte) error
}

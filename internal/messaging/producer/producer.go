package producer

import (
	"context"
	"fmt"

	"ingestgw/storage/store"
)

// Message is one encoded record bound for the broker
type Message struct {
	Stream store.StreamKey
	Key    []byte
	Value  []byte
}

// Producer defines the interface for message queue producer
type Producer interface {
	// PublishBatch sends msgs synchronously and in order. A *BatchError
	// reports the messages the broker did not acknowledge; any other error
	// means the batch as a whole failed.
	PublishBatch(ctx context.Context, msgs []Message) error

	// Close flushes and closes the producer connection
	Close() error
}

// BatchError lists per-message delivery failures. Errs is aligned with the
// published batch; a nil entry means the message was delivered.
type BatchError struct {
	Errs []error
}

func (e *BatchError) Error() string {
	failed := 0
	var first error
	for _, err := range e.Errs {
		if err != nil {
			if first == nil {
				first = err
			}
			failed++
		}
	}
	return fmt.Sprintf("%d of %d message(s) not delivered, first: %v", failed, len(e.Errs), first)
}

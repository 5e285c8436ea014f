// Package bus publishes committed action records to downstream consumers
// (log sinks, ingestion pipelines, dashboards) over watermill pub/sub.
//
// The engine publishes after commit: the action log already holds the
// truth, and the bus is a notification channel, not part of the
// transaction. The in-process GoChannel implementation serves embedded
// deployments and tests; a service layer can swap in any watermill
// publisher with the same topic contract.
package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/warfront/hexsim/internal/actionlog"
)

// TopicActions carries one JSON-encoded actionlog.Record per committed
// operation, in commit order for in-process transports.
const TopicActions = "sim.actions"

// Metadata keys set on published messages.
const (
	metaKeyKind = "kind"
	metaKeySeq  = "seq"
)

// Bus is an in-process action event bus backed by watermill's GoChannel.
type Bus struct {
	pub    message.Publisher
	sub    message.Subscriber
	logger watermill.LoggerAdapter
}

// NewInProcess creates an in-memory bus. Messages published before a
// subscriber attaches are dropped, matching GoChannel defaults.
func NewInProcess() *Bus {
	logger := watermill.NewStdLogger(false, false)
	goChannel := gochannel.NewGoChannel(gochannel.Config{}, logger)

	return &Bus{
		pub:    goChannel,
		sub:    goChannel,
		logger: logger,
	}
}

// PublishAction publishes one committed record on TopicActions.
// Implements the engine's ActionPublisher interface.
func (b *Bus) PublishAction(rec actionlog.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("publish action: marshal: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metaKeyKind, string(rec.Kind))
	msg.Metadata.Set(metaKeySeq, fmt.Sprintf("%d", rec.Seq))

	if err := b.pub.Publish(TopicActions, msg); err != nil {
		return fmt.Errorf("publish action: %w", err)
	}
	return nil
}

// Actions subscribes to the committed-action stream. The returned channel
// closes when ctx is cancelled or the bus is closed.
func (b *Bus) Actions(ctx context.Context) (<-chan *message.Message, error) {
	ch, err := b.sub.Subscribe(ctx, TopicActions)
	if err != nil {
		return nil, fmt.Errorf("subscribe actions: %w", err)
	}
	return ch, nil
}

// DecodeAction unmarshals a bus message back into a record.
func DecodeAction(msg *message.Message) (actionlog.Record, error) {
	var rec actionlog.Record
	if err := json.Unmarshal(msg.Payload, &rec); err != nil {
		return actionlog.Record{}, fmt.Errorf("decode action: %w", err)
	}
	return rec, nil
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	if closer, ok := b.pub.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

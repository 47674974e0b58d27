package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// MessageEvent is the change-feed record for a newly created conversation
// message. It is what live subscribers receive.
type MessageEvent struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Feed is the in-process change feed for conversation messages, one topic per
// conversation. Delivery order is the publish order; subscribers dedupe by
// message id so an optimistic local append plus the feed echo never
// double-appears.
type Feed struct {
	pubSub *gochannel.GoChannel
}

func NewFeed() *Feed {
	return &Feed{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NopLogger{},
		),
	}
}

func topicFor(conversationID uuid.UUID) string {
	return fmt.Sprintf("conversation.%s.messages", conversationID)
}

// Publish fans the event out to every live subscriber of the conversation.
func (f *Feed) Publish(event MessageEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal message event: %w", err)
	}
	msg := message.NewMessage(event.ID.String(), payload)
	return f.pubSub.Publish(topicFor(event.ConversationID), msg)
}

// Subscription is a live listener on one conversation. Close it when the
// consumer goes away; a leaked subscription keeps receiving forever.
type Subscription struct {
	C      <-chan MessageEvent
	cancel context.CancelFunc
}

func (s *Subscription) Close() {
	s.cancel()
}

// Subscribe opens a change-feed listener for one conversation. Each event is
// delivered at most once per subscription; duplicate message ids (publish
// retries, optimistic echo) are dropped here.
func (f *Feed) Subscribe(ctx context.Context, conversationID uuid.UUID) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	in, err := f.pubSub.Subscribe(subCtx, topicFor(conversationID))
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan MessageEvent, 64)
	go func() {
		defer close(out)
		seen := make(map[uuid.UUID]struct{})
		for msg := range in {
			var event MessageEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				msg.Ack()
				continue
			}
			if _, dup := seen[event.ID]; dup {
				msg.Ack()
				continue
			}
			seen[event.ID] = struct{}{}

			select {
			case out <- event:
				msg.Ack()
			case <-subCtx.Done():
				msg.Ack()
				return
			}
		}
	}()

	return &Subscription{C: out, cancel: cancel}, nil
}

func (f *Feed) Close() error {
	return f.pubSub.Close()
}

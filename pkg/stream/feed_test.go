package stream

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func collect(t *testing.T, c <-chan MessageEvent, n int) []MessageEvent {
	t.Helper()
	out := make([]MessageEvent, 0, n)
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case event, ok := <-c:
			if !ok {
				t.Fatalf("channel closed after %d of %d events", len(out), n)
			}
			out = append(out, event)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestFeedDeliversInPublishOrder(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	conversationID := uuid.New()
	sub, err := feed.Subscribe(context.Background(), conversationID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	first := MessageEvent{ID: uuid.New(), ConversationID: conversationID, Content: "first"}
	second := MessageEvent{ID: uuid.New(), ConversationID: conversationID, Content: "second"}
	if err := feed.Publish(first); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := feed.Publish(second); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got := collect(t, sub.C, 2)
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("events out of order: got %s then %s", got[0].Content, got[1].Content)
	}
}

func TestFeedDropsDuplicateMessageIDs(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	conversationID := uuid.New()
	sub, err := feed.Subscribe(context.Background(), conversationID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	dup := MessageEvent{ID: uuid.New(), ConversationID: conversationID, Content: "once"}
	tail := MessageEvent{ID: uuid.New(), ConversationID: conversationID, Content: "tail"}

	// A publish retry re-emits the same message id.
	feed.Publish(dup)
	feed.Publish(dup)
	feed.Publish(tail)

	got := collect(t, sub.C, 2)
	if got[0].ID != dup.ID {
		t.Errorf("first event = %s, want %s", got[0].ID, dup.ID)
	}
	if got[1].ID != tail.ID {
		t.Errorf("second event = %s, want %s; duplicate leaked through", got[1].ID, tail.ID)
	}
}

func TestFeedIsolatesConversations(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	mine := uuid.New()
	other := uuid.New()
	sub, err := feed.Subscribe(context.Background(), mine)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	feed.Publish(MessageEvent{ID: uuid.New(), ConversationID: other, Content: "not yours"})
	wanted := MessageEvent{ID: uuid.New(), ConversationID: mine, Content: "yours"}
	feed.Publish(wanted)

	got := collect(t, sub.C, 1)
	if got[0].ID != wanted.ID {
		t.Errorf("received event from the wrong conversation: %s", got[0].Content)
	}
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	conversationID := uuid.New()
	sub, err := feed.Subscribe(context.Background(), conversationID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	sub.Close()

	// The out channel closes once the pump drains.
	select {
	case _, ok := <-sub.C:
		if ok {
			t.Error("received event after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Close")
	}
}

func TestIndependentSubscribersEachReceive(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	conversationID := uuid.New()
	subA, err := feed.Subscribe(context.Background(), conversationID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer subA.Close()
	subB, err := feed.Subscribe(context.Background(), conversationID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer subB.Close()

	event := MessageEvent{ID: uuid.New(), ConversationID: conversationID, Content: "fanout"}
	if err := feed.Publish(event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for name, sub := range map[string]*Subscription{"A": subA, "B": subB} {
		got := collect(t, sub.C, 1)
		if got[0].ID != event.ID {
			t.Errorf("subscriber %s got wrong event", name)
		}
	}
}

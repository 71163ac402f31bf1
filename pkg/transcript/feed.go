package transcript

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

// Chunk is one ordered transcript segment for an active meeting session.
type Chunk struct {
	SessionId uuid.UUID `json:"session_id"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Feed fans transcript chunks out to every interested consumer. Each live
// monitoring subscription is a consumer on its session's topic; an ingest
// indexer is another. Consumers unsubscribe by cancelling their context.
type Feed struct {
	pubSub *gochannel.GoChannel
}

// NewFeed creates an in-process fan-out feed.
func NewFeed() *Feed {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	return &Feed{pubSub: pubSub}
}

func topicFor(sessionId uuid.UUID) string {
	return "transcript." + sessionId.String()
}

// Publish delivers a chunk to every subscriber of the chunk's session.
func (f *Feed) Publish(ctx context.Context, chunk Chunk) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript chunk: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := f.pubSub.Publish(topicFor(chunk.SessionId), msg); err != nil {
		return fmt.Errorf("failed to publish transcript chunk: %w", err)
	}
	return nil
}

// Subscription is one consumer's view of a session's chunk stream.
type Subscription struct {
	ch     chan Chunk
	cancel context.CancelFunc
}

// Chunks returns the stream. It is closed when the subscription ends.
func (s *Subscription) Chunks() <-chan Chunk {
	return s.ch
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() {
	s.cancel()
}

// Subscribe registers interest in a session's subsequent chunks. The
// subscription ends when ctx is cancelled or Close is called.
func (f *Feed) Subscribe(ctx context.Context, sessionId uuid.UUID) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	messages, err := f.pubSub.Subscribe(subCtx, topicFor(sessionId))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to transcript feed: %w", err)
	}

	ch := make(chan Chunk, 16)
	go func() {
		defer close(ch)
		for msg := range messages {
			var chunk Chunk
			if err := json.Unmarshal(msg.Payload, &chunk); err != nil {
				msg.Ack() // malformed chunks are dropped, not retried
				continue
			}
			msg.Ack()

			select {
			case ch <- chunk:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &Subscription{ch: ch, cancel: cancel}, nil
}

// Close shuts the feed down and ends every subscription.
func (f *Feed) Close() error {
	return f.pubSub.Close()
}

package transcript

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, sub *Subscription, n int) []Chunk {
	t.Helper()
	chunks := make([]Chunk, 0, n)
	timeout := time.After(2 * time.Second)
	for len(chunks) < n {
		select {
		case c, ok := <-sub.Chunks():
			if !ok {
				t.Fatalf("subscription closed after %d of %d chunks", len(chunks), n)
			}
			chunks = append(chunks, c)
		case <-timeout:
			t.Fatalf("timed out waiting for %d chunks, got %d", n, len(chunks))
		}
	}
	return chunks
}

func TestFeedFanOut(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	sessionId := uuid.New()

	subA, err := feed.Subscribe(context.Background(), sessionId)
	require.NoError(t, err)
	defer subA.Close()

	subB, err := feed.Subscribe(context.Background(), sessionId)
	require.NoError(t, err)
	defer subB.Close()

	chunk := Chunk{SessionId: sessionId, Speaker: "alice", Text: "hello everyone", Timestamp: time.Now()}
	require.NoError(t, feed.Publish(context.Background(), chunk))

	// Both subscribers receive the same chunk.
	gotA := collect(t, subA, 1)
	gotB := collect(t, subB, 1)
	assert.Equal(t, "hello everyone", gotA[0].Text)
	assert.Equal(t, "hello everyone", gotB[0].Text)
	assert.Equal(t, "alice", gotA[0].Speaker)
}

func TestFeedPreservesOrder(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	sessionId := uuid.New()
	sub, err := feed.Subscribe(context.Background(), sessionId)
	require.NoError(t, err)
	defer sub.Close()

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		require.NoError(t, feed.Publish(context.Background(), Chunk{
			SessionId: sessionId, Speaker: "bob", Text: text, Timestamp: time.Now(),
		}))
	}

	got := collect(t, sub, len(texts))
	for i, text := range texts {
		assert.Equal(t, text, got[i].Text)
	}
}

func TestFeedSessionIsolation(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	sessionA := uuid.New()
	sessionB := uuid.New()

	sub, err := feed.Subscribe(context.Background(), sessionA)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, feed.Publish(context.Background(), Chunk{SessionId: sessionB, Speaker: "eve", Text: "other meeting", Timestamp: time.Now()}))
	require.NoError(t, feed.Publish(context.Background(), Chunk{SessionId: sessionA, Speaker: "alice", Text: "our meeting", Timestamp: time.Now()}))

	got := collect(t, sub, 1)
	assert.Equal(t, "our meeting", got[0].Text)

	select {
	case c, ok := <-sub.Chunks():
		if ok {
			t.Fatalf("unexpected extra chunk %q", c.Text)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFeedSubscriptionClosesOnCancel(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := feed.Subscribe(ctx, uuid.New())
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-sub.Chunks():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after context cancellation")
	}
}

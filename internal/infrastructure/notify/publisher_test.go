package notify

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/monodash/internal/application/todo"
	"github.com/rezkam/monodash/internal/domain"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("monodash.state.changed", domain.DashboardSummary{
		Total: 3, Active: 2, Completed: 1, Filter: domain.FilterCompleted,
	})

	assert.Equal(t, "monodash.state.changed", msg.Subject)
	assert.Empty(t, msg.Data)
	assert.Equal(t, "3", msg.Header.Get(HeaderTotal))
	assert.Equal(t, "2", msg.Header.Get(HeaderActive))
	assert.Equal(t, "1", msg.Header.Get(HeaderCompleted))
	assert.Equal(t, "Completed", msg.Header.Get(HeaderFilter))
}

func TestPublisher_NotifyIgnoresCancelledContext(t *testing.T) {
	var sent []*nats.Msg
	pub := &Publisher{
		subject: "monodash.state.changed",
		summary: func() domain.DashboardSummary { return domain.DashboardSummary{Total: 1, Active: 1} },
		publish: func(msg *nats.Msg) error {
			sent = append(sent, msg)
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, pub.Notify(ctx))
	require.Len(t, sent, 1)
	assert.Equal(t, "1", sent[0].Header.Get(HeaderTotal))
}

func TestNewPublisher_RequiresSubject(t *testing.T) {
	_, err := NewPublisher("nats://127.0.0.1:4222", "", nil)
	assert.Error(t, err)
}

func TestPublisher_Notify(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL not set, skipping NATS tests")
	}

	summary := domain.DashboardSummary{Total: 1, Active: 1, Filter: domain.FilterAll}
	pub, err := NewPublisher(url, "monodash.test.changed", func() domain.DashboardSummary { return summary })
	require.NoError(t, err)
	defer pub.Close()

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	received := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe("monodash.test.changed", received)
	require.NoError(t, err)
	defer s.Unsubscribe()
	require.NoError(t, sub.Flush())

	var listener todo.Listener = pub.Notify
	require.NoError(t, listener(context.Background()))

	select {
	case msg := <-received:
		assert.Equal(t, "1", msg.Header.Get(HeaderTotal))
	case <-time.After(5 * time.Second):
		t.Fatal("no state change message received")
	}
}

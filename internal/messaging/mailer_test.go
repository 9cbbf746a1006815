package messaging

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/core/event"
	"github.com/l1jgo/charsync/internal/repair"
	"github.com/l1jgo/charsync/internal/world"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	fail error
	msgs []published
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.fail != nil {
		return p.fail
	}
	p.msgs = append(p.msgs, published{subject, data})
	return nil
}

func TestQueueToNatsThroughBus(t *testing.T) {
	bus := event.NewBus()
	pub := &fakePublisher{}
	NewMailer(pub, "realm1", zap.NewNop()).Attach(bus)

	q := NewQueue(bus)
	q.Enqueue(repair.MailNotice{Receiver: 7, MailID: 501, Subject: "Recovered items", Items: []world.GUID{11, 12}})

	// emitted events become visible on the next swap
	bus.DispatchAll()
	assert.Empty(t, pub.msgs)

	bus.SwapBuffers()
	bus.DispatchAll()
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "realm1.mail.7", pub.msgs[0].subject)

	var n Notice
	require.NoError(t, json.Unmarshal(pub.msgs[0].data, &n))
	assert.Equal(t, Notice{Receiver: 7, MailID: 501, Subject: "Recovered items", Items: []int64{11, 12}}, n)
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	bus := event.NewBus()
	pub := &fakePublisher{fail: errors.New("no responders")}
	m := NewMailer(pub, "", zap.NewNop())
	m.Attach(bus)

	assert.Equal(t, "charsync.mail.3", m.Subject(3))
	assert.Error(t, m.Publish(event.MailQueued{Receiver: 3, MailID: 1}))

	event.Emit(bus, event.MailQueued{Receiver: 3, MailID: 1})
	bus.SwapBuffers()
	assert.NotPanics(t, bus.DispatchAll)
}

package messaging

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/core/event"
	"github.com/l1jgo/charsync/internal/repair"
)

// Publisher is the subset of *nats.Conn the mailer needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Notice is the JSON payload announcing a generated mail.
type Notice struct {
	Receiver int64   `json:"receiver"`
	MailID   int64   `json:"mail_id"`
	Subject  string  `json:"subject"`
	Items    []int64 `json:"items,omitempty"`
}

// Mailer publishes mail notices on <prefix>.mail.<guid>.
type Mailer struct {
	pub    Publisher
	prefix string
	log    *zap.Logger
}

func NewMailer(pub Publisher, prefix string, log *zap.Logger) *Mailer {
	if prefix == "" {
		prefix = "charsync"
	}
	return &Mailer{pub: pub, prefix: prefix, log: log}
}

// Subject returns the subject a receiver's notices are published on.
func (m *Mailer) Subject(receiver int64) string {
	return fmt.Sprintf("%s.mail.%d", m.prefix, receiver)
}

// Publish sends one notice.
func (m *Mailer) Publish(ev event.MailQueued) error {
	n := Notice{
		Receiver: int64(ev.Receiver),
		MailID:   ev.MailID,
		Subject:  ev.Subject,
		Items:    make([]int64, len(ev.Items)),
	}
	for i, g := range ev.Items {
		n.Items[i] = int64(g)
	}
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return m.pub.Publish(m.Subject(n.Receiver), data)
}

// Attach subscribes the mailer to MailQueued events on bus. Publish
// failures are logged; the mail itself is already stored.
func (m *Mailer) Attach(bus *event.Bus) {
	event.Subscribe(bus, func(ev event.MailQueued) {
		if err := m.Publish(ev); err != nil {
			m.log.Warn("mail notice not published",
				zap.Int64("receiver", int64(ev.Receiver)),
				zap.Int64("mail", ev.MailID),
				zap.Error(err),
			)
		}
	})
}

// Queue hands repair-generated mail to the event bus. It runs on the game
// loop goroutine, which owns the bus.
type Queue struct {
	bus *event.Bus
}

func NewQueue(bus *event.Bus) *Queue { return &Queue{bus: bus} }

// Enqueue implements repair.MailDelivery.
func (q *Queue) Enqueue(n repair.MailNotice) {
	event.Emit(q.bus, event.MailQueued{
		Receiver: n.Receiver,
		MailID:   n.MailID,
		Subject:  n.Subject,
		Items:    n.Items,
	})
}

var _ repair.MailDelivery = (*Queue)(nil)

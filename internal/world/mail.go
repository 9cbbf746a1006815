package world

import (
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// MailKind distinguishes player mail from system-generated messages.
type MailKind uint8

const (
	MailNormal MailKind = iota
	MailSystem
	MailAuction
)

// Mail is one persisted mail message addressed to the player.
type Mail struct {
	ID         int64
	Kind       MailKind
	Sender     int64
	Subject    string
	Body       string
	Money      uint64
	COD        uint64
	ExpireTime int64
	DeliverAt  int64
	Checked    bool
}

// Mailbox holds the player's mail headers. Attached items live in the
// inventory with Item.MailID set.
type Mailbox struct {
	mails *dirty.Set[int64, Mail]
}

func newMailbox() *Mailbox { return &Mailbox{mails: dirty.NewSet[int64, Mail]()} }

func (m *Mailbox) Load(mail Mail)              { m.mails.Load(mail.ID, mail) }
func (m *Mailbox) Get(id int64) (Mail, bool)   { return m.mails.Get(id) }
func (m *Mailbox) Has(id int64) bool           { return m.mails.Has(id) }
func (m *Mailbox) Len() int                    { return m.mails.Len() }
func (m *Mailbox) All() iter.Seq2[int64, Mail] { return m.mails.All() }

// Deliver adds a newly created message.
func (m *Mailbox) Deliver(mail Mail) { m.mails.Add(mail.ID, mail) }

// MarkRead sets the checked flag.
func (m *Mailbox) MarkRead(id int64) bool {
	mail, ok := m.mails.Get(id)
	if !ok || mail.Checked {
		return false
	}
	return m.mails.Update(id, func(v *Mail) { v.Checked = true })
}

// TakeMoney clears the attached money and returns it.
func (m *Mailbox) TakeMoney(id int64) uint64 {
	mail, ok := m.mails.Get(id)
	if !ok || mail.Money == 0 {
		return 0
	}
	m.mails.Update(id, func(v *Mail) { v.Money = 0 })
	return mail.Money
}

// Records exposes mail headers to the flusher.
func (m *Mailbox) Records() Tracked[int64, Mail] { return m.mails }

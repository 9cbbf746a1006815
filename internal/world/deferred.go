package world

// PendingOps is the set of actions postponed until an in-flight transfer
// completes.
type PendingOps uint8

const (
	OpSave PendingOps = 1 << iota
	OpResurrect
	OpRestoreMount
)

// Has reports whether every bit of op is set.
func (o PendingOps) Has(op PendingOps) bool { return o&op == op }

// BeginTransfer marks the player as being relocated. Position is transient
// until EndTransfer.
func (p *Player) BeginTransfer() {
	p.transferring = true
	p.transferFrom = p.data.Position
}

// EndTransfer clears the transfer flag. Queued operations run on the next
// drain.
func (p *Player) EndTransfer() { p.transferring = false }

// AbortTransfer gives up an in-flight transfer and puts the player back where
// it started, so a save never records the transient position.
func (p *Player) AbortTransfer() {
	if !p.transferring {
		return
	}
	p.SetPosition(p.transferFrom)
	p.transferring = false
}

// InTransfer reports whether a relocation is in flight.
func (p *Player) InTransfer() bool { return p.transferring }

// Defer queues op. Setting a flag twice is a no-op.
func (p *Player) Defer(op PendingOps) { p.pending |= op }

// PendingOps returns the queued operations.
func (p *Player) PendingOps() PendingOps { return p.pending }

// TakePending returns and clears the queued operations, or nothing while a
// transfer is still in flight.
func (p *Player) TakePending() PendingOps {
	if p.transferring || p.pending == 0 {
		return 0
	}
	ops := p.pending
	p.pending = 0
	return ops
}

// RunPending honors queued runtime actions. OpSave is returned to the caller,
// which owns the storage collaborator; the other flags are handled here.
func (p *Player) RunPending() (save bool) {
	ops := p.TakePending()
	if ops.Has(OpResurrect) {
		p.Resurrect()
	}
	if ops.Has(OpRestoreMount) {
		p.RestoreMount()
	}
	return ops.Has(OpSave)
}

// RequestResurrect resurrects now, or after the transfer completes.
func (p *Player) RequestResurrect() {
	if p.transferring {
		p.Defer(OpResurrect)
		return
	}
	p.Resurrect()
}

// RequestRestoreMount re-mounts now, or after the transfer completes.
func (p *Player) RequestRestoreMount() {
	if p.transferring {
		p.Defer(OpRestoreMount)
		return
	}
	p.RestoreMount()
}

package event

import "github.com/l1jgo/charsync/internal/world"

// MailQueued is emitted when the repair layer generates a system mail.
type MailQueued struct {
	Receiver world.GUID
	MailID   int64
	Subject  string
	Items    []world.GUID
}

// PlayerLoaded is emitted after a character was hydrated and registered.
type PlayerLoaded struct {
	GUID      world.GUID
	AccountID int64
	Repairs   int
	Mail      []int64
}

// PlayerSaved is emitted after every flush attempt, successful or not.
type PlayerSaved struct {
	GUID       world.GUID
	CycleID    string
	Statements int
	Err        error
}

// PlayerLoggedOut is emitted once the final save of a leaving character ran.
type PlayerLoggedOut struct {
	GUID world.GUID
}

package hydrate

import (
	"errors"

	"github.com/l1jgo/charsync/internal/world"
)

// Failure classes that abort a load. Every other defect is repaired in place.
type FailureKind uint8

const (
	// FatalAuthorization covers account mismatch and bans.
	FatalAuthorization FailureKind = iota + 1
	// ValidationFailure covers root records the catalog rejects.
	ValidationFailure
)

func (k FailureKind) String() string {
	switch k {
	case FatalAuthorization:
		return "authorization"
	case ValidationFailure:
		return "validation"
	default:
		return "unknown"
	}
}

var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrAccountMismatch   = errors.New("character belongs to another account")
	ErrBanned            = errors.New("account is banned")
	ErrInvalidRaceClass  = errors.New("invalid race/class combination")
	ErrInvalidAppearance = errors.New("invalid gender or appearance")
	ErrInvalidName       = errors.New("invalid character name")
)

// LoadError is the single failure signal of an aborted load. No partial graph
// accompanies it. ForceRename holds the at-login flags the caller should
// persist before refusing the login; zero when none apply.
type LoadError struct {
	Kind        FailureKind
	GUID        world.GUID
	Reason      error
	ForceRename world.AtLoginFlags
}

func (e *LoadError) Error() string {
	return "load character: " + e.Kind.String() + ": " + e.Reason.Error()
}

func (e *LoadError) Unwrap() error { return e.Reason }

func denied(guid world.GUID, reason error) *LoadError {
	return &LoadError{Kind: FatalAuthorization, GUID: guid, Reason: reason}
}

func invalid(guid world.GUID, reason error, flags world.AtLoginFlags) *LoadError {
	return &LoadError{Kind: ValidationFailure, GUID: guid, Reason: reason, ForceRename: flags}
}

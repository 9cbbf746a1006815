package hydrate

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/l1jgo/charsync/internal/world"
)

const (
	minNameLength = 2
	maxNameLength = 12
)

// authorize checks the owning account and its ban state.
func (l *load) authorize() error {
	c := l.b.Character
	if c == nil {
		return denied(0, ErrCharacterNotFound)
	}
	if l.b.Account == nil || c.AccountID != l.accountID || l.b.Account.ID != l.accountID {
		return denied(c.GUID, ErrAccountMismatch)
	}
	if l.b.Account.Banned(l.now) {
		return denied(c.GUID, fmt.Errorf("%w: %s", ErrBanned, l.b.Account.BanReason))
	}
	return nil
}

// validate rejects root records the catalog cannot represent. Appearance and
// name defects are recoverable by the player at the next login, so the
// failure carries the at-login flag to persist.
func (l *load) validate() error {
	c := l.b.Character
	chars := l.h.catalog.Characters
	if chars.CreateInfo(c.Race, c.Class) == nil {
		return invalid(c.GUID, fmt.Errorf("%w: race %d class %d", ErrInvalidRaceClass, c.Race, c.Class), 0)
	}
	race := chars.Race(c.Race)
	if c.Gender > 1 || race == nil || c.Skin > race.MaxSkin || c.Face > race.MaxFace {
		return invalid(c.GUID, fmt.Errorf("%w: gender %d skin %d face %d", ErrInvalidAppearance, c.Gender, c.Skin, c.Face),
			world.AtLoginCustomize)
	}
	if !ValidName(c.Name) {
		return invalid(c.GUID, fmt.Errorf("%w: %q", ErrInvalidName, c.Name), world.AtLoginRename)
	}
	return nil
}

// ValidName reports whether name is a well-formed character name: NFC
// normalized, letters only, within the length bounds and capitalized as
// the canonical title case.
func ValidName(name string) bool {
	if !norm.NFC.IsNormalString(name) {
		return false
	}
	n := utf8.RuneCountInString(name)
	if n < minNameLength || n > maxNameLength {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return titleCase(name) == name
}

// NormalizeName returns the canonical form of a proposed character name.
func NormalizeName(name string) string {
	return titleCase(norm.NFC.String(name))
}

// A cases.Caser is stateful, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

package world

import (
	"github.com/l1jgo/charsync/internal/core/dirty"
)

// GUID identifies a persisted object (character, item) across both stores.
type GUID int64

// Position is a point in the world plus the map/zone it belongs to.
type Position struct {
	MapID  uint32
	ZoneID uint32
	X      float32
	Y      float32
	Z      float32
	O      float32
}

// PlayerFlags mirrors the persisted player_flags column.
type PlayerFlags uint32

const (
	FlagGroupLeader PlayerFlags = 1 << 0
	FlagAFK         PlayerFlags = 1 << 1
	FlagGhost       PlayerFlags = 1 << 4
	FlagResting     PlayerFlags = 1 << 5
	FlagHideHelm    PlayerFlags = 1 << 10
	FlagHideCloak   PlayerFlags = 1 << 11
)

// AtLoginFlags are one-shot actions performed at the next login.
type AtLoginFlags uint16

const (
	AtLoginRename       AtLoginFlags = 1 << 0
	AtLoginResetSpells  AtLoginFlags = 1 << 1
	AtLoginResetTalents AtLoginFlags = 1 << 2
	AtLoginCustomize    AtLoginFlags = 1 << 3
)

// MaxPowers is the number of power indices stored per character.
const MaxPowers = 6

// DeathState is derived at login from health; never stored.
type DeathState uint8

const (
	Alive DeathState = iota
	Corpse
)

func (d DeathState) String() string {
	if d == Corpse {
		return "corpse"
	}
	return "alive"
}

// CharacterData is the root character record as stored in the characters table.
type CharacterData struct {
	GUID       GUID
	AccountID  int64
	Name       string
	Race       uint8
	Class      uint8
	Gender     uint8
	Skin       uint8
	Face       uint8
	Level      uint8
	XP         uint32
	Money      uint64
	Position   Position
	Flags      PlayerFlags
	AtLogin    AtLoginFlags
	Health     uint32
	Power      [MaxPowers]uint32
	ActiveSpec uint32
	RestBonus  float64
	RestInArea bool
	LogoutTime int64 // unix seconds; offline time is measured from here
	TotalTime  uint32
	LevelTime  uint32
	Drunk      uint8
	Difficulty uint8
}

// HomeBind is the character's hearth location.
type HomeBind struct {
	MapID  uint32
	ZoneID uint32
	X      float32
	Y      float32
	Z      float32
}

// Player is the aggregate root of one character's live state.
// Accessed only from the goroutine that owns the character's session; no locks.
type Player struct {
	data  CharacterData
	state dirty.State

	// derived at login by the recalculator, never stored
	maxHealth  uint32
	maxPower   [MaxPowers]uint32
	deathState DeathState
	ghost      bool

	homeBind *dirty.Set[GUID, HomeBind]

	Inventory     *Inventory
	Currencies    *Currencies
	Skills        *Skills
	Spells        *Spells
	Quests        *Quests
	Mailbox       *Mailbox
	EquipmentSets *EquipmentSets
	Auras         *Auras
	Traits        *Traits
	VoidStorage   *VoidStorage
	Pets          *Pets
	ActionButtons *ActionButtons
	Achievements  *Achievements
	Collections   *AccountCollections

	transferring bool
	transferFrom Position
	pending      PendingOps
	mountSpell   uint32
	mounted      bool
}

// NewPlayer wraps a character record read from storage.
func NewPlayer(data CharacterData) *Player {
	p := newPlayer(data)
	p.state = dirty.Unchanged
	return p
}

// CreatePlayer wraps a freshly created character that has never been stored.
func CreatePlayer(data CharacterData) *Player {
	p := newPlayer(data)
	p.state = dirty.New
	return p
}

func newPlayer(data CharacterData) *Player {
	return &Player{
		data:          data,
		homeBind:      dirty.NewSet[GUID, HomeBind](),
		Inventory:     newInventory(),
		Currencies:    newCurrencies(),
		Skills:        newSkills(),
		Spells:        newSpells(),
		Quests:        newQuests(),
		Mailbox:       newMailbox(),
		EquipmentSets: newEquipmentSets(),
		Auras:         newAuras(),
		Traits:        newTraits(),
		VoidStorage:   newVoidStorage(),
		Pets:          newPets(),
		ActionButtons: newActionButtons(),
		Achievements:  newAchievements(),
		Collections:   newAccountCollections(),
	}
}

// Data returns a copy of the root record.
func (p *Player) Data() CharacterData { return p.data }

func (p *Player) GUID() GUID             { return p.data.GUID }
func (p *Player) AccountID() int64       { return p.data.AccountID }
func (p *Player) Name() string           { return p.data.Name }
func (p *Player) Race() uint8            { return p.data.Race }
func (p *Player) Class() uint8           { return p.data.Class }
func (p *Player) Level() uint8           { return p.data.Level }
func (p *Player) Health() uint32         { return p.data.Health }
func (p *Player) Position() Position     { return p.data.Position }
func (p *Player) Flags() PlayerFlags     { return p.data.Flags }
func (p *Player) LogoutTime() int64      { return p.data.LogoutTime }
func (p *Player) ActiveSpec() uint32     { return p.data.ActiveSpec }
func (p *Player) RestBonus() float64     { return p.data.RestBonus }
func (p *Player) RestInArea() bool       { return p.data.RestInArea }
func (p *Player) Power(i int) uint32     { return p.data.Power[i] }
func (p *Player) Drunk() uint8           { return p.data.Drunk }
func (p *Player) MaxHealth() uint32      { return p.maxHealth }
func (p *Player) MaxPower(i int) uint32  { return p.maxPower[i] }
func (p *Player) DeathState() DeathState { return p.deathState }
func (p *Player) IsAlive() bool          { return p.deathState == Alive }
func (p *Player) IsGhost() bool          { return p.ghost }
func (p *Player) Mounted() bool          { return p.mounted }

// touch marks the root record changed.
func (p *Player) touch() { p.state = p.state.Touch() }

func (p *Player) SetHealth(v uint32) {
	if p.data.Health != v {
		p.data.Health = v
		p.touch()
	}
}

func (p *Player) SetPower(i int, v uint32) {
	if i < 0 || i >= MaxPowers || p.data.Power[i] == v {
		return
	}
	p.data.Power[i] = v
	p.touch()
}

func (p *Player) SetPosition(pos Position) {
	if p.data.Position != pos {
		p.data.Position = pos
		p.touch()
	}
}

func (p *Player) SetLevel(level uint8) {
	if p.data.Level != level {
		p.data.Level = level
		p.data.LevelTime = 0
		p.touch()
	}
}

func (p *Player) SetXP(xp uint32) {
	if p.data.XP != xp {
		p.data.XP = xp
		p.touch()
	}
}

func (p *Player) SetMoney(money uint64) {
	if p.data.Money != money {
		p.data.Money = money
		p.touch()
	}
}

func (p *Player) SetFlag(f PlayerFlags, on bool) {
	next := p.data.Flags &^ f
	if on {
		next |= f
	}
	if next != p.data.Flags {
		p.data.Flags = next
		p.touch()
	}
}

func (p *Player) SetAtLogin(f AtLoginFlags, on bool) {
	next := p.data.AtLogin &^ f
	if on {
		next |= f
	}
	if next != p.data.AtLogin {
		p.data.AtLogin = next
		p.touch()
	}
}

func (p *Player) SetActiveSpec(spec uint32) {
	if p.data.ActiveSpec != spec {
		p.data.ActiveSpec = spec
		p.touch()
	}
}

func (p *Player) SetRestBonus(v float64) {
	if p.data.RestBonus != v {
		p.data.RestBonus = v
		p.touch()
	}
}

func (p *Player) SetRestInArea(v bool) {
	if p.data.RestInArea != v {
		p.data.RestInArea = v
		p.touch()
	}
}

func (p *Player) SetDifficulty(d uint8) {
	if p.data.Difficulty != d {
		p.data.Difficulty = d
		p.touch()
	}
}

func (p *Player) SetDrunk(v uint8) {
	if p.data.Drunk != v {
		p.data.Drunk = v
		p.touch()
	}
}

// MarkOfflineAccounted moves the logout timestamp to now so the same offline
// interval is never applied twice.
func (p *Player) MarkOfflineAccounted(now int64) {
	if p.data.LogoutTime != now {
		p.data.LogoutTime = now
		p.touch()
	}
}

// AddPlayedTime accrues played seconds.
func (p *Player) AddPlayedTime(sec uint32) {
	if sec == 0 {
		return
	}
	p.data.TotalTime += sec
	p.data.LevelTime += sec
	p.touch()
}

// SetDerivedStats stores the recomputed maxima. Derived values are not persisted.
func (p *Player) SetDerivedStats(maxHealth uint32, maxPower [MaxPowers]uint32) {
	p.maxHealth = maxHealth
	p.maxPower = maxPower
}

// SetDeathState stores the resolved death state and ghost form.
func (p *Player) SetDeathState(d DeathState, ghost bool) {
	p.deathState = d
	p.ghost = ghost
}

// Resurrect brings a dead character back at half health.
func (p *Player) Resurrect() bool {
	if p.deathState == Alive {
		return false
	}
	hp := p.maxHealth / 2
	if hp == 0 {
		hp = 1
	}
	p.SetHealth(hp)
	p.SetFlag(FlagGhost, false)
	p.SetDeathState(Alive, false)
	return true
}

// Mount records the mount spell so it can be restored after a transfer.
func (p *Player) Mount(spellID uint32) {
	p.mountSpell = spellID
	p.mounted = spellID != 0
}

func (p *Player) Dismount() { p.mounted = false }

// RestoreMount re-applies the last mount, if any.
func (p *Player) RestoreMount() bool {
	if p.mountSpell == 0 || p.mounted {
		return false
	}
	p.mounted = true
	return true
}

// HomeBind returns the hearth location.
func (p *Player) HomeBind() (HomeBind, bool) { return p.homeBind.Get(p.data.GUID) }

// LoadHomeBind sets the stored hearth location.
func (p *Player) LoadHomeBind(hb HomeBind) { p.homeBind.Load(p.data.GUID, hb) }

// SetHomeBind binds the hearth to a new location.
func (p *Player) SetHomeBind(hb HomeBind) { p.homeBind.Add(p.data.GUID, hb) }

// HomeBindRecords exposes the hearth record to the flusher.
func (p *Player) HomeBindRecords() Tracked[GUID, HomeBind] { return p.homeBind }

// CharacterState returns the root record and its lifecycle state.
func (p *Player) CharacterState() (CharacterData, dirty.State) { return p.data, p.state }

// AckCharacter marks the root record flushed if it was still in state st.
func (p *Player) AckCharacter(st dirty.State) {
	if p.state == st {
		p.state, _ = st.Flushed()
	}
}

// DeleteMail removes a message together with every item attached to it.
// A message that was never stored has no cascade, so its attachments are
// deleted one by one.
func (p *Player) DeleteMail(id int64) bool {
	if !p.Mailbox.mails.Delete(id) {
		return false
	}
	_, cascades := p.Mailbox.mails.State(id)
	p.Inventory.dropMailItems(id, cascades)
	return true
}

// TakeMailItem moves an attached item into a free inventory slot.
func (p *Player) TakeMailItem(mailID int64, guid, bag GUID, slot uint8, rules ItemRules) error {
	it, ok := p.Inventory.Get(guid)
	if !ok || it.MailID != mailID {
		return ErrNotAttached
	}
	return p.Inventory.detachFromMail(guid, bag, slot, rules)
}

// Tracked is the flush-side view of a sub-collection: pending records and acknowledgement only.
type Tracked[K comparable, V any] interface {
	Pending() []dirty.Record[K, V]
	PendingCount() int
	Ack(records []dirty.Record[K, V])
}

package world

import (
	"errors"
	"iter"
	"slices"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// Placement errors.
var (
	ErrSlotOccupied = errors.New("slot occupied")
	ErrBadSlot      = errors.New("slot out of range")
	ErrNoContainer  = errors.New("container missing")
	ErrNotContainer = errors.New("item is not a container")
	ErrCannotEquip  = errors.New("item cannot be equipped in slot")
	ErrOwnAncestor  = errors.New("item would contain itself")
	ErrBagNotEmpty  = errors.New("container is not empty")
	ErrNoItem       = errors.New("item not found")
	ErrNotAttached  = errors.New("item not attached to mail")
)

// ItemFlags mirrors the persisted item flags column.
type ItemFlags uint32

const (
	ItemSoulbound ItemFlags = 1 << 0
	ItemWrapped   ItemFlags = 1 << 3
	ItemTradeable ItemFlags = 1 << 16
)

// Item is one persisted item instance.
type Item struct {
	GUID       GUID
	Template   uint32
	Count      uint32
	Bag        GUID // 0 = character root container
	Slot       uint8
	MailID     int64 // nonzero while attached to a mail message; Bag/Slot are then unused
	Flags      ItemFlags
	Durability uint32
	Charges    int32
	Enchant    uint32
	CreatedAt  int64 // unix seconds
	PlayedTime uint32
	Looters    []GUID // characters allowed to trade a soulbound loot item
}

// Placed reports whether the item occupies an inventory slot.
func (it Item) Placed() bool { return it.MailID == 0 }

type slotKey struct {
	bag  GUID
	slot uint8
}

// Inventory holds a player's items, including those attached to mail.
// Accessed only from the goroutine that owns the player.
type Inventory struct {
	items *dirty.Set[GUID, Item]
	slots map[slotKey]GUID
}

func newInventory() *Inventory {
	return &Inventory{
		items: dirty.NewSet[GUID, Item](),
		slots: make(map[slotKey]GUID),
	}
}

// Restore places an item read from storage. The record is not inserted when
// placement fails; the caller decides how to repair it.
func (inv *Inventory) Restore(it Item, rules ItemRules) error {
	if err := inv.check(it, it.Bag, it.Slot, rules); err != nil {
		return err
	}
	inv.items.Load(it.GUID, it)
	inv.slots[slotKey{it.Bag, it.Slot}] = it.GUID
	return nil
}

// LoadDetached records a stored item without placing it. Used for mail
// attachments and for rows the repair layer is about to rewrite or remove.
func (inv *Inventory) LoadDetached(it Item) {
	inv.items.Load(it.GUID, it)
}

// Add places a new item created at runtime.
func (inv *Inventory) Add(it Item, rules ItemRules) error {
	if err := inv.check(it, it.Bag, it.Slot, rules); err != nil {
		return err
	}
	it.MailID = 0
	inv.items.Add(it.GUID, it)
	inv.slots[slotKey{it.Bag, it.Slot}] = it.GUID
	return nil
}

// AddToMail records a new item that exists only as a mail attachment.
func (inv *Inventory) AddToMail(it Item, mailID int64) {
	it.Bag, it.Slot, it.MailID = 0, 0, mailID
	inv.items.Add(it.GUID, it)
}

// Get returns a live item.
func (inv *Inventory) Get(guid GUID) (Item, bool) { return inv.items.Get(guid) }

// At returns the item in a container slot.
func (inv *Inventory) At(bag GUID, slot uint8) (Item, bool) {
	guid, ok := inv.slots[slotKey{bag, slot}]
	if !ok {
		return Item{}, false
	}
	return inv.items.Get(guid)
}

// Len returns the number of live items, attached mail items included.
func (inv *Inventory) Len() int { return inv.items.Len() }

// PlacedCount returns the number of items occupying a slot.
func (inv *Inventory) PlacedCount() int { return len(inv.slots) }

// Move relocates a placed item.
func (inv *Inventory) Move(guid, bag GUID, slot uint8, rules ItemRules) error {
	it, ok := inv.items.Get(guid)
	if !ok || !it.Placed() {
		return ErrNoItem
	}
	if it.Bag == bag && it.Slot == slot {
		return nil
	}
	if err := inv.check(it, bag, slot, rules); err != nil {
		return err
	}
	delete(inv.slots, slotKey{it.Bag, it.Slot})
	inv.slots[slotKey{bag, slot}] = guid
	inv.items.Update(guid, func(v *Item) { v.Bag, v.Slot = bag, slot })
	return nil
}

// SetCount changes a stack size. A count of zero removes the item.
func (inv *Inventory) SetCount(guid GUID, count uint32) bool {
	if count == 0 {
		return inv.Remove(guid)
	}
	it, ok := inv.items.Get(guid)
	if !ok || it.Count == count {
		return ok
	}
	return inv.items.Update(guid, func(v *Item) { v.Count = count })
}

// SetDurability changes an item's durability.
func (inv *Inventory) SetDurability(guid GUID, d uint32) bool {
	return inv.items.Update(guid, func(v *Item) { v.Durability = d })
}

// Bind marks an item soulbound.
func (inv *Inventory) Bind(guid GUID) bool {
	return inv.items.Update(guid, func(v *Item) { v.Flags |= ItemSoulbound })
}

// ClearTradeable drops the loot-trade window of a soulbound item.
func (inv *Inventory) ClearTradeable(guid GUID) bool {
	return inv.items.Update(guid, func(v *Item) {
		v.Flags &^= ItemTradeable
		v.Looters = nil
	})
}

// AttachToMail unplaces an item and attaches it to a mail message.
func (inv *Inventory) AttachToMail(guid GUID, mailID int64) bool {
	it, ok := inv.items.Get(guid)
	if !ok {
		return false
	}
	if it.Placed() {
		if inv.hasContents(guid) {
			return false
		}
		if owner, ok := inv.slots[slotKey{it.Bag, it.Slot}]; ok && owner == guid {
			delete(inv.slots, slotKey{it.Bag, it.Slot})
		}
	}
	return inv.items.Update(guid, func(v *Item) { v.Bag, v.Slot, v.MailID = 0, 0, mailID })
}

func (inv *Inventory) detachFromMail(guid, bag GUID, slot uint8, rules ItemRules) error {
	it, ok := inv.items.Get(guid)
	if !ok || it.Placed() {
		return ErrNotAttached
	}
	if err := inv.check(it, bag, slot, rules); err != nil {
		return err
	}
	inv.slots[slotKey{bag, slot}] = guid
	inv.items.Update(guid, func(v *Item) { v.Bag, v.Slot, v.MailID = bag, slot, 0 })
	return nil
}

// Remove deletes an item. A container that still holds items is not removed.
func (inv *Inventory) Remove(guid GUID) bool {
	it, ok := inv.items.Get(guid)
	if !ok || inv.hasContents(guid) {
		return false
	}
	if it.Placed() {
		if owner, ok := inv.slots[slotKey{it.Bag, it.Slot}]; ok && owner == guid {
			delete(inv.slots, slotKey{it.Bag, it.Slot})
		}
	}
	return inv.items.Remove(guid)
}

// Destroy removes a container together with everything inside it.
func (inv *Inventory) Destroy(guid GUID) bool {
	for _, child := range inv.Contents(guid) {
		inv.Remove(child.GUID)
	}
	return inv.Remove(guid)
}

// Contents returns the items inside a container, ordered by slot.
func (inv *Inventory) Contents(bag GUID) []Item {
	var out []Item
	for _, it := range inv.items.All() {
		if it.Placed() && it.Bag == bag && bag != 0 {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b Item) int { return int(a.Slot) - int(b.Slot) })
	return out
}

// Equipped returns worn items ordered by slot.
func (inv *Inventory) Equipped() []Item {
	var out []Item
	for slot := EquipmentStart; slot < EquipmentEnd; slot++ {
		if it, ok := inv.At(0, slot); ok {
			out = append(out, it)
		}
	}
	return out
}

// MailItems returns the items attached to a message.
func (inv *Inventory) MailItems(mailID int64) []Item {
	var out []Item
	for _, it := range inv.items.All() {
		if it.MailID == mailID {
			out = append(out, it)
		}
	}
	return out
}

// All iterates live items in GUID order.
func (inv *Inventory) All() iter.Seq2[GUID, Item] { return inv.items.All() }

// Records exposes pending item rows to the flusher.
func (inv *Inventory) Records() Tracked[GUID, Item] { return inv.items }

// Discard queues a detached item for deletion. Used by the repair layer for
// rows that never made it into a slot.
func (inv *Inventory) Discard(guid GUID) bool { return inv.items.Remove(guid) }

// dropMailItems removes the items attached to a deleted message. A stored row
// already attached to the message is covered by the mail's cascade and only
// evicted; every other item gets its own delete, or none if it was never stored.
func (inv *Inventory) dropMailItems(mailID int64, cascades bool) {
	for _, it := range inv.MailItems(mailID) {
		if st, _ := inv.items.State(it.GUID); cascades && st == dirty.Unchanged {
			inv.items.Forget(it.GUID)
			continue
		}
		inv.items.Remove(it.GUID)
	}
}

func (inv *Inventory) hasContents(guid GUID) bool {
	for _, it := range inv.items.All() {
		if it.Placed() && it.Bag == guid {
			return true
		}
	}
	return false
}

// check validates that it may occupy (bag, slot). rules may be nil when the
// caller has already verified catalog eligibility.
func (inv *Inventory) check(it Item, bag GUID, slot uint8, rules ItemRules) error {
	if bag == 0 {
		switch {
		case IsEquipmentSlot(slot):
			if rules != nil && !rules.CanEquip(it.Template, EquipSlot(slot)) {
				return ErrCannotEquip
			}
		case IsBagSlot(slot):
			if rules != nil {
				if _, ok := rules.ContainerSlots(it.Template); !ok {
					return ErrNotContainer
				}
			}
		case IsBackpackSlot(slot):
		default:
			return ErrBadSlot
		}
		if IsEquipmentSlot(slot) || IsBackpackSlot(slot) {
			// containers leave bag slots only when empty
			if it.GUID != 0 && inv.hasContents(it.GUID) {
				return ErrBagNotEmpty
			}
		}
	} else {
		if bag == it.GUID {
			return ErrOwnAncestor
		}
		parent, ok := inv.items.Get(bag)
		if !ok || !parent.Placed() || parent.Bag != 0 || !IsBagSlot(parent.Slot) {
			return ErrNoContainer
		}
		if inv.hasContents(it.GUID) {
			return ErrBagNotEmpty
		}
		if rules != nil {
			capacity, ok := rules.ContainerSlots(parent.Template)
			if !ok {
				return ErrNoContainer
			}
			if slot >= capacity {
				return ErrBadSlot
			}
		}
	}
	if owner, ok := inv.slots[slotKey{bag, slot}]; ok && owner != it.GUID {
		return ErrSlotOccupied
	}
	return nil
}

package world

// Root container slot layout. Items with Bag == 0 live directly on the
// character: equipment first, then the equipped bag slots, then the backpack.
const (
	EquipmentStart uint8 = 0
	EquipmentEnd   uint8 = 19
	BagSlotStart   uint8 = 19
	BagSlotEnd     uint8 = 23
	BackpackStart  uint8 = 23
	BackpackEnd    uint8 = 39
)

// EquipSlot identifies an equipment slot on a character.
type EquipSlot uint8

const (
	SlotHead EquipSlot = iota
	SlotNeck
	SlotShoulders
	SlotBody
	SlotChest
	SlotWaist
	SlotLegs
	SlotFeet
	SlotWrists
	SlotHands
	SlotFinger1
	SlotFinger2
	SlotTrinket1
	SlotTrinket2
	SlotBack
	SlotMainHand
	SlotOffHand
	SlotRanged
	SlotTabard
	SlotMax
)

var equipSlotNames = [SlotMax]string{
	"head", "neck", "shoulders", "body", "chest", "waist", "legs", "feet",
	"wrists", "hands", "finger1", "finger2", "trinket1", "trinket2", "back",
	"main_hand", "off_hand", "ranged", "tabard",
}

func (s EquipSlot) String() string {
	if s >= SlotMax {
		return "invalid"
	}
	return equipSlotNames[s]
}

// EquipSlotFromName maps a catalog slot name to an EquipSlot.
func EquipSlotFromName(name string) (EquipSlot, bool) {
	for i, n := range equipSlotNames {
		if n == name {
			return EquipSlot(i), true
		}
	}
	return SlotMax, false
}

// IsEquipmentSlot reports whether a root slot holds worn equipment.
func IsEquipmentSlot(slot uint8) bool { return slot < EquipmentEnd }

// IsBagSlot reports whether a root slot holds an equipped container.
func IsBagSlot(slot uint8) bool { return slot >= BagSlotStart && slot < BagSlotEnd }

// IsBackpackSlot reports whether a root slot is in the default backpack.
func IsBackpackSlot(slot uint8) bool { return slot >= BackpackStart && slot < BackpackEnd }

// ItemRules answers the catalog questions placement depends on.
type ItemRules interface {
	// ContainerSlots returns the capacity of a container template; false if
	// the template is not a container.
	ContainerSlots(template uint32) (uint8, bool)
	// CanEquip reports whether the template may be worn in slot.
	CanEquip(template uint32, slot EquipSlot) bool
}

package world

import (
	"iter"

	"github.com/l1jgo/charsync/internal/core/dirty"
)

// Toy is an account-wide toy box entry.
type Toy struct {
	Favorite bool
}

// Mount is an account-wide learned mount.
type Mount struct {
	Favorite bool
	Hidden   bool
}

// Heirloom is an account-wide heirloom with its upgrade level.
type Heirloom struct {
	Upgrades uint8
}

// AccountCollections are shared by every character on the account and live
// in the session store.
type AccountCollections struct {
	toys      *dirty.Set[uint32, Toy]
	mounts    *dirty.Set[uint32, Mount]
	heirlooms *dirty.Set[uint32, Heirloom]
}

func newAccountCollections() *AccountCollections {
	return &AccountCollections{
		toys:      dirty.NewSet[uint32, Toy](),
		mounts:    dirty.NewSet[uint32, Mount](),
		heirlooms: dirty.NewSet[uint32, Heirloom](),
	}
}

func (c *AccountCollections) LoadToy(id uint32, t Toy)           { c.toys.Load(id, t) }
func (c *AccountCollections) LoadMount(id uint32, m Mount)       { c.mounts.Load(id, m) }
func (c *AccountCollections) LoadHeirloom(id uint32, h Heirloom) { c.heirlooms.Load(id, h) }

func (c *AccountCollections) HasToy(id uint32) bool   { return c.toys.Has(id) }
func (c *AccountCollections) HasMount(id uint32) bool { return c.mounts.Has(id) }
func (c *AccountCollections) Heirloom(id uint32) (Heirloom, bool) {
	return c.heirlooms.Get(id)
}

func (c *AccountCollections) Toys() iter.Seq2[uint32, Toy]           { return c.toys.All() }
func (c *AccountCollections) Mounts() iter.Seq2[uint32, Mount]       { return c.mounts.All() }
func (c *AccountCollections) Heirlooms() iter.Seq2[uint32, Heirloom] { return c.heirlooms.All() }

// AddToy learns a toy. Returns false if already known.
func (c *AccountCollections) AddToy(id uint32) bool {
	if c.toys.Has(id) {
		return false
	}
	c.toys.Add(id, Toy{})
	return true
}

// SetToyFavorite flags a known toy.
func (c *AccountCollections) SetToyFavorite(id uint32, fav bool) bool {
	return c.toys.Update(id, func(t *Toy) { t.Favorite = fav })
}

// AddMount learns a mount. Returns false if already known.
func (c *AccountCollections) AddMount(id uint32) bool {
	if c.mounts.Has(id) {
		return false
	}
	c.mounts.Add(id, Mount{})
	return true
}

// SetMountFlags updates favorite/hidden flags of a known mount.
func (c *AccountCollections) SetMountFlags(id uint32, m Mount) bool {
	return c.mounts.Update(id, func(v *Mount) { *v = m })
}

// AddHeirloom records a new heirloom.
func (c *AccountCollections) AddHeirloom(id uint32) bool {
	if c.heirlooms.Has(id) {
		return false
	}
	c.heirlooms.Add(id, Heirloom{})
	return true
}

// UpgradeHeirloom raises the upgrade level.
func (c *AccountCollections) UpgradeHeirloom(id uint32, level uint8) bool {
	h, ok := c.heirlooms.Get(id)
	if !ok || level <= h.Upgrades {
		return false
	}
	return c.heirlooms.Update(id, func(v *Heirloom) { v.Upgrades = level })
}

func (c *AccountCollections) RemoveToy(id uint32) bool      { return c.toys.Remove(id) }
func (c *AccountCollections) RemoveMount(id uint32) bool    { return c.mounts.Remove(id) }
func (c *AccountCollections) RemoveHeirloom(id uint32) bool { return c.heirlooms.Remove(id) }

func (c *AccountCollections) ToyRecords() Tracked[uint32, Toy]           { return c.toys }
func (c *AccountCollections) MountRecords() Tracked[uint32, Mount]       { return c.mounts }
func (c *AccountCollections) HeirloomRecords() Tracked[uint32, Heirloom] { return c.heirlooms }

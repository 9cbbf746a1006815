package world

import (
	"github.com/l1jgo/charsync/internal/core/dirty"
)

// Currency is one persisted currency balance.
type Currency struct {
	ID       uint32
	Quantity uint32
	Weekly   uint32 // amount gained since the last weekly reset
	Flags    uint8
}

// CurrencyCaps limits a currency; zero means uncapped.
type CurrencyCaps struct {
	Max    uint32
	Weekly uint32
}

// Currencies holds a player's currency balances.
type Currencies struct {
	set *dirty.Set[uint32, Currency]
}

func newCurrencies() *Currencies {
	return &Currencies{set: dirty.NewSet[uint32, Currency]()}
}

// Load records a stored balance.
func (c *Currencies) Load(cur Currency) { c.set.Load(cur.ID, cur) }

// Get returns a balance; missing currencies read as zero.
func (c *Currencies) Get(id uint32) Currency {
	cur, ok := c.set.Get(id)
	if !ok {
		return Currency{ID: id}
	}
	return cur
}

// Modify applies delta to a balance. Gains are limited by the remaining weekly
// allowance and by the total cap; losses never go below zero. Returns the
// amount actually applied.
func (c *Currencies) Modify(id uint32, delta int64, caps CurrencyCaps) int64 {
	cur, exists := c.set.Get(id)
	if !exists {
		cur = Currency{ID: id}
	}

	applied := delta
	if delta > 0 {
		if caps.Weekly > 0 {
			applied = min(applied, int64(caps.Weekly)-int64(cur.Weekly))
		}
		if caps.Max > 0 {
			applied = min(applied, int64(caps.Max)-int64(cur.Quantity))
		}
		applied = max(applied, 0)
	} else {
		applied = max(applied, -int64(cur.Quantity))
	}
	if applied == 0 {
		return 0
	}

	cur.Quantity = uint32(int64(cur.Quantity) + applied)
	if applied > 0 {
		cur.Weekly += uint32(applied)
	}
	if exists {
		c.set.Update(id, func(v *Currency) { *v = cur })
	} else {
		c.set.Add(id, cur)
	}
	return applied
}

// Clamp pulls a stored balance back into its caps. Returns true if anything changed.
func (c *Currencies) Clamp(id uint32, caps CurrencyCaps) bool {
	cur, ok := c.set.Get(id)
	if !ok {
		return false
	}
	next := cur
	if caps.Max > 0 && next.Quantity > caps.Max {
		next.Quantity = caps.Max
	}
	if caps.Weekly > 0 && next.Weekly > caps.Weekly {
		next.Weekly = caps.Weekly
	}
	if next == cur {
		return false
	}
	return c.set.Update(id, func(v *Currency) { *v = next })
}

// ResetWeekly zeroes every weekly counter.
func (c *Currencies) ResetWeekly() {
	for id, cur := range c.set.All() {
		if cur.Weekly != 0 {
			c.set.Update(id, func(v *Currency) { v.Weekly = 0 })
		}
	}
}

// Remove drops a currency row.
func (c *Currencies) Remove(id uint32) bool { return c.set.Remove(id) }

func (c *Currencies) Len() int { return c.set.Len() }

func (c *Currencies) Records() Tracked[uint32, Currency] { return c.set }

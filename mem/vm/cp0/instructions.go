package cp0

import (
	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/mem/vm/tlb"
)

const indexMask = vm.NumTLBEntries - 1

// TLBWI writes the entry selected by Index.
func (c *CP0) TLBWI() {
	c.writeEntry(int(c.Index & indexMask))
}

// TLBWR writes the entry selected by Random and moves Random to the next
// entry above Wired.
func (c *CP0) TLBWR() {
	c.writeEntry(int(c.Random & indexMask))
	c.stepRandom()
}

func (c *CP0) stepRandom() {
	if c.Random <= c.Wired || c.Random == 0 {
		c.Random = vm.NumTLBEntries - 1
		return
	}

	c.Random--
}

func (c *CP0) writeEntry(index int) {
	e := DecodeEntry(c.PageMask, c.EntryHi, c.EntryLo0, c.EntryLo1)
	c.tlb.WriteEntry(index, e)
}

// TLBP searches for the entry matching EntryHi and stores its index in
// Index, or NoMatch if there is none.
func (c *CP0) TLBP() {
	c.Index = NoMatch

	index, found := c.matchIndex(c.EntryHi, uint8(c.EntryHi&entryHiASIDMask))
	if found {
		c.Index = uint32(index)
	}
}

// matchIndex returns the first entry whose VPN2 is the one of vAddr and that
// is global or belongs to asid.
func (c *CP0) matchIndex(vAddr uint32, asid uint8) (int, bool) {
	vpn2 := (vAddr & entryHiVPN2Mask) >> vpn2Shift

	for i, e := range c.tlb.Entries() {
		if e.VPN2 == vpn2 && (e.Global || e.ASID == asid) {
			return i, true
		}
	}

	return 0, false
}

func (c *CP0) matchEntry(vAddr uint32, asid uint8) (tlb.Entry, bool) {
	index, found := c.matchIndex(vAddr, asid)
	if !found {
		return tlb.Entry{}, false
	}

	return c.tlb.Entry(index), true
}

// TLBR loads the entry selected by Index into PageMask, EntryHi, EntryLo0
// and EntryLo1.
func (c *CP0) TLBR() {
	e := c.tlb.Entry(int(c.Index & indexMask))

	c.PageMask, c.EntryHi, c.EntryLo0, c.EntryLo1 = EncodeEntry(e)
}

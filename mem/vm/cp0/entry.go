package cp0

import (
	"math"

	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/mem/vm/tlb"
)

// Fields of the EntryHi and EntryLo registers.
const (
	entryHiVPN2Mask = 0xFFFF_E000
	entryHiASIDMask = 0xFF
	vpn2Shift       = 13

	entryLoPFNShift   = 6
	entryLoPFNMask    = 0xF_FFFF
	entryLoCacheShift = 3
	entryLoCacheMask  = 0x7
	entryLoDirty      = 1 << 2
	entryLoValid      = 1 << 1
	entryLoGlobal     = 1

	pageMaskShift = 13
	pageMaskMask  = 0xFFF
)

// DecodeEntry builds a TLB entry from the values of the PageMask, EntryHi,
// EntryLo0 and EntryLo1 registers. Every half covers one 4 KiB page; the
// page mask is kept but not applied.
func DecodeEntry(pageMask, entryHi, entryLo0, entryLo1 uint32) tlb.Entry {
	e := tlb.Entry{
		Mask:   (pageMask >> pageMaskShift) & pageMaskMask,
		VPN2:   (entryHi & entryHiVPN2Mask) >> vpn2Shift,
		ASID:   uint8(entryHi & entryHiASIDMask),
		Global: entryLo0&entryLo1&entryLoGlobal != 0,
	}

	e.Even = decodeHalf(entryLo0, e.VPN2<<vpn2Shift)
	e.Odd = decodeHalf(entryLo1, e.Even.End)

	return e
}

func decodeHalf(entryLo uint32, start uint32) tlb.Half {
	pfn := (entryLo >> entryLoPFNShift) & entryLoPFNMask

	end := start + vm.PageSize
	if end < start {
		// Last page of the address space.
		end = math.MaxUint32
	}

	return tlb.Half{
		Valid: entryLo&entryLoValid != 0,
		Dirty: entryLo&entryLoDirty != 0,
		Start: start,
		End:   end,
		Phys:  pfn << vm.Log2PageSize,
		PFN:   pfn,
		Cache: uint8((entryLo >> entryLoCacheShift) & entryLoCacheMask),
	}
}

// EncodeEntry returns the PageMask, EntryHi, EntryLo0 and EntryLo1 values
// that TLBR loads for e.
func EncodeEntry(e tlb.Entry) (pageMask, entryHi, entryLo0, entryLo1 uint32) {
	pageMask = (e.Mask & pageMaskMask) << pageMaskShift
	entryHi = e.VPN2<<vpn2Shift | uint32(e.ASID)
	entryLo0 = encodeHalf(e.Even, e.Global)
	entryLo1 = encodeHalf(e.Odd, e.Global)

	return pageMask, entryHi, entryLo0, entryLo1
}

func encodeHalf(h tlb.Half, global bool) uint32 {
	lo := (h.PFN&entryLoPFNMask)<<entryLoPFNShift |
		uint32(h.Cache&entryLoCacheMask)<<entryLoCacheShift

	if h.Dirty {
		lo |= entryLoDirty
	}

	if h.Valid {
		lo |= entryLoValid
	}

	if global {
		lo |= entryLoGlobal
	}

	return lo
}

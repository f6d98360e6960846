package tlb

import "github.com/disi33/mupen64plus-core/mem/vm"

// A Half describes one of the two adjacent mappings of a TLB entry.
type Half struct {
	Valid bool
	Dirty bool

	// Start and End delimit the virtual range [Start, End).
	Start uint32
	End   uint32

	// Phys is the physical address Start maps to.
	Phys uint32

	// PFN and Cache are the raw EntryLo fields. The TLB itself ignores them.
	PFN   uint32
	Cache uint8
}

// An Entry is one of the 32 guest-visible TLB entries.
type Entry struct {
	Mask   uint32
	VPN2   uint32
	ASID   uint8
	Global bool

	Even Half
	Odd  Half
}

// rejectReason tells why an installer must refuse the half. It returns
// vm.RejectNone for an acceptable half.
func (h Half) rejectReason() vm.RejectReason {
	switch {
	case h.Start >= h.End:
		return vm.RejectEmptyRange
	case vm.InKernelWindow(h.Start, h.End):
		return vm.RejectKernelWindow
	case h.Phys >= vm.PhysicalMemoryCeiling:
		return vm.RejectPhysCeiling
	default:
		return vm.RejectNone
	}
}

// frameFor returns the page-aligned physical base that the page holding
// vAddr maps to. The offset from Start is applied before rounding up to the
// next page boundary.
func (h Half) frameFor(vAddr uint32) uint32 {
	return (h.Phys + (vAddr - h.Start) + vm.PageOffsetMask) &^ vm.PageOffsetMask
}

// walk calls fn for each address of [Start, End) in page steps from Start.
// The counter is 64-bit so that stepping past the last page cannot wrap.
func (h Half) walk(fn func(page uint32, vAddr uint32)) {
	for a := uint64(h.Start); a < uint64(h.End); a += vm.PageSize {
		vAddr := uint32(a)
		fn(vm.PageOf(vAddr), vAddr)
	}
}

func (h Half) event(index int, name vm.HalfName) vm.TLBEvent {
	return vm.TLBEvent{
		Index: index,
		Half:  name,
		Start: h.Start,
		End:   h.End,
		Phys:  h.Phys,
		Dirty: h.Dirty,
	}
}

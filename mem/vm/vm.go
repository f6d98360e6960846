// Package vm holds the address-space definitions shared by the r4300 TLB
// and everything that observes it.
package vm

import "fmt"

// Platform constants of the emulated address space. None of them are
// tunable at run time.
const (
	Log2PageSize   = 12
	PageSize       = 1 << Log2PageSize
	PageOffsetMask = PageSize - 1

	// NumPages is the number of 4 KiB pages in the 32-bit virtual space.
	NumPages = 1 << (32 - Log2PageSize)

	// PhysicalMemoryCeiling is the first physical address a TLB mapping may
	// not point at.
	PhysicalMemoryCeiling = 0x2000_0000

	// The direct-mapped kernel window (KSEG0 and KSEG1). The CPU never
	// translates these addresses through the TLB.
	KernelWindowStart = 0x8000_0000
	KernelWindowEnd   = 0xC000_0000

	NumTLBEntries = 32
)

// AccessKind tells whether a memory access reads or writes.
type AccessKind int

// The kinds of memory access.
const (
	Read AccessKind = iota
	Write
)

func (k AccessKind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("AccessKind(%d)", int(k))
	}
}

// PageOf returns the virtual page number holding vAddr.
func PageOf(vAddr uint32) uint32 {
	return vAddr >> Log2PageSize
}

// InKernelWindow reports whether the range [start, end) lies entirely inside
// the direct-mapped kernel window.
func InKernelWindow(start, end uint32) bool {
	return start >= KernelWindowStart && end <= KernelWindowEnd
}

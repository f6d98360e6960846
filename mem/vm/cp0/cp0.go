// Package cp0 implements the TLB side of the r4300 system control
// coprocessor: the registers the TLB instructions read and write, the
// instructions themselves, and the delivery of TLB exceptions.
package cp0

import (
	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/mem/vm/tlb"
)

// Bits of the Status and Cause registers.
const (
	StatusEXL    = 1 << 1
	CauseExcMask = 0x7C
	causeExcLSB  = 2
)

// NoMatch is the value TLBP leaves in Index when no entry matches.
const NoMatch = 0x8000_0000

// CP0 holds the coprocessor registers and drives a TLB with them.
type CP0 struct {
	Index    uint32
	Random   uint32
	EntryLo0 uint32
	EntryLo1 uint32
	Context  uint32
	PageMask uint32
	Wired    uint32
	BadVAddr uint32
	EntryHi  uint32
	Status   uint32
	Cause    uint32

	tlb *tlb.Comp
}

// A Builder builds a CP0 together with the TLB it controls.
type Builder struct {
	tlbBuilder tlb.Builder
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{tlbBuilder: tlb.MakeBuilder()}
}

// WithTLBBuilder sets how the TLB is built. The fault raiser of the builder
// is replaced by the CP0.
func (b Builder) WithTLBBuilder(tb tlb.Builder) Builder {
	b.tlbBuilder = tb
	return b
}

// Build creates the CP0 and its TLB, named name + ".TLB".
func (b Builder) Build(name string) *CP0 {
	c := &CP0{}
	c.tlb = b.tlbBuilder.
		WithFaultRaiser(c).
		Build(name + ".TLB")
	c.Reset()

	return c
}

// TLB returns the TLB driven by the CP0.
func (c *CP0) TLB() *tlb.Comp {
	return c.tlb
}

// Reset brings the registers and the TLB to their power-on state.
func (c *CP0) Reset() {
	tlbComp := c.tlb
	*c = CP0{tlb: tlbComp}
	c.Random = vm.NumTLBEntries - 1

	c.tlb.Reset()
}

// SetWired writes the Wired register. The write also resets Random.
func (c *CP0) SetWired(wired uint32) {
	c.Wired = wired & 0x3F
	c.Random = vm.NumTLBEntries - 1
}

// ERET returns from an exception handler. Only the EXL bit is modeled.
func (c *CP0) ERET() {
	c.Status &^= StatusEXL
}

// Translate translates vAddr through the TLB. A miss raises an *Exception.
func (c *CP0) Translate(vAddr uint32, kind vm.AccessKind) uint32 {
	pAddr, _ := c.tlb.Translate(vAddr, kind)
	return pAddr
}

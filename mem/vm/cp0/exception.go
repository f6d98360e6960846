package cp0

import (
	"fmt"

	"github.com/disi33/mupen64plus-core/mem/vm"
)

// ExcCode is the exception code field of the Cause register.
type ExcCode uint32

// TLB exception codes.
const (
	ExcMod  ExcCode = 1
	ExcTLBL ExcCode = 2
	ExcTLBS ExcCode = 3
)

func (c ExcCode) String() string {
	switch c {
	case ExcMod:
		return "Mod"
	case ExcTLBL:
		return "TLBL"
	case ExcTLBS:
		return "TLBS"
	default:
		return fmt.Sprintf("ExcCode(%d)", uint32(c))
	}
}

// Exception vectors used by TLB exceptions.
const (
	VectorRefill  = 0x8000_0000
	VectorGeneral = 0x8000_0180
)

const (
	contextKeepMask  = 0xFF80_000F
	contextBadVPN2   = 0x007F_FFF0
	contextVAddrShft = 9
)

// Exception is the panic value that delivers a TLB exception to the CPU.
type Exception struct {
	Code   ExcCode
	VAddr  uint32
	Vector uint32
}

func (e *Exception) Error() string {
	return fmt.Sprintf("%s exception at 0x%08x, vector 0x%08x",
		e.Code, e.VAddr, e.Vector)
}

// RaiseTranslationFault updates the exception registers for a TLB miss on
// vAddr and panics with an *Exception. It never returns.
func (c *CP0) RaiseTranslationFault(vAddr uint32, kind vm.AccessKind) {
	code, vector := c.classifyFault(vAddr, kind)

	c.BadVAddr = vAddr
	c.Context = c.Context&contextKeepMask |
		(vAddr>>contextVAddrShft)&contextBadVPN2
	c.EntryHi = vAddr&entryHiVPN2Mask | c.EntryHi&entryHiASIDMask
	c.Cause = c.Cause&^CauseExcMask | uint32(code)<<causeExcLSB
	c.Status |= StatusEXL

	panic(&Exception{Code: code, VAddr: vAddr, Vector: vector})
}

// classifyFault tells a refill, where no entry matches vAddr under the
// current ASID, from an invalid or modification fault on a matching entry.
// Only refills outside of an exception use the refill vector.
func (c *CP0) classifyFault(
	vAddr uint32,
	kind vm.AccessKind,
) (ExcCode, uint32) {
	code := ExcTLBL
	if kind == vm.Write {
		code = ExcTLBS
	}

	e, found := c.matchEntry(vAddr, uint8(c.EntryHi&entryHiASIDMask))
	if !found {
		if c.Status&StatusEXL != 0 {
			return code, VectorGeneral
		}

		return code, VectorRefill
	}

	h := e.Even
	if vAddr&vm.PageSize != 0 {
		h = e.Odd
	}

	if kind == vm.Write && h.Valid && !h.Dirty {
		return ExcMod, VectorGeneral
	}

	return code, VectorGeneral
}
// Catch runs fn and returns the TLB exception it raised, if any. Other
// panics go through.
func Catch(fn func()) (exc *Exception) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		e, ok := r.(*Exception)
		if !ok {
			panic(r)
		}

		exc = e
	}()

	fn()

	return nil
}

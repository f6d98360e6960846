package tlb

import (
	"fmt"

	"github.com/disi33/mupen64plus-core/mem/vm"
)

// FastMapEntry is what a recompiler's per-page memory map records for one
// virtual page.
type FastMapEntry struct {
	Mapped         bool
	Frame          uint32
	WriteProtected bool
}

// A FastMap is a recompiler's own per-page address map. When one is
// configured, every translation checks that it agrees with the TLB.
type FastMap interface {
	Lookup(page uint32) FastMapEntry
}

// ConsistencyError is the panic value raised when a FastMap disagrees with
// the TLB caches.
type ConsistencyError struct {
	Page uint32
	Kind vm.AccessKind

	ReadMapped  bool
	ReadFrame   uint32
	WriteMapped bool
	WriteFrame  uint32
	Fast        FastMapEntry
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf(
		"fast map disagrees with TLB on %s of page 0x%05x: "+
			"read=(%t, 0x%08x) write=(%t, 0x%08x) fast=%+v",
		e.Kind, e.Page,
		e.ReadMapped, e.ReadFrame, e.WriteMapped, e.WriteFrame, e.Fast)
}

type fastMapChecker interface {
	check(c *Comp, page uint32, kind vm.AccessKind)
}

type noCheck struct{}

func (noCheck) check(*Comp, uint32, vm.AccessKind) {}

type fastMapCheck struct {
	fastMap FastMap
}

func (f fastMapCheck) check(c *Comp, page uint32, kind vm.AccessKind) {
	rFrame, rMapped := c.readCache.Lookup(page)
	wFrame, wMapped := c.writeCache.Lookup(page)
	fast := f.fastMap.Lookup(page)

	if consistent(kind, rFrame, rMapped, wFrame, wMapped, fast) {
		return
	}

	panic(&ConsistencyError{
		Page:        page,
		Kind:        kind,
		ReadMapped:  rMapped,
		ReadFrame:   rFrame,
		WriteMapped: wMapped,
		WriteFrame:  wFrame,
		Fast:        fast,
	})
}

func consistent(
	kind vm.AccessKind,
	rFrame uint32, rMapped bool,
	wFrame uint32, wMapped bool,
	fast FastMapEntry,
) bool {
	if kind == vm.Write {
		if wMapped {
			return fast.Mapped && !fast.WriteProtected && fast.Frame == wFrame
		}

		return !fast.Mapped || fast.WriteProtected
	}

	if rMapped {
		return fast.Mapped &&
			fast.Frame == rFrame &&
			fast.WriteProtected == !wMapped
	}

	return !fast.Mapped
}

// Package fastmap keeps a recompiler-style per-page memory map in step with
// a TLB by listening to its hooks. The TLB can then check every translation
// against it.
package fastmap

import (
	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/mem/vm/tlb"
	"github.com/disi33/mupen64plus-core/sim/hooking"
)

// Map is a page-indexed table of tlb.FastMapEntry.
type Map struct {
	pages []tlb.FastMapEntry
}

// New creates an empty Map.
func New() *Map {
	return &Map{
		pages: make([]tlb.FastMapEntry, vm.NumPages),
	}
}

// Lookup returns what the map holds for page.
func (m *Map) Lookup(page uint32) tlb.FastMapEntry {
	return m.pages[page]
}

// Func updates the map from a TLB hook.
func (m *Map) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case vm.HookPosTLBMap:
		m.mapRange(ctx.Item.(vm.TLBEvent))
	case vm.HookPosTLBUnmap:
		m.unmapRange(ctx.Item.(vm.TLBEvent))
	case vm.HookPosTLBReset:
		clear(m.pages)
	}
}

func (m *Map) mapRange(e vm.TLBEvent) {
	for a := uint64(e.Start); a < uint64(e.End); a += vm.PageSize {
		vAddr := uint32(a)
		frame := (e.Phys + (vAddr - e.Start) + vm.PageOffsetMask) &^
			vm.PageOffsetMask

		m.pages[vm.PageOf(vAddr)] = tlb.FastMapEntry{
			Mapped:         true,
			Frame:          frame,
			WriteProtected: !e.Dirty,
		}
	}
}

func (m *Map) unmapRange(e vm.TLBEvent) {
	for a := uint64(e.Start); a < uint64(e.End); a += vm.PageSize {
		m.pages[vm.PageOf(uint32(a))] = tlb.FastMapEntry{}
	}
}

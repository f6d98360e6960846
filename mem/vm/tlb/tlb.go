// Package tlb emulates the 32-entry software-managed TLB of the r4300 and
// the flat per-page caches that every memory access translates through.
package tlb

import (
	"log"

	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/mem/vm/tlb/internal"
	"github.com/disi33/mupen64plus-core/sim/hooking"
)

// A FaultRaiser delivers a translation miss to the guest. Implementations
// are expected not to return, usually by panicking into the CPU's exception
// dispatch.
type FaultRaiser interface {
	RaiseTranslationFault(vAddr uint32, kind vm.AccessKind)
}

// Comp is the TLB. It owns the entries and the read and write caches
// derived from them.
type Comp struct {
	hooking.HookableBase

	name string

	entries    [vm.NumTLBEntries]Entry
	readCache  internal.PageMap
	writeCache internal.PageMap

	faultRaiser FaultRaiser
	checker     fastMapChecker
}

// Name returns the name of the TLB.
func (c *Comp) Name() string {
	return c.name
}

// Entry returns a copy of entry index.
func (c *Comp) Entry(index int) Entry {
	return *c.entryMustExist(index)
}

// SetEntry overwrites entry index without touching the caches. Callers must
// Remove the old entry before and Install the new one after.
func (c *Comp) SetEntry(index int, e Entry) {
	*c.entryMustExist(index) = e
}

// Entries returns a copy of all the entries.
func (c *Comp) Entries() [vm.NumTLBEntries]Entry {
	return c.entries
}

// WriteEntry replaces entry index and keeps the caches in step with it.
func (c *Comp) WriteEntry(index int, e Entry) {
	c.Remove(index)
	c.SetEntry(index, e)
	c.Install(index)
}

// Reset clears all the entries and both caches.
func (c *Comp) Reset() {
	c.entries = [vm.NumTLBEntries]Entry{}
	c.readCache.Reset()
	c.writeCache.Reset()

	c.invokeHook(vm.HookPosTLBReset, nil)
}

// NumMapped returns the number of pages mapped for reading and for writing.
func (c *Comp) NumMapped() (read, write int) {
	return c.readCache.NumMapped(), c.writeCache.NumMapped()
}

func (c *Comp) entryMustExist(index int) *Entry {
	if index < 0 || index >= vm.NumTLBEntries {
		log.Panicf("tlb entry index %d out of range [0, %d)",
			index, vm.NumTLBEntries)
	}

	return &c.entries[index]
}

func (c *Comp) cacheFor(kind vm.AccessKind) internal.PageMap {
	if kind == vm.Write {
		return c.writeCache
	}

	return c.readCache
}

func (c *Comp) invokeHook(pos *hooking.HookPos, item any) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
	})
}

// Package internal provides the translation caches behind the TLB.
package internal

import "github.com/disi33/mupen64plus-core/mem/vm"

// A PageMap is a flat table that maps every virtual page to at most one
// physical frame.
type PageMap interface {
	// Lookup returns the page-aligned frame mapped for page.
	Lookup(page uint32) (frame uint32, found bool)

	// Map points page at frame. frame must be page-aligned.
	Map(page uint32, frame uint32)

	// Unmap removes the mapping of page, if any.
	Unmap(page uint32)

	// Reset unmaps every page.
	Reset()

	// NumMapped returns how many pages are currently mapped.
	NumMapped() int
}

type slot struct {
	frame  uint32
	mapped bool
}

// NewPageMap creates an empty PageMap covering the whole 32-bit space.
func NewPageMap() PageMap {
	return &pageMapImpl{
		slots: make([]slot, vm.NumPages),
	}
}

type pageMapImpl struct {
	slots     []slot
	numMapped int
}

func (m *pageMapImpl) Lookup(page uint32) (uint32, bool) {
	s := m.slots[page]
	return s.frame, s.mapped
}

func (m *pageMapImpl) Map(page uint32, frame uint32) {
	if frame&vm.PageOffsetMask != 0 {
		panic("frame is not page-aligned")
	}

	s := &m.slots[page]
	if !s.mapped {
		m.numMapped++
	}

	s.frame = frame
	s.mapped = true
}

func (m *pageMapImpl) Unmap(page uint32) {
	s := &m.slots[page]
	if s.mapped {
		m.numMapped--
	}

	*s = slot{}
}

func (m *pageMapImpl) Reset() {
	clear(m.slots)
	m.numMapped = 0
}

func (m *pageMapImpl) NumMapped() int {
	return m.numMapped
}

package tlb

import "github.com/disi33/mupen64plus-core/mem/vm"

// Remove unmaps every page that entry index currently maps. It must run
// before the entry is modified. Removing an entry with no valid half does
// nothing.
func (c *Comp) Remove(index int) {
	e := c.entryMustExist(index)

	c.removeHalf(index, vm.Even, e.Even)
	c.removeHalf(index, vm.Odd, e.Odd)
}

func (c *Comp) removeHalf(index int, name vm.HalfName, h Half) {
	if !h.Valid {
		return
	}

	// A write mapping never outlives the read mapping of its page, even when
	// another entry installed it.
	h.walk(func(page, _ uint32) {
		c.readCache.Unmap(page)
		c.writeCache.Unmap(page)
	})

	c.invokeHook(vm.HookPosTLBUnmap, h.event(index, name))
}

// Install maps the pages of both halves of entry index. Malformed halves are
// skipped silently. Accesses to them will miss.
func (c *Comp) Install(index int) {
	e := c.entryMustExist(index)

	c.installHalf(index, vm.Even, e.Even)
	c.installHalf(index, vm.Odd, e.Odd)
}

func (c *Comp) installHalf(index int, name vm.HalfName, h Half) {
	if !h.Valid {
		return
	}

	if reason := h.rejectReason(); reason != vm.RejectNone {
		event := h.event(index, name)
		event.Reason = reason
		c.invokeHook(vm.HookPosTLBReject, event)

		return
	}

	h.walk(func(page, vAddr uint32) {
		frame := h.frameFor(vAddr)

		c.readCache.Map(page, frame)

		if h.Dirty {
			c.writeCache.Map(page, frame)
		} else {
			c.writeCache.Unmap(page)
		}
	})

	c.invokeHook(vm.HookPosTLBMap, h.event(index, name))
}

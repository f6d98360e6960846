package tlb

import "github.com/disi33/mupen64plus-core/mem/vm"

// Translate converts vAddr to a physical address. On a miss it raises a
// translation fault. If the fault raiser returns, Translate returns false and
// the address must not be used.
func (c *Comp) Translate(vAddr uint32, kind vm.AccessKind) (uint32, bool) {
	page := vm.PageOf(vAddr)

	c.checker.check(c, page, kind)

	frame, found := c.cacheFor(kind).Lookup(page)
	if !found {
		c.invokeHook(vm.HookPosTranslationMiss,
			vm.TranslationMiss{VAddr: vAddr, Kind: kind})
		c.faultRaiser.RaiseTranslationFault(vAddr, kind)

		return 0, false
	}

	return frame | vAddr&vm.PageOffsetMask, true
}

// Lookup translates vAddr like Translate, but a miss neither faults nor fires
// hooks.
func (c *Comp) Lookup(vAddr uint32, kind vm.AccessKind) (uint32, bool) {
	frame, found := c.cacheFor(kind).Lookup(vm.PageOf(vAddr))
	if !found {
		return 0, false
	}

	return frame | vAddr&vm.PageOffsetMask, true
}

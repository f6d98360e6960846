package tlb

import (
	"github.com/disi33/mupen64plus-core/mem/vm/tlb/internal"
	"github.com/disi33/mupen64plus-core/sim/hooking"
)

// A Builder can build TLBs
type Builder struct {
	faultRaiser FaultRaiser
	fastMap     FastMap
	hooks       []hooking.Hook
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{}
}

// WithFaultRaiser sets the component that receives translation misses. It
// is required.
func (b Builder) WithFaultRaiser(r FaultRaiser) Builder {
	b.faultRaiser = r
	return b
}

// WithFastMap makes every translation check that m agrees with the TLB. A
// disagreement panics with a *ConsistencyError.
func (b Builder) WithFastMap(m FastMap) Builder {
	b.fastMap = m
	return b
}

// WithHook registers a hook on the TLB being built.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

// Build creates a new TLB
func (b Builder) Build(name string) *Comp {
	if b.faultRaiser == nil {
		panic("tlb " + name + " has no fault raiser")
	}

	tlb := &Comp{
		name:        name,
		readCache:   internal.NewPageMap(),
		writeCache:  internal.NewPageMap(),
		faultRaiser: b.faultRaiser,
		checker:     noCheck{},
	}

	if b.fastMap != nil {
		tlb.checker = fastMapCheck{fastMap: b.fastMap}
	}

	for _, h := range b.hooks {
		tlb.AcceptHook(h)
	}

	tlb.Reset()

	return tlb
}

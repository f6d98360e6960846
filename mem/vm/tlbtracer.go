package vm

import (
	"fmt"
	"io"

	"github.com/disi33/mupen64plus-core/sim/hooking"
)

type namer interface {
	Name() string
}

// A TLBTracer writes one CSV line for each thing that happens in a TLB:
//
//	time,component,what,index,half,start,end,phys,dirty,reason
//
// Translation misses use the start column for the virtual address and the
// half column for the access kind.
type TLBTracer struct {
	timeTeller hooking.TimeTeller
	writer     io.Writer
}

// NewTLBTracer produce a new TLBTracer, injecting the dependency of a writer.
func NewTLBTracer(w io.Writer, timeTeller hooking.TimeTeller) *TLBTracer {
	t := new(TLBTracer)
	t.writer = w
	t.timeTeller = timeTeller

	return t
}

// Func prints the tlb trace information.
func (t *TLBTracer) Func(ctx hooking.HookCtx) {
	var err error

	switch item := ctx.Item.(type) {
	case TLBEvent:
		_, err = fmt.Fprintf(t.writer,
			"%d,%s,%s,%d,%s,0x%08x,0x%08x,0x%08x,%t,%s\n",
			t.now(), domainName(ctx), ctx.Pos.Name,
			item.Index, item.Half, item.Start, item.End, item.Phys,
			item.Dirty, item.Reason)
	case TranslationMiss:
		_, err = fmt.Fprintf(t.writer,
			"%d,%s,%s,,%s,0x%08x,,,,\n",
			t.now(), domainName(ctx), ctx.Pos.Name, item.Kind, item.VAddr)
	default:
		if ctx.Pos == HookPosTLBReset {
			_, err = fmt.Fprintf(t.writer, "%d,%s,%s,,,,,,,\n",
				t.now(), domainName(ctx), ctx.Pos.Name)
		}
	}

	if err != nil {
		panic(err)
	}
}

func (t *TLBTracer) now() uint64 {
	if t.timeTeller == nil {
		return 0
	}

	return t.timeTeller.Now()
}

func domainName(ctx hooking.HookCtx) string {
	n, ok := ctx.Domain.(namer)
	if !ok {
		return ""
	}

	return n.Name()
}

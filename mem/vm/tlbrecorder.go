package vm

import (
	"github.com/disi33/mupen64plus-core/datarecording"
	"github.com/disi33/mupen64plus-core/sim/hooking"
	"github.com/disi33/mupen64plus-core/sim/id"
)

// Table names used by TLBRecorder.
const (
	TLBEventTable        = "tlb_event"
	TranslationMissTable = "translation_miss"
)

// TLBEventRow is one row of the tlb_event table.
type TLBEventRow struct {
	ID         string
	Time       uint64
	Component  string
	What       string
	EntryIndex int
	Half       string
	Start      uint32
	End        uint32
	Phys       uint32
	Dirty      bool
	Reason     string
}

// TranslationMissRow is one row of the translation_miss table.
type TranslationMissRow struct {
	ID        string
	Time      uint64
	Component string
	VAddr     uint32
	Kind      string
}

// A TLBRecorder stores TLB hook events with a DataRecorder.
type TLBRecorder struct {
	recorder   datarecording.DataRecorder
	timeTeller hooking.TimeTeller
	idGen      id.IDGenerator
}

// NewTLBRecorder creates the recorder tables and returns the hook that fills
// them.
func NewTLBRecorder(
	recorder datarecording.DataRecorder,
	timeTeller hooking.TimeTeller,
) *TLBRecorder {
	r := &TLBRecorder{
		recorder:   recorder,
		timeTeller: timeTeller,
		idGen:      id.NewGlobalIDGenerator(),
	}

	recorder.CreateTable(TLBEventTable, TLBEventRow{})
	recorder.CreateTable(TranslationMissTable, TranslationMissRow{})

	return r
}

// Func records the event carried by ctx.
func (r *TLBRecorder) Func(ctx hooking.HookCtx) {
	switch item := ctx.Item.(type) {
	case TLBEvent:
		r.recorder.InsertData(TLBEventTable, TLBEventRow{
			ID:         r.idGen.Generate(),
			Time:       r.now(),
			Component:  domainName(ctx),
			What:       ctx.Pos.Name,
			EntryIndex: item.Index,
			Half:       string(item.Half),
			Start:      item.Start,
			End:        item.End,
			Phys:       item.Phys,
			Dirty:      item.Dirty,
			Reason:     string(item.Reason),
		})
	case TranslationMiss:
		r.recorder.InsertData(TranslationMissTable, TranslationMissRow{
			ID:        r.idGen.Generate(),
			Time:      r.now(),
			Component: domainName(ctx),
			VAddr:     item.VAddr,
			Kind:      item.Kind.String(),
		})
	default:
		if ctx.Pos == HookPosTLBReset {
			r.recorder.InsertData(TLBEventTable, TLBEventRow{
				ID:         r.idGen.Generate(),
				Time:       r.now(),
				Component:  domainName(ctx),
				What:       ctx.Pos.Name,
				EntryIndex: -1,
			})
		}
	}
}

func (r *TLBRecorder) now() uint64 {
	if r.timeTeller == nil {
		return 0
	}

	return r.timeTeller.Now()
}

package vm

import "github.com/disi33/mupen64plus-core/sim/hooking"

// Hook positions fired by the TLB.
var (
	HookPosTLBMap          = &hooking.HookPos{Name: "TLBMap"}
	HookPosTLBUnmap        = &hooking.HookPos{Name: "TLBUnmap"}
	HookPosTLBReject       = &hooking.HookPos{Name: "TLBReject"}
	HookPosTLBReset        = &hooking.HookPos{Name: "TLBReset"}
	HookPosTranslationMiss = &hooking.HookPos{Name: "TranslationMiss"}
)

// RejectReason explains why a TLB entry half was not installed.
type RejectReason string

// The reasons a half can be rejected.
const (
	RejectNone         RejectReason = ""
	RejectEmptyRange   RejectReason = "empty-range"
	RejectKernelWindow RejectReason = "kernel-window"
	RejectPhysCeiling  RejectReason = "phys-ceiling"
)

// HalfName is "even" or "odd".
type HalfName string

// The two halves of a TLB entry.
const (
	Even HalfName = "even"
	Odd  HalfName = "odd"
)

// TLBEvent is the item of the map, unmap and reject hooks. It describes one
// half of one TLB entry.
type TLBEvent struct {
	Index  int
	Half   HalfName
	Start  uint32
	End    uint32
	Phys   uint32
	Dirty  bool
	Reason RejectReason
}

// TranslationMiss is the item of the translation miss hook.
type TranslationMiss struct {
	VAddr uint32
	Kind  AccessKind
}

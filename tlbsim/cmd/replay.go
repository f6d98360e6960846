package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/mem/vm/cp0"
	"github.com/disi33/mupen64plus-core/mem/vm/fastmap"
	"github.com/disi33/mupen64plus-core/mem/vm/tlb"
	"github.com/disi33/mupen64plus-core/monitoring"
	"github.com/disi33/mupen64plus-core/sim/hooking"
)

// ExpectationError reports the first step whose outcome differs from what
// the scenario expects.
type ExpectationError struct {
	Step int
	Op   string
	Want string
	Got  string
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("step %d (%s): want %s, got %s",
		e.Step, e.Op, e.Want, e.Got)
}

// A replayer runs scenario steps on a CP0. The step number serves as the
// time of the recorded and traced events.
type replayer struct {
	cp0  *cp0.CP0
	out  io.Writer
	step uint64
	bar  *monitoring.ProgressBar
}

// newReplayer builds a CP0 whose TLB carries the hooks made by makeHooks.
// makeHooks receives the replayer so that hooks can tell time with it.
func newReplayer(
	out io.Writer,
	checkFastMap bool,
	makeHooks func(timeTeller hooking.TimeTeller) []hooking.Hook,
) *replayer {
	r := &replayer{out: out}

	tb := tlb.MakeBuilder()

	if checkFastMap {
		m := fastmap.New()
		tb = tb.WithFastMap(m).WithHook(m)
	}

	if makeHooks != nil {
		for _, h := range makeHooks(r) {
			tb = tb.WithHook(h)
		}
	}

	r.cp0 = cp0.MakeBuilder().
		WithTLBBuilder(tb).
		Build("CPU.CP0")

	return r
}

// Now returns the number of the step being replayed.
func (r *replayer) Now() uint64 {
	return r.step
}

func (r *replayer) run(s *Scenario) error {
	for i, step := range s.Steps {
		r.step = uint64(i)

		logrus.WithFields(logrus.Fields{
			"step": i,
			"op":   step.Op,
		}).Debug("replaying step")

		err := r.runStep(i, step)

		if r.bar != nil {
			if err != nil {
				r.bar.IncrementFailed(1)
			} else {
				r.bar.IncrementFinished(1)
			}
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (r *replayer) runStep(i int, step Step) error {
	c := r.cp0

	switch step.Op {
	case opTLBWI:
		c.Index = *step.Index
		r.loadEntryRegisters(step)
		c.TLBWI()
		r.printEntry(i, step.Op, int(c.Index&(vm.NumTLBEntries-1)))
	case opTLBWR:
		index := int(c.Random)
		r.loadEntryRegisters(step)
		c.TLBWR()
		r.printEntry(i, step.Op, index)
	case opTLBP:
		c.EntryHi = step.EntryHi
		c.TLBP()
		fmt.Fprintf(r.out, "%4d %-6s hi=0x%08x index=0x%08x\n",
			i, step.Op, c.EntryHi, c.Index)

		if step.Expect != nil && c.Index != *step.Expect {
			return &ExpectationError{
				Step: i, Op: step.Op,
				Want: fmt.Sprintf("index 0x%08x", *step.Expect),
				Got:  fmt.Sprintf("index 0x%08x", c.Index),
			}
		}
	case opTLBR:
		c.Index = *step.Index
		c.TLBR()
		fmt.Fprintf(r.out,
			"%4d %-6s [%2d] mask=0x%08x hi=0x%08x lo0=0x%08x lo1=0x%08x\n",
			i, step.Op, c.Index, c.PageMask, c.EntryHi, c.EntryLo0, c.EntryLo1)
	case opWired:
		c.SetWired(step.Wired)
		fmt.Fprintf(r.out, "%4d %-6s %d\n", i, step.Op, c.Wired)
	case opERET:
		c.ERET()
		fmt.Fprintf(r.out, "%4d %-6s\n", i, step.Op)
	case opReset:
		c.Reset()
		fmt.Fprintf(r.out, "%4d %-6s\n", i, step.Op)
	case opRead:
		return r.access(i, step, vm.Read)
	case opWrite:
		return r.access(i, step, vm.Write)
	default:
		return fmt.Errorf("step %d: unknown op %q", i, step.Op)
	}

	return nil
}

func (r *replayer) loadEntryRegisters(step Step) {
	r.cp0.PageMask = step.PageMask
	r.cp0.EntryHi = step.EntryHi
	r.cp0.EntryLo0 = step.EntryLo0
	r.cp0.EntryLo1 = step.EntryLo1
}

func (r *replayer) printEntry(i int, op string, index int) {
	e := r.cp0.TLB().Entry(index)

	fmt.Fprintf(r.out, "%4d %-6s [%2d] %s | %s\n",
		i, op, index, formatHalf(e.Even), formatHalf(e.Odd))
}

func formatHalf(h tlb.Half) string {
	flags := ""
	if h.Valid {
		flags += "V"
	}

	if h.Dirty {
		flags += "D"
	}

	return fmt.Sprintf("0x%08x-0x%08x -> 0x%08x %-2s",
		h.Start, h.End, h.Phys, flags)
}

func (r *replayer) access(i int, step Step, kind vm.AccessKind) error {
	var pAddr uint32

	exc := cp0.Catch(func() {
		pAddr = r.cp0.Translate(step.VAddr, kind)
	})

	if exc != nil {
		fmt.Fprintf(r.out, "%4d %-6s 0x%08x -> %s\n",
			i, step.Op, step.VAddr, exc)
	} else {
		fmt.Fprintf(r.out, "%4d %-6s 0x%08x -> 0x%08x\n",
			i, step.Op, step.VAddr, pAddr)
	}

	got := fmt.Sprintf("0x%08x", pAddr)
	if exc != nil {
		got = exc.Code.String() + " fault"
	}

	switch {
	case step.ExpectFault && exc == nil:
		return &ExpectationError{Step: i, Op: step.Op, Want: "fault", Got: got}
	case step.Expect != nil && (exc != nil || pAddr != *step.Expect):
		return &ExpectationError{
			Step: i, Op: step.Op,
			Want: fmt.Sprintf("0x%08x", *step.Expect),
			Got:  got,
		}
	}

	return nil
}

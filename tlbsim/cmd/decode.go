package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/mem/vm/cp0"
	"github.com/disi33/mupen64plus-core/mem/vm/tlb"
	"github.com/disi33/mupen64plus-core/sim/hooking"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode TLB entry registers.",
	Long: "Decode the PageMask, EntryHi, EntryLo0 and EntryLo1 register " +
		"values of a TLB write and tell whether each half would be mapped.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		regs := make([]uint32, 0, 4)

		for _, name := range []string{
			"page-mask", "entry-hi", "entry-lo0", "entry-lo1",
		} {
			s, _ := cmd.Flags().GetString(name)

			v, err := strconv.ParseUint(s, 0, 32)
			if err != nil {
				return fmt.Errorf("--%s: %w", name, err)
			}

			regs = append(regs, uint32(v))
		}

		e := cp0.DecodeEntry(regs[0], regs[1], regs[2], regs[3])
		printDecodedEntry(cmd.OutOrStdout(), e)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().String("page-mask", "0", "PageMask register value.")
	decodeCmd.Flags().String("entry-hi", "0", "EntryHi register value.")
	decodeCmd.Flags().String("entry-lo0", "0", "EntryLo0 register value.")
	decodeCmd.Flags().String("entry-lo1", "0", "EntryLo1 register value.")
}

type discardFaults struct{}

func (discardFaults) RaiseTranslationFault(uint32, vm.AccessKind) {}

// installOutcome writes e into a scratch TLB and reports what happened to
// each half.
func installOutcome(e tlb.Entry) map[vm.HalfName]string {
	outcome := map[vm.HalfName]string{
		vm.Even: "invalid",
		vm.Odd:  "invalid",
	}

	record := hooking.HookFunc(func(ctx hooking.HookCtx) {
		event, ok := ctx.Item.(vm.TLBEvent)
		if !ok {
			return
		}

		switch ctx.Pos {
		case vm.HookPosTLBMap:
			outcome[event.Half] = "mapped"
		case vm.HookPosTLBReject:
			outcome[event.Half] = "rejected: " + string(event.Reason)
		}
	})

	scratch := tlb.MakeBuilder().
		WithFaultRaiser(discardFaults{}).
		WithHook(record).
		Build("Scratch")
	scratch.WriteEntry(0, e)

	return outcome
}

func printDecodedEntry(w io.Writer, e tlb.Entry) {
	outcome := installOutcome(e)

	fmt.Fprintf(w, "VPN2   0x%05x\n", e.VPN2)
	fmt.Fprintf(w, "ASID   0x%02x\n", e.ASID)
	fmt.Fprintf(w, "Global %t\n", e.Global)
	fmt.Fprintf(w, "Mask   0x%03x\n", e.Mask)

	halves := []struct {
		name vm.HalfName
		half tlb.Half
	}{
		{vm.Even, e.Even},
		{vm.Odd, e.Odd},
	}

	for _, h := range halves {
		fmt.Fprintf(w, "%-4s   %s cache=%d %s\n",
			h.name, formatHalf(h.half), h.half.Cache, outcome[h.name])
	}
}

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/disi33/mupen64plus-core/datarecording"
	"github.com/disi33/mupen64plus-core/mem/vm"
)

var eventsCmd = &cobra.Command{
	Use:   "events DATABASE",
	Short: "List TLB events recorded by `run --record`.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, _ := cmd.Flags().GetInt("entry")
		limit, _ := cmd.Flags().GetInt("limit")
		misses, _ := cmd.Flags().GetBool("misses")

		reader := datarecording.NewReader(args[0])
		defer reader.Close()

		if misses {
			return listMisses(cmd.Context(), cmd.OutOrStdout(), reader, limit)
		}

		return listTLBEvents(cmd.Context(), cmd.OutOrStdout(), reader,
			entry, limit)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().Int("entry", -1,
		"Only list events of this entry index.")
	eventsCmd.Flags().Int("limit", 0, "Maximum number of events to list.")
	eventsCmd.Flags().Bool("misses", false,
		"List translation misses instead of entry events.")
}

func listTLBEvents(
	ctx context.Context,
	w io.Writer,
	reader datarecording.DataReader,
	entry, limit int,
) error {
	filter := vm.AllTLBEvents
	filter.EntryIndex = entry
	filter.Limit = limit

	events, total, err := vm.ReadTLBEvents(ctx, reader, filter)
	if err != nil {
		return err
	}

	for _, e := range events {
		fmt.Fprintf(w, "%4d %-10s [%2d] %-4s 0x%08x-0x%08x -> 0x%08x %t %s\n",
			e.Time, e.What, e.EntryIndex, e.Half,
			e.Start, e.End, e.Phys, e.Dirty, e.Reason)
	}

	fmt.Fprintf(w, "%d of %d events\n", len(events), total)

	return nil
}

func listMisses(
	ctx context.Context,
	w io.Writer,
	reader datarecording.DataReader,
	limit int,
) error {
	misses, total, err := vm.ReadTranslationMisses(ctx, reader, limit)
	if err != nil {
		return err
	}

	for _, m := range misses {
		fmt.Fprintf(w, "%4d %-5s 0x%08x\n", m.Time, m.Kind, m.VAddr)
	}

	fmt.Fprintf(w, "%d of %d misses\n", len(misses), total)

	return nil
}

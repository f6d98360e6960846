package vm

import (
	"context"
	"strings"

	"github.com/disi33/mupen64plus-core/datarecording"
)

// TLBEventFilter selects recorded TLB events.
type TLBEventFilter struct {
	// Component keeps only the events of the named TLB. Empty keeps all.
	Component string

	// EntryIndex keeps only the events of one entry when not negative.
	// Resets are recorded with index -1 and are dropped by any filter on an
	// entry.
	EntryIndex int

	// What keeps only one kind of event, for example "TLBMap".
	What string

	Limit int
}

// AllTLBEvents matches every recorded event.
var AllTLBEvents = TLBEventFilter{EntryIndex: -1}

func (f TLBEventFilter) params() datarecording.QueryParams {
	var (
		conds []string
		args  []any
	)

	if f.Component != "" {
		conds = append(conds, "Component = ?")
		args = append(args, f.Component)
	}

	if f.EntryIndex >= 0 {
		conds = append(conds, "EntryIndex = ?")
		args = append(args, f.EntryIndex)
	}

	if f.What != "" {
		conds = append(conds, "What = ?")
		args = append(args, f.What)
	}

	return datarecording.QueryParams{
		Where:   strings.Join(conds, " AND "),
		Args:    args,
		OrderBy: "Time, rowid",
		Limit:   f.Limit,
	}
}

// ReadTLBEvents returns the events written by a TLBRecorder in recording
// order, and the number of events the filter matches regardless of its
// limit.
func ReadTLBEvents(
	ctx context.Context,
	reader datarecording.DataReader,
	filter TLBEventFilter,
) ([]TLBEventRow, int, error) {
	return datarecording.Select[TLBEventRow](
		ctx, reader, TLBEventTable, filter.params())
}

// ReadTranslationMisses returns up to limit recorded misses in recording
// order, and the total number of misses. A limit of 0 returns all of them.
func ReadTranslationMisses(
	ctx context.Context,
	reader datarecording.DataReader,
	limit int,
) ([]TranslationMissRow, int, error) {
	return datarecording.Select[TranslationMissRow](
		ctx, reader, TranslationMissTable,
		datarecording.QueryParams{OrderBy: "Time, rowid", Limit: limit})
}

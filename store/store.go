// Package store persists the full session record set. Every backend
// round-trips all raw input fields with numeric fidelity, keeping the
// undefined marker distinguishable from zero; derived fields are never
// persisted because the pipeline recomputes them on every load.
package store

import (
	"errors"
	"time"

	"github.com/lucasjlepore/trainlog"
)

// ErrUnavailable wraps any backend failure that prevents a full, consistent
// read or write. Callers must treat it as fatal for the current invocation
// rather than continue on partial state.
var ErrUnavailable = errors.New("storage unavailable")

// Store loads and saves the complete record set. There is no incremental
// update: SaveAll atomically replaces the persisted set.
type Store interface {
	LoadAll() ([]trainlog.SessionRecord, error)
	SaveAll(records []trainlog.SessionRecord) error
}

// DateLayout is the canonical on-disk form of a record's calendar day.
const DateLayout = "2006-01-02"

func formatDay(t time.Time) string {
	return trainlog.Day(t).Format(DateLayout)
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

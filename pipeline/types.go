package pipeline

import (
	"github.com/lucasjlepore/trainlog"
	"github.com/lucasjlepore/trainlog/reconcile"
	"github.com/lucasjlepore/trainlog/series"
	"github.com/lucasjlepore/trainlog/store"
	"go.uber.org/zap"
)

// Options configures one pipeline invocation.
type Options struct {
	// Store holds the persisted record set. Required.
	Store store.Store

	// Config carries the athlete and formula constants. Zero fields are
	// filled with the documented defaults.
	Config trainlog.Config

	// Logger receives reconciliation and progress events. Nil means silent.
	Logger *zap.Logger

	// Incoming batches, applied in identity order: manual and bulk edits
	// replace same-slot records, track imports append unless duplicated.
	ManualEdits  []trainlog.SessionRecord
	BulkEdits    []trainlog.SessionRecord
	TrackImports []trainlog.SessionRecord

	// DailyCSVPath, when set, writes the processed daily series as CSV.
	DailyCSVPath string
}

// Result is the processed state of one pipeline invocation.
type Result struct {
	// Records joins every session with its day's derived values.
	Records []series.RecordView

	// Days is the dense, signal-bearing daily series.
	Days []series.DailyAggregate

	// KPIs summarizes the latest state of the series.
	KPIs series.Snapshot

	// Report counts what reconciliation did with the incoming batches.
	Report reconcile.Report

	// DailyCSVPath echoes the written artifact path, if any.
	DailyCSVPath string
}

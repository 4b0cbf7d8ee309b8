// Package reconcile merges session records arriving from manual entry, the
// bulk editor, and GPS-track imports into one non-duplicated record set.
package reconcile

import (
	"sort"

	"go.uber.org/zap"

	"github.com/lucasjlepore/trainlog"
)

// Source identifies which producer a batch of records came from. The merge
// identity differs per source: manual and bulk edits replace an existing
// (date, sport) slot in place, while track imports only ever append and are
// deduplicated on the strict (date, sport, duration, distance) identity.
type Source string

const (
	SourceManual Source = "manual"
	SourceBulk   Source = "bulk"
	SourceTrack  Source = "track"
)

// Report counts the merge decisions of one batch so every accepted or
// skipped record is attributable.
type Report struct {
	Accepted         int `json:"accepted"`
	Replaced         int `json:"replaced"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	Rejected         int `json:"rejected"`
}

func (r *Report) add(other Report) {
	r.Accepted += other.Accepted
	r.Replaced += other.Replaced
	r.SkippedDuplicate += other.SkippedDuplicate
	r.Rejected += other.Rejected
}

// Reconciler merges new record batches into the persisted set.
type Reconciler struct {
	logger *zap.Logger
}

// New returns a Reconciler logging its merge decisions to logger.
func New(logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{logger: logger}
}

// Merge folds batch into existing according to the source's identity rule
// and returns the merged set sorted by date. A malformed record (zero date)
// is rejected and counted; the rest of the batch still merges.
func (rc *Reconciler) Merge(existing []trainlog.SessionRecord, batch []trainlog.SessionRecord, source Source) ([]trainlog.SessionRecord, Report) {
	merged := make([]trainlog.SessionRecord, len(existing))
	copy(merged, existing)

	report := Report{}
	for _, rec := range batch {
		if rec.Date.IsZero() {
			report.Rejected++
			rc.logger.Warn("rejected malformed record",
				zap.String("source", string(source)),
				zap.String("reason", "missing date"),
			)
			continue
		}
		rec.Date = trainlog.Day(rec.Date)

		switch source {
		case SourceTrack:
			merged = rc.mergeTrack(merged, rec, &report)
		default:
			merged = rc.mergeEdit(merged, rec, source, &report)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	rc.logger.Info("batch reconciled",
		zap.String("source", string(source)),
		zap.Int("accepted", report.Accepted),
		zap.Int("replaced", report.Replaced),
		zap.Int("skipped_duplicate", report.SkippedDuplicate),
		zap.Int("rejected", report.Rejected),
		zap.Int("total_records", len(merged)),
	)
	return merged, report
}

// MergeAll applies several batches in order and accumulates their reports.
func (rc *Reconciler) MergeAll(existing []trainlog.SessionRecord, batches map[Source][]trainlog.SessionRecord) ([]trainlog.SessionRecord, Report) {
	merged := existing
	total := Report{}
	// Deterministic application order: edits first, then track imports, so
	// a track duplicate of a just-edited session is still detected.
	for _, source := range []Source{SourceManual, SourceBulk, SourceTrack} {
		batch, ok := batches[source]
		if !ok || len(batch) == 0 {
			continue
		}
		var report Report
		merged, report = rc.Merge(merged, batch, source)
		total.add(report)
	}
	return merged, total
}

// mergeEdit applies manual-entry / bulk-editor semantics: overwrite the
// record occupying the same (date, sport) slot, else append.
func (rc *Reconciler) mergeEdit(merged []trainlog.SessionRecord, rec trainlog.SessionRecord, source Source, report *Report) []trainlog.SessionRecord {
	for i := range merged {
		if merged[i].SameSlot(rec) {
			merged[i] = rec
			report.Replaced++
			rc.logger.Debug("replaced record in place",
				zap.String("source", string(source)),
				zap.Time("date", rec.Date),
				zap.String("sport", string(rec.Sport)),
			)
			return merged
		}
	}
	report.Accepted++
	return append(merged, rec)
}

// mergeTrack applies GPS-import semantics: append only when no existing
// record matches the full 4-tuple identity; never update in place. A near
// miss is deliberately skipped rather than merged.
func (rc *Reconciler) mergeTrack(merged []trainlog.SessionRecord, rec trainlog.SessionRecord, report *Report) []trainlog.SessionRecord {
	for i := range merged {
		if merged[i].SameObservation(rec) {
			report.SkippedDuplicate++
			rc.logger.Debug("skipped duplicate track import",
				zap.Time("date", rec.Date),
				zap.String("sport", string(rec.Sport)),
				zap.Float64("duration_hr", rec.DurationHr),
				zap.Float64("distance_mi", rec.DistanceMi),
			)
			return merged
		}
	}
	report.Accepted++
	return append(merged, rec)
}

// Dedupe removes exact duplicate observations from a persisted set, keeping
// the first occurrence. It guards against duplicates introduced outside the
// reconciler (hand-edited storage files).
func Dedupe(records []trainlog.SessionRecord) []trainlog.SessionRecord {
	out := make([]trainlog.SessionRecord, 0, len(records))
	for _, rec := range records {
		dup := false
		for i := range out {
			if out[i].SameObservation(rec) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, rec)
		}
	}
	return out
}

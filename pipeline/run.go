// Package pipeline orchestrates one single-threaded batch pass over the
// record set: load, reconcile incoming batches, derive per-session metrics,
// aggregate to days, compute load signals, extract KPIs, and save. Two runs
// on unchanged input produce identical output.
package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/lucasjlepore/trainlog"
	"github.com/lucasjlepore/trainlog/reconcile"
	"github.com/lucasjlepore/trainlog/series"
	"github.com/lucasjlepore/trainlog/store"
)

// Run executes the full pipeline. Storage failure is fatal for the
// invocation: no partial state is written back.
func Run(opts Options) (*Result, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	cfg.Normalize()

	existing, err := opts.Store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	// The persisted set may carry duplicates introduced outside the
	// reconciler (hand-edited storage files); the merged output must not.
	deduped := reconcile.Dedupe(existing)
	if dropped := len(existing) - len(deduped); dropped > 0 {
		logger.Warn("dropped duplicate persisted records", zap.Int("dropped", dropped))
	}
	existing = deduped

	rc := reconcile.New(logger)
	merged, report := rc.MergeAll(existing, map[reconcile.Source][]trainlog.SessionRecord{
		reconcile.SourceManual: opts.ManualEdits,
		reconcile.SourceBulk:   opts.BulkEdits,
		reconcile.SourceTrack:  opts.TrackImports,
	})

	derived := trainlog.DeriveAll(merged, cfg)

	days := series.Aggregate(derived)
	days = series.Reindex(days)
	days = series.ComputeSignals(days, cfg)

	views := series.Attach(derived, days)
	kpis := series.ExtractKPIs(days, cfg)

	if err := opts.Store.SaveAll(merged); err != nil {
		return nil, fmt.Errorf("save records: %w", err)
	}

	result := &Result{
		Records: views,
		Days:    days,
		KPIs:    kpis,
		Report:  report,
	}

	if opts.DailyCSVPath != "" {
		if err := writeDailyCSV(opts.DailyCSVPath, days); err != nil {
			return nil, fmt.Errorf("write daily csv: %w", err)
		}
		result.DailyCSVPath = opts.DailyCSVPath
	}

	logger.Info("pipeline run complete",
		zap.Int("records", len(views)),
		zap.Int("days", len(days)),
		zap.Int("accepted", report.Accepted),
		zap.Int("replaced", report.Replaced),
		zap.Int("skipped_duplicates", report.SkippedDuplicate),
		zap.Int("rejected", report.Rejected),
	)
	return result, nil
}

var dailyCSVHeader = []string{
	"date", "observed",
	"training_hr", "distance_mi", "work_kj", "total_tss", "calories_burned", "carb_intra_g",
	"calories_in", "protein_g", "carbs_g", "fat_g", "sugar_g", "sodium_g", "potassium_g",
	"carb_intake_hr", "sleep_hr", "resting_hr", "weight_lbs", "mood", "energy", "hunger", "cravings",
	"phase", "location", "surplus_deficit",
	"atl", "ctl", "tsb", "relative_tsb", "recovery_score",
	"tss_7d", "sleep_7d", "carb_rate_7d", "surplus_7d", "work_kj_7d",
}

// writeDailyCSV exports the processed daily series. Undefined values render
// as empty cells.
func writeDailyCSV(path string, days []series.DailyAggregate) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(dailyCSVHeader); err != nil {
		return err
	}
	for _, d := range days {
		row := []string{
			d.Date.Format(store.DateLayout),
			strconv.FormatBool(d.Observed),
			formatCell(d.TrainingHr),
			formatCell(d.DistanceMi),
			formatCell(d.WorkKJ),
			formatCell(d.TotalTSS),
			formatCell(d.CaloriesBurned),
			formatCell(d.CarbIntraG),
			formatCell(d.CaloriesIn),
			formatCell(d.ProteinG),
			formatCell(d.CarbsG),
			formatCell(d.FatG),
			formatCell(d.SugarG),
			formatCell(d.SodiumG),
			formatCell(d.PotassiumG),
			formatCell(d.CarbIntakeHr),
			formatCell(d.SleepHr),
			formatCell(d.RestingHR),
			formatCell(d.WeightLbs),
			formatCell(d.Mood),
			formatCell(d.Energy),
			formatCell(d.Hunger),
			formatCell(d.Cravings),
			d.Phase,
			d.Location,
			formatCell(d.SurplusDeficit),
			formatCell(d.ATL),
			formatCell(d.CTL),
			formatCell(d.TSB),
			formatCell(d.RelativeTSB),
			formatCell(d.RecoveryScore),
			formatCell(d.TSS7d),
			formatCell(d.Sleep7d),
			formatCell(d.CarbRate7d),
			formatCell(d.Surplus7d),
			formatCell(d.WorkKJ7d),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatCell(v float64) string {
	if !trainlog.Defined(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

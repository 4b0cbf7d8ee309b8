// Package series folds derived session records into a gapless daily time
// series and computes the exponentially-weighted fitness/fatigue signals
// (ATL, CTL, TSB), rolling averages, and summary KPIs on top of it.
package series

import (
	"sort"
	"time"

	"github.com/lucasjlepore/trainlog"
)

// DailyAggregate is one row per calendar day after folding same-day
// sessions. Activity quantities are summed; daily-singleton fields keep the
// first observed value. Signal fields are filled in by ComputeSignals.
type DailyAggregate struct {
	Date time.Time `json:"date"`

	// Observed is false for rest days inserted by Reindex to make the
	// calendar gapless. Such days carry TotalTSS = 0.
	Observed bool `json:"observed"`

	// Summed across same-day sessions.
	TrainingHr     float64 `json:"training_hr"`
	DistanceMi     float64 `json:"distance_mi"`
	WorkKJ         float64 `json:"work_kj"`
	TotalTSS       float64 `json:"total_tss"`
	CaloriesBurned float64 `json:"calories_burned"`
	CarbIntraG     float64 `json:"carb_intra_g"`

	// First observed value for the day.
	CaloriesIn   float64 `json:"calories_in"`
	ProteinG     float64 `json:"protein_g"`
	CarbsG       float64 `json:"carbs_g"`
	FatG         float64 `json:"fat_g"`
	SugarG       float64 `json:"sugar_g"`
	SodiumG      float64 `json:"sodium_g"`
	PotassiumG   float64 `json:"potassium_g"`
	CarbIntakeHr float64 `json:"carb_intake_hr"`
	SleepHr      float64 `json:"sleep_hr"`
	RestingHR    float64 `json:"resting_hr"`
	WeightLbs    float64 `json:"weight_lbs"`
	Mood         float64 `json:"mood"`
	Energy       float64 `json:"energy"`
	Hunger       float64 `json:"hunger"`
	Cravings     float64 `json:"cravings"`
	Phase        string  `json:"phase,omitempty"`
	Location     string  `json:"location,omitempty"`

	// Computed per date.
	SurplusDeficit float64 `json:"surplus_deficit"`

	// Load signals (ComputeSignals).
	ATL           float64 `json:"atl"`
	CTL           float64 `json:"ctl"`
	TSB           float64 `json:"tsb"`
	RelativeTSB   float64 `json:"relative_tsb"`
	RecoveryScore float64 `json:"recovery_score"`

	// Trailing rolling means (ComputeSignals).
	TSS7d      float64 `json:"tss_7d"`
	Sleep7d    float64 `json:"sleep_7d"`
	CarbRate7d float64 `json:"carb_rate_7d"`
	Surplus7d  float64 `json:"surplus_7d"`
	WorkKJ7d   float64 `json:"work_kj_7d"`
}

func newDailyAggregate(date time.Time, observed bool) DailyAggregate {
	d := DailyAggregate{Date: date, Observed: observed}
	d.CaloriesIn = trainlog.Undefined()
	d.ProteinG = trainlog.Undefined()
	d.CarbsG = trainlog.Undefined()
	d.FatG = trainlog.Undefined()
	d.SugarG = trainlog.Undefined()
	d.SodiumG = trainlog.Undefined()
	d.PotassiumG = trainlog.Undefined()
	d.CarbIntakeHr = trainlog.Undefined()
	d.SleepHr = trainlog.Undefined()
	d.RestingHR = trainlog.Undefined()
	d.WeightLbs = trainlog.Undefined()
	d.Mood = trainlog.Undefined()
	d.Energy = trainlog.Undefined()
	d.Hunger = trainlog.Undefined()
	d.Cravings = trainlog.Undefined()
	d.ATL = trainlog.Undefined()
	d.CTL = trainlog.Undefined()
	d.TSB = trainlog.Undefined()
	d.RelativeTSB = trainlog.Undefined()
	d.RecoveryScore = trainlog.Undefined()
	d.TSS7d = trainlog.Undefined()
	d.Sleep7d = trainlog.Undefined()
	d.CarbRate7d = trainlog.Undefined()
	d.Surplus7d = trainlog.Undefined()
	d.WorkKJ7d = trainlog.Undefined()
	return d
}

// Aggregate groups post-derivation records by calendar day and folds each
// group into one DailyAggregate, sorted ascending by date. Undefined inputs
// contribute zero to the sums; singleton fields take the first non-missing
// value encountered in record order.
func Aggregate(records []trainlog.SessionRecord) []DailyAggregate {
	byDay := make(map[time.Time]*DailyAggregate)
	order := make([]time.Time, 0)

	for _, rec := range records {
		day := trainlog.Day(rec.Date)
		agg, ok := byDay[day]
		if !ok {
			fresh := newDailyAggregate(day, true)
			agg = &fresh
			byDay[day] = agg
			order = append(order, day)
		}
		foldSession(agg, rec)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })
	out := make([]DailyAggregate, 0, len(order))
	for _, day := range order {
		agg := byDay[day]
		agg.SurplusDeficit = trainlog.OrZero(agg.CaloriesIn) - agg.CaloriesBurned
		out = append(out, *agg)
	}
	return out
}

func foldSession(agg *DailyAggregate, rec trainlog.SessionRecord) {
	agg.TrainingHr += trainlog.OrZero(rec.DurationHr)
	agg.DistanceMi += trainlog.OrZero(rec.DistanceMi)
	agg.WorkKJ += trainlog.OrZero(rec.WorkKJ)
	agg.TotalTSS += trainlog.OrZero(rec.TSS)
	agg.CaloriesBurned += trainlog.OrZero(rec.CaloriesBurned)
	agg.CarbIntraG += trainlog.OrZero(rec.CarbIntraG)

	agg.CaloriesIn = trainlog.FirstDefined(agg.CaloriesIn, rec.CaloriesIn)
	agg.ProteinG = trainlog.FirstDefined(agg.ProteinG, rec.ProteinG)
	agg.CarbsG = trainlog.FirstDefined(agg.CarbsG, rec.CarbsG)
	agg.FatG = trainlog.FirstDefined(agg.FatG, rec.FatG)
	agg.SugarG = trainlog.FirstDefined(agg.SugarG, rec.SugarG)
	agg.SodiumG = trainlog.FirstDefined(agg.SodiumG, rec.SodiumG)
	agg.PotassiumG = trainlog.FirstDefined(agg.PotassiumG, rec.PotassiumG)
	agg.CarbIntakeHr = trainlog.FirstDefined(agg.CarbIntakeHr, rec.CarbIntakeHr)
	agg.SleepHr = trainlog.FirstDefined(agg.SleepHr, rec.SleepHr)
	agg.RestingHR = trainlog.FirstDefined(agg.RestingHR, rec.RestingHR)
	agg.WeightLbs = trainlog.FirstDefined(agg.WeightLbs, rec.WeightLbs)
	agg.Mood = trainlog.FirstDefined(agg.Mood, rec.Mood)
	agg.Energy = trainlog.FirstDefined(agg.Energy, rec.Energy)
	agg.Hunger = trainlog.FirstDefined(agg.Hunger, rec.Hunger)
	agg.Cravings = trainlog.FirstDefined(agg.Cravings, rec.Cravings)
	if agg.Phase == "" {
		agg.Phase = rec.Phase
	}
	if agg.Location == "" {
		agg.Location = rec.Location
	}
}

// RecordView is one original session record joined with its date's
// daily-level derived values.
type RecordView struct {
	trainlog.SessionRecord
	Daily DailyAggregate `json:"daily"`
}

// Attach joins the computed daily series back onto the original (possibly
// multi-session-per-day) record view by date.
func Attach(records []trainlog.SessionRecord, days []DailyAggregate) []RecordView {
	byDay := make(map[time.Time]DailyAggregate, len(days))
	for _, d := range days {
		byDay[d.Date] = d
	}
	out := make([]RecordView, 0, len(records))
	for _, rec := range records {
		out = append(out, RecordView{
			SessionRecord: rec,
			Daily:         byDay[trainlog.Day(rec.Date)],
		})
	}
	return out
}

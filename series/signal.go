package series

import (
	"math"
	"time"

	"github.com/lucasjlepore/trainlog"
)

// Reindex expands the aggregate series onto a dense daily calendar spanning
// [min(date), max(date)] inclusive. Inserted rest days carry TotalTSS = 0
// and undefined singleton fields, so the EWMA recursion sees every calendar
// day exactly once.
func Reindex(days []DailyAggregate) []DailyAggregate {
	if len(days) == 0 {
		return nil
	}
	byDay := make(map[time.Time]DailyAggregate, len(days))
	minDay, maxDay := days[0].Date, days[0].Date
	for _, d := range days {
		byDay[d.Date] = d
		if d.Date.Before(minDay) {
			minDay = d.Date
		}
		if d.Date.After(maxDay) {
			maxDay = d.Date
		}
	}

	out := make([]DailyAggregate, 0, int(maxDay.Sub(minDay).Hours()/24)+1)
	for day := minDay; !day.After(maxDay); day = day.AddDate(0, 0, 1) {
		if d, ok := byDay[day]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, newDailyAggregate(day, false))
	}
	return out
}

// ComputeSignals fills the load-signal and rolling-average fields of a
// dense, date-ascending daily series and returns the result as a new slice.
// It is a pure function of (days, cfg): recomputation on unchanged input is
// stable and non-accumulating.
func ComputeSignals(days []DailyAggregate, cfg trainlog.Config) []DailyAggregate {
	out := make([]DailyAggregate, len(days))
	copy(out, days)
	if len(out) == 0 {
		return out
	}

	n := len(out)
	tss := make([]float64, n)
	sleep := make([]float64, n)
	carbRate := make([]float64, n)
	surplus := make([]float64, n)
	work := make([]float64, n)
	rhr := make([]float64, n)
	for i, d := range out {
		tss[i] = d.TotalTSS
		sleep[i] = d.SleepHr
		carbRate[i] = d.CarbIntakeHr
		surplus[i] = d.SurplusDeficit
		work[i] = d.WorkKJ
		rhr[i] = d.RestingHR
	}

	atl := ewma(tss, cfg.ATLSpan)
	ctl := ewma(tss, cfg.CTLSpan)

	window := cfg.RollingWindowDays
	tss7 := rollingMean(tss, window)
	sleep7 := rollingMean(sleep, window)
	carb7 := rollingMean(carbRate, window)
	surplus7 := rollingMean(surplus, window)
	work7 := rollingMean(work, window)
	rhrStd := rollingStd(rhr, window)

	relative := relativeTSB(out, tss, atl, cfg)

	for i := range out {
		out[i].ATL = atl[i]
		out[i].CTL = ctl[i]
		out[i].TSB = ctl[i] - atl[i]
		out[i].TSS7d = tss7[i]
		out[i].Sleep7d = sleep7[i]
		out[i].CarbRate7d = carb7[i]
		out[i].Surplus7d = surplus7[i]
		out[i].WorkKJ7d = work7[i]
		out[i].RelativeTSB = relative[i]

		// Recovery score components default to 0 when missing. This is the
		// one place undefined collapses to zero instead of propagating,
		// so a sleepless log still yields a comparable score.
		out[i].RecoveryScore = 0.4*trainlog.OrZero(out[i].SleepHr) +
			0.3*trainlog.OrZero(out[i].Mood) +
			0.3*trainlog.OrZero(rhrStd[i])
	}
	return out
}

// ewma computes the recursive (non-adjusted) exponentially-weighted moving
// average with alpha = 2/(span+1), seeded at the first value.
func ewma(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	prev := trainlog.OrZero(values[0])
	out[0] = prev
	for i := 1; i < len(values); i++ {
		prev = alpha*trainlog.OrZero(values[i]) + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// rollingMean computes the simple mean over the trailing window (inclusive),
// skipping undefined samples. Partial windows at the start of the series
// average over the available days rather than waiting for a full window; a
// window with no defined samples is undefined.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, count := 0.0, 0
		for j := start; j <= i; j++ {
			if trainlog.Defined(values[j]) {
				sum += values[j]
				count++
			}
		}
		if count == 0 {
			out[i] = trainlog.Undefined()
			continue
		}
		out[i] = sum / float64(count)
	}
	return out
}

// rollingStd computes the trailing-window sample standard deviation over
// defined values; fewer than two samples is undefined.
func rollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, count := 0.0, 0
		for j := start; j <= i; j++ {
			if trainlog.Defined(values[j]) {
				sum += values[j]
				count++
			}
		}
		if count < 2 {
			out[i] = trainlog.Undefined()
			continue
		}
		mean := sum / float64(count)
		sq := 0.0
		for j := start; j <= i; j++ {
			if trainlog.Defined(values[j]) {
				d := values[j] - mean
				sq += d * d
			}
		}
		out[i] = math.Sqrt(sq / float64(count-1))
	}
	return out
}

// relativeTSB folds the phase-weighted cumulative fatigue accumulator over
// the ordered series, seeded at 0:
//
//	rel[t] = rel[t-1] + tss[t]*rate(phase[t]) - atl[t]/100
//
// A day missing any required input carries the previous value forward
// unchanged.
func relativeTSB(days []DailyAggregate, tss, atl []float64, cfg trainlog.Config) []float64 {
	out := make([]float64, len(days))
	prev := 0.0
	for i, d := range days {
		rate, ok := cfg.RecoveryRate(d.Phase)
		if !ok || !trainlog.Defined(tss[i]) || !trainlog.Defined(atl[i]) {
			out[i] = prev
			continue
		}
		prev = prev + tss[i]*rate - atl[i]/100
		out[i] = prev
	}
	return out
}

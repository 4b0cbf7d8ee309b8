package series

import "github.com/lucasjlepore/trainlog"

// Snapshot holds the scalar KPI values pulled from the end of the daily
// series for presentation. Every field resolves to a number: missing or
// undefined inputs collapse to 0.0 so the presentation layer never sees a
// raw error state.
type Snapshot struct {
	TSS7dSum   float64 `json:"tss_7d_sum"`
	CTL        float64 `json:"ctl"`
	ATL        float64 `json:"atl"`
	TSB        float64 `json:"tsb"`
	SleepAvg7d float64 `json:"sleep_avg_7d"`
}

// ExtractKPIs computes the snapshot from the final computed daily series.
// The typed series is the single source for every value; no column scanning.
func ExtractKPIs(days []DailyAggregate, cfg trainlog.Config) Snapshot {
	if len(days) == 0 {
		return Snapshot{}
	}

	window := cfg.RollingWindowDays
	start := len(days) - window
	if start < 0 {
		start = 0
	}

	tssSum := 0.0
	sleepSum, sleepCount := 0.0, 0
	for _, d := range days[start:] {
		tssSum += trainlog.OrZero(d.TotalTSS)
		if trainlog.Defined(d.SleepHr) {
			sleepSum += d.SleepHr
			sleepCount++
		}
	}

	latest := days[len(days)-1]
	snap := Snapshot{
		TSS7dSum: tssSum,
		CTL:      trainlog.OrZero(latest.CTL),
		ATL:      trainlog.OrZero(latest.ATL),
		TSB:      trainlog.OrZero(latest.TSB),
	}
	if sleepCount > 0 {
		snap.SleepAvg7d = sleepSum / float64(sleepCount)
	}
	return snap
}

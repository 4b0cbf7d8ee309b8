package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/trainlog"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func tssDay(d int, tss float64) DailyAggregate {
	agg := newDailyAggregate(day(d), true)
	agg.TotalTSS = tss
	return agg
}

func TestReindexFillsCalendarGaps(t *testing.T) {
	days := []DailyAggregate{tssDay(1, 100), tssDay(5, 50)}

	dense := Reindex(days)

	require.Len(t, dense, 5)
	for i, d := range dense {
		assert.Equal(t, day(i+1), d.Date)
	}
	for _, i := range []int{1, 2, 3} {
		assert.Equal(t, 0.0, dense[i].TotalTSS, "inserted rest day carries TSS=0")
		assert.False(t, dense[i].Observed)
		assert.False(t, trainlog.Defined(dense[i].SleepHr))
	}
	assert.Equal(t, 100.0, dense[0].TotalTSS)
	assert.Equal(t, 50.0, dense[4].TotalTSS)
}

func TestReindexUnorderedInput(t *testing.T) {
	dense := Reindex([]DailyAggregate{tssDay(3, 10), tssDay(1, 20)})
	require.Len(t, dense, 3)
	assert.Equal(t, day(1), dense[0].Date)
	assert.Equal(t, day(3), dense[2].Date)
}

func TestEWMASeeding(t *testing.T) {
	cfg := trainlog.DefaultConfig()
	out := ComputeSignals([]DailyAggregate{tssDay(1, 100)}, cfg)

	require.Len(t, out, 1)
	assert.InDelta(t, 100.0, out[0].ATL, 1e-9)
	assert.InDelta(t, 100.0, out[0].CTL, 1e-9)
	assert.InDelta(t, 0.0, out[0].TSB, 1e-9)
}

func TestEWMADecayWithoutActivity(t *testing.T) {
	days := []DailyAggregate{tssDay(1, 100)}
	for d := 2; d <= 7; d++ {
		days = append(days, tssDay(d, 0))
	}

	out := ComputeSignals(days, trainlog.DefaultConfig())

	want := []float64{100, 75, 56.25, 42.19, 31.64, 23.73, 17.80}
	require.Len(t, out, len(want))
	for i, w := range want {
		assert.InDelta(t, w, out[i].ATL, 0.01, "atl[%d]", i)
	}
	// No-activity decay keeps TSB moving toward zero from below ATL's curve.
	assert.Less(t, out[6].ATL, out[0].ATL)
}

func TestRollingMeanPartialWindow(t *testing.T) {
	days := []DailyAggregate{tssDay(1, 0), tssDay(2, 0), tssDay(3, 0)}
	days[0].SleepHr = 8
	days[1].SleepHr = 6
	days[2].SleepHr = 7

	out := ComputeSignals(days, trainlog.DefaultConfig())

	assert.InDelta(t, 8.0, out[0].Sleep7d, 1e-9)
	assert.InDelta(t, 7.0, out[1].Sleep7d, 1e-9)
	assert.InDelta(t, 7.0, out[2].Sleep7d, 1e-9)
}

func TestRollingMeanSkipsUndefinedSamples(t *testing.T) {
	days := []DailyAggregate{tssDay(1, 0), tssDay(2, 0), tssDay(3, 0)}
	days[0].SleepHr = 8
	// day 2 has no sleep log
	days[2].SleepHr = 6

	out := ComputeSignals(days, trainlog.DefaultConfig())
	assert.InDelta(t, 7.0, out[2].Sleep7d, 1e-9)
}

func TestRecoveryScoreMissingComponentsDefaultToZero(t *testing.T) {
	days := []DailyAggregate{tssDay(1, 0)}
	days[0].SleepHr = 8
	// no mood, no resting HR history

	out := ComputeSignals(days, trainlog.DefaultConfig())
	assert.InDelta(t, 0.4*8, out[0].RecoveryScore, 1e-9)
}

func TestRecoveryScoreUsesRHRVariability(t *testing.T) {
	days := make([]DailyAggregate, 0, 3)
	rhr := []float64{50, 54, 52}
	for i, v := range rhr {
		d := tssDay(i+1, 0)
		d.RestingHR = v
		d.SleepHr = 7
		d.Mood = 6
		days = append(days, d)
	}

	out := ComputeSignals(days, trainlog.DefaultConfig())

	// sample stddev of {50, 54, 52} = 2
	assert.InDelta(t, 0.4*7+0.3*6+0.3*2, out[2].RecoveryScore, 1e-9)
	// first day has a single RHR sample: variability contributes zero
	assert.InDelta(t, 0.4*7+0.3*6, out[0].RecoveryScore, 1e-9)
}

func TestRelativeTSBAccumulatesAndCarriesForward(t *testing.T) {
	cfg := trainlog.DefaultConfig()

	d1 := tssDay(1, 100)
	d1.Phase = "Build"
	d2 := tssDay(2, 0) // no phase tag: carry forward
	d3 := tssDay(3, 50)
	d3.Phase = "Deload"

	out := ComputeSignals([]DailyAggregate{d1, d2, d3}, cfg)

	atl := []float64{out[0].ATL, out[1].ATL, out[2].ATL}
	want1 := 0 + 100*1.5 - atl[0]/100
	assert.InDelta(t, want1, out[0].RelativeTSB, 1e-9)
	assert.InDelta(t, want1, out[1].RelativeTSB, 1e-9, "missing phase carries the accumulator forward")
	want3 := want1 + 50*3.0 - atl[2]/100
	assert.InDelta(t, want3, out[2].RelativeTSB, 1e-9)
}

func TestComputeSignalsIsIdempotent(t *testing.T) {
	days := Reindex([]DailyAggregate{tssDay(1, 80), tssDay(4, 120)})
	once := ComputeSignals(days, trainlog.DefaultConfig())
	twice := ComputeSignals(days, trainlog.DefaultConfig())
	assert.Equal(t, once, twice)
}

func TestAttachJoinsDailyValuesByDate(t *testing.T) {
	r1 := trainlog.NewSessionRecord(day(1), trainlog.SportCycling)
	r2 := trainlog.NewSessionRecord(day(1), trainlog.SportRunning)
	r3 := trainlog.NewSessionRecord(day(2), trainlog.SportCycling)

	days := ComputeSignals(Reindex([]DailyAggregate{tssDay(1, 100), tssDay(2, 40)}), trainlog.DefaultConfig())
	views := Attach([]trainlog.SessionRecord{r1, r2, r3}, days)

	require.Len(t, views, 3)
	assert.Equal(t, views[0].Daily.ATL, views[1].Daily.ATL, "same-day sessions share daily values")
	assert.Equal(t, day(2), views[2].Daily.Date)
}

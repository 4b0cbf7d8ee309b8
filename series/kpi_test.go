package series

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucasjlepore/trainlog"
)

func TestExtractKPIsEmptySeries(t *testing.T) {
	snap := ExtractKPIs(nil, trainlog.DefaultConfig())
	assert.Equal(t, Snapshot{}, snap)
}

func TestExtractKPIsTrailingWindow(t *testing.T) {
	days := make([]DailyAggregate, 0, 10)
	for d := 1; d <= 10; d++ {
		agg := tssDay(d, 10)
		agg.SleepHr = 7
		days = append(days, agg)
	}
	days = ComputeSignals(days, trainlog.DefaultConfig())

	snap := ExtractKPIs(days, trainlog.DefaultConfig())

	assert.InDelta(t, 70.0, snap.TSS7dSum, 1e-9, "trailing 7 days only")
	assert.InDelta(t, 7.0, snap.SleepAvg7d, 1e-9)
	assert.Equal(t, days[9].CTL, snap.CTL)
	assert.Equal(t, days[9].ATL, snap.ATL)
	assert.Equal(t, days[9].TSB, snap.TSB)
}

func TestExtractKPIsMissingDataYieldsZero(t *testing.T) {
	days := []DailyAggregate{newDailyAggregate(day(1), false)}
	// signals never computed: ATL/CTL/TSB undefined

	snap := ExtractKPIs(days, trainlog.DefaultConfig())

	assert.Equal(t, 0.0, snap.CTL)
	assert.Equal(t, 0.0, snap.ATL)
	assert.Equal(t, 0.0, snap.TSB)
	assert.Equal(t, 0.0, snap.SleepAvg7d)
}

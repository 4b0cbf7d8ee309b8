package trainlog

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate() time.Time {
	return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
}

func TestDeriveCycling(t *testing.T) {
	r := NewSessionRecord(testDate(), SportCycling)
	r.DurationHr = 1.5
	r.AvgPowerW = 200
	r.FTPUsed = 250

	got := Derive(r, DefaultConfig())

	assert.InDelta(t, 0.8, got.IntensityFactor, 1e-9)
	assert.InDelta(t, 1.5*0.8*0.8*100, got.TSS, 1e-9)
	assert.InDelta(t, 1.5*200*3.6, got.WorkKJ, 1e-9)
	assert.InDelta(t, got.WorkKJ*0.95, got.CaloriesBurned, 1e-9)
}

func TestDeriveCyclingZeroFTPIsUndefined(t *testing.T) {
	r := NewSessionRecord(testDate(), SportCycling)
	r.DurationHr = 1.0
	r.AvgPowerW = 200
	r.FTPUsed = 0

	got := Derive(r, DefaultConfig())

	assert.False(t, Defined(got.IntensityFactor), "IF must be undefined for FTP=0")
	assert.False(t, Defined(got.TSS), "TSS must be undefined when IF is undefined")
	// Work and calories do not depend on FTP.
	assert.True(t, Defined(got.WorkKJ))
}

func TestDeriveCyclingFallsBackToConfigFTP(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FTPWatts = 250

	r := NewSessionRecord(testDate(), SportCycling)
	r.DurationHr = 1.0
	r.AvgPowerW = 250

	got := Derive(r, cfg)
	assert.InDelta(t, 1.0, got.IntensityFactor, 1e-9)
	assert.InDelta(t, 100.0, got.TSS, 1e-9)
}

func TestDeriveRunning(t *testing.T) {
	r := NewSessionRecord(testDate(), SportRunning)
	r.DurationHr = 1.0
	r.RPE = 6
	r.WeightLbs = 154.324 // ~70 kg

	got := Derive(r, DefaultConfig())

	require.True(t, Defined(got.TSS))
	assert.InDelta(t, (60*36.0)/30.0, got.TSS, 1e-9)
	assert.InDelta(t, 10*70*1.0, got.CaloriesBurned, 0.01)
	assert.InDelta(t, got.CaloriesBurned*4.184, got.WorkKJ, 1e-6)
}

func TestDeriveRunningDivisorIsConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RunTSSDivisor = 10

	r := NewSessionRecord(testDate(), SportRunning)
	r.DurationHr = 0.5
	r.RPE = 5

	got := Derive(r, cfg)
	assert.InDelta(t, (30*25.0)/10.0, got.TSS, 1e-9)
}

func TestDeriveRunningMissingRPEIsUndefined(t *testing.T) {
	r := NewSessionRecord(testDate(), SportRunning)
	r.DurationHr = 1.0

	got := Derive(r, DefaultConfig())
	assert.False(t, Defined(got.TSS))
}

func TestDeriveTrackMeasurementsWin(t *testing.T) {
	r := NewSessionRecord(testDate(), SportCycling)
	r.DurationHr = 1.0
	r.AvgPowerW = 200
	r.FTPUsed = 200
	r.TrackIF = 0.93
	r.TrackTSS = 86.5

	got := Derive(r, DefaultConfig())

	assert.InDelta(t, 0.93, got.IntensityFactor, 1e-9)
	assert.InDelta(t, 86.5, got.TSS, 1e-9)
	// No track work value: formula estimate stays.
	assert.InDelta(t, 1.0*200*3.6, got.WorkKJ, 1e-9)
}

func TestDeriveIsIdempotent(t *testing.T) {
	r := NewSessionRecord(testDate(), SportCycling)
	r.DurationHr = 2.0
	r.AvgPowerW = 180
	r.FTPUsed = 240

	once := Derive(r, DefaultConfig())
	twice := Derive(once, DefaultConfig())

	assert.Equal(t, once.IntensityFactor, twice.IntensityFactor)
	assert.Equal(t, once.TSS, twice.TSS)
	assert.Equal(t, once.WorkKJ, twice.WorkKJ)
	assert.Equal(t, once.CaloriesBurned, twice.CaloriesBurned)
}

func TestUndefinedHelpers(t *testing.T) {
	assert.False(t, Defined(Undefined()))
	assert.False(t, Defined(math.Inf(1)))
	assert.True(t, Defined(0))
	assert.Equal(t, 0.0, OrZero(Undefined()))
	assert.Equal(t, 5.0, OrZero(5))
	assert.Equal(t, 7.0, FirstDefined(Undefined(), 7, 9))
	assert.False(t, Defined(FirstDefined(Undefined(), Undefined())))
	assert.Equal(t, 3.0, AddDefined(1, Undefined(), 2))
}

func TestSameObservationExactIdentity(t *testing.T) {
	a := NewSessionRecord(testDate(), SportCycling)
	a.DurationHr = 1.5
	a.DistanceMi = 28.4

	b := a
	assert.True(t, a.SameObservation(b))

	b.DistanceMi = 28.400001
	assert.False(t, a.SameObservation(b))

	c := NewSessionRecord(testDate(), SportRunning)
	c.DurationHr = 1.5
	c.DistanceMi = 28.4
	assert.False(t, a.SameObservation(c))
}

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg := Config{}
	cfg.Normalize()

	def := DefaultConfig()
	assert.Equal(t, def.DefaultWeightKG, cfg.DefaultWeightKG)
	assert.Equal(t, def.RunTSSDivisor, cfg.RunTSSDivisor)
	assert.Equal(t, def.ATLSpan, cfg.ATLSpan)
	assert.Equal(t, def.CTLSpan, cfg.CTLSpan)

	rate, ok := cfg.RecoveryRate("Deload")
	require.True(t, ok)
	assert.Equal(t, 3.0, rate)

	_, ok = cfg.RecoveryRate("Taper")
	assert.False(t, ok)
}

// Package trackimport converts recorded GPS activity files into session
// records. Extracted values are track-provided measurements: the reconciler
// treats them as append-only observations and the derivation engine lets the
// measured IF/TSS/kJ override its own estimates.
package trackimport

import (
	"time"

	"github.com/lucasjlepore/trainlog"
)

// Unit conversions from the metric quantities tracks record to the imperial
// units the record model stores.
const (
	MetersPerMile     = 1609.344
	FeetPerMeter      = 3.28084
	MphPerMeterPerSec = 2.23694
	secondsPerHour    = 3600.0
)

// TrackSession holds the fields extracted from one activity file. Numeric
// fields use NaN for values the track did not record.
type TrackSession struct {
	StartTime time.Time
	Sport     trainlog.Sport

	DurationHr      float64
	DistanceMi      float64
	ElevationGainFt float64
	AvgPowerW       float64
	MaxPowerW       float64
	AvgSpeedMph     float64
	AvgHRBPM        float64
	MaxHRBPM        float64
	ZoneMinutes     [5]float64
	RPE             float64

	// Measured load values computed from the track's own samples.
	IntensityFactor float64
	TSS             float64
	WorkKJ          float64
}

func newTrackSession() TrackSession {
	u := trainlog.Undefined()
	return TrackSession{
		DurationHr:      u,
		DistanceMi:      u,
		ElevationGainFt: u,
		AvgPowerW:       u,
		MaxPowerW:       u,
		AvgSpeedMph:     u,
		AvgHRBPM:        u,
		MaxHRBPM:        u,
		ZoneMinutes:     [5]float64{u, u, u, u, u},
		RPE:             u,
		IntensityFactor: u,
		TSS:             u,
		WorkKJ:          u,
	}
}

// ToRecord shapes the extracted session into a record. sportHint, when not
// empty, overrides the sport inferred from the track's contents.
func (t TrackSession) ToRecord(sportHint trainlog.Sport) trainlog.SessionRecord {
	sport := t.Sport
	if sportHint != trainlog.SportUnknown {
		sport = sportHint
	}
	rec := trainlog.NewSessionRecord(trainlog.Day(t.StartTime), sport)
	rec.DurationHr = t.DurationHr
	rec.DistanceMi = t.DistanceMi
	rec.ElevationGainFt = t.ElevationGainFt
	rec.AvgPowerW = t.AvgPowerW
	rec.MaxPowerW = t.MaxPowerW
	rec.AvgSpeedMph = t.AvgSpeedMph
	rec.AvgHRBPM = t.AvgHRBPM
	rec.MaxHRBPM = t.MaxHRBPM
	rec.ZoneMinutes = t.ZoneMinutes
	rec.RPE = t.RPE
	rec.TrackIF = t.IntensityFactor
	rec.TrackTSS = t.TSS
	rec.TrackWorkKJ = t.WorkKJ
	return rec
}

// inferSport labels a track by its contents: a power meter means a ride,
// anything else is treated as a run.
func inferSport(hasPower bool) trainlog.Sport {
	if hasPower {
		return trainlog.SportCycling
	}
	return trainlog.SportRunning
}

// hrZone buckets a heart-rate sample into zones Z1..Z5 by fraction of
// maximal heart rate: <60%, <70%, <80%, <90%, and above.
func hrZone(hr, maxHR float64) int {
	frac := hr / maxHR
	switch {
	case frac < 0.60:
		return 0
	case frac < 0.70:
		return 1
	case frac < 0.80:
		return 2
	case frac < 0.90:
		return 3
	default:
		return 4
	}
}

// estimateRPE maps average heart rate to a perceived-exertion score for runs
// without a power reference: <70% of max HR scores 3, <80% scores 5,
// <90% scores 7, and anything harder scores 9.
func estimateRPE(avgHR, maxHR float64) float64 {
	if !trainlog.Defined(avgHR) || avgHR <= 0 || maxHR <= 0 {
		return trainlog.Undefined()
	}
	frac := avgHR / maxHR
	switch {
	case frac < 0.70:
		return 3
	case frac < 0.80:
		return 5
	case frac < 0.90:
		return 7
	default:
		return 9
	}
}

// measuredLoad fills IF, TSS, and kJ from the track's power data when an FTP
// reference is available.
func (t *TrackSession) measuredLoad(ftpWatts float64) {
	if trainlog.Defined(t.AvgPowerW) && t.AvgPowerW > 0 && trainlog.Defined(t.DurationHr) && t.DurationHr > 0 {
		if !trainlog.Defined(t.WorkKJ) {
			t.WorkKJ = t.DurationHr * t.AvgPowerW * trainlog.HoursToKJPerWatt
		}
		if ftpWatts > 0 {
			t.IntensityFactor = t.AvgPowerW / ftpWatts
			t.TSS = t.DurationHr * t.IntensityFactor * t.IntensityFactor * 100.0
		}
	}
}

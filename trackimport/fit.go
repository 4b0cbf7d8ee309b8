package trackimport

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"github.com/lucasjlepore/trainlog"
)

// FromFITFile decodes an activity FIT file into a track session.
func FromFITFile(path string, cfg trainlog.Config) (TrackSession, error) {
	f, err := os.Open(path)
	if err != nil {
		return TrackSession{}, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()
	ts, err := FromFIT(f, cfg)
	if err != nil {
		return TrackSession{}, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// FromFIT decodes an activity FIT stream. Session-level summary fields win
// when present; per-record samples fill whatever the session message omits.
func FromFIT(r io.Reader, cfg trainlog.Config) (TrackSession, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return TrackSession{}, fmt.Errorf("decode FIT: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return TrackSession{}, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return TrackSession{}, fmt.Errorf("activity file has no session message")
	}

	samples := collectFITSamples(activity.Records)
	session := activity.Sessions[0]
	ts := newTrackSession()

	ts.StartTime = validTimeOrZero(session.StartTime)
	if ts.StartTime.IsZero() {
		ts.StartTime = samples.start
	}

	elapsedSec := safePositive(session.GetTotalTimerTimeScaled())
	if elapsedSec == 0 {
		elapsedSec = samples.durationSec
	}
	if elapsedSec > 0 {
		ts.DurationHr = elapsedSec / secondsPerHour
	}

	distanceM := safePositive(session.GetTotalDistanceScaled())
	if distanceM == 0 {
		distanceM = samples.lastDistanceM
	}
	if distanceM > 0 {
		ts.DistanceMi = distanceM / MetersPerMile
	}

	if ascent := float64(validUint16(session.TotalAscent)); ascent > 0 {
		ts.ElevationGainFt = ascent * FeetPerMeter
	}

	avgSpeed := safePositive(session.GetEnhancedAvgSpeedScaled())
	if avgSpeed == 0 {
		avgSpeed = safePositive(session.GetAvgSpeedScaled())
	}
	if avgSpeed == 0 && elapsedSec > 0 && distanceM > 0 {
		avgSpeed = distanceM / elapsedSec
	}
	if avgSpeed > 0 {
		ts.AvgSpeedMph = avgSpeed * MphPerMeterPerSec
	}

	avgPower := float64(validUint16(session.AvgPower))
	if avgPower == 0 {
		avgPower = average(samples.power)
	}
	if avgPower > 0 {
		ts.AvgPowerW = avgPower
	}
	maxPower := float64(validUint16(session.MaxPower))
	if maxPower == 0 {
		maxPower = maxValue(samples.power)
	}
	if maxPower > 0 {
		ts.MaxPowerW = maxPower
	}

	avgHR := float64(validUint8(session.AvgHeartRate))
	if avgHR == 0 {
		avgHR = average(samples.hr)
	}
	if avgHR > 0 {
		ts.AvgHRBPM = avgHR
	}
	maxHR := float64(validUint8(session.MaxHeartRate))
	if maxHR == 0 {
		maxHR = maxValue(samples.hr)
	}
	if maxHR > 0 {
		ts.MaxHRBPM = maxHR
	}

	if len(samples.hr) > 0 {
		ts.ZoneMinutes = zoneMinutesFromHR(samples.hr, samples.hrGapSec, cfg.MaxHRBPM)
	}

	ts.Sport = inferSport(len(samples.power) > 0)
	if ts.Sport == trainlog.SportRunning {
		ts.RPE = estimateRPE(ts.AvgHRBPM, cfg.MaxHRBPM)
	}

	workKJ := float64(validUint32(session.TotalWork)) / 1000.0
	if workKJ == 0 {
		workKJ = samples.workKJ
	}
	if workKJ > 0 {
		ts.WorkKJ = workKJ
	}
	ts.measuredLoad(cfg.FTPWatts)

	return ts, nil
}

type fitSamples struct {
	start         time.Time
	end           time.Time
	durationSec   float64
	power         []float64
	hr            []float64
	hrGapSec      []float64
	lastDistanceM float64
	workKJ        float64
}

func collectFITSamples(records []*fit.RecordMsg) fitSamples {
	fs := fitSamples{}
	if len(records) == 0 {
		return fs
	}

	rows := make([]*fit.RecordMsg, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			rows = append(rows, rec)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})

	var (
		lastTS      time.Time
		haveLastTS  bool
		lastPower   float64
		haveLastPwr bool
		workJoules  float64
	)

	for _, rec := range rows {
		ts := validTimeOrZero(rec.Timestamp)
		if !ts.IsZero() {
			if fs.start.IsZero() {
				fs.start = ts
			}
			fs.end = ts
		}

		gap := 1.0
		if haveLastTS && !ts.IsZero() && ts.After(lastTS) {
			gap = ts.Sub(lastTS).Seconds()
		}

		if rec.Power != math.MaxUint16 {
			power := float64(rec.Power)
			fs.power = append(fs.power, power)
			if haveLastPwr && gap > 0 && gap <= 5 {
				workJoules += lastPower * gap
			}
			lastPower = power
			haveLastPwr = true
		}
		if rec.HeartRate != math.MaxUint8 {
			fs.hr = append(fs.hr, float64(rec.HeartRate))
			fs.hrGapSec = append(fs.hrGapSec, gap)
		}
		if d := safePositive(rec.GetDistanceScaled()); d > 0 {
			fs.lastDistanceM = d
		}
		if !ts.IsZero() {
			lastTS = ts
			haveLastTS = true
		}
	}

	if !fs.start.IsZero() && fs.end.After(fs.start) {
		fs.durationSec = fs.end.Sub(fs.start).Seconds()
	}
	fs.workKJ = workJoules / 1000.0
	return fs
}

// zoneMinutesFromHR credits each heart-rate sample's elapsed gap to the zone
// the sample falls in. Gaps over a minute are ignored as recording dropouts.
func zoneMinutesFromHR(hr, gapSec []float64, maxHR float64) [5]float64 {
	zones := [5]float64{}
	if maxHR <= 0 {
		u := trainlog.Undefined()
		return [5]float64{u, u, u, u, u}
	}
	for i, sample := range hr {
		gap := 1.0
		if i < len(gapSec) && gapSec[i] > 0 && gapSec[i] <= 60 {
			gap = gapSec[i]
		}
		zones[hrZone(sample, maxHR)] += gap / 60.0
	}
	return zones
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func validUint32(v uint32) uint32 {
	if v == math.MaxUint32 {
		return 0
	}
	return v
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	count := 0
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		total += v
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func maxValue(values []float64) float64 {
	best := 0.0
	found := false
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return best
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}

package trackimport

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/trainlog"
)

func buildRideFIT(t *testing.T) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)

	activity, err := file.Activity()
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	session := fit.NewSessionMsg()
	session.StartTime = start
	session.Timestamp = start.Add(time.Hour)
	session.TotalTimerTime = 3600000 // ms
	session.TotalDistance = 3218688  // cm, 20 miles
	session.AvgPower = 200
	session.MaxPower = 420
	session.AvgHeartRate = 142
	session.MaxHeartRate = 168
	session.TotalAscent = 100
	activity.Sessions = append(activity.Sessions, session)

	for i := 0; i < 60; i++ {
		rec := fit.NewRecordMsg()
		rec.Timestamp = start.Add(time.Duration(i) * time.Second)
		rec.Power = 200
		rec.HeartRate = 142
		activity.Records = append(activity.Records, rec)
	}

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

func buildRunFIT(t *testing.T) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)

	activity, err := file.Activity()
	require.NoError(t, err)

	start := time.Date(2024, 3, 2, 7, 0, 0, 0, time.UTC)

	session := fit.NewSessionMsg()
	session.StartTime = start
	session.Timestamp = start.Add(30 * time.Minute)
	session.TotalTimerTime = 1800000
	session.AvgHeartRate = 150
	activity.Sessions = append(activity.Sessions, session)

	for i := 0; i < 10; i++ {
		rec := fit.NewRecordMsg()
		rec.Timestamp = start.Add(time.Duration(i) * time.Second)
		rec.HeartRate = 150
		activity.Records = append(activity.Records, rec)
	}

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

func TestFromFITRide(t *testing.T) {
	cfg := trainlog.DefaultConfig()
	cfg.FTPWatts = 250

	ts, err := FromFIT(bytes.NewReader(buildRideFIT(t)), cfg)
	require.NoError(t, err)

	assert.Equal(t, trainlog.SportCycling, ts.Sport)
	assert.InDelta(t, 1.0, ts.DurationHr, 1e-9)
	assert.InDelta(t, 20.0, ts.DistanceMi, 1e-6)
	assert.InDelta(t, 200.0, ts.AvgPowerW, 1e-9)
	assert.InDelta(t, 420.0, ts.MaxPowerW, 1e-9)
	assert.InDelta(t, 142.0, ts.AvgHRBPM, 1e-9)
	assert.InDelta(t, 168.0, ts.MaxHRBPM, 1e-9)
	assert.InDelta(t, 100.0*FeetPerMeter, ts.ElevationGainFt, 1e-6)

	// measured load: IF = 200/250, TSS = 1h * 0.8^2 * 100
	assert.InDelta(t, 0.8, ts.IntensityFactor, 1e-9)
	assert.InDelta(t, 64.0, ts.TSS, 1e-9)
	assert.InDelta(t, 1.0*200.0*trainlog.HoursToKJPerWatt, ts.WorkKJ, 1e-9)
}

func TestFromFITRunEstimatesRPE(t *testing.T) {
	cfg := trainlog.DefaultConfig() // max HR 200

	ts, err := FromFIT(bytes.NewReader(buildRunFIT(t)), cfg)
	require.NoError(t, err)

	assert.Equal(t, trainlog.SportRunning, ts.Sport)
	// 150/200 = 75% of max: second exertion bucket
	assert.Equal(t, 5.0, ts.RPE)
	assert.False(t, trainlog.Defined(ts.AvgPowerW))
	assert.False(t, trainlog.Defined(ts.IntensityFactor))
}

func TestFromFITZoneMinutes(t *testing.T) {
	cfg := trainlog.DefaultConfig()

	ts, err := FromFIT(bytes.NewReader(buildRideFIT(t)), cfg)
	require.NoError(t, err)

	// 142 bpm at max 200 is 71%: zone 3 of 5. 60 one-second samples,
	// first gap defaults to 1s.
	assert.InDelta(t, 1.0, ts.ZoneMinutes[2], 1e-9)
	assert.Equal(t, 0.0, ts.ZoneMinutes[0])
	assert.Equal(t, 0.0, ts.ZoneMinutes[4])
}

func TestToRecordSportHintOverrides(t *testing.T) {
	ts := newTrackSession()
	ts.StartTime = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	ts.Sport = trainlog.SportRunning
	ts.DurationHr = 1.0
	ts.TSS = 55

	rec := ts.ToRecord(trainlog.SportCycling)
	assert.Equal(t, trainlog.SportCycling, rec.Sport)
	assert.True(t, rec.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "date normalized to midnight")
	assert.Equal(t, 55.0, rec.TrackTSS)

	rec = ts.ToRecord(trainlog.SportUnknown)
	assert.Equal(t, trainlog.SportRunning, rec.Sport)
}

func TestEstimateRPEBuckets(t *testing.T) {
	cases := []struct {
		hr   float64
		want float64
	}{
		{hr: 120, want: 3}, // 60%
		{hr: 150, want: 5}, // 75%
		{hr: 170, want: 7}, // 85%
		{hr: 190, want: 9}, // 95%
	}
	for _, tc := range cases {
		got := estimateRPE(tc.hr, 200)
		assert.Equal(t, tc.want, got, "hr %.0f", tc.hr)
	}
	assert.False(t, trainlog.Defined(estimateRPE(trainlog.Undefined(), 200)))
}

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test"
     xmlns="http://www.topografix.com/GPX/1/1"
     xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1">
  <trk>
    <trkseg>
      <trkpt lat="40.0000" lon="-105.0000">
        <ele>1600</ele>
        <time>2024-03-02T10:00:00Z</time>
        <extensions><gpxtpx:TrackPointExtension><gpxtpx:hr>140</gpxtpx:hr></gpxtpx:TrackPointExtension></extensions>
      </trkpt>
      <trkpt lat="40.0100" lon="-105.0000">
        <ele>1610</ele>
        <time>2024-03-02T10:15:00Z</time>
        <extensions><gpxtpx:TrackPointExtension><gpxtpx:hr>150</gpxtpx:hr></gpxtpx:TrackPointExtension></extensions>
      </trkpt>
      <trkpt lat="40.0200" lon="-105.0000">
        <ele>1605</ele>
        <time>2024-03-02T10:30:00Z</time>
        <extensions><gpxtpx:TrackPointExtension><gpxtpx:hr>160</gpxtpx:hr></gpxtpx:TrackPointExtension></extensions>
      </trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestFromGPXTrack(t *testing.T) {
	cfg := trainlog.DefaultConfig()

	ts, err := FromGPX(strings.NewReader(sampleGPX), cfg)
	require.NoError(t, err)

	assert.Equal(t, trainlog.SportRunning, ts.Sport)
	assert.InDelta(t, 0.5, ts.DurationHr, 1e-9)

	// 0.02 degrees of latitude is roughly 2224 m.
	assert.InDelta(t, 2224.0/MetersPerMile, ts.DistanceMi, 0.01)

	// only the climbing delta counts
	assert.InDelta(t, 10.0*FeetPerMeter, ts.ElevationGainFt, 1e-6)

	assert.InDelta(t, 150.0, ts.AvgHRBPM, 1e-9)
	assert.InDelta(t, 160.0, ts.MaxHRBPM, 1e-9)
	// avg HR 150/200 = 75% of max
	assert.Equal(t, 5.0, ts.RPE)
	assert.True(t, ts.StartTime.Equal(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)))
}

func TestFromGPXNoPoints(t *testing.T) {
	_, err := FromGPX(strings.NewReader(`<gpx version="1.1"><trk><trkseg></trkseg></trk></gpx>`), trainlog.DefaultConfig())
	assert.Error(t, err)
}

func TestFromGPXSpeedFromDistanceAndTime(t *testing.T) {
	ts, err := FromGPX(strings.NewReader(sampleGPX), trainlog.DefaultConfig())
	require.NoError(t, err)

	wantMph := ts.DistanceMi / ts.DurationHr
	assert.InDelta(t, wantMph, ts.AvgSpeedMph, 1e-9)
}

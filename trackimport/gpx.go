package trackimport

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/geo/s2"

	"github.com/lucasjlepore/trainlog"
)

const earthRadiusMeters = 6371000.0

type gpxDoc struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat  float64  `xml:"lat,attr"`
	Lon  float64  `xml:"lon,attr"`
	Ele  *float64 `xml:"ele"`
	Time string   `xml:"time"`
	HR   *float64 `xml:"extensions>TrackPointExtension>hr"`
}

// FromGPXFile parses a GPX track file into a track session.
func FromGPXFile(path string, cfg trainlog.Config) (TrackSession, error) {
	f, err := os.Open(path)
	if err != nil {
		return TrackSession{}, fmt.Errorf("open GPX file: %w", err)
	}
	defer f.Close()
	ts, err := FromGPX(f, cfg)
	if err != nil {
		return TrackSession{}, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// FromGPX parses a GPX stream. GPX carries no power channel, so the session
// is treated as a run: distance accumulates great-circle leg lengths,
// elevation gain sums positive altitude deltas, and heart-rate extension
// samples drive the zone minutes and estimated RPE.
func FromGPX(r io.Reader, cfg trainlog.Config) (TrackSession, error) {
	var doc gpxDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return TrackSession{}, fmt.Errorf("decode GPX: %w", err)
	}

	points := make([]gpxPoint, 0, 1024)
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			points = append(points, seg.Points...)
		}
	}
	if len(points) == 0 {
		return TrackSession{}, fmt.Errorf("GPX track has no points")
	}

	ts := newTrackSession()
	ts.Sport = inferSport(false)

	var (
		distanceM  float64
		gainM      float64
		prevEle    float64
		havePrev   bool
		hrSamples  []float64
		hrGaps     []float64
		start, end time.Time
		lastTime   time.Time
	)

	for i, pt := range points {
		when, ok := parseGPXTime(pt.Time)
		if ok {
			if start.IsZero() {
				start = when
			}
			end = when
		}

		if i > 0 {
			prev := points[i-1]
			distanceM += greatCircleMeters(prev.Lat, prev.Lon, pt.Lat, pt.Lon)
		}

		if pt.Ele != nil {
			if havePrev && *pt.Ele > prevEle {
				gainM += *pt.Ele - prevEle
			}
			prevEle = *pt.Ele
			havePrev = true
		}

		if pt.HR != nil && *pt.HR > 0 {
			gap := 1.0
			if ok && !lastTime.IsZero() && when.After(lastTime) {
				gap = when.Sub(lastTime).Seconds()
			}
			hrSamples = append(hrSamples, *pt.HR)
			hrGaps = append(hrGaps, gap)
		}
		if ok {
			lastTime = when
		}
	}

	ts.StartTime = start
	if !start.IsZero() && end.After(start) {
		ts.DurationHr = end.Sub(start).Seconds() / secondsPerHour
	}
	if distanceM > 0 {
		ts.DistanceMi = distanceM / MetersPerMile
	}
	if gainM > 0 {
		ts.ElevationGainFt = gainM * FeetPerMeter
	}
	if trainlog.Defined(ts.DurationHr) && ts.DurationHr > 0 && distanceM > 0 {
		ts.AvgSpeedMph = (distanceM / MetersPerMile) / ts.DurationHr
	}

	if len(hrSamples) > 0 {
		ts.AvgHRBPM = average(hrSamples)
		ts.MaxHRBPM = maxValue(hrSamples)
		ts.ZoneMinutes = zoneMinutesFromHR(hrSamples, hrGaps, cfg.MaxHRBPM)
		ts.RPE = estimateRPE(ts.AvgHRBPM, cfg.MaxHRBPM)
	}

	ts.measuredLoad(cfg.FTPWatts)
	return ts, nil
}

func greatCircleMeters(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}

func parseGPXTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

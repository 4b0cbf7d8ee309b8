package trainlog

import "time"

// Sport tags the activity type of a session. A record that carries only
// nutrition or check-in data has no sport.
type Sport string

const (
	SportCycling Sport = "Cycling"
	SportRunning Sport = "Running"
	SportUnknown Sport = ""
)

// SessionRecord is one observation unit: a single day's activity session,
// nutrition log, or check-in, as produced by manual entry, the bulk editor,
// or a GPS-track import. Raw inputs are hand- or device-entered; derived
// fields are recomputed from raw inputs on every load and never persisted
// as authoritative data.
//
// Missing numeric fields are NaN (see Undefined); Date is never the zero
// time for a persisted record.
type SessionRecord struct {
	Date  time.Time `json:"date"`
	Sport Sport     `json:"sport,omitempty"`

	// Activity inputs.
	DurationHr      float64    `json:"duration_hr"`
	DistanceMi      float64    `json:"distance_mi"`
	ElevationGainFt float64    `json:"elevation_gain_ft"`
	AvgPowerW       float64    `json:"avg_power_w"`
	MaxPowerW       float64    `json:"max_power_w"`
	AvgSpeedMph     float64    `json:"avg_speed_mph"`
	AvgHRBPM        float64    `json:"avg_hr_bpm"`
	MaxHRBPM        float64    `json:"max_hr_bpm"`
	ZoneMinutes     [5]float64 `json:"zone_minutes"` // Z1..Z5 heart-rate time buckets
	RPE             float64    `json:"rpe"`
	SessionType     string     `json:"session_type,omitempty"`
	FTPUsed         float64    `json:"ftp_used"`
	WindMph         float64    `json:"wind_mph"`
	TempF           float64    `json:"temp_f"`
	HumidityPct     float64    `json:"humidity_pct"`

	// Nutrition inputs.
	CaloriesIn   float64 `json:"calories_in"`
	ProteinG     float64 `json:"protein_g"`
	CarbsG       float64 `json:"carbs_g"`
	FatG         float64 `json:"fat_g"`
	SugarG       float64 `json:"sugar_g"`
	SodiumG      float64 `json:"sodium_g"`
	PotassiumG   float64 `json:"potassium_g"`
	CarbIntakeHr float64 `json:"carb_intake_hr"`
	CarbIntraG   float64 `json:"carb_intra_g"`
	SodiumIntraG float64 `json:"sodium_intra_g"`

	// Recovery / check-in inputs.
	SleepHr   float64 `json:"sleep_hr"`
	RestingHR float64 `json:"resting_hr"`
	WeightLbs float64 `json:"weight_lbs"`
	Mood      float64 `json:"mood"`
	Energy    float64 `json:"energy"`
	Hunger    float64 `json:"hunger"`
	Cravings  float64 `json:"cravings"`
	Phase     string  `json:"phase,omitempty"`
	Location  string  `json:"location,omitempty"`
	Notes     string  `json:"notes,omitempty"`

	// Track-measured values extracted by the GPS collaborator. When present
	// they take precedence over the formula estimates below.
	TrackIF     float64 `json:"track_if"`
	TrackTSS    float64 `json:"track_tss"`
	TrackWorkKJ float64 `json:"track_work_kj"`

	// Derived (computed, never hand-entered).
	IntensityFactor float64 `json:"intensity_factor"`
	TSS             float64 `json:"tss"`
	WorkKJ          float64 `json:"work_kj"`
	CaloriesBurned  float64 `json:"calories_burned"`
	WattsPerKG      float64 `json:"watts_per_kg"`
}

// NewSessionRecord returns a record for date with every numeric field
// undefined. Producers fill in only what they observed.
func NewSessionRecord(date time.Time, sport Sport) SessionRecord {
	r := SessionRecord{Date: Day(date), Sport: sport}
	for _, f := range []*float64{
		&r.DurationHr, &r.DistanceMi, &r.ElevationGainFt, &r.AvgPowerW,
		&r.MaxPowerW, &r.AvgSpeedMph, &r.AvgHRBPM, &r.MaxHRBPM, &r.RPE,
		&r.FTPUsed, &r.WindMph, &r.TempF, &r.HumidityPct,
		&r.CaloriesIn, &r.ProteinG, &r.CarbsG, &r.FatG, &r.SugarG,
		&r.SodiumG, &r.PotassiumG, &r.CarbIntakeHr, &r.CarbIntraG,
		&r.SodiumIntraG,
		&r.SleepHr, &r.RestingHR, &r.WeightLbs, &r.Mood, &r.Energy,
		&r.Hunger, &r.Cravings,
		&r.TrackIF, &r.TrackTSS, &r.TrackWorkKJ,
		&r.IntensityFactor, &r.TSS, &r.WorkKJ, &r.CaloriesBurned,
		&r.WattsPerKG,
	} {
		*f = Undefined()
	}
	for i := range r.ZoneMinutes {
		r.ZoneMinutes[i] = Undefined()
	}
	return r
}

// Day truncates t to its calendar day in UTC. All record identity and
// aggregation is keyed on this normalized form.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// SameObservation reports whether two records describe the same observation
// under the strict 4-tuple identity (date, sport, duration, distance) used
// to deduplicate GPS-track imports. Float comparison is exact: a track
// re-import re-derives bit-identical values, so a tolerance band is not
// required and would mask genuinely distinct sessions.
func (r SessionRecord) SameObservation(other SessionRecord) bool {
	return SameDay(r.Date, other.Date) &&
		r.Sport == other.Sport &&
		floatIdentical(r.DurationHr, other.DurationHr) &&
		floatIdentical(r.DistanceMi, other.DistanceMi)
}

// SameSlot reports whether two records occupy the same (date, sport) slot,
// the replace-in-place identity used by manual entry and the bulk editor.
func (r SessionRecord) SameSlot(other SessionRecord) bool {
	return SameDay(r.Date, other.Date) && r.Sport == other.Sport
}

// floatIdentical treats two undefined values as equal so that a record with
// no distance still matches its own re-import.
func floatIdentical(a, b float64) bool {
	if !Defined(a) && !Defined(b) {
		return true
	}
	return a == b
}

package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/lucasjlepore/trainlog"
)

// SQLiteStore persists the record set in a single-file SQLite database via
// the pure-Go driver. SaveAll replaces the whole table in one transaction,
// so a failed save never leaves a partial set behind.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	date              TEXT NOT NULL,
	sport             TEXT NOT NULL DEFAULT '',
	phase             TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	session_type      TEXT NOT NULL DEFAULT '',
	notes             TEXT NOT NULL DEFAULT '',
	duration_hr       REAL,
	distance_mi       REAL,
	elevation_gain_ft REAL,
	avg_power_w       REAL,
	max_power_w       REAL,
	avg_speed_mph     REAL,
	avg_hr_bpm        REAL,
	max_hr_bpm        REAL,
	z1_min            REAL,
	z2_min            REAL,
	z3_min            REAL,
	z4_min            REAL,
	z5_min            REAL,
	rpe               REAL,
	ftp_used          REAL,
	wind_mph          REAL,
	temp_f            REAL,
	humidity_pct      REAL,
	calories_in       REAL,
	protein_g         REAL,
	carbs_g           REAL,
	fat_g             REAL,
	sugar_g           REAL,
	sodium_g          REAL,
	potassium_g       REAL,
	carb_intake_hr    REAL,
	carb_intra_g      REAL,
	sodium_intra_g    REAL,
	sleep_hr          REAL,
	resting_hr        REAL,
	weight_lbs        REAL,
	mood              REAL,
	energy            REAL,
	hunger            REAL,
	cravings          REAL,
	track_if          REAL,
	track_tss         REAL,
	track_work_kj     REAL
);
`

const sqliteColumns = `date, sport, phase, location, session_type, notes,
	duration_hr, distance_mi, elevation_gain_ft, avg_power_w, max_power_w,
	avg_speed_mph, avg_hr_bpm, max_hr_bpm,
	z1_min, z2_min, z3_min, z4_min, z5_min,
	rpe, ftp_used, wind_mph, temp_f, humidity_pct,
	calories_in, protein_g, carbs_g, fat_g, sugar_g, sodium_g, potassium_g,
	carb_intake_hr, carb_intra_g, sodium_intra_g,
	sleep_hr, resting_hr, weight_lbs, mood, energy, hunger, cravings,
	track_if, track_tss, track_work_kj`

// OpenSQLite opens (creating if needed) the database at path and ensures
// the sessions table exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %v", ErrUnavailable, path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set journal mode: %v", ErrUnavailable, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrUnavailable, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadAll reads every persisted session ordered by date.
func (s *SQLiteStore) LoadAll() ([]trainlog.SessionRecord, error) {
	rows, err := s.db.Query("SELECT " + sqliteColumns + " FROM sessions ORDER BY date")
	if err != nil {
		return nil, fmt.Errorf("%w: query sessions: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	records := make([]trainlog.SessionRecord, 0, 256)
	for rows.Next() {
		var (
			date  string
			sport string
			rec   = trainlog.SessionRecord{}
			nums  = make([]sql.NullFloat64, 38)
		)
		dest := []any{&date, &sport, &rec.Phase, &rec.Location, &rec.SessionType, &rec.Notes}
		for i := range nums {
			dest = append(dest, &nums[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: scan session: %v", ErrUnavailable, err)
		}
		day, err := parseDay(date)
		if err != nil {
			return nil, fmt.Errorf("%w: parse date %q: %v", ErrUnavailable, date, err)
		}
		rec.Date = day
		rec.Sport = trainlog.Sport(sport)
		assignNumericFields(&rec, nums)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate sessions: %v", ErrUnavailable, err)
	}
	return records, nil
}

// SaveAll replaces the persisted set in a single transaction.
func (s *SQLiteStore) SaveAll(records []trainlog.SessionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin save: %v", ErrUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("%w: clear sessions: %v", ErrUnavailable, err)
	}

	placeholders := "?" // 44 columns
	for i := 1; i < 44; i++ {
		placeholders += ", ?"
	}
	stmt, err := tx.Prepare("INSERT INTO sessions (" + sqliteColumns + ") VALUES (" + placeholders + ")")
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", ErrUnavailable, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		args := []any{formatDay(rec.Date), string(rec.Sport), rec.Phase, rec.Location, rec.SessionType, rec.Notes}
		for _, v := range numericFields(rec) {
			args = append(args, nullable(v))
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("%w: insert session %s: %v", ErrUnavailable, formatDay(rec.Date), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit save: %v", ErrUnavailable, err)
	}
	return nil
}

// numericFields lists a record's nullable numeric inputs in persisted
// column order. assignNumericFields is its inverse.
func numericFields(r trainlog.SessionRecord) []float64 {
	return []float64{
		r.DurationHr, r.DistanceMi, r.ElevationGainFt, r.AvgPowerW, r.MaxPowerW,
		r.AvgSpeedMph, r.AvgHRBPM, r.MaxHRBPM,
		r.ZoneMinutes[0], r.ZoneMinutes[1], r.ZoneMinutes[2], r.ZoneMinutes[3], r.ZoneMinutes[4],
		r.RPE, r.FTPUsed, r.WindMph, r.TempF, r.HumidityPct,
		r.CaloriesIn, r.ProteinG, r.CarbsG, r.FatG, r.SugarG, r.SodiumG, r.PotassiumG,
		r.CarbIntakeHr, r.CarbIntraG, r.SodiumIntraG,
		r.SleepHr, r.RestingHR, r.WeightLbs, r.Mood, r.Energy, r.Hunger, r.Cravings,
		r.TrackIF, r.TrackTSS, r.TrackWorkKJ,
	}
}

func assignNumericFields(r *trainlog.SessionRecord, nums []sql.NullFloat64) {
	targets := []*float64{
		&r.DurationHr, &r.DistanceMi, &r.ElevationGainFt, &r.AvgPowerW, &r.MaxPowerW,
		&r.AvgSpeedMph, &r.AvgHRBPM, &r.MaxHRBPM,
		&r.ZoneMinutes[0], &r.ZoneMinutes[1], &r.ZoneMinutes[2], &r.ZoneMinutes[3], &r.ZoneMinutes[4],
		&r.RPE, &r.FTPUsed, &r.WindMph, &r.TempF, &r.HumidityPct,
		&r.CaloriesIn, &r.ProteinG, &r.CarbsG, &r.FatG, &r.SugarG, &r.SodiumG, &r.PotassiumG,
		&r.CarbIntakeHr, &r.CarbIntraG, &r.SodiumIntraG,
		&r.SleepHr, &r.RestingHR, &r.WeightLbs, &r.Mood, &r.Energy, &r.Hunger, &r.Cravings,
		&r.TrackIF, &r.TrackTSS, &r.TrackWorkKJ,
	}
	for i, t := range targets {
		*t = fromNull(nums[i])
	}
	// Derived fields are never persisted; mark them for recomputation.
	r.IntensityFactor = trainlog.Undefined()
	r.TSS = trainlog.Undefined()
	r.WorkKJ = trainlog.Undefined()
	r.CaloriesBurned = trainlog.Undefined()
	r.WattsPerKG = trainlog.Undefined()
}

func nullable(v float64) any {
	if !trainlog.Defined(v) {
		return nil
	}
	return v
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return trainlog.Undefined()
	}
	return v.Float64
}

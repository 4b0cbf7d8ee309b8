package store

import (
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/lucasjlepore/trainlog"
)

// ParquetStore persists the record set as a snappy-compressed parquet file.
// NaN doubles survive the round-trip, so the undefined marker needs no
// separate null channel.
type ParquetStore struct {
	Path string
}

// NewParquetStore returns a store writing to path. A missing file loads as
// an empty record set; any other failure is ErrUnavailable.
func NewParquetStore(path string) *ParquetStore {
	return &ParquetStore{Path: path}
}

type sessionParquetRow struct {
	Date        string `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Sport       string `parquet:"name=sport, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Phase       string `parquet:"name=phase, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Location    string `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SessionType string `parquet:"name=session_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Notes       string `parquet:"name=notes, type=BYTE_ARRAY, convertedtype=UTF8"`

	DurationHr      float64 `parquet:"name=duration_hr, type=DOUBLE"`
	DistanceMi      float64 `parquet:"name=distance_mi, type=DOUBLE"`
	ElevationGainFt float64 `parquet:"name=elevation_gain_ft, type=DOUBLE"`
	AvgPowerW       float64 `parquet:"name=avg_power_w, type=DOUBLE"`
	MaxPowerW       float64 `parquet:"name=max_power_w, type=DOUBLE"`
	AvgSpeedMph     float64 `parquet:"name=avg_speed_mph, type=DOUBLE"`
	AvgHRBPM        float64 `parquet:"name=avg_hr_bpm, type=DOUBLE"`
	MaxHRBPM        float64 `parquet:"name=max_hr_bpm, type=DOUBLE"`
	Z1Min           float64 `parquet:"name=z1_min, type=DOUBLE"`
	Z2Min           float64 `parquet:"name=z2_min, type=DOUBLE"`
	Z3Min           float64 `parquet:"name=z3_min, type=DOUBLE"`
	Z4Min           float64 `parquet:"name=z4_min, type=DOUBLE"`
	Z5Min           float64 `parquet:"name=z5_min, type=DOUBLE"`
	RPE             float64 `parquet:"name=rpe, type=DOUBLE"`
	FTPUsed         float64 `parquet:"name=ftp_used, type=DOUBLE"`
	WindMph         float64 `parquet:"name=wind_mph, type=DOUBLE"`
	TempF           float64 `parquet:"name=temp_f, type=DOUBLE"`
	HumidityPct     float64 `parquet:"name=humidity_pct, type=DOUBLE"`
	CaloriesIn      float64 `parquet:"name=calories_in, type=DOUBLE"`
	ProteinG        float64 `parquet:"name=protein_g, type=DOUBLE"`
	CarbsG          float64 `parquet:"name=carbs_g, type=DOUBLE"`
	FatG            float64 `parquet:"name=fat_g, type=DOUBLE"`
	SugarG          float64 `parquet:"name=sugar_g, type=DOUBLE"`
	SodiumG         float64 `parquet:"name=sodium_g, type=DOUBLE"`
	PotassiumG      float64 `parquet:"name=potassium_g, type=DOUBLE"`
	CarbIntakeHr    float64 `parquet:"name=carb_intake_hr, type=DOUBLE"`
	CarbIntraG      float64 `parquet:"name=carb_intra_g, type=DOUBLE"`
	SodiumIntraG    float64 `parquet:"name=sodium_intra_g, type=DOUBLE"`
	SleepHr         float64 `parquet:"name=sleep_hr, type=DOUBLE"`
	RestingHR       float64 `parquet:"name=resting_hr, type=DOUBLE"`
	WeightLbs       float64 `parquet:"name=weight_lbs, type=DOUBLE"`
	Mood            float64 `parquet:"name=mood, type=DOUBLE"`
	Energy          float64 `parquet:"name=energy, type=DOUBLE"`
	Hunger          float64 `parquet:"name=hunger, type=DOUBLE"`
	Cravings        float64 `parquet:"name=cravings, type=DOUBLE"`
	TrackIF         float64 `parquet:"name=track_if, type=DOUBLE"`
	TrackTSS        float64 `parquet:"name=track_tss, type=DOUBLE"`
	TrackWorkKJ     float64 `parquet:"name=track_work_kj, type=DOUBLE"`
}

// LoadAll reads the full record set from the parquet file.
func (p *ParquetStore) LoadAll() ([]trainlog.SessionRecord, error) {
	if _, err := os.Stat(p.Path); os.IsNotExist(err) {
		return nil, nil
	}
	fr, err := local.NewLocalFileReader(p.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open parquet %s: %v", ErrUnavailable, p.Path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(sessionParquetRow), 4)
	if err != nil {
		return nil, fmt.Errorf("%w: read parquet schema: %v", ErrUnavailable, err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	rows := make([]sessionParquetRow, num)
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("%w: read parquet rows: %v", ErrUnavailable, err)
	}

	records := make([]trainlog.SessionRecord, 0, num)
	for _, row := range rows {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveAll replaces the parquet file with the given record set.
func (p *ParquetStore) SaveAll(records []trainlog.SessionRecord) error {
	fw, err := local.NewLocalFileWriter(p.Path)
	if err != nil {
		return fmt.Errorf("%w: create parquet %s: %v", ErrUnavailable, p.Path, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(sessionParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("%w: parquet writer: %v", ErrUnavailable, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range records {
		if err := pw.Write(recordToRow(rec)); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("%w: write parquet row: %v", ErrUnavailable, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("%w: finish parquet: %v", ErrUnavailable, err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("%w: close parquet: %v", ErrUnavailable, err)
	}
	return nil
}

func recordToRow(r trainlog.SessionRecord) sessionParquetRow {
	return sessionParquetRow{
		Date:        formatDay(r.Date),
		Sport:       string(r.Sport),
		Phase:       r.Phase,
		Location:    r.Location,
		SessionType: r.SessionType,
		Notes:       r.Notes,

		DurationHr:      r.DurationHr,
		DistanceMi:      r.DistanceMi,
		ElevationGainFt: r.ElevationGainFt,
		AvgPowerW:       r.AvgPowerW,
		MaxPowerW:       r.MaxPowerW,
		AvgSpeedMph:     r.AvgSpeedMph,
		AvgHRBPM:        r.AvgHRBPM,
		MaxHRBPM:        r.MaxHRBPM,
		Z1Min:           r.ZoneMinutes[0],
		Z2Min:           r.ZoneMinutes[1],
		Z3Min:           r.ZoneMinutes[2],
		Z4Min:           r.ZoneMinutes[3],
		Z5Min:           r.ZoneMinutes[4],
		RPE:             r.RPE,
		FTPUsed:         r.FTPUsed,
		WindMph:         r.WindMph,
		TempF:           r.TempF,
		HumidityPct:     r.HumidityPct,
		CaloriesIn:      r.CaloriesIn,
		ProteinG:        r.ProteinG,
		CarbsG:          r.CarbsG,
		FatG:            r.FatG,
		SugarG:          r.SugarG,
		SodiumG:         r.SodiumG,
		PotassiumG:      r.PotassiumG,
		CarbIntakeHr:    r.CarbIntakeHr,
		CarbIntraG:      r.CarbIntraG,
		SodiumIntraG:    r.SodiumIntraG,
		SleepHr:         r.SleepHr,
		RestingHR:       r.RestingHR,
		WeightLbs:       r.WeightLbs,
		Mood:            r.Mood,
		Energy:          r.Energy,
		Hunger:          r.Hunger,
		Cravings:        r.Cravings,
		TrackIF:         r.TrackIF,
		TrackTSS:        r.TrackTSS,
		TrackWorkKJ:     r.TrackWorkKJ,
	}
}

func rowToRecord(row sessionParquetRow) (trainlog.SessionRecord, error) {
	day, err := parseDay(row.Date)
	if err != nil {
		return trainlog.SessionRecord{}, fmt.Errorf("parse date %q: %v", row.Date, err)
	}
	rec := trainlog.NewSessionRecord(day, trainlog.Sport(row.Sport))
	rec.Phase = row.Phase
	rec.Location = row.Location
	rec.SessionType = row.SessionType
	rec.Notes = row.Notes

	rec.DurationHr = row.DurationHr
	rec.DistanceMi = row.DistanceMi
	rec.ElevationGainFt = row.ElevationGainFt
	rec.AvgPowerW = row.AvgPowerW
	rec.MaxPowerW = row.MaxPowerW
	rec.AvgSpeedMph = row.AvgSpeedMph
	rec.AvgHRBPM = row.AvgHRBPM
	rec.MaxHRBPM = row.MaxHRBPM
	rec.ZoneMinutes = [5]float64{row.Z1Min, row.Z2Min, row.Z3Min, row.Z4Min, row.Z5Min}
	rec.RPE = row.RPE
	rec.FTPUsed = row.FTPUsed
	rec.WindMph = row.WindMph
	rec.TempF = row.TempF
	rec.HumidityPct = row.HumidityPct
	rec.CaloriesIn = row.CaloriesIn
	rec.ProteinG = row.ProteinG
	rec.CarbsG = row.CarbsG
	rec.FatG = row.FatG
	rec.SugarG = row.SugarG
	rec.SodiumG = row.SodiumG
	rec.PotassiumG = row.PotassiumG
	rec.CarbIntakeHr = row.CarbIntakeHr
	rec.CarbIntraG = row.CarbIntraG
	rec.SodiumIntraG = row.SodiumIntraG
	rec.SleepHr = row.SleepHr
	rec.RestingHR = row.RestingHR
	rec.WeightLbs = row.WeightLbs
	rec.Mood = row.Mood
	rec.Energy = row.Energy
	rec.Hunger = row.Hunger
	rec.Cravings = row.Cravings
	rec.TrackIF = row.TrackIF
	rec.TrackTSS = row.TrackTSS
	rec.TrackWorkKJ = row.TrackWorkKJ
	return rec, nil
}

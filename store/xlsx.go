package store

import (
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/lucasjlepore/trainlog"
)

// XLSXStore persists the record set as a single-sheet spreadsheet. Undefined
// numerics map to empty cells, which keeps hand-edited workbooks valid input.
type XLSXStore struct {
	Path string
}

// NewXLSXStore returns a store writing to path. A missing file loads as an
// empty record set.
func NewXLSXStore(path string) *XLSXStore {
	return &XLSXStore{Path: path}
}

const xlsxSheet = "Sessions"

var xlsxHeader = []string{
	"date", "sport", "phase", "location", "session_type", "notes",
	"duration_hr", "distance_mi", "elevation_gain_ft", "avg_power_w", "max_power_w",
	"avg_speed_mph", "avg_hr_bpm", "max_hr_bpm",
	"z1_min", "z2_min", "z3_min", "z4_min", "z5_min",
	"rpe", "ftp_used", "wind_mph", "temp_f", "humidity_pct",
	"calories_in", "protein_g", "carbs_g", "fat_g", "sugar_g", "sodium_g", "potassium_g",
	"carb_intake_hr", "carb_intra_g", "sodium_intra_g",
	"sleep_hr", "resting_hr", "weight_lbs", "mood", "energy", "hunger", "cravings",
	"track_if", "track_tss", "track_work_kj",
}

// LoadAll reads every session row from the Sessions sheet.
func (x *XLSXStore) LoadAll() ([]trainlog.SessionRecord, error) {
	if _, err := os.Stat(x.Path); os.IsNotExist(err) {
		return nil, nil
	}
	f, err := excelize.OpenFile(x.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", ErrUnavailable, x.Path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrUnavailable, xlsxSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]trainlog.SessionRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := cellsToRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrUnavailable, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveAll replaces the workbook with a header row plus one row per session.
func (x *XLSXStore) SaveAll(records []trainlog.SessionRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("%w: create sheet: %v", ErrUnavailable, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("%w: drop default sheet: %v", ErrUnavailable, err)
	}

	header := make([]any, len(xlsxHeader))
	for i, h := range xlsxHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("%w: write header: %v", ErrUnavailable, err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: row coordinates: %v", ErrUnavailable, err)
		}
		row := recordToCells(rec)
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("%w: write row %d: %v", ErrUnavailable, i+2, err)
		}
	}

	if err := f.SaveAs(x.Path); err != nil {
		return fmt.Errorf("%w: save workbook %s: %v", ErrUnavailable, x.Path, err)
	}
	return nil
}

func recordToCells(r trainlog.SessionRecord) []any {
	cells := []any{
		formatDay(r.Date), string(r.Sport), r.Phase, r.Location, r.SessionType, r.Notes,
	}
	for _, v := range numericFields(r) {
		if trainlog.Defined(v) {
			cells = append(cells, v)
		} else {
			cells = append(cells, nil)
		}
	}
	return cells
}

func cellsToRecord(row []string) (trainlog.SessionRecord, error) {
	// GetRows trims trailing empty cells; pad back to full width.
	cells := make([]string, len(xlsxHeader))
	copy(cells, row)

	day, err := parseDay(cells[0])
	if err != nil {
		return trainlog.SessionRecord{}, fmt.Errorf("parse date %q: %v", cells[0], err)
	}
	rec := trainlog.NewSessionRecord(day, trainlog.Sport(cells[1]))
	rec.Phase = cells[2]
	rec.Location = cells[3]
	rec.SessionType = cells[4]
	rec.Notes = cells[5]

	nums := make([]float64, len(cells)-6)
	for i, cell := range cells[6:] {
		if cell == "" {
			nums[i] = trainlog.Undefined()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return trainlog.SessionRecord{}, fmt.Errorf("parse %s %q: %v", xlsxHeader[i+6], cell, err)
		}
		nums[i] = v
	}
	assignNumericValues(&rec, nums)
	return rec, nil
}

func assignNumericValues(r *trainlog.SessionRecord, nums []float64) {
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
		*t = nums[i]
	}
}
